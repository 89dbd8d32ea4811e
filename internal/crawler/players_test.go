package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlayers(t *testing.T) {
	table := map[string]int{"herO": 728, "ShoWTimE": 159, "Zoun": 2426}

	got := ResolvePlayers([]string{"Zoun", "Unknown", "herO", "Zoun"}, table)
	assert.Equal(t, []PlayerTag{{Name: "Zoun", Tag: 2426}, {Name: "herO", Tag: 728}}, got)

	all := ResolvePlayers(nil, table)
	assert.Equal(t, []PlayerTag{
		{Name: "ShoWTimE", Tag: 159},
		{Name: "Zoun", Tag: 2426},
		{Name: "herO", Tag: 728},
	}, all)

	assert.Empty(t, ResolvePlayers([]string{"Nobody"}, table))
	assert.Empty(t, ResolvePlayers(nil, nil))
}
