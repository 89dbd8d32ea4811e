package helpers

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrippedText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<h3>
			Map:
			<a href="/maps/1/">Ultralove LE</a>
		</h3>
		<li><b>Played on:</b>  Oct. 3, 2025 </li>`))
	require.NoError(t, err)

	assert.Equal(t, "Map:Ultralove LE", StrippedText(doc.Find("h3")))
	assert.Equal(t, "Played on:Oct. 3, 2025", StrippedText(doc.Find("li")))
	assert.Equal(t, "", StrippedText(doc.Find("table")))
}

func TestTextAfterLabel(t *testing.T) {
	assert.Equal(t, "Ultralove LE", TextAfterLabel("Map:Ultralove LE", "Map:"))
	assert.Equal(t, "12:41", TextAfterLabel("Length: 12:41 ", "Length:"))
	assert.Equal(t, "", TextAfterLabel("Something else", "Length:"))
	assert.Equal(t, "Cloud Kingdom", TextAfterLabel("Map:Map: Cloud Kingdom", "Map:"), "every occurrence is removed")
}
