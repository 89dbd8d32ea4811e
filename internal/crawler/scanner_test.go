package crawler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher returns a fixed body and records the request
type stubFetcher struct {
	body   string
	err    error
	url    string
	params []QueryParam
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string, params []QueryParam) (string, error) {
	f.url = rawURL
	f.params = params
	return f.body, f.err
}

func TestListQueryOrder(t *testing.T) {
	filter := FilterSpec{
		Tags:          []int{17, 728},
		AfterPlayedOn: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		Patch:         "5.0.15",
		ProOnly:       true,
	}

	got := BuildURL("https://example.com/replays/", ListQuery(2, filter))
	assert.Equal(t,
		"https://example.com/replays/?p=2&order_by=date&pro_only=on&patch=5.0.15&after_played_on=2025-10-01&tag=17&tag=728",
		got)
}

func TestListQueryOmitsUnsetFilters(t *testing.T) {
	got := ListQuery(1, FilterSpec{})
	assert.Equal(t, []QueryParam{{Key: "p", Value: "1"}, {Key: "order_by", Value: "date"}}, got)
}

func TestParseReplayList(t *testing.T) {
	html := `<table class="table table-striped">
		<tr><th>Name</th><th>Matchup</th><th>Played</th></tr>
		<tr><td><a href="/users/5/">Profile</a> <a href="/101/">herO vs Clem</a></td><td>PvT</td><td>Oct. 3, 2025</td><td>12:41</td></tr>
		<tr><td><a href="/tags/17/">No replay link</a></td><td>PvZ</td><td>Oct. 4, 2025</td></tr>
		<tr><td><a href="/102/">Too few cells</a></td><td>PvP</td></tr>
		<tr><td><a href="/103/">  Zoun vs Serral </a></td><td>PvZ</td><td>Oct. 5, 2025</td></tr>
	</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	refs, found := ParseReplayList(doc, "https://example.com/")
	require.True(t, found)
	require.Len(t, refs, 2)

	assert.Equal(t, ReplayReference{
		ID:         101,
		Title:      "herO vs Clem",
		URL:        "https://example.com/101/",
		DatePlayed: "Oct. 3, 2025",
		GameLength: "12:41",
	}, refs[0])
	assert.Equal(t, 103, refs[1].ID)
	assert.Equal(t, "Zoun vs Serral", refs[1].Title)
	assert.Empty(t, refs[1].GameLength)
}

func TestScanWithoutTableReturnsEmpty(t *testing.T) {
	fetcher := &stubFetcher{body: `<html><body><p>Nothing here</p></body></html>`}
	scanner := NewScanner(fetcher, "https://example.com")

	refs, err := scanner.Scan(context.Background(), 6, FilterSpec{Tags: []int{728}})
	require.NoError(t, err)
	assert.NotNil(t, refs)
	assert.Empty(t, refs)
	assert.Equal(t, "https://example.com/replays/", fetcher.url)
}

func TestScanPropagatesFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}
	scanner := NewScanner(fetcher, "https://example.com")

	_, err := scanner.Scan(context.Background(), 1, FilterSpec{})
	assert.EqualError(t, err, "boom")
}

func TestScanParsesFetchedPage(t *testing.T) {
	fetcher := &stubFetcher{body: listPageHTML(7, 8, 9)}
	scanner := NewScanner(fetcher, "https://example.com")

	refs, err := scanner.Scan(context.Background(), 1, FilterSpec{ProOnly: true, Tags: []int{2426}})
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, []int{7, 8, 9}, []int{refs[0].ID, refs[1].ID, refs[2].ID})
	assert.Contains(t, fetcher.params, QueryParam{Key: "tag", Value: "2426"})
	assert.Contains(t, fetcher.params, QueryParam{Key: "pro_only", Value: "on"})
}
