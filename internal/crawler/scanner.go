package crawler

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/buildorderworker/helpers"
	"sjsage522/buildorderworker/logger"
	apperrors "sjsage522/buildorderworker/pkg/errors"
)

var replayHrefRe = regexp.MustCompile(`^/(\d+)/$`)

// Scanner reads replay list pages
type Scanner struct {
	fetcher PageFetcher
	baseURL string
	log     *logger.Logger
}

// NewScanner creates a list-page scanner for the site at baseURL
func NewScanner(fetcher PageFetcher, baseURL string) *Scanner {
	return &Scanner{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.ForScanner(),
	}
}

// ListQuery builds the list-page query for page under filter
func ListQuery(page int, filter FilterSpec) []QueryParam {
	params := []QueryParam{
		{Key: "p", Value: strconv.Itoa(page)},
		{Key: "order_by", Value: "date"},
	}
	if filter.ProOnly {
		params = append(params, QueryParam{Key: "pro_only", Value: "on"})
	}
	if filter.Patch != "" {
		params = append(params, QueryParam{Key: "patch", Value: filter.Patch})
	}
	if !filter.AfterPlayedOn.IsZero() {
		params = append(params, QueryParam{Key: "after_played_on", Value: filter.AfterPlayedOn.Format("2006-01-02")})
	}
	for _, tag := range filter.Tags {
		params = append(params, QueryParam{Key: "tag", Value: strconv.Itoa(tag)})
	}
	return params
}

// Scan fetches one list page and returns its replay references. A page
// without the replay table yields an empty slice and no error.
func (s *Scanner) Scan(ctx context.Context, page int, filter FilterSpec) ([]ReplayReference, error) {
	listURL := s.baseURL + "/replays/"
	params := ListQuery(page, filter)
	s.log.Debug().Str("url", BuildURL(listURL, params)).Msg("requesting list page")

	body, err := s.fetcher.Fetch(ctx, listURL, params)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, apperrors.NewParsing(listURL, "failed to parse list page", err)
	}

	refs, found := ParseReplayList(doc, s.baseURL)
	if !found {
		s.log.Warn().Int("page", page).Ints("tags", filter.Tags).Msg("replay table not found")
		return []ReplayReference{}, nil
	}

	s.log.Debug().Int("page", page).Int("replays", len(refs)).Msg("list page scanned")
	return refs, nil
}

// ParseReplayList extracts replay references from a list page. found is
// false when the replay table is absent.
func ParseReplayList(doc *goquery.Document, baseURL string) (refs []ReplayReference, found bool) {
	table := doc.Find("table.table-striped").First()
	if table.Length() == 0 {
		return []ReplayReference{}, false
	}

	refs = []ReplayReference{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if ref, ok := parseReplayRow(row, baseURL); ok {
			refs = append(refs, ref)
		}
	})
	return refs, true
}

func parseReplayRow(row *goquery.Selection, baseURL string) (ReplayReference, bool) {
	cells := row.Find("td")
	if cells.Length() < 3 {
		return ReplayReference{}, false
	}

	var id int
	var link *goquery.Selection
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		m := replayHrefRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return true
		}
		id, link = n, a
		return false
	})
	if link == nil {
		return ReplayReference{}, false
	}

	ref := ReplayReference{
		ID:         id,
		Title:      helpers.StrippedText(link),
		URL:        ReplayURL(baseURL, id),
		DatePlayed: helpers.StrippedText(cells.Eq(2)),
	}
	if cells.Length() >= 4 {
		ref.GameLength = helpers.StrippedText(cells.Eq(3))
	}
	return ref, true
}

// ReplayURL returns the detail page URL of a replay
func ReplayURL(baseURL string, id int) string {
	return strings.TrimRight(baseURL, "/") + "/" + strconv.Itoa(id) + "/"
}
