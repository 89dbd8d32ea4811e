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

var winnerSuffixRe = regexp.MustCompile(`(?i)\s*-\s*Winner!?\s*$`)

// Extractor reads replay detail pages
type Extractor struct {
	fetcher PageFetcher
	baseURL string
	log     *logger.Logger
}

// NewExtractor creates a detail-page extractor for the site at baseURL
func NewExtractor(fetcher PageFetcher, baseURL string) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.ForExtractor(),
	}
}

// Extract fetches the detail page of replay id and extracts its record.
// Only the fetch itself can fail; missing markup leaves fields empty.
func (e *Extractor) Extract(ctx context.Context, id int) (MatchRecord, error) {
	detailURL := ReplayURL(e.baseURL, id)

	body, err := e.fetcher.Fetch(ctx, detailURL, nil)
	if err != nil {
		return MatchRecord{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return MatchRecord{}, apperrors.NewParsing(detailURL, "failed to parse detail page", err)
	}

	record := ParseMatch(doc, id, e.baseURL)

	names := make([]string, 0, len(record.Players))
	counts := make([]int, 0, len(record.Players))
	for _, p := range record.Players {
		names = append(names, p.Name)
		counts = append(counts, len(p.BuildOrder))
	}
	e.log.Debug().
		Int("replay_id", id).
		Str("matchup", record.Matchup).
		Str("players", strings.Join(names, " vs ")).
		Ints("build_steps", counts).
		Msg("replay extracted")

	return record, nil
}

type participant struct {
	name string
	race string
}

// ParseMatch builds a MatchRecord from a detail page. It never fails.
func ParseMatch(doc *goquery.Document, id int, baseURL string) MatchRecord {
	record := MatchRecord{
		ReplayID: id,
		URL:      ReplayURL(baseURL, id),
		Players:  []PlayerBuildOrder{},
	}

	overview := doc.Find("div#replay-overview").First()
	if overview.Length() == 0 {
		return record
	}

	record.Map = parseMapName(overview)
	record.DatePlayed, record.GameLength = parseTimeInfo(overview)

	participants := parseParticipants(overview)
	if len(participants) == 2 {
		record.Matchup = MatchupLabel(participants[0].race, participants[1].race)
	}

	for i, p := range participants {
		record.Players = append(record.Players, PlayerBuildOrder{
			Name:       p.name,
			Race:       p.race,
			BuildOrder: parseBuildOrder(doc, i+1),
		})
	}
	return record
}

// MatchupLabel joins the race initials of two players, "?" for an unknown race
func MatchupLabel(race1, race2 string) string {
	return raceInitial(race1) + "v" + raceInitial(race2)
}

func raceInitial(race string) string {
	for _, r := range race {
		return string(r)
	}
	return "?"
}

// StripWinnerSuffix removes a trailing "- Winner" or "- Winner!" marker
func StripWinnerSuffix(name string) string {
	return winnerSuffixRe.ReplaceAllString(name, "")
}

func parseMapName(overview *goquery.Selection) string {
	h3 := overview.Find("h3").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Map:")
	}).First()
	if h3.Length() == 0 {
		return ""
	}
	return helpers.TextAfterLabel(helpers.StrippedText(h3), "Map:")
}

func parseTimeInfo(overview *goquery.Selection) (datePlayed, gameLength string) {
	h3 := overview.Find("h3").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Time")
	}).First()
	if h3.Length() == 0 {
		return "", ""
	}

	h3.NextAllFiltered("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
		text := helpers.StrippedText(li)
		switch {
		case strings.Contains(text, "Played on:"):
			datePlayed = helpers.TextAfterLabel(text, "Played on:")
		case strings.Contains(text, "Length:"):
			gameLength = helpers.TextAfterLabel(text, "Length:")
		}
	})
	return datePlayed, gameLength
}

func parseParticipants(overview *goquery.Selection) []participant {
	var participants []participant
	overview.Find("h4").Each(func(_ int, h4 *goquery.Selection) {
		p := participant{name: StripWinnerSuffix(helpers.StrippedText(h4))}

		img := h4.NextAllFiltered("ul").First().Find("li").First().Find("img").First()
		if alt, ok := img.Attr("alt"); ok {
			p.race = alt
		}
		participants = append(participants, p)
	})
	return participants
}

func parseBuildOrder(doc *goquery.Document, index int) []BuildEvent {
	events := []BuildEvent{}
	pane := doc.Find("div#player-" + strconv.Itoa(index)).First()
	if pane.Length() == 0 {
		return events
	}

	pane.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		events = append(events, BuildEvent{
			Supply: helpers.StrippedText(cells.Eq(0)),
			Time:   helpers.StrippedText(cells.Eq(1)),
			Action: helpers.StrippedText(cells.Eq(2)),
		})
	})
	return events
}
