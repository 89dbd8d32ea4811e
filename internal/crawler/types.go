package crawler

import (
	"context"
	"time"
)

// FilterSpec holds the list-page filters for one discovery task. It is
// passed by value and never modified after construction.
type FilterSpec struct {
	Tags          []int
	AfterPlayedOn time.Time
	Patch         string
	ProOnly       bool
	FirstPage     int
	LastPage      int
}

// WithTag returns a copy of the filter with tag appended
func (f FilterSpec) WithTag(tag int) FilterSpec {
	tags := make([]int, 0, len(f.Tags)+1)
	tags = append(tags, f.Tags...)
	f.Tags = append(tags, tag)
	return f
}

// Pages returns the page numbers covered by the filter, first to last
func (f FilterSpec) Pages() []int {
	first := f.FirstPage
	if first < 1 {
		first = 1
	}
	var pages []int
	for p := first; p <= f.LastPage; p++ {
		pages = append(pages, p)
	}
	return pages
}

// ReplayReference is one row of a replay list page
type ReplayReference struct {
	ID         int    `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
	DatePlayed string `json:"date_played,omitempty" yaml:"date_played,omitempty"`
	GameLength string `json:"game_length,omitempty" yaml:"game_length,omitempty"`
}

// BuildEvent is a single build-order step as shown on the replay page
type BuildEvent struct {
	Supply string `json:"supply" yaml:"supply"`
	Time   string `json:"time" yaml:"time"`
	Action string `json:"action" yaml:"action"`
}

// PlayerBuildOrder is one participant's identity and chronological build
type PlayerBuildOrder struct {
	Name       string       `json:"name" yaml:"name"`
	Race       string       `json:"race" yaml:"race"`
	BuildOrder []BuildEvent `json:"build_order" yaml:"build_order"`
}

// MatchRecord is the extracted build-order record for one replay
type MatchRecord struct {
	ReplayID       int                `json:"replay_id" yaml:"replay_id"`
	URL            string             `json:"url" yaml:"url"`
	Players        []PlayerBuildOrder `json:"players" yaml:"players"`
	Matchup        string             `json:"matchup" yaml:"matchup"`
	Map            string             `json:"map" yaml:"map"`
	DatePlayed     string             `json:"date_played" yaml:"date_played"`
	GameLength     string             `json:"game_length" yaml:"game_length"`
	Title          string             `json:"title" yaml:"title"`
	SearchedPlayer string             `json:"searched_player" yaml:"searched_player"`
}

// PlayerTag is a target player resolved to the site's filter tag
type PlayerTag struct {
	Name string
	Tag  int
}

// CrawlStats counts what happened in each phase of a crawl
type CrawlStats struct {
	ListTasks      int           `json:"list_tasks"`
	ListFailures   int           `json:"list_failures"`
	Discovered     int           `json:"discovered"`
	Unique         int           `json:"unique"`
	DetailFailures int           `json:"detail_failures"`
	Duration       time.Duration `json:"duration"`
}

// CrawlResult is the outcome of one complete crawl
type CrawlResult struct {
	RunID   string
	Records []MatchRecord
	Stats   CrawlStats
}

// Crawler interface defines the contract for a full crawl
type Crawler interface {
	// Scrape discovers and extracts every replay for the given players
	Scrape(ctx context.Context, players []PlayerTag) CrawlResult
}
