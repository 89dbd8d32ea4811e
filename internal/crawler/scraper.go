package crawler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sjsage522/buildorderworker/helpers"
	"sjsage522/buildorderworker/logger"
	"sjsage522/buildorderworker/services/cache"
)

const rateLimitKeyPrefix = "spawningtool_rate_limited:"

// RateLimitKey returns the cooldown marker key of one crawl
func RateLimitKey(runID string) string {
	return rateLimitKeyPrefix + runID
}

// ScraperConfig configures a Scraper
type ScraperConfig struct {
	BaseURL        string
	MaxConcurrent  int
	RequestTimeout time.Duration
	CrawlDeadline  time.Duration
	RateLimitBlock time.Duration
	Filter         FilterSpec
}

// Discovery is a replay reference together with the player whose search
// found it.
type Discovery struct {
	Player string
	Ref    ReplayReference
}

type listScanner interface {
	Scan(ctx context.Context, page int, filter FilterSpec) ([]ReplayReference, error)
}

type detailExtractor interface {
	Extract(ctx context.Context, id int) (MatchRecord, error)
}

// Scraper runs the two-phase crawl: list pages for every (player, page)
// pair, then one detail page per unique replay.
type Scraper struct {
	cfg      ScraperConfig
	cacheSvc cache.CacheService
	log      *logger.Logger
}

var _ Crawler = (*Scraper)(nil)

// NewScraper creates a new scraper
func NewScraper(cfg ScraperConfig, cacheSvc cache.CacheService) *Scraper {
	return &Scraper{
		cfg:      cfg,
		cacheSvc: cacheSvc,
		log:      logger.ForScraper(),
	}
}

// Scrape crawls every player's list pages and extracts each unique replay
// once. Failed tasks are logged and left out; the result holds whatever
// succeeded. With no players it returns an empty result without any request.
func (s *Scraper) Scrape(ctx context.Context, players []PlayerTag) CrawlResult {
	start := time.Now()
	result := CrawlResult{
		RunID:   uuid.NewString(),
		Records: []MatchRecord{},
	}
	log := s.log.WithField("run_id", result.RunID)

	if len(players) == 0 {
		log.Error().Msg("no valid player tags resolved, nothing to crawl")
		return result
	}

	if s.cfg.CrawlDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CrawlDeadline)
		defer cancel()
	}

	// the cooldown marker belongs to this crawl only
	blockKey := RateLimitKey(result.RunID)
	if s.cfg.RateLimitBlock > 0 && s.cacheSvc != nil {
		defer func() {
			if err := s.cacheSvc.Delete(blockKey); err != nil {
				log.Warn().Err(err).Str("key", blockKey).Msg("failed to clear cooldown marker")
			}
		}()
	}

	fetcher := NewFetcher(FetcherOptions{
		Gate:      NewGate(s.cfg.MaxConcurrent),
		Timeout:   s.cfg.RequestTimeout,
		Headers:   helpers.DefaultHeaders(),
		Cache:     s.cacheSvc,
		BlockKey:  blockKey,
		BlockTime: s.cfg.RateLimitBlock,
	})
	defer fetcher.Close()

	discovered := s.discover(ctx, log, NewScanner(fetcher, s.cfg.BaseURL), players, &result.Stats)
	result.Records = s.extract(ctx, log, NewExtractor(fetcher, s.cfg.BaseURL), discovered, &result.Stats)
	result.Stats.Duration = time.Since(start)

	log.Info().
		Int("records", len(result.Records)).
		Int("list_failures", result.Stats.ListFailures).
		Int("detail_failures", result.Stats.DetailFailures).
		Dur("elapsed", result.Stats.Duration).
		Msg("crawl finished")
	return result
}

type listTask struct {
	player PlayerTag
	page   int
}

// discover runs phase 1 and returns the deduplicated references
func (s *Scraper) discover(ctx context.Context, log *logger.Logger, scanner listScanner, players []PlayerTag, stats *CrawlStats) []Discovery {
	var tasks []listTask
	for _, p := range players {
		for _, page := range s.cfg.Filter.Pages() {
			tasks = append(tasks, listTask{player: p, page: page})
		}
	}
	stats.ListTasks = len(tasks)
	log.Info().Int("tasks", len(tasks)).Int("players", len(players)).Msg("requesting list pages")

	results := gather(len(tasks), func(i int) ([]Discovery, error) {
		t := tasks[i]
		refs, err := scanner.Scan(ctx, t.page, s.cfg.Filter.WithTag(t.player.Tag))
		if err != nil {
			return nil, err
		}
		found := make([]Discovery, 0, len(refs))
		for _, ref := range refs {
			found = append(found, Discovery{Player: t.player.Name, Ref: ref})
		}
		return found, nil
	})

	groups := make([][]Discovery, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			stats.ListFailures++
			log.Error().Err(r.Err).
				Str("player", tasks[i].player.Name).
				Int("page", tasks[i].page).
				Msg("list page failed")
			continue
		}
		stats.Discovered += len(r.Value)
		groups = append(groups, r.Value)
	}

	unique := Dedupe(groups)
	stats.Unique = len(unique)
	log.Info().
		Int("discovered", stats.Discovered).
		Int("unique", stats.Unique).
		Msg("deduplicated replays")
	return unique
}

// extract runs phase 2 over the unique references
func (s *Scraper) extract(ctx context.Context, log *logger.Logger, extractor detailExtractor, discovered []Discovery, stats *CrawlStats) []MatchRecord {
	log.Info().Int("replays", len(discovered)).Msg("requesting replay build orders")

	results := gather(len(discovered), func(i int) (MatchRecord, error) {
		d := discovered[i]
		record, err := extractor.Extract(ctx, d.Ref.ID)
		if err != nil {
			return MatchRecord{}, err
		}
		record.Title = d.Ref.Title
		record.SearchedPlayer = d.Player
		if record.DatePlayed == "" {
			record.DatePlayed = d.Ref.DatePlayed
		}
		return record, nil
	})

	records := make([]MatchRecord, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			stats.DetailFailures++
			log.Error().Err(r.Err).Int("replay_id", discovered[i].Ref.ID).Msg("build order failed")
			continue
		}
		records = append(records, r.Value)
	}
	return records
}

// Dedupe flattens groups in order and keeps the first Discovery of each
// replay id. Groups are in task order, so the surviving provenance is the
// earliest (player, page, row) that listed the replay.
func Dedupe(groups [][]Discovery) []Discovery {
	seen := make(map[int]bool)
	var unique []Discovery
	for _, group := range groups {
		for _, d := range group {
			if seen[d.Ref.ID] {
				continue
			}
			seen[d.Ref.ID] = true
			unique = append(unique, d)
		}
	}
	return unique
}
