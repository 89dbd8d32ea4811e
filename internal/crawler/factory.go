package crawler

import (
	"sjsage522/buildorderworker/config"
	"sjsage522/buildorderworker/logger"
	"sjsage522/buildorderworker/services/cache"
)

// CreateScraper builds the scraper and its target players from the configuration
func CreateScraper(cfg *config.Config, tags config.TagTable, cacheSvc cache.CacheService) (*Scraper, []PlayerTag) {
	filter := FilterSpec{
		AfterPlayedOn: cfg.MinimumDate(),
		Patch:         cfg.Patch,
		ProOnly:       cfg.ProOnly,
		FirstPage:     1,
		LastPage:      cfg.MaxPages,
	}
	if cfg.TargetRace != "" {
		if tag, ok := tags.RaceTag(cfg.TargetRace); ok {
			filter.Tags = []int{tag}
		} else {
			logger.ForScraper().Warn().Str("race", cfg.TargetRace).Msg("no tag known for race, ignoring")
		}
	}

	scraper := NewScraper(ScraperConfig{
		BaseURL:        cfg.BaseURL,
		MaxConcurrent:  cfg.MaxConcurrent,
		RequestTimeout: cfg.RequestTimeout,
		CrawlDeadline:  cfg.CrawlDeadline,
		RateLimitBlock: cfg.RateLimitBlock,
		Filter:         filter,
	}, cacheSvc)

	return scraper, ResolvePlayers(cfg.TargetPlayers, tags.Players)
}
