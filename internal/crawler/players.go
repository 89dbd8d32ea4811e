package crawler

import (
	"sort"

	"sjsage522/buildorderworker/logger"
)

// ResolvePlayers maps player names to their tags, keeping the order of
// names. Unknown and repeated names are skipped. With no names, every
// entry of table is used in name order.
func ResolvePlayers(names []string, table map[string]int) []PlayerTag {
	if len(names) == 0 {
		names = make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	seen := make(map[string]bool, len(names))
	players := make([]PlayerTag, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		tag, ok := table[name]
		if !ok {
			logger.ForScraper().Warn().Str("player", name).Msg("no tag known for player, skipping")
			continue
		}
		players = append(players, PlayerTag{Name: name, Tag: tag})
	}
	return players
}
