package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TagTable maps race and player names to the site's filter tag ids.
type TagTable struct {
	Races   map[string]int `yaml:"races"`
	Players map[string]int `yaml:"players"`
}

// DefaultTagTable returns the built-in tag table
func DefaultTagTable() TagTable {
	return TagTable{
		Races: map[string]int{
			"Protoss": 17,
			"Terran":  1,
			"Zerg":    2,
		},
		Players: map[string]int{
			"herO":     728,
			"ShoWTimE": 159,
			"Zoun":     2426,
		},
	}
}

// LoadTagTable reads a YAML tag table from path. An empty path returns the
// built-in table. Sections missing from the file keep their built-in values.
func LoadTagTable(path string) (TagTable, error) {
	table := DefaultTagTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return TagTable{}, fmt.Errorf("failed to read tag table: %w", err)
	}

	var fileTable TagTable
	if err := yaml.Unmarshal(data, &fileTable); err != nil {
		return TagTable{}, fmt.Errorf("failed to parse tag table: %w", err)
	}

	if fileTable.Races != nil {
		table.Races = fileTable.Races
	}
	if fileTable.Players != nil {
		table.Players = fileTable.Players
	}
	return table, nil
}

// RaceTag returns the tag id for a race name
func (t TagTable) RaceTag(race string) (int, bool) {
	tag, ok := t.Races[race]
	return tag, ok
}
