package exporter

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"sjsage522/buildorderworker/internal/crawler"
	"sjsage522/buildorderworker/logger"
	apperrors "sjsage522/buildorderworker/pkg/errors"
)

var sqliteSchema = `
CREATE TABLE matches (
	ordinal INTEGER PRIMARY KEY,
	replay_id INTEGER NOT NULL,
	url TEXT NOT NULL,
	matchup TEXT NOT NULL,
	map TEXT NOT NULL,
	date_played TEXT NOT NULL,
	game_length TEXT NOT NULL,
	title TEXT NOT NULL,
	searched_player TEXT NOT NULL
);
CREATE TABLE players (
	match_ordinal INTEGER NOT NULL REFERENCES matches(ordinal),
	ordinal INTEGER NOT NULL,
	name TEXT NOT NULL,
	race TEXT NOT NULL,
	PRIMARY KEY (match_ordinal, ordinal)
);
CREATE TABLE build_events (
	match_ordinal INTEGER NOT NULL,
	player_ordinal INTEGER NOT NULL,
	ordinal INTEGER NOT NULL,
	supply TEXT NOT NULL,
	time TEXT NOT NULL,
	action TEXT NOT NULL,
	PRIMARY KEY (match_ordinal, player_ordinal, ordinal)
);
CREATE INDEX idx_matches_replay ON matches(replay_id);
`

// SQLiteExporter writes records into a fresh SQLite database file. Row
// order is kept in ordinal columns.
type SQLiteExporter struct{}

// Format returns "sqlite"
func (e *SQLiteExporter) Format() string { return FormatSQLite }

// Export builds a database holding records next to path and renames it
// into place
func (e *SQLiteExporter) Export(records []crawler.MatchRecord, path string) error {
	err := replaceFile(path, func(tmpPath string) error {
		db, err := sql.Open("sqlite", tmpPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if _, err := db.Exec(sqliteSchema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		if err := insertRecords(db, records); err != nil {
			return err
		}
		return db.Close()
	})
	if err != nil {
		return err
	}

	logger.ForExporter().Info().Str("path", path).Int("records", len(records)).Msg("exported SQLite")
	return nil
}

func insertRecords(db *sql.DB, records []crawler.MatchRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmtMatch, err := tx.Prepare(`
		INSERT INTO matches (ordinal, replay_id, url, matchup, map, date_played, game_length, title, searched_player)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare matches statement: %w", err)
	}
	defer stmtMatch.Close()

	stmtPlayer, err := tx.Prepare(`
		INSERT INTO players (match_ordinal, ordinal, name, race) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare players statement: %w", err)
	}
	defer stmtPlayer.Close()

	stmtEvent, err := tx.Prepare(`
		INSERT INTO build_events (match_ordinal, player_ordinal, ordinal, supply, time, action)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare build_events statement: %w", err)
	}
	defer stmtEvent.Close()

	for i, r := range records {
		if _, err := stmtMatch.Exec(i, r.ReplayID, r.URL, r.Matchup, r.Map, r.DatePlayed, r.GameLength, r.Title, r.SearchedPlayer); err != nil {
			return fmt.Errorf("failed to insert replay %d: %w", r.ReplayID, err)
		}
		for j, p := range r.Players {
			if _, err := stmtPlayer.Exec(i, j, p.Name, p.Race); err != nil {
				return fmt.Errorf("failed to insert player of replay %d: %w", r.ReplayID, err)
			}
			for k, ev := range p.BuildOrder {
				if _, err := stmtEvent.Exec(i, j, k, ev.Supply, ev.Time, ev.Action); err != nil {
					return fmt.Errorf("failed to insert build event of replay %d: %w", r.ReplayID, err)
				}
			}
		}
	}

	return tx.Commit()
}

func loadSQLite(path string) ([]crawler.MatchRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewExport(path, "database not found", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewExport(path, "failed to open database", err)
	}
	defer db.Close()

	records, err := readRecords(db)
	if err != nil {
		return nil, apperrors.NewExport(path, "failed to read records", err)
	}
	return records, nil
}

func readRecords(db *sql.DB) ([]crawler.MatchRecord, error) {
	rows, err := db.Query(`
		SELECT replay_id, url, matchup, map, date_played, game_length, title, searched_player
		FROM matches ORDER BY ordinal`)
	if err != nil {
		return nil, err
	}
	records := []crawler.MatchRecord{}
	for rows.Next() {
		r := crawler.MatchRecord{Players: []crawler.PlayerBuildOrder{}}
		if err := rows.Scan(&r.ReplayID, &r.URL, &r.Matchup, &r.Map, &r.DatePlayed, &r.GameLength, &r.Title, &r.SearchedPlayer); err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`SELECT match_ordinal, name, race FROM players ORDER BY match_ordinal, ordinal`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var m int
		p := crawler.PlayerBuildOrder{BuildOrder: []crawler.BuildEvent{}}
		if err := rows.Scan(&m, &p.Name, &p.Race); err != nil {
			rows.Close()
			return nil, err
		}
		if m < 0 || m >= len(records) {
			continue
		}
		records[m].Players = append(records[m].Players, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`
		SELECT match_ordinal, player_ordinal, supply, time, action
		FROM build_events ORDER BY match_ordinal, player_ordinal, ordinal`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m, p int
		var ev crawler.BuildEvent
		if err := rows.Scan(&m, &p, &ev.Supply, &ev.Time, &ev.Action); err != nil {
			return nil, err
		}
		if m < 0 || m >= len(records) || p < 0 || p >= len(records[m].Players) {
			continue
		}
		records[m].Players[p].BuildOrder = append(records[m].Players[p].BuildOrder, ev)
	}
	return records, rows.Err()
}
