// Package storage provides SQLite persistence for final scores and relay
// match results. Uses the pure-Go modernc.org/sqlite driver to avoid CGO.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/blockparty/internal/multiplayer"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry is one finished solo game.
type ScoreEntry struct {
	ID        int64
	Mode      string // registry game ID
	Player    string
	Score     int
	Lines     int
	Level     int
	Ticks     uint64
	CreatedAt time.Time
}

// MatchPlayer is one board of a recorded match.
type MatchPlayer struct {
	Player int
	Name   string
	Score  int
	Lines  int
	Level  int
	Lost   bool
}

// MatchRecord is a finished relay match.
type MatchRecord struct {
	ID        int64
	MatchID   string
	Code      string
	Reason    string
	Winner    int // 0 if no winner
	Ticks     uint64
	Duration  time.Duration
	Players   []MatchPlayer
	CreatedAt time.Time
}

// ModeStats contains aggregated statistics for a game mode.
type ModeStats struct {
	Mode       string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalLines int64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			lines INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(mode, score DESC);

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL,
			end_reason TEXT NOT NULL,
			winner INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS match_players (
			match_id TEXT NOT NULL REFERENCES matches(match_id) ON DELETE CASCADE,
			player INTEGER NOT NULL,
			name TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			lost INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (match_id, player)
		);
		CREATE INDEX IF NOT EXISTS idx_match_players_name ON match_players(name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a finished game and returns its row ID.
func (s *Store) SaveScore(e ScoreEntry) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (mode, player, score, lines, level, ticks) VALUES (?, ?, ?, ?, ?, ?)",
		e.Mode, e.Player, e.Score, e.Lines, e.Level, int64(e.Ticks),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for a mode, best first.
func (s *Store) TopScores(mode string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, mode, player, score, lines, level, ticks, created_at
		 FROM scores
		 WHERE mode = ?
		 ORDER BY score DESC, lines DESC, id ASC
		 LIMIT ?`,
		mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var ticks int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Mode, &e.Player, &e.Score, &e.Lines, &e.Level, &ticks, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Ticks = uint64(ticks)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for a mode, or 0 if none exist.
func (s *Store) HighScore(mode string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE mode = ?",
		mode,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes all scores for a mode.
func (s *Store) ClearScores(mode string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE mode = ?", mode)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// Stats retrieves statistics for every mode that has been played.
func (s *Store) Stats() (map[string]*ModeStats, error) {
	rows, err := s.db.Query(
		`SELECT mode, COUNT(*), MAX(score), AVG(score), SUM(lines), MAX(created_at)
		 FROM scores
		 GROUP BY mode`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ModeStats)
	for rows.Next() {
		var st ModeStats
		var lastPlayed any
		if err := rows.Scan(&st.Mode, &st.GamesCount, &st.HighScore, &st.AvgScore, &st.TotalLines, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Mode] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (s *Store) SaveMatchResult(result multiplayer.MatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(
		`INSERT INTO matches (match_id, code, end_reason, winner, ticks, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(result.MatchID),
		result.Code,
		result.Reason.String(),
		int(result.Winner),
		int64(result.Ticks),
		result.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save match: %w", err)
	}

	for _, p := range result.Results {
		_, err = tx.Exec(
			`INSERT INTO match_players (match_id, player, name, score, lines, level, lost)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(result.MatchID), int(p.Player), p.Name, p.Score, p.Lines, p.Level, p.Lost,
		)
		if err != nil {
			return fmt.Errorf("storage: cannot save match player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return nil
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)

// MatchByID retrieves a match with its players. Returns nil if not found.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	var rec MatchRecord
	var ticks, durationMS int64
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, match_id, code, end_reason, winner, ticks, duration_ms, created_at
		 FROM matches
		 WHERE match_id = ?`,
		matchID,
	).Scan(&rec.ID, &rec.MatchID, &rec.Code, &rec.Reason, &rec.Winner, &ticks, &durationMS, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	rec.Ticks = uint64(ticks)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt = parseTime(createdAt)

	rec.Players, err = s.matchPlayers(matchID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, match_id, code, end_reason, winner, ticks, duration_ms, created_at
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}

	var records []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var ticks, durationMS int64
		var createdAt any
		if err := rows.Scan(&rec.ID, &rec.MatchID, &rec.Code, &rec.Reason, &rec.Winner, &ticks, &durationMS, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.Ticks = uint64(ticks)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, rec)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	for i := range records {
		records[i].Players, err = s.matchPlayers(records[i].MatchID)
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) matchPlayers(matchID string) ([]MatchPlayer, error) {
	rows, err := s.db.Query(
		`SELECT player, name, score, lines, level, lost
		 FROM match_players
		 WHERE match_id = ?
		 ORDER BY player`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match players: %w", err)
	}
	defer rows.Close()

	var players []MatchPlayer
	for rows.Next() {
		var p MatchPlayer
		if err := rows.Scan(&p.Player, &p.Name, &p.Score, &p.Lines, &p.Level, &p.Lost); err != nil {
			return nil, fmt.Errorf("storage: cannot scan match player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return players, nil
}

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
