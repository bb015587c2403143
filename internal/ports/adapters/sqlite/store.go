package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ddudnik/clipsight/internal/types"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the pattern library behind the narrow get/upsert contract.
// Matching reads may run concurrently with a learner write; a match computed
// against a slightly stale library is acceptable.
type Store struct {
	conn *sql.DB
}

func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open pattern store: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping pattern store: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS viral_patterns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		pattern_type TEXT NOT NULL,
		components TEXT NOT NULL,
		avg_fate_score REAL NOT NULL,
		avg_retention_3s REAL NOT NULL,
		video_count INTEGER NOT NULL,
		confidence_score REAL NOT NULL,
		source_video_ids TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_patterns_type ON viral_patterns(pattern_type);

	CREATE TABLE IF NOT EXISTS pattern_matches (
		video_id TEXT NOT NULL,
		pattern_id TEXT NOT NULL,
		match_confidence REAL NOT NULL,
		matched_components TEXT NOT NULL,
		PRIMARY KEY (video_id, pattern_id)
	);
	`
	_, err := s.conn.Exec(query)
	return err
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) Upsert(ctx context.Context, p *types.ViralPattern) error {
	components, err := json.Marshal(p.Components)
	if err != nil {
		return fmt.Errorf("marshal components: %w", err)
	}
	sources, err := json.Marshal(p.SourceVideoIDs)
	if err != nil {
		return fmt.Errorf("marshal source ids: %w", err)
	}

	query := `
		INSERT INTO viral_patterns (
			id, name, pattern_type, components, avg_fate_score,
			avg_retention_3s, video_count, confidence_score, source_video_ids
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			pattern_type = excluded.pattern_type,
			components = excluded.components,
			avg_fate_score = excluded.avg_fate_score,
			avg_retention_3s = excluded.avg_retention_3s,
			video_count = excluded.video_count,
			confidence_score = excluded.confidence_score,
			source_video_ids = excluded.source_video_ids`

	_, err = s.conn.ExecContext(ctx, query,
		p.ID, p.Name, p.PatternType, string(components),
		p.AvgFateScore, p.AvgRetention3s, p.VideoCount, p.ConfidenceScore,
		string(sources),
	)
	if err != nil {
		return fmt.Errorf("upsert pattern %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context) ([]types.ViralPattern, error) {
	return s.query(ctx, `
		SELECT id, name, pattern_type, components, avg_fate_score,
		       avg_retention_3s, video_count, confidence_score, source_video_ids
		FROM viral_patterns
		ORDER BY confidence_score DESC, id`)
}

func (s *Store) GetByType(ctx context.Context, patternType string) ([]types.ViralPattern, error) {
	return s.query(ctx, `
		SELECT id, name, pattern_type, components, avg_fate_score,
		       avg_retention_3s, video_count, confidence_score, source_video_ids
		FROM viral_patterns
		WHERE pattern_type = ?
		ORDER BY confidence_score DESC, id`, patternType)
}

func (s *Store) GetByID(ctx context.Context, id string) (*types.ViralPattern, error) {
	patterns, err := s.query(ctx, `
		SELECT id, name, pattern_type, components, avg_fate_score,
		       avg_retention_3s, video_count, confidence_score, source_video_ids
		FROM viral_patterns
		WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("pattern %s not found", id)
	}
	return &patterns[0], nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]types.ViralPattern, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query patterns: %v", types.ErrLibraryUnavailable, err)
	}
	defer rows.Close()

	var out []types.ViralPattern
	for rows.Next() {
		var p types.ViralPattern
		var components, sources string
		if err := rows.Scan(
			&p.ID, &p.Name, &p.PatternType, &components,
			&p.AvgFateScore, &p.AvgRetention3s, &p.VideoCount, &p.ConfidenceScore,
			&sources,
		); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		if err := json.Unmarshal([]byte(components), &p.Components); err != nil {
			return nil, fmt.Errorf("unmarshal components for %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(sources), &p.SourceVideoIDs); err != nil {
			return nil, fmt.Errorf("unmarshal source ids for %s: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceMatches overwrites one video's derived matches in a single
// transaction; matches are recomputable and safely overwritable.
func (s *Store) ReplaceMatches(ctx context.Context, videoID string, matches []types.PatternMatch) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace matches: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pattern_matches WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("clear matches for %s: %w", videoID, err)
	}
	for _, m := range matches {
		components, err := json.Marshal(m.MatchedComponents)
		if err != nil {
			return fmt.Errorf("marshal matched components: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pattern_matches (video_id, pattern_id, match_confidence, matched_components)
			VALUES (?, ?, ?, ?)`,
			m.VideoID, m.PatternID, m.MatchConfidence, string(components),
		); err != nil {
			return fmt.Errorf("insert match %s/%s: %w", m.VideoID, m.PatternID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetMatches(ctx context.Context, videoID string) ([]types.PatternMatch, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT video_id, pattern_id, match_confidence, matched_components
		FROM pattern_matches
		WHERE video_id = ?
		ORDER BY match_confidence DESC, pattern_id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: query matches: %v", types.ErrLibraryUnavailable, err)
	}
	defer rows.Close()

	var out []types.PatternMatch
	for rows.Next() {
		var m types.PatternMatch
		var components string
		if err := rows.Scan(&m.VideoID, &m.PatternID, &m.MatchConfidence, &components); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if err := json.Unmarshal([]byte(components), &m.MatchedComponents); err != nil {
			return nil, fmt.Errorf("unmarshal matched components: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
