// Package store persists analysis documents in sqlite. Records are stored as
// JSON documents keyed by id; sqlite provides durability and ordering, not a
// relational schema, so record shapes can evolve without migrations.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/pharma-forecast/internal/research"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS therapy_analyses (
	id         TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS patient_flow_funnels (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL,
	doc         TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_funnels_analysis ON patient_flow_funnels(analysis_id);
CREATE TABLE IF NOT EXISTS status_checks (
	id         TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

type Store struct {
	db *sqlx.DB
}

func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InsertAnalysis(a *research.TherapyAreaAnalysis) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO therapy_analyses (id, doc, created_at) VALUES (?, ?, ?)`,
		a.ID, string(doc), a.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// UpdateAnalysis replaces the stored document wholesale. Concurrent writers
// race with last-write-wins semantics.
func (s *Store) UpdateAnalysis(a *research.TherapyAreaAnalysis) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	res, err := s.db.Exec(`UPDATE therapy_analyses SET doc = ? WHERE id = ?`, string(doc), a.ID)
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetAnalysis(id string) (*research.TherapyAreaAnalysis, error) {
	var doc string
	err := s.db.Get(&doc, `SELECT doc FROM therapy_analyses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	var a research.TherapyAreaAnalysis
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &a, nil
}

func (s *Store) ListAnalyses(limit int) ([]*research.TherapyAreaAnalysis, error) {
	if limit <= 0 {
		limit = 50
	}
	var docs []string
	err := s.db.Select(&docs, `SELECT doc FROM therapy_analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	out := make([]*research.TherapyAreaAnalysis, 0, len(docs))
	for _, doc := range docs {
		var a research.TherapyAreaAnalysis
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
		out = append(out, &a)
	}
	return out, nil
}

func (s *Store) InsertFunnel(f *research.PatientFlowFunnel) error {
	doc, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal funnel: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO patient_flow_funnels (id, analysis_id, doc, created_at) VALUES (?, ?, ?, ?)`,
		f.ID, f.AnalysisID, string(doc), f.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert funnel: %w", err)
	}
	return nil
}

// GetFunnelByAnalysis returns the most recent funnel generated for an
// analysis.
func (s *Store) GetFunnelByAnalysis(analysisID string) (*research.PatientFlowFunnel, error) {
	var doc string
	err := s.db.Get(&doc,
		`SELECT doc FROM patient_flow_funnels WHERE analysis_id = ? ORDER BY created_at DESC LIMIT 1`,
		analysisID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get funnel: %w", err)
	}
	var f research.PatientFlowFunnel
	if err := json.Unmarshal([]byte(doc), &f); err != nil {
		return nil, fmt.Errorf("decode funnel %s: %w", analysisID, err)
	}
	return &f, nil
}

func (s *Store) InsertStatusCheck(c research.StatusCheck) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal status check: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO status_checks (id, doc, created_at) VALUES (?, ?, ?)`,
		c.ID, string(doc), c.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	return nil
}

func (s *Store) ListStatusChecks() ([]research.StatusCheck, error) {
	var docs []string
	err := s.db.Select(&docs, `SELECT doc FROM status_checks ORDER BY created_at ASC LIMIT 1000`)
	if err != nil {
		return nil, fmt.Errorf("list status checks: %w", err)
	}
	out := make([]research.StatusCheck, 0, len(docs))
	for _, doc := range docs {
		var c research.StatusCheck
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("decode status check: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}
