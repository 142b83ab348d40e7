package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no pass has the requested ID.
var ErrNotFound = errors.New("pass not found")

// Pass is one recorded compile pass.
type Pass struct {
	Seq        int64 // assigned on insert
	ID         string
	Source     string // patch file path
	PatchHash  string
	Mode       string
	SampleRate int
	BPM        float64
	Seed       uint64
	OK         bool
	NodeCount  int
	EdgeCount  int
	Warnings   int
	Patch      string // canonical JSON of the patch
	Errors     []PassError
}

// PassError is one error of a failed pass.
type PassError struct {
	Code    string
	Message string
}

// RecordPass inserts p and its errors in one transaction and returns the
// assigned seq. p.ID must be set; duplicate IDs are rejected.
func (s *Store) RecordPass(ctx context.Context, p Pass) (int64, error) {
	if p.ID == "" {
		return 0, fmt.Errorf("record pass: id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record pass: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO passes
		(id, source, patch_hash, mode, sample_rate, bpm, seed, ok, node_count, edge_count, warnings, patch)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.Source,
		p.PatchHash,
		p.Mode,
		p.SampleRate,
		p.BPM,
		int64(p.Seed), // bit pattern preserved; read back as uint64
		p.OK,
		p.NodeCount,
		p.EdgeCount,
		p.Warnings,
		p.Patch,
	)
	if err != nil {
		return 0, fmt.Errorf("record pass: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record pass: last insert id: %w", err)
	}

	for i, pe := range p.Errors {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pass_errors (pass_id, idx, code, message)
			VALUES (?, ?, ?, ?)
		`, p.ID, i, pe.Code, pe.Message); err != nil {
			return 0, fmt.Errorf("record pass error %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record pass: commit: %w", err)
	}
	return seq, nil
}

const passColumns = `seq, id, source, patch_hash, mode, sample_rate, bpm, seed, ok, node_count, edge_count, warnings, patch`

// ListPasses returns the most recent passes, oldest first. A limit of 0 or
// less returns every pass. Errors are not loaded; use ReadPass for those.
func (s *Store) ListPasses(ctx context.Context, limit int) ([]Pass, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+passColumns+` FROM (
			SELECT `+passColumns+` FROM passes
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	return collectPasses(rows)
}

// PassesByHash returns every pass of the patch with the given hash, oldest first.
func (s *Store) PassesByHash(ctx context.Context, hash string) ([]Pass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+passColumns+` FROM passes
		WHERE patch_hash = ?
		ORDER BY seq ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query passes by hash: %w", err)
	}
	return collectPasses(rows)
}

// ReadPass returns the pass with the given ID, including its errors.
// Returns ErrNotFound if there is none.
func (s *Store) ReadPass(ctx context.Context, id string) (Pass, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+passColumns+` FROM passes WHERE id = ?`, id)
	p, err := scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Pass{}, fmt.Errorf("read pass %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Pass{}, fmt.Errorf("read pass %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, message FROM pass_errors
		WHERE pass_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return Pass{}, fmt.Errorf("query pass errors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pe PassError
		if err := rows.Scan(&pe.Code, &pe.Message); err != nil {
			return Pass{}, fmt.Errorf("scan pass error: %w", err)
		}
		p.Errors = append(p.Errors, pe)
	}
	if err := rows.Err(); err != nil {
		return Pass{}, fmt.Errorf("iterate pass errors: %w", err)
	}
	return p, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPass(row scanner) (Pass, error) {
	var (
		p    Pass
		seed int64
	)
	err := row.Scan(&p.Seq, &p.ID, &p.Source, &p.PatchHash, &p.Mode, &p.SampleRate, &p.BPM,
		&seed, &p.OK, &p.NodeCount, &p.EdgeCount, &p.Warnings, &p.Patch)
	if err != nil {
		return Pass{}, err
	}
	p.Seed = uint64(seed)
	return p, nil
}

func collectPasses(rows *sql.Rows) ([]Pass, error) {
	defer rows.Close()
	passes := []Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}
