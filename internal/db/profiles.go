package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
)

// ErrProfileNotFound is returned when no run has the requested id.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRun is one stored profile. Sample values are in Units.
type ProfileRun struct {
	RunID       string                    `json:"run_id"`
	Quantity    string                    `json:"quantity"`
	Units       string                    `json:"units"`
	MaxAltitude float64                   `json:"max_altitude_m"`
	SampleCount int                       `json:"sample_count"`
	Note        string                    `json:"note,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	Samples     []atmosphere.ProfilePoint `json:"samples,omitempty"`
}

// SaveProfile stores run and its samples in one transaction. An empty
// RunID is replaced with a new UUID; CreatedAt and SampleCount are set
// from the clock and the samples.
func (db *DB) SaveProfile(ctx context.Context, run *ProfileRun) error {
	if run.Quantity == "" {
		return errors.New("save profile: quantity is required")
	}
	if len(run.Samples) == 0 {
		return errors.New("save profile: no samples")
	}
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	run.CreatedAt = db.clock.Now().UTC()
	run.SampleCount = len(run.Samples)

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profile_runs (
			run_id, quantity, units, max_altitude_m, sample_count, note, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Quantity, run.Units, run.MaxAltitude, run.SampleCount, run.Note,
		run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert profile run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO profile_samples (run_id, idx, altitude_m, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range run.Samples {
		if _, err := stmt.ExecContext(ctx, run.RunID, i, s.Altitude, s.Value); err != nil {
			return fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}
	logf("saved %s profile %s (%d samples)", run.Quantity, run.RunID, run.SampleCount)
	return nil
}

// GetProfile returns the run with id and its samples in altitude order.
func (db *DB) GetProfile(ctx context.Context, id string) (*ProfileRun, error) {
	row := db.QueryRowContext(ctx, `
		SELECT run_id, quantity, units, max_altitude_m, sample_count, note, created_at_ns
		FROM profile_runs
		WHERE run_id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT altitude_m, value FROM profile_samples
		WHERE run_id = ?
		ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	run.Samples = make([]atmosphere.ProfilePoint, 0, run.SampleCount)
	for rows.Next() {
		var p atmosphere.ProfilePoint
		if err := rows.Scan(&p.Altitude, &p.Value); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		run.Samples = append(run.Samples, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

// ListProfiles returns up to limit runs, newest first, without samples.
// A non-positive limit returns every run.
func (db *DB) ListProfiles(ctx context.Context, limit int) ([]ProfileRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, quantity, units, max_altitude_m, sample_count, note, created_at_ns
		FROM profile_runs
		ORDER BY created_at_ns DESC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	runs := []ProfileRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteProfile removes a run and its samples.
func (db *DB) DeleteProfile(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_samples WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("delete samples: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM profile_runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*ProfileRun, error) {
	var run ProfileRun
	var createdNs int64
	if err := s.Scan(&run.RunID, &run.Quantity, &run.Units, &run.MaxAltitude,
		&run.SampleCount, &run.Note, &createdNs); err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(0, createdNs).UTC()
	return &run, nil
}
