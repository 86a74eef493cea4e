// Package store persists categorized offer runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/tayloree/foodcat/internal/categorize"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrEmptyBatch is returned when SaveRun is called without offers.
var ErrEmptyBatch = errors.New("no offers to save")

// Store wraps the run database.
type Store struct {
	db *sql.DB
}

// Run is one persisted categorization batch.
type Run struct {
	ID         int64     `json:"id"`
	Source     string    `json:"source"`
	OfferCount int       `json:"offerCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SaveOptions controls batching. Zero values fall back to 50 rows and no delay.
type SaveOptions struct {
	Source     string
	BatchSize  int
	BatchDelay time.Duration
}

// ListOptions selects stored offers. RunID 0 means the latest run.
type ListOptions struct {
	RunID    int64
	Category string
	Limit    int
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite has a single writer, and every :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// gooseLogger routes migration output to debug logs.
type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) { log.Fatalf(format, v...) }
func (gooseLogger) Printf(format string, v ...any) {
	log.Debugf(strings.TrimSpace(format), v...)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a run and inserts its offers in batches, one transaction
// per batch, pausing BatchDelay between batches.
func (s *Store) SaveRun(ctx context.Context, offers []categorize.CategorizedOffer, opts SaveOptions) (Run, error) {
	if len(offers) == 0 {
		return Run{}, ErrEmptyBatch
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO runs (source, offer_count) VALUES (?, ?)`, opts.Source, len(offers))
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}

	if err := s.insertBatches(ctx, runID, offers, opts); err != nil {
		s.discardRun(ctx, runID)
		return Run{}, err
	}

	run, err := s.getRun(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	return *run, nil
}

func (s *Store) insertBatches(ctx context.Context, runID int64, offers []categorize.CategorizedOffer, opts SaveOptions) error {
	batches := (len(offers) + opts.BatchSize - 1) / opts.BatchSize
	for b := 0; b < batches; b++ {
		start := b * opts.BatchSize
		end := min(start+opts.BatchSize, len(offers))
		if err := s.insertBatch(ctx, runID, start, offers[start:end]); err != nil {
			return fmt.Errorf("batch %d/%d: %w", b+1, batches, err)
		}
		log.WithFields(log.Fields{"run": runID, "batch": b + 1, "batches": batches, "rows": end - start}).Debug("saved batch")

		if b < batches-1 && opts.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.BatchDelay):
			}
		}
	}
	return nil
}

// discardRun removes a partially saved run so readers never see it. It
// runs even when ctx is already cancelled.
func (s *Store) discardRun(ctx context.Context, runID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.WithError(err).WithField("run", runID).Warn("discard partial run")
		return
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categorized_offers WHERE run_id = ?`, runID); err != nil {
		log.WithError(err).WithField("run", runID).Warn("discard partial run")
		return
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID); err != nil {
		log.WithError(err).WithField("run", runID).Warn("discard partial run")
		return
	}
	if err := tx.Commit(); err != nil {
		log.WithError(err).WithField("run", runID).Warn("discard partial run")
	}
}

func (s *Store) insertBatch(ctx context.Context, runID int64, offset int, offers []categorize.CategorizedOffer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO categorized_offers
		(run_id, position, name, price, currency, weight, weight_unit, store, valid_from, valid_to, category, match_accuracy, matched_items)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range offers {
		items := o.MatchedItems
		if items == nil {
			items = []categorize.MatchCandidate{}
		}
		matched, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("encode matched items: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, runID, offset+i, o.Name, o.Price, o.Currency, o.Weight, o.WeightUnit,
			o.Store, o.ValidFrom, o.ValidTo, o.PrimaryCategory(), o.MatchAccuracy, string(matched)); err != nil {
			return fmt.Errorf("insert offer %d: %w", offset+i, err)
		}
	}
	return tx.Commit()
}

const runCols = `id, source, offer_count, created_at`

func scanRun(scanner interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	if err := scanner.Scan(&r.ID, &r.Source, &r.OfferCount, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) getRun(ctx context.Context, id int64) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runCols+` FROM runs WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return r, nil
}

// GetRun returns the run with the given id, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	r, err := s.getRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// LatestRun returns the newest run, or nil when none exist.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runCols+` FROM runs ORDER BY id DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runCols + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func (s *Store) resolveRun(ctx context.Context, runID int64) (int64, error) {
	if runID > 0 {
		return runID, nil
	}
	latest, err := s.LatestRun(ctx)
	if err != nil || latest == nil {
		return 0, err
	}
	return latest.ID, nil
}

// ListOffers returns stored offers in their original order. An empty store
// yields an empty slice.
func (s *Store) ListOffers(ctx context.Context, opts ListOptions) ([]categorize.CategorizedOffer, error) {
	runID, err := s.resolveRun(ctx, opts.RunID)
	if err != nil {
		return nil, err
	}
	offers := []categorize.CategorizedOffer{}
	if runID == 0 {
		return offers, nil
	}

	query := `SELECT name, price, currency, weight, weight_unit, store, valid_from, valid_to, category, match_accuracy, matched_items
		FROM categorized_offers WHERE run_id = ?`
	args := []any{runID}
	if opts.Category != "" {
		query += ` AND category = ?`
		args = append(args, opts.Category)
	}
	query += ` ORDER BY position ASC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			o        categorize.CategorizedOffer
			category string
			matched  string
		)
		if err := rows.Scan(&o.Name, &o.Price, &o.Currency, &o.Weight, &o.WeightUnit, &o.Store,
			&o.ValidFrom, &o.ValidTo, &category, &o.MatchAccuracy, &matched); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		o.Categories = []string{category}
		if err := json.Unmarshal([]byte(matched), &o.MatchedItems); err != nil {
			return nil, fmt.Errorf("decode matched items: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
