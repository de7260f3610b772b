package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hivewatch/beedash/colony"
	"github.com/jmoiron/sqlx"
)

const defaultBatchSize = 500

// ErrNoSnapshot is returned when the database holds no imported dataset.
var ErrNoSnapshot = errors.New("no colony snapshot imported")

// Store reads and writes the colony snapshot with plain SQL.
type Store struct {
	DB        *DB
	batchSize int
}

func New(db *DB, opts ...Option) *Store {
	options := StoreOptions{BatchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(&options)
	}
	if options.BatchSize <= 0 {
		options.BatchSize = defaultBatchSize
	}
	return &Store{DB: db, batchSize: options.BatchSize}
}

func (s *Store) ensureDB() (*sqlx.DB, error) {
	if s == nil || s.DB == nil || s.DB.DB == nil {
		return nil, fmt.Errorf("nil db")
	}
	return s.DB.DB, nil
}

// Snapshot describes the most recent import.
type Snapshot struct {
	ID          int64     `db:"id" json:"id"`
	Source      string    `db:"source" json:"source"`
	Fingerprint string    `db:"fingerprint" json:"fingerprint"`
	RecordCount int       `db:"record_count" json:"record_count"`
	ImportedAt  time.Time `db:"imported_at" json:"imported_at"`
}

type colonyRow struct {
	State             string          `db:"state"`
	StateCode         string          `db:"state_code"`
	Year              int             `db:"year"`
	Quarter           int             `db:"quarter"`
	TimePeriod        string          `db:"time_period"`
	NumColonies       sql.NullFloat64 `db:"num_colonies"`
	MaxColonies       sql.NullFloat64 `db:"max_colonies"`
	LostColonies      sql.NullFloat64 `db:"lost_colonies"`
	PercentLost       sql.NullFloat64 `db:"percent_lost"`
	AddedColonies     sql.NullFloat64 `db:"added_colonies"`
	RenovatedColonies sql.NullFloat64 `db:"renovated_colonies"`
	PercentRenovated  sql.NullFloat64 `db:"percent_renovated"`
	VarroaMites       sql.NullFloat64 `db:"varroa_mites"`
	OtherPests        sql.NullFloat64 `db:"other_pests_and_parasites"`
	Diseases          sql.NullFloat64 `db:"diseases"`
	Pesticides        sql.NullFloat64 `db:"pesticides"`
	Other             sql.NullFloat64 `db:"other"`
	Unknown           sql.NullFloat64 `db:"unknown"`
}

const colonyColumns = `state, state_code, year, quarter, time_period,
	num_colonies, max_colonies, lost_colonies, percent_lost,
	added_colonies, renovated_colonies, percent_renovated,
	varroa_mites, other_pests_and_parasites, diseases, pesticides, other, unknown`

func nullable(v float64) sql.NullFloat64 {
	if colony.Missing(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func measure(v sql.NullFloat64) float64 {
	if !v.Valid {
		return colony.NA()
	}
	return v.Float64
}

func toRow(r colony.Record) colonyRow {
	return colonyRow{
		State:             r.State,
		StateCode:         r.StateCode,
		Year:              r.Year,
		Quarter:           r.Quarter,
		TimePeriod:        r.TimePeriod,
		NumColonies:       nullable(r.NumColonies),
		MaxColonies:       nullable(r.MaxColonies),
		LostColonies:      nullable(r.LostColonies),
		PercentLost:       nullable(r.PercentLost),
		AddedColonies:     nullable(r.AddedColonies),
		RenovatedColonies: nullable(r.RenovatedColonies),
		PercentRenovated:  nullable(r.PercentRenovated),
		VarroaMites:       nullable(r.Causes[0]),
		OtherPests:        nullable(r.Causes[1]),
		Diseases:          nullable(r.Causes[2]),
		Pesticides:        nullable(r.Causes[3]),
		Other:             nullable(r.Causes[4]),
		Unknown:           nullable(r.Causes[5]),
	}
}

func (row colonyRow) record() colony.Record {
	r := colony.Record{
		State:             row.State,
		StateCode:         row.StateCode,
		Year:              row.Year,
		Quarter:           row.Quarter,
		TimePeriod:        row.TimePeriod,
		NumColonies:       measure(row.NumColonies),
		MaxColonies:       measure(row.MaxColonies),
		LostColonies:      measure(row.LostColonies),
		PercentLost:       measure(row.PercentLost),
		AddedColonies:     measure(row.AddedColonies),
		RenovatedColonies: measure(row.RenovatedColonies),
		PercentRenovated:  measure(row.PercentRenovated),
	}
	r.Causes = [6]float64{
		measure(row.VarroaMites),
		measure(row.OtherPests),
		measure(row.Diseases),
		measure(row.Pesticides),
		measure(row.Other),
		measure(row.Unknown),
	}
	return r
}

// ReplaceColonies swaps the stored snapshot for ds in a single transaction.
func (s *Store) ReplaceColonies(ctx context.Context, ds *colony.Dataset) (Snapshot, error) {
	db, err := s.ensureDB()
	if err != nil {
		return Snapshot{}, err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return Snapshot{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM colonies"); err != nil {
		return Snapshot{}, fmt.Errorf("clear colonies: %w", err)
	}

	insert := `INSERT INTO colonies(` + colonyColumns + `) VALUES(
		:state, :state_code, :year, :quarter, :time_period,
		:num_colonies, :max_colonies, :lost_colonies, :percent_lost,
		:added_colonies, :renovated_colonies, :percent_renovated,
		:varroa_mites, :other_pests_and_parasites, :diseases, :pesticides, :other, :unknown)`
	stmt, err := tx.PrepareNamedContext(ctx, insert)
	if err != nil {
		return Snapshot{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	records := ds.Records()
	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		for i, r := range records[start:end] {
			if _, err := stmt.ExecContext(ctx, toRow(r)); err != nil {
				return Snapshot{}, fmt.Errorf("insert record %d (%s %d): %w", start+i, r.State, r.Year, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
	}

	snap := Snapshot{
		Source:      ds.Source(),
		Fingerprint: ds.Fingerprint(),
		RecordCount: ds.Len(),
		ImportedAt:  time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		s.DB.Rebind("INSERT INTO snapshots(source, fingerprint, record_count, imported_at) VALUES(?, ?, ?, ?)"),
		snap.Source, snap.Fingerprint, snap.RecordCount, snap.ImportedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("record snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, err
	}
	return s.LatestSnapshot(ctx)
}

// LatestSnapshot returns the most recent import, or ErrNoSnapshot.
func (s *Store) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	db, err := s.ensureDB()
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	err = db.GetContext(ctx, &snap, "SELECT id, source, fingerprint, record_count, imported_at FROM snapshots ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	return snap, err
}

// Colonies loads the stored snapshot as a dataset named after its source.
func (s *Store) Colonies(ctx context.Context) (*colony.Dataset, error) {
	db, err := s.ensureDB()
	if err != nil {
		return nil, err
	}
	snap, err := s.LatestSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	rows := []colonyRow{}
	query := "SELECT " + colonyColumns + " FROM colonies ORDER BY id"
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select colonies: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoSnapshot
	}
	records := make([]colony.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return colony.New(s.DB.Driver+":"+snap.Source, records), nil
}
