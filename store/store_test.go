package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hivewatch/beedash/colony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `state,year,months,colonies_n,colonies_lost,varroa_mites,diseases
Alabama,2015,January-March,7000,1800,10,
Alabama,2015,April-June,7500,860,16.7,2.5
Arizona,2016,January-March,35000,NA,23.4,1.6
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenFromConfig("", filepath.Join(t.TempDir(), "test.db"), "sqlite")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return New(db, WithBatchSize(2))
}

func TestStore_roundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Colonies(ctx)
	require.True(t, errors.Is(err, ErrNoSnapshot), "got %v", err)

	ds, err := colony.Load(strings.NewReader(sampleCSV), "bees.csv")
	require.NoError(t, err)

	snap, err := s.ReplaceColonies(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, "bees.csv", snap.Source)
	assert.Equal(t, 3, snap.RecordCount)
	assert.Equal(t, ds.Fingerprint(), snap.Fingerprint)

	got, err := s.Colonies(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3:bees.csv", got.Source())
	assert.Equal(t, ds.Fingerprint(), got.Fingerprint())
	assert.Equal(t, ds.TimePeriods(), got.TimePeriods())

	recs := got.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "AL", recs[0].StateCode)
	assert.Equal(t, 2, recs[1].Quarter)
	assert.True(t, colony.Missing(recs[0].Cause(colony.CauseDiseases)))
	assert.True(t, colony.Missing(recs[2].LostColonies))
	assert.Equal(t, 23.4, recs[2].Cause(colony.CauseVarroaMites))
}

func TestStore_replaceOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := colony.Load(strings.NewReader(sampleCSV), "a.csv")
	require.NoError(t, err)
	_, err = s.ReplaceColonies(ctx, first)
	require.NoError(t, err)

	second := colony.New("b.csv", first.Records()[:1])
	snap, err := s.ReplaceColonies(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "b.csv", snap.Source)

	got, err := s.Colonies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func Test_resolveDSN(t *testing.T) {
	tests := []struct {
		name       string
		url, path  string
		driver     string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{"sqlite default", "", "", "", DriverSQLite, "beedash.db", false},
		{"postgres from url", "postgres://x", "", "", DriverPostgres, "postgres://x", false},
		{"explicit sqlite wins", "postgres://x", "a.db", "sqlite", DriverSQLite, "a.db", false},
		{"postgres without url", "", "", "postgres", "", "", true},
		{"unknown driver", "", "", "mysql", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, dsn, err := resolveDSN(tt.url, tt.path, tt.driver)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestMigrate_version(t *testing.T) {
	db, err := OpenFromConfig("", filepath.Join(t.TempDir(), "version.db"), "")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrations are idempotent")
	v, err := SchemaVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	assert.Error(t, Migrate(ctx, nil))
}
