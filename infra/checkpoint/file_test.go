package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/spotflux/core/model"
)

func TestReadMissingFileMeansFirstRun(t *testing.T) {
	store := NewFileStore(Config{Path: filepath.Join(t.TempDir(), "checkpoint.json")})
	cp, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestWriteThenReadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(Config{Path: filepath.Join(dir, "checkpoint.json")})

	from := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	in := model.Checkpoint{
		LastFrom: from,
		FutureSpotPrices: []model.SpotPrice{{
			ID: "id-1", Source: "entso-e",
			From: from, Till: from.Add(time.Hour),
			MarketPrice: 0.05, MarketPriceTax: 0.0105,
			SourcingMarkupPrice: 0.0182, EnergyTaxPrice: 0.1316,
		}},
	}
	require.NoError(t, store.Write(context.Background(), in))

	out, err := store.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, out.LastFrom.Equal(from))
	require.Len(t, out.FutureSpotPrices, 1)
	assert.Equal(t, "id-1", out.FutureSpotPrices[0].ID)

	// Atomic replace leaves no temp files behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteReplacesWholesale(t *testing.T) {
	store := NewFileStore(Config{Path: filepath.Join(t.TempDir(), "checkpoint.json")})
	ctx := context.Background()

	first := model.Checkpoint{LastFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	second := model.Checkpoint{LastFrom: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Write(ctx, first))
	require.NoError(t, store.Write(ctx, second))

	out, err := store.Read(ctx)
	require.NoError(t, err)
	assert.True(t, out.LastFrom.Equal(second.LastFrom))
	assert.Empty(t, out.FutureSpotPrices)
}

func TestReadMalformedCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(Config{Path: path}).Read(context.Background())
	assert.Error(t, err)
}

func TestUsesJSONFieldNamesFromContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewFileStore(Config{Path: path})
	require.NoError(t, store.Write(context.Background(), model.Checkpoint{
		LastFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"futureSpotPrices"`)
	assert.Contains(t, string(data), `"lastFrom"`)
}
