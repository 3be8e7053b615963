package csvstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rainfall-etl/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(
		filepath.Join(dir, "processed", "series.csv"),
		filepath.Join(dir, "processed", "district_codes.csv"),
		slog.Default(),
	)
}

func sampleSeries() domain.CanonicalSeries {
	return domain.CanonicalSeries{
		{
			Date:     time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC),
			Year:     2019, Month: 1, Day: 2,
			Station: "Mrica", District: "Banjarnegara",
			Rainfall: 12.5, Label: 1,
		},
		{
			Date:     time.Date(2019, 1, 3, 0, 0, 0, 0, time.UTC),
			Year:     2019, Month: 1, Day: 3,
			Station: "Pos Wanadadi, Hulu", District: "Banjarnegara",
			Rainfall: 0, Label: 0,
		},
	}
}

func TestStore_SeriesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSeries(ctx, sampleSeries()))

	loaded, err := store.LoadSeries(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Mrica", loaded[0].Station)
	assert.Equal(t, 12.5, loaded[0].Rainfall)
	assert.Equal(t, 1, loaded[0].Label)
	assert.True(t, loaded[0].Date.Equal(time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)))
	// Commas inside station names survive the round trip.
	assert.Equal(t, "Pos Wanadadi, Hulu", loaded[1].Station)
}

func TestStore_HeaderContract(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteSeries(context.Background(), sampleSeries()))

	raw, err := os.ReadFile(store.seriesPath)
	require.NoError(t, err)
	first := strings.SplitN(string(raw), "\n", 2)[0]
	assert.Equal(t, "Date,Tahun,Bulan,Tanggal,Nama Pos,Kabupaten,Curah_Hujan,Label", first)
}

func TestStore_EmptySeriesWritesHeaderOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSeries(ctx, nil))
	loaded, err := store.LoadSeries(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_MalformedRowsSkipped(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.seriesPath), 0o755))
	content := "Date,Tahun,Bulan,Tanggal,Nama Pos,Kabupaten,Curah_Hujan,Label\n" +
		"2019-01-02,2019,1,2,Mrica,Banjarnegara,5,1\n" +
		"not-a-date,2019,1,3,Mrica,Banjarnegara,5,1\n" +
		"2019-01-04,2019,1,4,Mrica,Banjarnegara,wet,1\n" +
		"2019-01-05,2019,1,5,Mrica\n"
	require.NoError(t, os.WriteFile(store.seriesPath, []byte(content), 0o644))

	loaded, err := store.LoadSeries(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 2, loaded[0].Day)
}

func TestStore_LoadSeriesMissingFile(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadSeries(context.Background())
	require.Error(t, err)
}

func TestStore_DistrictCodesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	names := []string{"Banjarnegara", "Cilacap", "Semarang"}
	require.NoError(t, store.WriteDistrictCodes(ctx, names))

	loaded, err := store.LoadDistrictCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, names, loaded)

	enc := domain.NewDistrictEncoderFromNames(loaded)
	assert.Equal(t, 1, enc.Code("Cilacap"))
}
