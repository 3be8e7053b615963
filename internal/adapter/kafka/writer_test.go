package kafka

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rainfall-etl/internal/config"
	"github.com/couchcryptid/rainfall-etl/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSerializeToMessage(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:   []string{"localhost:9092"},
		KafkaSinkTopic: "canonical-rainfall-rows",
	}
	w := NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = w.Close() })

	processed := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	row := domain.Observation{
		Date:        time.Date(2019, time.January, 3, 0, 0, 0, 0, time.UTC),
		Year:        2019,
		Month:       1,
		Day:         3,
		Station:     "Mrica",
		District:    "Banjarnegara",
		Rainfall:    12.5,
		Label:       1,
		ProcessedAt: processed,
	}

	msg, err := w.serializeToMessage(row)
	require.NoError(t, err)

	assert.Equal(t, []byte("Mrica"), msg.Key)
	assert.Contains(t, string(msg.Value), `"nama_pos":"Mrica"`)
	assert.Contains(t, string(msg.Value), `"curah_hujan":12.5`)
	assert.Contains(t, string(msg.Value), `"label":1`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, w.runID, string(msg.Headers[0].Value))
	assert.Equal(t, "date", msg.Headers[1].Key)
	assert.Equal(t, []byte("2019-01-03"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(processed.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestWritersGetDistinctRunIDs(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:   []string{"localhost:9092"},
		KafkaSinkTopic: "canonical-rainfall-rows",
	}
	a := NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = a.Close() })
	b := NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = b.Close() })

	assert.NotEmpty(t, a.runID)
	assert.NotEqual(t, a.runID, b.runID)
}
