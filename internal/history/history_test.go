package history

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"concrete-predictor/internal/mix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(strength float64) Record {
	return NewRecord(mix.Default(), strength, 0.88)
}

func TestNewRecord(t *testing.T) {
	in := mix.Input{
		Cement: 300, Water: 180, Superplasticizer: 5,
		CoarseAggregate: 1000, FineAggregate: 750, AgeDays: 28,
	}

	rec := NewRecord(in, 305.5, 0.88)

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
	assert.Equal(t, 305.5, rec.StrengthKgCm2)
	assert.Equal(t, "High Strength", rec.Band)
	assert.Equal(t, "#22c55e", rec.BandColor)
	assert.InDelta(t, 0.6, rec.WaterCementRatio, 1e-9)
	assert.Equal(t, 300.0, rec.TotalCementitious)
	assert.Equal(t, 0.88, rec.Confidence)
}

func TestLog_MemoryOnly(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 0, l.Len())

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(sampleRecord(200+float64(i))))
	}

	assert.Equal(t, 5, l.Len())

	records := l.Records()
	require.Len(t, records, 5)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Timestamp.Before(records[i-1].Timestamp),
			"records out of chronological order")
	}
}

func TestLog_AppendOnly(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)
	defer l.Close()

	n := 20
	for i := 0; i < n; i++ {
		require.NoError(t, l.Append(sampleRecord(250)))
	}
	assert.Equal(t, n, l.Len())

	// Mutating the returned slice must not affect the log.
	records := l.Records()
	records[0].StrengthKgCm2 = -1
	assert.Equal(t, 250.0, l.Records()[0].StrengthKgCm2)
}

func TestLog_Persistence(t *testing.T) {
	dir := t.TempDir()

	l, err := New(dir)
	require.NoError(t, err)

	first := sampleRecord(199)
	second := sampleRecord(333)
	require.NoError(t, l.Append(first))
	require.NoError(t, l.Append(second))
	require.NoError(t, l.Close())

	// Reopen and verify records survive in order.
	reopened, err := New(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records := reopened.Records()
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)
	assert.Equal(t, 333.0, records[1].StrengthKgCm2)
}

func TestLog_InvalidDataPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "does", "not", "exist"))
	assert.Error(t, err)
}

func TestLog_Clear(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, l.Append(sampleRecord(280)))
	require.NoError(t, l.Clear())
	assert.Equal(t, 0, l.Len())
	require.NoError(t, l.Close())

	// Clear must also empty the backing bucket.
	reopened, err := New(dir)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 0, reopened.Len())
}

func TestLog_ExportCSV(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)
	defer l.Close()

	n := 3
	for i := 0; i < n; i++ {
		require.NoError(t, l.Append(sampleRecord(210+float64(i*100))))
	}

	var buf bytes.Buffer
	require.NoError(t, l.ExportCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, n+1, "header plus one row per record")

	assert.Equal(t, csvHeader, rows[0])

	// Rows come out in log order with no loss.
	records := l.Records()
	for i, rec := range records {
		row := rows[i+1]
		assert.Equal(t, rec.Timestamp.Format(time.RFC3339), row[0])
		assert.Equal(t, "280", row[1]) // default cement
		assert.Equal(t, rec.Band, row[10])
	}
}

func TestLog_ExportCSV_Empty(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)
	defer l.Close()

	var buf bytes.Buffer
	require.NoError(t, l.ExportCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestLog_ExportToFile(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Append(sampleRecord(300)))

	dir := filepath.Join(t.TempDir(), "exports")
	path, err := l.ExportToFile(dir)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "prediction_history_"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "strength_kg_cm2")
}
