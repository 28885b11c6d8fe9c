package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// csvHeader lists the export columns: one per mix field, then the
// prediction, its band, and the timestamp.
var csvHeader = []string{
	"timestamp",
	"cement_kg_m3",
	"slag_kg_m3",
	"fly_ash_kg_m3",
	"water_kg_m3",
	"superplasticizer_kg_m3",
	"coarse_aggregate_kg_m3",
	"fine_aggregate_kg_m3",
	"age_days",
	"strength_kg_cm2",
	"band",
	"water_cement_ratio",
	"confidence",
}

// ExportCSV writes the full log as comma-separated rows, one per
// record, in chronological order.
func (l *Log) ExportCSV(w io.Writer) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range l.records {
		row := []string{
			rec.Timestamp.Format(time.RFC3339),
			formatFloat(rec.Input.Cement),
			formatFloat(rec.Input.Slag),
			formatFloat(rec.Input.FlyAsh),
			formatFloat(rec.Input.Water),
			formatFloat(rec.Input.Superplasticizer),
			formatFloat(rec.Input.CoarseAggregate),
			formatFloat(rec.Input.FineAggregate),
			formatFloat(rec.Input.AgeDays),
			formatFloat(rec.StrengthKgCm2),
			rec.Band,
			formatFloat(rec.WaterCementRatio),
			formatFloat(rec.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportToFile writes the log to a timestamped CSV file under dir and
// returns the file path.
func (l *Log) ExportToFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("prediction_history_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := l.ExportCSV(f); err != nil {
		return "", err
	}

	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
