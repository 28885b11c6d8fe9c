// Package history keeps the append-only log of prediction results for
// the session. The log lives in process memory and is mirrored to a
// BoltDB bucket when a data path is configured, so a restarted service
// picks up where it left off.
package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"concrete-predictor/internal/classify"
	"concrete-predictor/internal/mix"

	"github.com/oklog/ulid/v2"
	"go.etcd.io/bbolt"
)

const predictionsBucket = "predictions"

// Record is one prediction result. Immutable once created.
type Record struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	Input             mix.Input `json:"input"`
	StrengthKgCm2     float64   `json:"strength_kg_cm2"`
	Band              string    `json:"band"`
	BandColor         string    `json:"band_color"`
	WaterCementRatio  float64   `json:"water_cement_ratio"`
	TotalCementitious float64   `json:"total_cementitious_kg_m3"`
	Confidence        float64   `json:"confidence"`
}

// NewRecord builds a record for a completed prediction, stamping it
// with a ULID and the current time.
func NewRecord(in mix.Input, strength, confidence float64) Record {
	band := classify.Lookup(strength)
	return Record{
		ID:                ulid.Make().String(),
		Timestamp:         time.Now(),
		Input:             in,
		StrengthKgCm2:     strength,
		Band:              band.Name,
		BandColor:         band.Color,
		WaterCementRatio:  in.WaterCementRatio(),
		TotalCementitious: in.TotalCementitious(),
		Confidence:        confidence,
	}
}

// Log is an append-only sequence of prediction records with optional
// BoltDB persistence.
type Log struct {
	mu      sync.RWMutex
	records []Record
	db      *bbolt.DB
}

// New creates a history log. When dataPath is non-empty the log is
// backed by a BoltDB file there and previously stored records are
// loaded in chronological order; otherwise the log is memory-only.
func New(dataPath string) (*Log, error) {
	l := &Log{}

	if dataPath == "" {
		return l, nil
	}

	dbPath := filepath.Join(dataPath, "prediction-history.db")
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create predictions bucket: %w", err)
	}

	l.db = db
	if err := l.load(); err != nil {
		db.Close()
		return nil, err
	}

	return l, nil
}

// Close releases the backing database, if any.
func (l *Log) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// load replays persisted records into memory. Keys are zero-padded
// nanosecond timestamps, so cursor order is chronological order.
func (l *Log) load() error {
	return l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil // skip malformed records
			}
			l.records = append(l.records, rec)
			return nil
		})
	})
}

// Append adds a record to the log and persists it when a database is
// attached.
func (l *Log) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db != nil {
		err := l.db.Update(func(tx *bbolt.Tx) error {
			b := tx.Bucket([]byte(predictionsBucket))

			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal record: %w", err)
			}

			key := fmt.Sprintf("%020d_%s", rec.Timestamp.UnixNano(), rec.ID)
			return b.Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	l.records = append(l.records, rec)
	return nil
}

// Records returns a copy of all records in chronological order.
func (l *Log) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Clear removes all records from memory and from the backing bucket.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db != nil {
		err := l.db.Update(func(tx *bbolt.Tx) error {
			if err := tx.DeleteBucket([]byte(predictionsBucket)); err != nil {
				return err
			}
			_, err := tx.CreateBucket([]byte(predictionsBucket))
			return err
		})
		if err != nil {
			return fmt.Errorf("clear predictions bucket: %w", err)
		}
	}

	l.records = nil
	return nil
}
