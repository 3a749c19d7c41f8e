package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guardiao/base-security-service/internal/config"
	"github.com/guardiao/base-security-service/internal/models"
	"go.uber.org/zap"
)

// ErrNoRecords is returned when the pasted block yields no importable rows,
// usually because the header line was not copied along with the data.
var ErrNoRecords = errors.New("no records found in pasted text")

// EntryStore is the persistence surface the importer needs.
type EntryStore interface {
	CreateBatch(ctx context.Context, entries []models.AccessLogEntry) error
}

// Service converts freeform tab-delimited text into access-log entries and
// persists them in fixed-size batches.
type Service struct {
	store     EntryStore
	batchSize int
	logger    *zap.Logger
}

// New constructs the importer service.
func New(store EntryStore, cfg config.ImporterConfig, logger *zap.Logger) *Service {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Service{store: store, batchSize: batchSize, logger: logger}
}

// Result reports the outcome of an import call.
type Result struct {
	Parsed   int `json:"parsed"`
	Inserted int `json:"inserted"`
}

// Import parses the pasted block and inserts the extracted entries in
// sequential batches. A failed batch aborts the remainder; entries already
// inserted stay committed and are reported in the result.
func (s *Service) Import(ctx context.Context, text string, registeredBy string) (Result, error) {
	entries := parseRows(text, registeredBy, time.Now(), s.logger)
	if len(entries) == 0 {
		return Result{}, ErrNoRecords
	}

	result := Result{Parsed: len(entries)}
	for start := 0; start < len(entries); start += s.batchSize {
		end := start + s.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := s.store.CreateBatch(ctx, entries[start:end]); err != nil {
			s.logger.Error("import batch failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", end-start),
				zap.Error(err),
			)
			return result, fmt.Errorf("insert batch starting at row %d: %w", start, err)
		}
		result.Inserted = end
	}

	s.logger.Info("import completed",
		zap.Int("inserted", result.Inserted),
		zap.String("registered_by", registeredBy),
	)
	return result, nil
}
