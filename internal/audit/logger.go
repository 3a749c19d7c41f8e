package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/guardiao/base-security-service/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entry represents a structured audit event.
type Entry struct {
	UserID     *uuid.UUID
	Action     string
	Resource   string
	ResourceID string
	IPAddress  string
	UserAgent  string
	Context    map[string]any
	OccurredAt time.Time
}

// Logger writes audit entries into the database.
type Logger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New constructs a Logger.
func New(db *gorm.DB, logger *zap.Logger) *Logger {
	return &Logger{db: db, logger: logger}
}

// Record persists an audit entry, logging failures but not interrupting flows.
func (l *Logger) Record(ctx context.Context, entry Entry) {
	if entry.Action == "" {
		return
	}

	row := models.AuditLog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		OccurredAt: timeOrDefault(entry.OccurredAt),
	}
	if entry.Context != nil {
		raw, err := json.Marshal(entry.Context)
		if err != nil {
			l.logger.Warn("failed to encode audit context", zap.Error(err))
		} else {
			row.Context = string(raw)
		}
	}

	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		l.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

// ListRecent retrieves most recent entries for debugging/ops.
func (l *Logger) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.AuditLog
	err := l.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func timeOrDefault(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
