package store

import (
	"context"
	"fmt"
	"time"

	"github.com/guardiao/base-security-service/internal/models"
	"gorm.io/gorm"
)

// AccessLogRepository persists gate access-log entries. Entries are
// append-only; there is no update path.
type AccessLogRepository struct {
	db *gorm.DB
}

// AccessLogFilter narrows List results. Zero values mean "no constraint".
type AccessLogFilter struct {
	GuardGate      string
	AccessCategory string
	Characteristic string
	From           time.Time
	To             time.Time
	// Search matches name, identification or vehicle plate with a
	// case-insensitive contains, OR-combined.
	Search string
	Limit  int
	Offset int
}

// Create inserts a single entry.
func (r *AccessLogRepository) Create(ctx context.Context, entry *models.AccessLogEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create access log entry: %w", err)
	}
	return nil
}

// CreateBatch inserts a batch of entries in one statement.
func (r *AccessLogRepository) CreateBatch(ctx context.Context, entries []models.AccessLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("create access log batch: %w", err)
	}
	return nil
}

// List retrieves entries matching the filter, newest first.
func (r *AccessLogRepository) List(ctx context.Context, filter AccessLogFilter) ([]models.AccessLogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AccessLogEntry{})

	if filter.GuardGate != "" {
		query = query.Where("guard_gate = ?", filter.GuardGate)
	}
	if filter.AccessCategory != "" {
		query = query.Where("access_category = ?", filter.AccessCategory)
	}
	if filter.Characteristic != "" {
		query = query.Where("characteristic = ?", filter.Characteristic)
	}
	if !filter.From.IsZero() {
		query = query.Where("timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("timestamp <= ?", filter.To)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(identification) LIKE LOWER(?) OR LOWER(vehicle_plate) LIKE LOWER(?)",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count access log entries: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var entries []models.AccessLogEntry
	if err := query.Order("timestamp DESC").Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list access log entries: %w", err)
	}
	return entries, total, nil
}

// CountRow is a label/count pair produced by aggregate queries.
type CountRow struct {
	Label string `gorm:"column:label"`
	Count int64  `gorm:"column:count"`
}

// CountBy aggregates entry counts grouped by one of the enumerated columns.
// Only columns from a fixed set are accepted to keep the grouping injectable
// from handler query params without raw SQL exposure.
func (r *AccessLogRepository) CountBy(ctx context.Context, column string, from, to time.Time) ([]CountRow, error) {
	switch column {
	case "guard_gate", "access_category", "characteristic", "access_mode":
	default:
		return nil, fmt.Errorf("unsupported aggregate column %q", column)
	}

	query := r.db.WithContext(ctx).Model(&models.AccessLogEntry{})
	if !from.IsZero() {
		query = query.Where("timestamp >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("timestamp <= ?", to)
	}

	var rows []CountRow
	err := query.
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate access log entries: %w", err)
	}
	return rows, nil
}

// LatestByIdentification returns the most recent entry for a document number.
func (r *AccessLogRepository) LatestByIdentification(ctx context.Context, identification string) (*models.AccessLogEntry, error) {
	var entry models.AccessLogEntry
	err := r.db.WithContext(ctx).
		Where("identification = ?", identification).
		Order("timestamp DESC").
		First(&entry).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &entry, nil
}

// LatestByPlate returns the most recent entry for a vehicle plate.
func (r *AccessLogRepository) LatestByPlate(ctx context.Context, plate string) (*models.AccessLogEntry, error) {
	var entry models.AccessLogEntry
	err := r.db.WithContext(ctx).
		Where("vehicle_plate = ?", plate).
		Order("timestamp DESC").
		First(&entry).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &entry, nil
}
