package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guardiao/base-security-service/internal/models"
	"gorm.io/gorm"
)

// OccurrenceRepository persists occurrences and their timelines.
type OccurrenceRepository struct {
	db *gorm.DB
}

// OccurrenceFilter narrows List results.
type OccurrenceFilter struct {
	Status  string
	Urgency string
	Sector  string
	Creator string
	From    time.Time
	To      time.Time
	Search  string
	Limit   int
	Offset  int
}

// Create inserts an occurrence together with its first timeline event.
func (r *OccurrenceRepository) Create(ctx context.Context, occ *models.Occurrence, first *models.TimelineEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Timeline").Create(occ).Error; err != nil {
			return fmt.Errorf("create occurrence: %w", err)
		}
		first.OccurrenceID = occ.ID
		if err := tx.Create(first).Error; err != nil {
			return fmt.Errorf("create initial timeline event: %w", err)
		}
		return nil
	})
}

// Get loads an occurrence with its timeline ordered oldest first.
func (r *OccurrenceRepository) Get(ctx context.Context, id uuid.UUID) (*models.Occurrence, error) {
	var occ models.Occurrence
	err := r.db.WithContext(ctx).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		First(&occ, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &occ, nil
}

// List retrieves occurrences matching the filter, newest first.
func (r *OccurrenceRepository) List(ctx context.Context, filter OccurrenceFilter) ([]models.Occurrence, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Occurrence{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Urgency != "" {
		query = query.Where("urgency = ?", filter.Urgency)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.Creator != "" {
		query = query.Where("creator = ?", filter.Creator)
	}
	if !filter.From.IsZero() {
		query = query.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("date <= ?", filter.To)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(location) LIKE LOWER(?)",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count occurrences: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var occurrences []models.Occurrence
	if err := query.Order("date DESC").Find(&occurrences).Error; err != nil {
		return nil, 0, fmt.Errorf("list occurrences: %w", err)
	}
	return occurrences, total, nil
}

// ApplyTransition appends a timeline event and updates the cached status in
// one transaction. The event is the authoritative record; status is the
// projection.
func (r *OccurrenceRepository) ApplyTransition(ctx context.Context, id uuid.UUID, event *models.TimelineEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event.OccurrenceID = id
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("append timeline event: %w", err)
		}
		result := tx.Model(&models.Occurrence{}).
			Where("id = ?", id).
			Update("status", event.Status)
		if result.Error != nil {
			return fmt.Errorf("update occurrence status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AppendEvent adds a timeline event without touching the cached status
// (a comment/note on the current stage).
func (r *OccurrenceRepository) AppendEvent(ctx context.Context, id uuid.UUID, event *models.TimelineEvent) error {
	event.OccurrenceID = id
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("append timeline event: %w", err)
	}
	return nil
}

// UpdateFields mutates editable occurrence fields directly. Field edits are
// deliberately not reflected in the timeline.
func (r *OccurrenceRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Occurrence{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update occurrence fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBy aggregates occurrence counts grouped by status or urgency.
func (r *OccurrenceRepository) CountBy(ctx context.Context, column string, from, to time.Time) ([]CountRow, error) {
	switch column {
	case "status", "urgency", "category", "type":
	default:
		return nil, fmt.Errorf("unsupported aggregate column %q", column)
	}

	query := r.db.WithContext(ctx).Model(&models.Occurrence{})
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}

	var rows []CountRow
	err := query.
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate occurrences: %w", err)
	}
	return rows, nil
}
