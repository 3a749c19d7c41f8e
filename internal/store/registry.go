package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/guardiao/base-security-service/internal/models"
	"gorm.io/gorm"
)

// SuggestionRepository persists suggestion-inbox entries.
type SuggestionRepository struct {
	db *gorm.DB
}

func (r *SuggestionRepository) Create(ctx context.Context, s *models.Suggestion) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create suggestion: %w", err)
	}
	return nil
}

func (r *SuggestionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Suggestion, error) {
	var s models.Suggestion
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &s, nil
}

func (r *SuggestionRepository) List(ctx context.Context, status string) ([]models.Suggestion, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var suggestions []models.Suggestion
	if err := query.Find(&suggestions).Error; err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return suggestions, nil
}

func (r *SuggestionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Suggestion{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update suggestion: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SuggestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Suggestion{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete suggestion: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ParkingRepository persists parking-space requests.
type ParkingRepository struct {
	db *gorm.DB
}

func (r *ParkingRepository) Create(ctx context.Context, p *models.ParkingRequest) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create parking request: %w", err)
	}
	return nil
}

func (r *ParkingRepository) Get(ctx context.Context, id uuid.UUID) (*models.ParkingRequest, error) {
	var p models.ParkingRequest
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

func (r *ParkingRepository) List(ctx context.Context, status string) ([]models.ParkingRequest, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var requests []models.ParkingRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list parking requests: %w", err)
	}
	return requests, nil
}

// Update mutates the allocation fields of a request.
func (r *ParkingRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.ParkingRequest{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update parking request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ParkingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ParkingRequest{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete parking request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MissionRepository persists mission orders.
type MissionRepository struct {
	db *gorm.DB
}

func (r *MissionRepository) Create(ctx context.Context, m *models.MissionOrder) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create mission order: %w", err)
	}
	return nil
}

func (r *MissionRepository) Get(ctx context.Context, id uuid.UUID) (*models.MissionOrder, error) {
	var m models.MissionOrder
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &m, nil
}

func (r *MissionRepository) List(ctx context.Context, status string) ([]models.MissionOrder, error) {
	query := r.db.WithContext(ctx).Order("start_date DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var missions []models.MissionOrder
	if err := query.Find(&missions).Error; err != nil {
		return nil, fmt.Errorf("list mission orders: %w", err)
	}
	return missions, nil
}

func (r *MissionRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.MissionOrder{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update mission order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MissionOrder{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete mission order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
