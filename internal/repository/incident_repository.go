package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"condocheck/internal/model"
)

// IncidentRepository handles CRUD for the occurrence log.
type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) Save(ctx context.Context, incident *model.Incident) error {
	if err := r.db.WithContext(ctx).Save(incident).Error; err != nil {
		return fmt.Errorf("save incident: %w", err)
	}
	return nil
}

func (r *IncidentRepository) FindByID(ctx context.Context, condoID, id uint) (*model.Incident, error) {
	var incident model.Incident
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND id = ?", condoID, id).First(&incident).Error; err != nil {
		return nil, err
	}
	return &incident, nil
}

// ListByCondo returns the incidents of a condominium, newest first.
func (r *IncidentRepository) ListByCondo(ctx context.Context, condoID uint) ([]model.Incident, error) {
	var incidents []model.Incident
	if err := r.db.WithContext(ctx).Where("condo_id = ?", condoID).Order("timestamp DESC, id DESC").Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *IncidentRepository) Delete(ctx context.Context, condoID, id uint) error {
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND id = ?", condoID, id).Delete(&model.Incident{}).Error; err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	return nil
}
