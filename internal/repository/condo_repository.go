package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"condocheck/internal/model"
)

// CondoRepository handles CRUD for condominiums and their documents.
type CondoRepository struct {
	db *gorm.DB
}

func NewCondoRepository(db *gorm.DB) *CondoRepository {
	return &CondoRepository{db: db}
}

func (r *CondoRepository) Save(ctx context.Context, condo *model.Condo) error {
	if err := r.db.WithContext(ctx).Save(condo).Error; err != nil {
		return fmt.Errorf("save condo: %w", err)
	}
	return nil
}

func (r *CondoRepository) FindByID(ctx context.Context, id uint) (*model.Condo, error) {
	var condo model.Condo
	if err := r.db.WithContext(ctx).First(&condo, id).Error; err != nil {
		return nil, err
	}
	return &condo, nil
}

func (r *CondoRepository) ListAll(ctx context.Context) ([]model.Condo, error) {
	var condos []model.Condo
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&condos).Error; err != nil {
		return nil, err
	}
	return condos, nil
}

func (r *CondoRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Condo{}, id).Error; err != nil {
		return fmt.Errorf("delete condo: %w", err)
	}
	return nil
}

func (r *CondoRepository) SaveDocument(ctx context.Context, doc *model.Document) error {
	if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (r *CondoRepository) ListDocuments(ctx context.Context, condoID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.WithContext(ctx).Where("condo_id = ?", condoID).Order("upload_date DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *CondoRepository) DeleteDocument(ctx context.Context, condoID, id uint) error {
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND id = ?", condoID, id).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
