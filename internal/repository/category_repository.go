package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"condocheck/internal/model"
)

// CategoryRepository manages task categories and job functions of a condominium.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetOrCreate(ctx context.Context, condoID uint, name string) (*model.Category, error) {
	if name == "" {
		return nil, nil
	}

	var category model.Category
	db := r.db.WithContext(ctx)
	err := db.Where("condo_id = ? AND name = ?", condoID, name).First(&category).Error
	switch {
	case err == nil:
		return &category, nil
	case IsNotFound(err):
		category = model.Category{CondoID: condoID, Name: name}
		if err := db.Create(&category).Error; err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return &category, nil
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

func (r *CategoryRepository) ListByCondo(ctx context.Context, condoID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("condo_id = ?", condoID).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, condoID uint, name string) error {
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND name = ?", condoID, name).
		Delete(&model.Category{}).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetOrCreateJobFunction(ctx context.Context, condoID uint, name string) (*model.JobFunction, error) {
	var fn model.JobFunction
	db := r.db.WithContext(ctx)
	err := db.Where("condo_id = ? AND name = ?", condoID, name).First(&fn).Error
	switch {
	case err == nil:
		return &fn, nil
	case IsNotFound(err):
		fn = model.JobFunction{CondoID: condoID, Name: name}
		if err := db.Create(&fn).Error; err != nil {
			return nil, fmt.Errorf("create job function: %w", err)
		}
		return &fn, nil
	default:
		return nil, fmt.Errorf("find job function: %w", err)
	}
}

func (r *CategoryRepository) ListJobFunctions(ctx context.Context, condoID uint) ([]model.JobFunction, error) {
	var fns []model.JobFunction
	if err := r.db.WithContext(ctx).Where("condo_id = ?", condoID).Order("name ASC").Find(&fns).Error; err != nil {
		return nil, err
	}
	return fns, nil
}
