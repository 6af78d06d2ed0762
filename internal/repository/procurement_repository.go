package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"condocheck/internal/model"
)

// VendorRepository handles CRUD for vendors.
type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Save(ctx context.Context, vendor *model.Vendor) error {
	if err := r.db.WithContext(ctx).Save(vendor).Error; err != nil {
		return fmt.Errorf("save vendor: %w", err)
	}
	return nil
}

func (r *VendorRepository) FindByID(ctx context.Context, condoID, id uint) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND id = ?", condoID, id).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *VendorRepository) ListByCondo(ctx context.Context, condoID uint) ([]model.Vendor, error) {
	var vendors []model.Vendor
	if err := r.db.WithContext(ctx).Where("condo_id = ?", condoID).Order("name ASC").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *VendorRepository) Delete(ctx context.Context, condoID, id uint) error {
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND id = ?", condoID, id).Delete(&model.Vendor{}).Error; err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	return nil
}

// BudgetRepository handles quotations and their line items.
type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Save writes the budget and replaces its items.
func (r *BudgetRepository) Save(ctx context.Context, budget *model.Budget) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := budget.Items
		budget.Items = nil
		if err := tx.Save(budget).Error; err != nil {
			return fmt.Errorf("save budget: %w", err)
		}
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&model.BudgetItem{}).Error; err != nil {
			return fmt.Errorf("clear budget items: %w", err)
		}
		for i := range items {
			items[i].ID = 0
			items[i].BudgetID = budget.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("save budget items: %w", err)
			}
		}
		budget.Items = items
		return nil
	})
}

func (r *BudgetRepository) UpdateStatus(ctx context.Context, condoID, id uint, status model.BudgetStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Budget{}).Where("condo_id = ? AND id = ?", condoID, id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update budget status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BudgetRepository) FindByID(ctx context.Context, condoID, id uint) (*model.Budget, error) {
	var budget model.Budget
	if err := r.db.WithContext(ctx).Preload("Items").Where("condo_id = ? AND id = ?", condoID, id).First(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *BudgetRepository) ListByCondo(ctx context.Context, condoID uint) ([]model.Budget, error) {
	var budgets []model.Budget
	if err := r.db.WithContext(ctx).Preload("Items").Where("condo_id = ?", condoID).Order("created_at DESC, id DESC").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *BudgetRepository) CountByStatus(ctx context.Context, condoID uint, status model.BudgetStatus) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Budget{}).Where("condo_id = ? AND status = ?", condoID, status).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, condoID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", id).Delete(&model.BudgetItem{}).Error; err != nil {
			return fmt.Errorf("delete budget items: %w", err)
		}
		if err := tx.Where("condo_id = ? AND id = ?", condoID, id).Delete(&model.Budget{}).Error; err != nil {
			return fmt.Errorf("delete budget: %w", err)
		}
		return nil
	})
}
