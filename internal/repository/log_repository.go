package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"condocheck/internal/model"
)

// LogRepository stores the activity log.
type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Append inserts entry and drops the oldest entries of its condominium beyond keep.
func (r *LogRepository) Append(ctx context.Context, entry *model.ActivityLog, keep int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create log: %w", err)
		}
		if keep <= 0 {
			return nil
		}
		newest := tx.Model(&model.ActivityLog{}).Select("id").
			Where("condo_id = ?", entry.CondoID).
			Order("id DESC").
			Limit(keep)
		if err := tx.Where("condo_id = ? AND id NOT IN (?)", entry.CondoID, newest).
			Delete(&model.ActivityLog{}).Error; err != nil {
			return fmt.Errorf("prune logs: %w", err)
		}
		return nil
	})
}

// List returns the newest entries of a condominium.
func (r *LogRepository) List(ctx context.Context, condoID uint, limit int) ([]model.ActivityLog, error) {
	var logs []model.ActivityLog
	q := r.db.WithContext(ctx).Where("condo_id = ?", condoID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *LogRepository) Delete(ctx context.Context, condoID, id uint) error {
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND id = ?", condoID, id).Delete(&model.ActivityLog{}).Error; err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return nil
}
