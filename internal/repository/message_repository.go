package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"condocheck/internal/model"
)

// MessageRepository stores board messages.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, condoID, id uint) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND id = ?", condoID, id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListVisible returns broadcasts plus messages sent or received by userID, oldest first.
func (r *MessageRepository) ListVisible(ctx context.Context, condoID, userID uint) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("condo_id = ? AND (broadcast = ? OR sender_id = ? OR recipient_id = ?)", condoID, true, userID, userID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *MessageRepository) Delete(ctx context.Context, condoID, id uint) error {
	if err := r.db.WithContext(ctx).Where("condo_id = ? AND id = ?", condoID, id).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
