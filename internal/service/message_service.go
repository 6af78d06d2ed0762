package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

// MessageService runs the internal board.
type MessageService struct {
	repo     MessageRepository
	userRepo UserRepository
	activity *ActivityService
}

func NewMessageService(repo MessageRepository, userRepo UserRepository, activity *ActivityService) *MessageService {
	return &MessageService{repo: repo, userRepo: userRepo, activity: activity}
}

// Post publishes a message. A nil recipient makes it a broadcast.
func (s *MessageService) Post(ctx context.Context, actor model.Actor, condoID uint, recipientID *uint, text string, now time.Time) (*model.Message, error) {
	if err := access.Require(actor.Role, access.UseMessages); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("message text is required")
	}
	msg := model.Message{
		CondoID:    condoID,
		SenderID:   actor.ID,
		SenderName: actor.Name,
		Text:       text,
		Broadcast:  recipientID == nil,
		Timestamp:  now,
	}
	if recipientID != nil {
		recipient, err := s.userRepo.FindByID(ctx, *recipientID)
		if err != nil {
			return nil, lookup(err, "recipient")
		}
		if recipient.CondoID == nil || *recipient.CondoID != condoID {
			return nil, fmt.Errorf("recipient %d is not in condo %d: %w", recipient.ID, condoID, ErrNotFound)
		}
		msg.RecipientID = &recipient.ID
		msg.RecipientName = recipient.Name
	}
	if err := s.repo.Create(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Board lists the messages user can read.
func (s *MessageService) Board(ctx context.Context, actor model.Actor, condoID uint) ([]model.Message, error) {
	if err := access.Require(actor.Role, access.UseMessages); err != nil {
		return nil, err
	}
	return s.repo.ListVisible(ctx, condoID, actor.ID)
}

// Delete removes a message. Senders may delete their own; moderators any.
func (s *MessageService) Delete(ctx context.Context, actor model.Actor, condoID, id uint, now time.Time) error {
	msg, err := s.repo.FindByID(ctx, condoID, id)
	if err != nil {
		return lookup(err, "message")
	}
	if msg.SenderID != actor.ID {
		if err := access.Require(actor.Role, access.ManageMessages); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, condoID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionDelete, model.ModuleMessage, msg.SenderName, now)
	return nil
}
