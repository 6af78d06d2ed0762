package service

import (
	"context"
	"log"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

// LogRetention is how many activity entries are kept per condominium.
const LogRetention = 1000

// ActivityService writes and reads the audit trail.
type ActivityService struct {
	repo LogRepository
}

func NewActivityService(repo LogRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record appends an entry. Failures are logged and swallowed: the audit trail
// never blocks the operation it describes.
func (s *ActivityService) Record(ctx context.Context, actor model.Actor, condoID uint, action, module, target string, at time.Time) {
	entry := model.ActivityLog{
		CondoID:    condoID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		Action:     action,
		Module:     module,
		TargetName: target,
		Timestamp:  at,
	}
	if err := s.repo.Append(ctx, &entry, LogRetention); err != nil {
		log.Printf("activity log %s %s %q: %v", action, module, target, err)
	}
}

// List returns the newest entries of a condominium; limit <= 0 means all.
func (s *ActivityService) List(ctx context.Context, actor model.Actor, condoID uint, limit int) ([]model.ActivityLog, error) {
	if err := access.Require(actor.Role, access.ManageCondos); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, condoID, limit)
}

func (s *ActivityService) Delete(ctx context.Context, actor model.Actor, condoID, id uint) error {
	if err := access.Require(actor.Role, access.ManageCondos); err != nil {
		return err
	}
	return s.repo.Delete(ctx, condoID, id)
}
