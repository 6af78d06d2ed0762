package service

import (
	"context"
	"strings"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
	"condocheck/internal/schedule"
)

// IncidentInput describes a new occurrence.
type IncidentInput struct {
	Title       string
	Description string
	Photos      []string
}

// IncidentService manages the occurrence log.
type IncidentService struct {
	repo     IncidentRepository
	activity *ActivityService
}

func NewIncidentService(repo IncidentRepository, activity *ActivityService) *IncidentService {
	return &IncidentService{repo: repo, activity: activity}
}

func (s *IncidentService) Report(ctx context.Context, actor model.Actor, condoID uint, input IncidentInput, now time.Time) (*model.Incident, error) {
	if err := access.Require(actor.Role, access.AddIncident); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("incident title is required")
	}
	incident := model.Incident{
		CondoID:     condoID,
		UserID:      actor.ID,
		UserName:    actor.Name,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Timestamp:   now,
		Status:      model.IncidentOpen,
		Photos:      model.Refs(input.Photos),
	}
	if err := s.repo.Save(ctx, &incident); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionCreate, model.ModuleIncident, incident.Title, now)
	return &incident, nil
}

// Toggle flips an incident between open and resolved.
func (s *IncidentService) Toggle(ctx context.Context, actor model.Actor, condoID, id uint, now time.Time) (*model.Incident, error) {
	if err := access.Require(actor.Role, access.ResolveIncident); err != nil {
		return nil, err
	}
	incident, err := s.repo.FindByID(ctx, condoID, id)
	if err != nil {
		return nil, lookup(err, "incident")
	}
	action := model.ActionResolve
	if incident.Status == model.IncidentResolved {
		incident.Status = model.IncidentOpen
		action = model.ActionReopen
	} else {
		incident.Status = model.IncidentResolved
	}
	if err := s.repo.Save(ctx, incident); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, condoID, action, model.ModuleIncident, incident.Title, now)
	return incident, nil
}

func (s *IncidentService) Delete(ctx context.Context, actor model.Actor, condoID, id uint, now time.Time) error {
	if err := access.Require(actor.Role, access.ResolveIncident); err != nil {
		return err
	}
	incident, err := s.repo.FindByID(ctx, condoID, id)
	if err != nil {
		return lookup(err, "incident")
	}
	if err := s.repo.Delete(ctx, condoID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionDelete, model.ModuleIncident, incident.Title, now)
	return nil
}

// List returns incidents newest first. A zero from or to leaves that side open;
// otherwise both days are included completely.
func (s *IncidentService) List(ctx context.Context, condoID uint, from, to time.Time) ([]model.Incident, error) {
	incidents, err := s.repo.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, err
	}
	if from.IsZero() && to.IsZero() {
		return incidents, nil
	}
	var out []model.Incident
	for _, inc := range incidents {
		if !from.IsZero() && inc.Timestamp.Before(schedule.StartOfDay(from, from.Location())) {
			continue
		}
		if !to.IsZero() {
			_, end := dayRange(to, to)
			if inc.Timestamp.After(end) {
				continue
			}
		}
		out = append(out, inc)
	}
	return out, nil
}
