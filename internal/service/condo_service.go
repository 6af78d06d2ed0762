package service

import (
	"context"
	"strings"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

// CondoService manages condominiums, their categories, job functions and documents.
type CondoService struct {
	repo         CondoRepository
	categoryRepo CategoryRepository
	activity     *ActivityService
}

func NewCondoService(repo CondoRepository, categoryRepo CategoryRepository, activity *ActivityService) *CondoService {
	return &CondoService{repo: repo, categoryRepo: categoryRepo, activity: activity}
}

// Create registers a condominium with the default task categories.
func (s *CondoService) Create(ctx context.Context, actor model.Actor, name, address string, now time.Time) (*model.Condo, error) {
	if err := access.Authorize(actor, access.ManagePortfolio); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("condo name is required")
	}
	condo := model.Condo{Name: name, Address: strings.TrimSpace(address)}
	if err := s.repo.Save(ctx, &condo); err != nil {
		return nil, err
	}
	for _, cat := range model.DefaultCategories {
		if _, err := s.categoryRepo.GetOrCreate(ctx, condo.ID, cat); err != nil {
			return nil, err
		}
	}
	s.activity.Record(ctx, actor, condo.ID, model.ActionCreate, model.ModuleCondo, condo.Name, now)
	return &condo, nil
}

func (s *CondoService) Get(ctx context.Context, id uint) (*model.Condo, error) {
	condo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "condo")
	}
	return condo, nil
}

func (s *CondoService) List(ctx context.Context) ([]model.Condo, error) {
	return s.repo.ListAll(ctx)
}

func (s *CondoService) Delete(ctx context.Context, actor model.Actor, id uint) error {
	if err := access.Require(actor.Role, access.ManagePortfolio); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Categories lists task category names of a condominium.
func (s *CondoService) Categories(ctx context.Context, condoID uint) ([]string, error) {
	cats, err := s.categoryRepo.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *CondoService) AddCategory(ctx context.Context, actor model.Actor, condoID uint, name string) error {
	if err := access.Authorize(actor, access.ManageCategories); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("category name is required")
	}
	_, err := s.categoryRepo.GetOrCreate(ctx, condoID, name)
	return err
}

func (s *CondoService) DeleteCategory(ctx context.Context, actor model.Actor, condoID uint, name string) error {
	if err := access.Require(actor.Role, access.ManageCategories); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, condoID, name)
}

func (s *CondoService) JobFunctions(ctx context.Context, condoID uint) ([]model.JobFunction, error) {
	return s.categoryRepo.ListJobFunctions(ctx, condoID)
}

// AddDocument registers a stored file for a condominium.
func (s *CondoService) AddDocument(ctx context.Context, actor model.Actor, condoID uint, title, category, fileRef string, now time.Time) (*model.Document, error) {
	if err := access.Require(actor.Role, access.ManageCondos); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" || fileRef == "" {
		return nil, invalid("document title and file are required")
	}
	doc := model.Document{CondoID: condoID, Title: title, Category: strings.TrimSpace(category), FileRef: fileRef, UploadDate: now}
	if err := s.repo.SaveDocument(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *CondoService) Documents(ctx context.Context, condoID uint) ([]model.Document, error) {
	return s.repo.ListDocuments(ctx, condoID)
}

func (s *CondoService) DeleteDocument(ctx context.Context, actor model.Actor, condoID, id uint) error {
	if err := access.Require(actor.Role, access.ManageCondos); err != nil {
		return err
	}
	return s.repo.DeleteDocument(ctx, condoID, id)
}
