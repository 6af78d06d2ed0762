package service

import (
	"context"
	"strings"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

// ProcurementService manages vendors and quotations.
type ProcurementService struct {
	vendors  VendorRepository
	budgets  BudgetRepository
	activity *ActivityService
}

func NewProcurementService(vendors VendorRepository, budgets BudgetRepository, activity *ActivityService) *ProcurementService {
	return &ProcurementService{vendors: vendors, budgets: budgets, activity: activity}
}

// SaveVendor creates or updates a vendor.
func (s *ProcurementService) SaveVendor(ctx context.Context, actor model.Actor, vendor *model.Vendor, now time.Time) error {
	if err := access.Authorize(actor, access.ManageProcurement); err != nil {
		return err
	}
	vendor.Name = strings.TrimSpace(vendor.Name)
	if vendor.Name == "" {
		return invalid("vendor name is required")
	}
	action := model.ActionUpdate
	if vendor.ID == 0 {
		action = model.ActionCreate
	}
	if err := s.vendors.Save(ctx, vendor); err != nil {
		return err
	}
	s.activity.Record(ctx, actor, vendor.CondoID, action, model.ModuleVendor, vendor.Name, now)
	return nil
}

func (s *ProcurementService) Vendors(ctx context.Context, condoID uint) ([]model.Vendor, error) {
	return s.vendors.ListByCondo(ctx, condoID)
}

func (s *ProcurementService) DeleteVendor(ctx context.Context, actor model.Actor, condoID, id uint, now time.Time) error {
	if err := access.Require(actor.Role, access.ManageProcurement); err != nil {
		return err
	}
	vendor, err := s.vendors.FindByID(ctx, condoID, id)
	if err != nil {
		return lookup(err, "vendor")
	}
	if err := s.vendors.Delete(ctx, condoID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionDelete, model.ModuleVendor, vendor.Name, now)
	return nil
}

// SaveBudget creates or updates a quotation. A zero value is filled with the
// items total when items are present.
func (s *ProcurementService) SaveBudget(ctx context.Context, actor model.Actor, budget *model.Budget, now time.Time) error {
	if err := access.Require(actor.Role, access.ManageProcurement); err != nil {
		return err
	}
	budget.Title = strings.TrimSpace(budget.Title)
	if budget.Title == "" {
		return invalid("budget title is required")
	}
	if budget.Status == "" {
		budget.Status = model.BudgetPending
	}
	if budget.VendorID != nil {
		if _, err := s.vendors.FindByID(ctx, budget.CondoID, *budget.VendorID); err != nil {
			return lookup(err, "vendor")
		}
	}
	if budget.Value == 0 && len(budget.Items) > 0 {
		budget.Value = budget.ItemsTotal()
	}
	action := model.ActionUpdate
	if budget.ID == 0 {
		action = model.ActionCreate
	}
	if err := s.budgets.Save(ctx, budget); err != nil {
		return err
	}
	s.activity.Record(ctx, actor, budget.CondoID, action, model.ModuleBudget, budget.Title, now)
	return nil
}

// Decide approves or rejects a pending quotation.
func (s *ProcurementService) Decide(ctx context.Context, actor model.Actor, condoID, id uint, approve bool, now time.Time) (*model.Budget, error) {
	if err := access.Require(actor.Role, access.ManageProcurement); err != nil {
		return nil, err
	}
	status, action := model.BudgetRejected, model.ActionReject
	if approve {
		status, action = model.BudgetApproved, model.ActionApprove
	}
	if err := s.budgets.UpdateStatus(ctx, condoID, id, status); err != nil {
		return nil, lookup(err, "budget")
	}
	budget, err := s.budgets.FindByID(ctx, condoID, id)
	if err != nil {
		return nil, lookup(err, "budget")
	}
	s.activity.Record(ctx, actor, condoID, action, model.ModuleBudget, budget.Title, now)
	return budget, nil
}

func (s *ProcurementService) Budgets(ctx context.Context, condoID uint) ([]model.Budget, error) {
	return s.budgets.ListByCondo(ctx, condoID)
}

func (s *ProcurementService) DeleteBudget(ctx context.Context, actor model.Actor, condoID, id uint, now time.Time) error {
	if err := access.Require(actor.Role, access.ManageProcurement); err != nil {
		return err
	}
	budget, err := s.budgets.FindByID(ctx, condoID, id)
	if err != nil {
		return lookup(err, "budget")
	}
	if err := s.budgets.Delete(ctx, condoID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, actor, condoID, model.ActionDelete, model.ModuleBudget, budget.Title, now)
	return nil
}
