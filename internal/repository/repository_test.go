package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"condocheck/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestTaskPhotosRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))

	obs := "ok"
	task := model.Task{
		CondoID:               1,
		Title:                 "Limpar piscina",
		Status:                model.StatusPending,
		Frequency:             model.FrequencyOnce,
		ScheduledFor:          time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
		Photos:                model.Refs{"a.jpg", "b.jpg"},
		CompletionObservation: &obs,
	}
	if err := repo.Create(ctx, &task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	empty := model.Task{CondoID: 1, Title: "Sem fotos", ScheduledFor: task.ScheduledFor}
	if err := repo.Create(ctx, &empty); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByID(ctx, 1, task.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Photos) != 2 || got.Photos[0] != "a.jpg" || got.Photos[1] != "b.jpg" {
		t.Errorf("photos = %v", got.Photos)
	}
	if got.CompletionObservation == nil || *got.CompletionObservation != "ok" {
		t.Errorf("observation = %v", got.CompletionObservation)
	}

	got, err = repo.FindByID(ctx, 1, empty.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Photos) != 0 {
		t.Errorf("photos = %v, want none", got.Photos)
	}
	if got.Status != model.StatusPending || got.Frequency != model.FrequencyDaily {
		t.Errorf("defaults = %s/%s", got.Status, got.Frequency)
	}
}

func TestTaskScopedByCondo(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))

	task := model.Task{CondoID: 1, Title: "Portão", ScheduledFor: time.Now()}
	if err := repo.Create(ctx, &task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.FindByID(ctx, 2, task.ID); !IsNotFound(err) {
		t.Errorf("FindByID in other condo: %v", err)
	}
	if err := repo.Delete(ctx, 2, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, 1, task.ID); err != nil {
		t.Errorf("task deleted through another condo: %v", err)
	}
}

func TestListOpenOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))
	base := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)

	for i, spec := range []struct {
		title  string
		offset time.Duration
		status model.TaskStatus
	}{
		{"tarde", 6 * time.Hour, model.StatusPending},
		{"manhã", 0, model.StatusInProgress},
		{"feita", time.Hour, model.StatusCompleted},
	} {
		task := model.Task{CondoID: 1, Title: spec.title, Status: spec.status, ScheduledFor: base.Add(spec.offset)}
		if err := repo.Create(ctx, &task); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	open, err := repo.ListOpen(ctx, 1)
	if err != nil {
		t.Fatalf("ListOpen: %v", err)
	}
	if len(open) != 2 || open[0].Title != "manhã" || open[1].Title != "tarde" {
		t.Errorf("open = %+v", open)
	}
}

func TestLogAppendPrunes(t *testing.T) {
	ctx := context.Background()
	repo := NewLogRepository(openTestDB(t))

	for i := 0; i < 7; i++ {
		if err := repo.Append(ctx, &model.ActivityLog{CondoID: 1, Action: model.ActionCreate, TargetName: string(rune('a' + i))}, 5); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := repo.Append(ctx, &model.ActivityLog{CondoID: 2, Action: model.ActionCreate}, 5); err != nil {
		t.Fatalf("Append: %v", err)
	}

	logs, err := repo.List(ctx, 1, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(logs) != 5 {
		t.Fatalf("kept %d entries, want 5", len(logs))
	}
	if logs[0].TargetName != "g" || logs[4].TargetName != "c" {
		t.Errorf("kept %q..%q, want g..c", logs[0].TargetName, logs[4].TargetName)
	}
	other, err := repo.List(ctx, 2, 0)
	if err != nil || len(other) != 1 {
		t.Errorf("other condo = %d entries, %v", len(other), err)
	}
}

func TestBudgetSaveReplacesItems(t *testing.T) {
	ctx := context.Background()
	repo := NewBudgetRepository(openTestDB(t))

	budget := model.Budget{
		CondoID: 1,
		Title:   "Bomba da piscina",
		Status:  model.BudgetPending,
		Items: []model.BudgetItem{
			{Description: "Bomba", Quantity: 1, UnitPrice: 900},
			{Description: "Instalação", Quantity: 2, UnitPrice: 150},
		},
	}
	if err := repo.Save(ctx, &budget); err != nil {
		t.Fatalf("Save: %v", err)
	}
	budget.Items = []model.BudgetItem{{Description: "Bomba nova", Quantity: 1, UnitPrice: 1100}}
	if err := repo.Save(ctx, &budget); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := repo.FindByID(ctx, 1, budget.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Description != "Bomba nova" {
		t.Errorf("items = %+v", got.Items)
	}
	if got.ItemsTotal() != 1100 {
		t.Errorf("total = %v", got.ItemsTotal())
	}

	if err := repo.UpdateStatus(ctx, 1, budget.ID, model.BudgetApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := repo.UpdateStatus(ctx, 2, budget.ID, model.BudgetApproved); !IsNotFound(err) {
		t.Errorf("UpdateStatus in other condo: %v", err)
	}
	n, err := repo.CountByStatus(ctx, 1, model.BudgetPending)
	if err != nil || n != 0 {
		t.Errorf("pending = %d, %v", n, err)
	}
}

func TestLinkTelegramMovesChat(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	first := model.User{Name: "Mariana", Role: model.RoleGestor, Active: true}
	second := model.User{Name: "João", Role: model.RoleZelador, Active: true}
	for _, u := range []*model.User{&first, &second} {
		if err := repo.Save(ctx, u); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	if err := repo.LinkTelegram(ctx, first.ID, 42); err != nil {
		t.Fatalf("LinkTelegram: %v", err)
	}
	if err := repo.LinkTelegram(ctx, second.ID, 42); err != nil {
		t.Fatalf("LinkTelegram: %v", err)
	}

	owner, err := repo.FindByTelegramID(ctx, 42)
	if err != nil {
		t.Fatalf("FindByTelegramID: %v", err)
	}
	if owner.ID != second.ID {
		t.Errorf("chat owner = %d, want %d", owner.ID, second.ID)
	}
	linked, err := repo.ListLinked(ctx)
	if err != nil {
		t.Fatalf("ListLinked: %v", err)
	}
	if len(linked) != 1 || linked[0].ID != second.ID {
		t.Errorf("linked = %+v", linked)
	}
}

func TestMessagesVisibility(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(openTestDB(t))
	recipient := uint(2)

	for _, m := range []model.Message{
		{CondoID: 1, SenderID: 1, Text: "geral", Broadcast: true},
		{CondoID: 1, SenderID: 1, RecipientID: &recipient, Text: "para João"},
		{CondoID: 1, SenderID: 1, RecipientID: ptr(uint(3)), Text: "para Marcos"},
		{CondoID: 2, SenderID: 9, Text: "outro condomínio", Broadcast: true},
	} {
		if err := repo.Create(ctx, &m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListVisible(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListVisible: %v", err)
	}
	if len(got) != 2 || got[0].Text != "geral" || got[1].Text != "para João" {
		t.Errorf("visible to 2 = %+v", got)
	}
	got, err = repo.ListVisible(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ListVisible: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("visible to sender = %d, want 3", len(got))
	}
}

func TestCategoryGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(openTestDB(t))

	a, err := repo.GetOrCreate(ctx, 1, "Piscina")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	b, err := repo.GetOrCreate(ctx, 1, "Piscina")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if a.ID != b.ID {
		t.Errorf("duplicate category: %d != %d", a.ID, b.ID)
	}
	if _, err := repo.GetOrCreate(ctx, 2, "Piscina"); err != nil {
		t.Fatalf("GetOrCreate other condo: %v", err)
	}
	cats, err := repo.ListByCondo(ctx, 1)
	if err != nil || len(cats) != 1 {
		t.Errorf("categories = %+v, %v", cats, err)
	}
}

func ptr[T any](v T) *T { return &v }
