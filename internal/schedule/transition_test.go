package schedule

import (
	"errors"
	"testing"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

func openTask(status model.TaskStatus) model.Task {
	return model.Task{
		ID:           7,
		Title:        "Limpar piscina",
		Status:       status,
		Frequency:    model.FrequencyDaily,
		ScheduledFor: daysAgo(2),
		AssignedTo:   janitor.ID,
		AssigneeKind: model.AssigneeUser,
		Photos:       model.Refs{"before.jpg"},
	}
}

func TestStartWithoutPhotos(t *testing.T) {
	task := openTask(model.StatusPending)
	if err := Start(&task, janitor); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if task.Status != model.StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", task.Status)
	}
	if len(task.Photos) != 1 {
		t.Errorf("photos changed: %v", task.Photos)
	}
}

func TestStartRejectsOthers(t *testing.T) {
	task := openTask(model.StatusPending)
	if err := Start(&task, manager); !errors.Is(err, ErrNotAssignee) {
		t.Fatalf("manager start: err = %v, want ErrNotAssignee", err)
	}
	if task.Status != model.StatusPending {
		t.Errorf("status changed to %s", task.Status)
	}

	done := openTask(model.StatusInProgress)
	if err := Start(&done, janitor); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("start in-progress: err = %v, want ErrInvalidTransition", err)
	}
}

func TestCompleteRequiresEvidence(t *testing.T) {
	task := openTask(model.StatusInProgress)
	err := Complete(&task, janitor, Completion{Photos: []string{" "}, Observation: "ok"}, now)
	if !errors.Is(err, ErrEvidenceRequired) {
		t.Fatalf("err = %v, want ErrEvidenceRequired", err)
	}
	if task.Status != model.StatusInProgress || task.CompletedAt != nil || task.CompletionObservation != nil {
		t.Fatalf("task mutated on rejected completion: %+v", task)
	}
}

func TestCompleteAppendsPhotosAndStamps(t *testing.T) {
	task := openTask(model.StatusInProgress)
	commit := now.Add(15 * time.Minute)
	err := Complete(&task, janitor, Completion{Photos: []string{"after-1.jpg", "after-2.jpg"}, Observation: "  filtro trocado "}, commit)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if task.Status != model.StatusCompleted {
		t.Errorf("status = %s", task.Status)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(commit) {
		t.Errorf("completedAt = %v, want %v", task.CompletedAt, commit)
	}
	want := []string{"before.jpg", "after-1.jpg", "after-2.jpg"}
	if len(task.Photos) != len(want) {
		t.Fatalf("photos = %v, want %v", task.Photos, want)
	}
	for i := range want {
		if task.Photos[i] != want[i] {
			t.Fatalf("photos = %v, want %v", task.Photos, want)
		}
	}
	if task.CompletionObservation == nil || *task.CompletionObservation != "filtro trocado" {
		t.Errorf("observation = %v", task.CompletionObservation)
	}
}

func TestCompleteFromPendingIsInvalid(t *testing.T) {
	task := openTask(model.StatusPending)
	err := Complete(&task, janitor, Completion{Photos: []string{"x.jpg"}}, now)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestReopen(t *testing.T) {
	task := openTask(model.StatusInProgress)
	if err := Complete(&task, janitor, Completion{Photos: []string{"a.jpg"}, Observation: "feito"}, now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if err := Reopen(&task, janitor, now); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("janitor reopen: err = %v, want ErrForbidden", err)
	}

	if err := Reopen(&task, manager, now); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if task.Status != model.StatusPending {
		t.Errorf("status = %s", task.Status)
	}
	if task.CompletedAt != nil || task.CompletionObservation != nil {
		t.Errorf("completion data not cleared: %+v", task)
	}
	if !task.ScheduledFor.Equal(now) {
		t.Errorf("scheduledFor = %v, want %v", task.ScheduledFor, now)
	}
	if !Visible(task, manager, now) {
		t.Error("reopened task should be visible today")
	}

	if err := Reopen(&task, manager, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reopen pending: err = %v, want ErrInvalidTransition", err)
	}
}

func TestNext(t *testing.T) {
	cases := map[model.TaskStatus]Step{
		model.StatusPending:    StepStart,
		model.StatusInProgress: StepComplete,
		model.StatusCompleted:  StepNone,
		model.StatusCancelled:  StepNone,
	}
	for status, want := range cases {
		if got := Next(status); got != want {
			t.Errorf("Next(%s) = %v, want %v", status, got, want)
		}
	}
}
