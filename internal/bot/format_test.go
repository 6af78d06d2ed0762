package bot

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
	"condocheck/internal/schedule"
	"condocheck/internal/service"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func schedulePhotos(refs ...string) schedule.Completion {
	return schedule.Completion{Photos: refs}
}

func TestParseDates(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 30, 0, 0, brt)
	dates, err := parseDates("hoje, 14/03/2025,2025-03-20", now)
	if err != nil {
		t.Fatalf("parseDates: %v", err)
	}
	want := []time.Time{
		now,
		time.Date(2025, 3, 14, 9, 30, 0, 0, brt),
		time.Date(2025, 3, 20, 9, 30, 0, 0, brt),
	}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v", dates)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
	}
	if _, err := parseDates("amanhã", now); err == nil {
		t.Error("expected error for unknown date")
	}
	if _, err := parseDates(" , ", now); err == nil {
		t.Error("expected error for empty list")
	}
}

func TestParseLeadingID(t *testing.T) {
	tests := map[string]uint{"3 · João": 3, "12": 12, "#7": 7}
	for in, want := range tests {
		got, err := parseLeadingID(in)
		if err != nil || got != want {
			t.Errorf("parseLeadingID(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := parseLeadingID("João"); err == nil {
		t.Error("expected error without id")
	}
}

func TestShortTitle(t *testing.T) {
	if got := shortTitle("limpar piscina", 40); got != "Limpar piscina" {
		t.Errorf("shortTitle = %q", got)
	}
	got := shortTitle("Verificar bombas da cisterna e do reservatório superior", 20)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) > 20 {
		t.Errorf("shortTitle = %q", got)
	}
}

func TestSplitMessage(t *testing.T) {
	text := strings.Repeat("linha de relatório\n", 30)
	chunks := splitMessage(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	var total int
	for _, c := range chunks {
		if n := len([]rune(c)); n > 100 {
			t.Errorf("chunk too long: %d", n)
		}
		total += strings.Count(c, "linha de relatório")
	}
	if total != 30 {
		t.Errorf("lost lines: %d", total)
	}
}

func TestTaskButtons(t *testing.T) {
	janitor := model.Actor{ID: 3, Role: model.RoleZelador}
	manager := model.Actor{ID: 1, Role: model.RoleGestor}

	pending := model.Task{ID: 5, Title: "x", Status: model.StatusPending, AssignedTo: 3}
	if row := taskButtons(pending, janitor); len(row) != 1 || *row[0].CallbackData != "start:5" {
		t.Errorf("pending buttons = %+v", row)
	}
	inProgress := model.Task{ID: 6, Title: "x", Status: model.StatusInProgress, AssignedTo: 3}
	if row := taskButtons(inProgress, janitor); len(row) != 1 || *row[0].CallbackData != "done:6" {
		t.Errorf("in-progress buttons = %+v", row)
	}
	if row := taskButtons(inProgress, manager); len(row) != 0 {
		t.Errorf("manager should not act on someone else's task: %+v", row)
	}
	completed := model.Task{ID: 7, Title: "x", Status: model.StatusCompleted, AssignedTo: 3}
	if row := taskButtons(completed, manager); len(row) != 1 || *row[0].CallbackData != "reopen:7" {
		t.Errorf("completed buttons = %+v", row)
	}
}

func TestErrorText(t *testing.T) {
	if got := errorText(access.Require(model.RoleLimpeza, access.ManageTasks)); !strings.Contains(got, "permissão") {
		t.Errorf("forbidden text = %q", got)
	}
	if got := errorText(schedule.ErrEvidenceRequired); !strings.Contains(got, "foto") {
		t.Errorf("evidence text = %q", got)
	}
	if got := errorText(service.ErrReportUnavailable); !strings.Contains(got, "relatório") {
		t.Errorf("report text = %q", got)
	}
}
