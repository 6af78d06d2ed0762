package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

// ReminderService builds the texts of push notifications.
type ReminderService struct {
	tasks *TaskService
}

func NewReminderService(tasks *TaskService) *ReminderService {
	return &ReminderService{tasks: tasks}
}

// TodayNotice tells the user how many pending tasks are scheduled for today.
// It returns an empty string when there are none.
func (s *ReminderService) TodayNotice(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.tasks.ScheduledForToday(ctx, user, now)
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "", nil
	}

	var b strings.Builder
	if len(tasks) == 1 {
		b.WriteString("🔔 <b>Você tem 1 tarefa pendente para hoje.</b>\n")
	} else {
		fmt.Fprintf(&b, "🔔 <b>Você tem %d tarefas pendentes para hoje.</b>\n", len(tasks))
	}
	for _, task := range tasks {
		fmt.Fprintf(&b, "• #%d %s", task.ID, html.EscapeString(task.Title))
		if task.Category != "" {
			fmt.Fprintf(&b, " <i>(%s)</i>", html.EscapeString(task.Category))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}

// ManagerDigest summarises the dashboard counters for managers. Staff get an
// empty string.
func (s *ReminderService) ManagerDigest(ctx context.Context, user model.User, now time.Time) (string, error) {
	if !access.IsManagement(user.Role) || user.CondoID == nil {
		return "", nil
	}
	st, err := s.tasks.Stats(ctx, user.Actor(), *user.CondoID, now)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("📋 <b>Resumo do condomínio</b>\n")
	fmt.Fprintf(&b, "🗓 %s\n\n", now.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "⏳ Pendentes: %d\n", st.Pending)
	fmt.Fprintf(&b, "🔧 Em andamento: %d\n", st.InProgress)
	fmt.Fprintf(&b, "✅ Concluídas hoje: %d\n", st.CompletedToday)
	fmt.Fprintf(&b, "💰 Orçamentos aguardando: %d", st.PendingBudgets)
	return b.String(), nil
}
