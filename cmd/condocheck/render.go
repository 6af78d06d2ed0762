package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/term"

	"condocheck/internal/model"
)

const defaultWidth = 100

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	inProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	doneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	alertStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func ansiEnabled() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func paint(style lipgloss.Style, text string) string {
	if !ansiEnabled() {
		return text
	}
	return style.Render(text)
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

func statusText(status model.TaskStatus) string {
	switch status {
	case model.StatusPending:
		return paint(pendingStyle, "pendente")
	case model.StatusInProgress:
		return paint(inProgressStyle, "em andamento")
	case model.StatusCompleted:
		return paint(doneStyle, "concluída")
	case model.StatusCancelled:
		return paint(mutedStyle, "cancelada")
	default:
		return string(status)
	}
}

func frequencyText(freq model.TaskFrequency) string {
	switch freq {
	case model.FrequencyDaily:
		return "diária"
	case model.FrequencyWeekly:
		return "semanal"
	case model.FrequencyMonthly:
		return "mensal"
	default:
		return "única"
	}
}

// writeTask prints one line per task, truncating to the terminal width.
func writeTask(w io.Writer, task model.Task, loc *time.Location, width int) {
	line := fmt.Sprintf("#%d %s [%s] %s · %s · %s",
		task.ID,
		task.Title,
		frequencyText(task.Frequency),
		task.AssignedName,
		task.ScheduledFor.In(loc).Format("02/01/2006"),
		statusText(task.Status),
	)
	if task.CompletedAt != nil {
		line += " " + paint(mutedStyle, "às "+task.CompletedAt.In(loc).Format("15:04"))
	}
	fmt.Fprintln(w, truncate.StringWithTail(line, uint(width), "…"))
}

func writeIncident(w io.Writer, inc model.Incident, loc *time.Location, width int) {
	status := paint(alertStyle, "aberta")
	if inc.Status == model.IncidentResolved {
		status = paint(doneStyle, "resolvida")
	}
	line := fmt.Sprintf("#%d %s · %s · %s · %s",
		inc.ID, inc.Title, inc.UserName, inc.Timestamp.In(loc).Format("02/01/2006 15:04"), status)
	fmt.Fprintln(w, truncate.StringWithTail(line, uint(width), "…"))
	if desc := strings.TrimSpace(inc.Description); desc != "" {
		fmt.Fprintln(w, "   "+truncate.StringWithTail(desc, uint(width-3), "…"))
	}
}

func writeVendor(w io.Writer, v model.Vendor) {
	fields := []string{fmt.Sprintf("#%d %s", v.ID, v.Name)}
	for _, f := range []string{v.Category, v.TaxID, v.Phone} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	fmt.Fprintln(w, strings.Join(fields, " · "))
}

func budgetStatusText(status model.BudgetStatus) string {
	switch status {
	case model.BudgetApproved:
		return paint(doneStyle, status.Label())
	case model.BudgetRejected:
		return paint(alertStyle, status.Label())
	default:
		return paint(pendingStyle, status.Label())
	}
}

func writeBudget(w io.Writer, b model.Budget) {
	fmt.Fprintf(w, "#%d %s · %s · %s\n", b.ID, b.Title, model.FormatMoney(b.Value), budgetStatusText(b.Status))
	for _, item := range b.Items {
		fmt.Fprintf(w, "   %s %g × %s\n", item.Description, item.Quantity, model.FormatMoney(item.UnitPrice))
	}
}

func writeUser(w io.Writer, u model.User) {
	line := fmt.Sprintf("#%d %s · %s", u.ID, u.Name, u.Role.Label())
	if u.JobTitle != "" {
		line += " · " + u.JobTitle
	}
	if !u.Active {
		line += " · " + paint(mutedStyle, "inativo")
	}
	fmt.Fprintln(w, line)
}

func writeDocument(w io.Writer, d model.Document, loc *time.Location) {
	line := fmt.Sprintf("#%d %s", d.ID, d.Title)
	if d.Category != "" {
		line += " [" + d.Category + "]"
	}
	fmt.Fprintf(w, "%s · %s · %s\n", line, d.UploadDate.In(loc).Format("02/01/2006"), paint(mutedStyle, d.FileRef))
}

func writeMessage(w io.Writer, m model.Message, loc *time.Location, width int) {
	to := "todos"
	if m.RecipientName != "" {
		to = m.RecipientName
	}
	line := fmt.Sprintf("#%d %s → %s · %s: %s", m.ID, m.SenderName, to, m.Timestamp.In(loc).Format("02/01 15:04"), m.Text)
	fmt.Fprintln(w, truncate.StringWithTail(line, uint(width), "…"))
}

func writeLog(w io.Writer, l model.ActivityLog, loc *time.Location) {
	fmt.Fprintf(w, "#%d %s %s %s %s %s\n",
		l.ID, l.Timestamp.In(loc).Format("02/01/2006 15:04"), l.UserName, l.Action, l.Module, l.TargetName)
}
