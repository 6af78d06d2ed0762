package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/muesli/reflow/truncate"

	"condocheck/internal/access"
	"condocheck/internal/model"
	"condocheck/internal/schedule"
	"condocheck/internal/service"
)

const maxMessageLen = 4000

const (
	btnSkip           = "⏭️ Pular"
	btnConfirm        = "✅ Confirmar"
	btnCancel         = "↩️ Voltar"
	btnCancelDialog   = "⏪ Cancelar"
	btnFinish         = "🏁 Finalizar"
	menuLabelToday    = "📋 Hoje"
	menuLabelSchedule = "🗓 Agenda"
	menuLabelIncident = "🚨 Ocorrência"
	menuLabelHelp     = "ℹ️ Ajuda"
)

var frequencyOptions = []struct {
	label string
	freq  model.TaskFrequency
}{
	{"Diária", model.FrequencyDaily},
	{"Semanal", model.FrequencyWeekly},
	{"Mensal", model.FrequencyMonthly},
	{"Única", model.FrequencyOnce},
}

// errorText turns a service error into a message for the chat.
func errorText(err error) string {
	switch {
	case errors.Is(err, access.ErrForbidden):
		return "⛔ Você não tem permissão para esta ação."
	case errors.Is(err, service.ErrBadCredentials):
		return "🔐 Usuário ou senha inválidos."
	case errors.Is(err, service.ErrNotFound):
		return "Registro não encontrado."
	case errors.Is(err, schedule.ErrEvidenceRequired):
		return "📷 Envie pelo menos uma foto antes de finalizar."
	case errors.Is(err, schedule.ErrNotAssignee):
		return "Esta tarefa não está atribuída a você."
	case errors.Is(err, schedule.ErrInvalidTransition):
		return "Esta ação não é possível no status atual da tarefa."
	case errors.Is(err, service.ErrReportUnavailable):
		return "Não foi possível gerar o relatório agora. Tente novamente mais tarde."
	case errors.Is(err, service.ErrInvalidInput):
		return "Dados inválidos: " + escape(err.Error())
	default:
		return "Erro: " + escape(err.Error())
	}
}

func formatTask(task model.Task, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>#%d</b> %s\n", statusIcon(task.Status), task.ID, escape(normalizeTitle(task.Title)))
	meta := []string{statusLabel(task.Status), frequencyLabel(task.Frequency)}
	if task.Category != "" {
		meta = append(meta, escape(task.Category))
	}
	meta = append(meta, "👤 "+escape(task.AssignedName))
	b.WriteString("   " + strings.Join(meta, " · ") + "\n")
	if task.Frequency == model.FrequencyOnce && task.Status != model.StatusCompleted &&
		!schedule.SameDay(task.ScheduledFor, now, now.Location()) {
		fmt.Fprintf(&b, "   ⚠️ Atrasada desde %s\n", task.ScheduledFor.In(now.Location()).Format("02/01"))
	}
	if task.Description != "" {
		fmt.Fprintf(&b, "   📝 %s\n", escape(task.Description))
	}
	if task.CompletedAt != nil {
		fmt.Fprintf(&b, "   ✅ %s", task.CompletedAt.In(now.Location()).Format("15:04"))
		if task.CompletionObservation != nil {
			fmt.Fprintf(&b, " · %s", escape(*task.CompletionObservation))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

func formatIncident(inc model.Incident, loc *time.Location) string {
	icon := "🔴"
	if inc.Status == model.IncidentResolved {
		icon = "🟢"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>#%d</b> %s\n", icon, inc.ID, escape(inc.Title))
	fmt.Fprintf(&b, "   %s · %s\n", inc.Timestamp.In(loc).Format("02/01 15:04"), escape(inc.UserName))
	if inc.Description != "" {
		fmt.Fprintf(&b, "   📝 %s\n", escape(inc.Description))
	}
	b.WriteByte('\n')
	return b.String()
}

func formatMessage(m model.Message, loc *time.Location) string {
	to := "todos"
	if !m.Broadcast {
		to = m.RecipientName
	}
	return fmt.Sprintf("<b>%s</b> → %s · %s\n%s\n\n",
		escape(m.SenderName), escape(to), m.Timestamp.In(loc).Format("02/01 15:04"), escape(m.Text))
}

func formatBudget(budget model.Budget) string {
	icon := "⏳"
	switch budget.Status {
	case model.BudgetApproved:
		icon = "👍"
	case model.BudgetRejected:
		icon = "👎"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>#%d</b> %s\n", icon, budget.ID, escape(budget.Title))
	fmt.Fprintf(&b, "   %s · %s\n", model.FormatMoney(budget.Value), budget.Status.Label())
	for _, item := range budget.Items {
		fmt.Fprintf(&b, "   • %s %g × %s\n", escape(item.Description), item.Quantity, model.FormatMoney(item.UnitPrice))
	}
	b.WriteByte('\n')
	return b.String()
}

func statusIcon(status model.TaskStatus) string {
	switch status {
	case model.StatusInProgress:
		return "🔧"
	case model.StatusCompleted:
		return "✅"
	case model.StatusCancelled:
		return "🚫"
	default:
		return "⏳"
	}
}

func statusLabel(status model.TaskStatus) string {
	switch status {
	case model.StatusPending:
		return "Pendente"
	case model.StatusInProgress:
		return "Em andamento"
	case model.StatusCompleted:
		return "Concluída"
	case model.StatusCancelled:
		return "Cancelada"
	default:
		return string(status)
	}
}

func frequencyLabel(freq model.TaskFrequency) string {
	for _, opt := range frequencyOptions {
		if opt.freq == freq {
			return opt.label
		}
	}
	return string(freq)
}

func parseFrequency(text string) (model.TaskFrequency, bool) {
	value := strings.TrimSpace(text)
	for _, opt := range frequencyOptions {
		if strings.EqualFold(value, opt.label) || strings.EqualFold(value, string(opt.freq)) {
			return opt.freq, true
		}
	}
	return "", false
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "#")), 10, 64)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return uint(value), nil
}

// parseLeadingID reads the number at the start of a keyboard label like "3 · João".
func parseLeadingID(text string) (uint, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "#")
	end := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0, fmt.Errorf("no id in %q", text)
	}
	if end > 0 {
		text = text[:end]
	}
	return parseID(text)
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"02/01/2006", time.DateOnly} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// parseDates reads a comma separated list of dates. "hoje" means now; other
// dates keep the current time of day so the task sorts naturally.
func parseDates(text string, now time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, "hoje") || strings.EqualFold(part, "today") {
			out = append(out, now)
			continue
		}
		day, err := parseDate(part, now.Location())
		if err != nil {
			return nil, err
		}
		out = append(out, day.Add(now.Sub(schedule.StartOfDay(now, now.Location()))))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no dates")
	}
	return out, nil
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	if maxLen < 1 {
		maxLen = 1
	}
	return truncate.StringWithTail(clean, uint(maxLen), "…")
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func escape(s string) string {
	return html.EscapeString(s)
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	runes := []rune(strings.TrimSpace(text))
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "" || value == "-" || value == strings.ToLower(btnSkip) || value == "pular" || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirmar" || value == "sim"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "voltar" || value == "não" || value == "nao"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancelar"
}

func isFinishInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnFinish) || value == "finalizar"
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelSchedule),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelIncident),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func finishKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnFinish),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func frequencyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, opt := range frequencyOptions {
		row = append(row, tgbotapi.NewKeyboardButton(opt.label))
	}
	kb := tgbotapi.NewReplyKeyboard(row, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func categoryKeyboard(categories []string) tgbotapi.ReplyKeyboardMarkup {
	return gridKeyboard(categories)
}

func staffKeyboard(staff []model.User) tgbotapi.ReplyKeyboardMarkup {
	labels := make([]string, 0, len(staff))
	for _, u := range staff {
		if !u.Active {
			continue
		}
		labels = append(labels, fmt.Sprintf("%d · %s", u.ID, shortTitle(u.Name, 24)))
	}
	return gridKeyboard(labels)
}

// gridKeyboard lays labels out two per row, followed by skip and cancel.
func gridKeyboard(labels []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(labels); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(labels[i]))
		if i+1 < len(labels) {
			row = append(row, tgbotapi.NewKeyboardButton(labels[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}
