package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"condocheck/internal/access"
	"condocheck/internal/model"
	"condocheck/internal/schedule"
)

const (
	cbStartPrefix   = "start:"
	cbDonePrefix    = "done:"
	cbReopenPrefix  = "reopen:"
	cbDeletePrefix  = "delete:"
	cbResolvePrefix = "resolve:"
	cbApprovePrefix = "approve:"
	cbRejectPrefix  = "reject:"
)

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	filter, ok := schedule.ParseFilter(strings.TrimSpace(msg.CommandArguments()))
	if !ok {
		return b.sendText(msg.Chat.ID, "Filtro desconhecido. Use all, permanent, pending, in_progress ou completed.")
	}
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	return b.sendToday(ctx, msg.Chat.ID, user, condoID, filter)
}

func (b *Bot) sendToday(ctx context.Context, chatID int64, user *model.User, condoID uint, filter schedule.Filter) error {
	actor := user.Actor()
	tasks, counts, err := b.svc.Tasks.Today(ctx, actor, condoID, b.now(), filter)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Tarefas de hoje</b> · %s\n", b.now().Format("02/01/2006"))
	fmt.Fprintf(&sb, "Todas: %d · Pendentes: %d · Permanentes: %d · Concluídas: %d\n\n",
		counts.All, counts.Pending, counts.Permanent, counts.Completed)
	if len(tasks) == 0 {
		sb.WriteString("Nenhuma tarefa para hoje. 🎉")
		return b.sendText(chatID, sb.String())
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		sb.WriteString(formatTask(task, b.now()))
		if row := taskButtons(task, actor); len(row) > 0 {
			buttons = append(buttons, row)
		}
	}

	out := tgbotapi.NewMessage(chatID, strings.TrimSpace(sb.String()))
	out.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err = b.api.Send(out)
	return err
}

func taskButtons(task model.Task, actor model.Actor) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if task.AssignedToUser(actor.ID) {
		switch schedule.Next(task.Status) {
		case schedule.StepStart:
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("▶️ #%d · %s", task.ID, shortTitle(task.Title, 20)), fmt.Sprintf("%s%d", cbStartPrefix, task.ID)))
		case schedule.StepComplete:
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("📷 #%d · %s", task.ID, shortTitle(task.Title, 20)), fmt.Sprintf("%s%d", cbDonePrefix, task.ID)))
		}
	}
	if task.Status == model.StatusCompleted && access.Can(actor.Role, access.ReopenTask) {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("↩️ Reabrir #%d", task.ID), fmt.Sprintf("%s%d", cbReopenPrefix, task.ID)))
	}
	return row
}

func (b *Bot) handleSchedule(ctx context.Context, msg *tgbotapi.Message) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	tasks, err := b.svc.Tasks.Agenda(ctx, user.Actor(), condoID)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "A agenda está vazia.")
	}
	var sb strings.Builder
	sb.WriteString("🗓 <b>Agenda</b>\n\n")
	for _, task := range tasks {
		fmt.Fprintf(&sb, "%s <b>#%d</b> %s — %s · %s\n",
			statusIcon(task.Status), task.ID, escape(shortTitle(task.Title, 40)),
			task.ScheduledFor.In(b.now().Location()).Format("02/01"), frequencyLabel(task.Frequency))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleStartTask(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Informe o id da tarefa: /start_task 12")
	}
	return b.startTask(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) startTask(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, condoID, ok, err := b.session(ctx, chatID, from)
	if !ok {
		return err
	}
	task, err := b.svc.Tasks.StartTask(ctx, user.Actor(), condoID, taskID, b.now())
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	log.Printf("[info] task started id=%d user=%d", task.ID, user.ID)
	return b.sendText(chatID, fmt.Sprintf("▶️ Tarefa «%s» em andamento. Ao terminar use /done %d.", escape(task.Title), task.ID))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Informe o id da tarefa: /done 12")
	}
	return b.beginCompletion(ctx, msg.Chat.ID, msg.From, taskID)
}

// beginCompletion opens a completion draft for an in-progress task assigned to
// the sender. Photos and the observation are collected before confirmation.
func (b *Bot) beginCompletion(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, condoID, ok, err := b.session(ctx, chatID, from)
	if !ok {
		return err
	}
	task, err := b.svc.Tasks.GetTask(ctx, user.Actor(), condoID, taskID)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if !task.AssignedToUser(user.ID) {
		return b.sendText(chatID, errorText(schedule.ErrNotAssignee))
	}
	if task.Status != model.StatusInProgress {
		return b.sendText(chatID, fmt.Sprintf("A tarefa precisa estar em andamento. Use /start_task %d primeiro.", task.ID))
	}

	b.clearConversation(from.ID)
	b.clearConfirmation(from.ID)
	b.setDraft(from.ID, &completionDraft{taskID: task.ID, condoID: condoID, title: task.Title})
	text := fmt.Sprintf("📷 Concluindo «%s».\nEnvie pelo menos uma foto do serviço. A legenda ou uma mensagem de texto vira a observação.", escape(task.Title))
	return b.sendWithReplyMarkup(chatID, text, finishKeyboard())
}

func (b *Bot) handleCompletionInput(ctx context.Context, msg *tgbotapi.Message, draft *completionDraft) error {
	if len(msg.Photo) > 0 {
		largest := msg.Photo[len(msg.Photo)-1]
		b.mu.Lock()
		draft.photos = append(draft.photos, largest.FileID)
		if caption := strings.TrimSpace(msg.Caption); caption != "" {
			draft.observation = caption
		}
		count := len(draft.photos)
		b.mu.Unlock()
		return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("📎 Fotos recebidas: %d. Envie mais ou toque em «%s».", count, btnFinish), finishKeyboard())
	}

	text := strings.TrimSpace(msg.Text)
	if isFinishInput(text) {
		b.mu.Lock()
		count := len(draft.photos)
		b.mu.Unlock()
		if count == 0 {
			return b.sendWithReplyMarkup(msg.Chat.ID, errorText(schedule.ErrEvidenceRequired), finishKeyboard())
		}
		b.setConfirmation(msg.From.ID, confirmationRequest{taskID: draft.taskID, action: actionComplete})
		prompt := fmt.Sprintf("Confirmar a conclusão de «%s» com %d foto(s)?", escape(draft.title), count)
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
	if text == "" {
		return b.sendWithReplyMarkup(msg.Chat.ID, "Envie uma foto ou toque em «"+btnFinish+"».", finishKeyboard())
	}

	b.mu.Lock()
	draft.observation = text
	b.mu.Unlock()
	return b.sendWithReplyMarkup(msg.Chat.ID, "📝 Observação anotada.", finishKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionDelete {
			return b.deleteTask(ctx, msg.Chat.ID, msg.From, req.taskID)
		}
		return b.commitCompletion(ctx, msg.Chat.ID, msg.From)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionComplete {
			// Back to collecting evidence; the draft is kept.
			return b.sendWithReplyMarkup(msg.Chat.ID, "Conclusão não confirmada. Envie mais fotos ou toque em «"+btnFinish+"».", finishKeyboard())
		}
		return b.sendText(msg.Chat.ID, "Exclusão cancelada.")
	default:
		prompt := "Confirme ou cancele a conclusão da tarefa."
		if req.action == actionDelete {
			prompt = "Confirme ou cancele a exclusão da tarefa."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) commitCompletion(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	draft := b.getDraft(from.ID)
	if draft == nil {
		return b.sendText(chatID, "Nenhuma conclusão em andamento.")
	}
	user, ok, err := b.currentUser(ctx, chatID, from)
	if !ok {
		return err
	}

	b.mu.Lock()
	completion := schedule.Completion{
		Photos:      append([]string(nil), draft.photos...),
		Observation: draft.observation,
	}
	b.mu.Unlock()

	task, err := b.svc.Tasks.CompleteTask(ctx, user.Actor(), draft.condoID, draft.taskID, completion, b.now())
	if err != nil {
		return b.sendWithReplyMarkup(chatID, errorText(err), finishKeyboard())
	}
	b.clearDraft(from.ID)
	log.Printf("[info] task completed id=%d user=%d photos=%d", task.ID, user.ID, len(completion.Photos))
	return b.sendText(chatID, fmt.Sprintf("✅ Tarefa «%s» concluída.", escape(task.Title)))
}

func (b *Bot) handleReopen(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Informe o id da tarefa: /reopen 12")
	}
	return b.reopenTask(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) reopenTask(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, condoID, ok, err := b.session(ctx, chatID, from)
	if !ok {
		return err
	}
	task, err := b.svc.Tasks.ReopenTask(ctx, user.Actor(), condoID, taskID, b.now())
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	log.Printf("[info] task reopened id=%d user=%d", task.ID, user.ID)
	return b.sendText(chatID, fmt.Sprintf("↩️ Tarefa «%s» reaberta para hoje.", escape(task.Title)))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Informe o id da tarefa: /delete 12")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, condoID, ok, err := b.session(ctx, chatID, from)
	if !ok {
		return err
	}
	if err := access.Require(user.Role, access.ManageTasks); err != nil {
		return b.sendText(chatID, errorText(err))
	}
	task, err := b.svc.Tasks.GetTask(ctx, user.Actor(), condoID, taskID)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, action: actionDelete})
	text := fmt.Sprintf("Excluir a tarefa «%s» (#%d)?", escape(task.Title), task.ID)
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, condoID, ok, err := b.session(ctx, chatID, from)
	if !ok {
		return err
	}
	task, err := b.svc.Tasks.DeleteTask(ctx, user.Actor(), condoID, taskID, b.now())
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	log.Printf("[info] task deleted id=%d user=%d", task.ID, user.ID)
	return b.sendText(chatID, fmt.Sprintf("🗑 Tarefa «%s» excluída.", escape(task.Title)))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID
	log.Printf("[info] callback %q user=%d", data, cb.From.ID)

	prefixes := []string{cbStartPrefix, cbDonePrefix, cbReopenPrefix, cbDeletePrefix, cbResolvePrefix, cbApprovePrefix, cbRejectPrefix}
	for _, prefix := range prefixes {
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		id, err := parseID(strings.TrimPrefix(data, prefix))
		if err != nil {
			return nil
		}
		switch prefix {
		case cbStartPrefix:
			return b.startTask(ctx, chatID, cb.From, id)
		case cbDonePrefix:
			return b.beginCompletion(ctx, chatID, cb.From, id)
		case cbReopenPrefix:
			return b.reopenTask(ctx, chatID, cb.From, id)
		case cbDeletePrefix:
			return b.askDeleteConfirmation(ctx, chatID, cb.From, id)
		case cbResolvePrefix:
			return b.toggleIncident(ctx, chatID, cb.From, id)
		case cbApprovePrefix:
			return b.decideBudget(ctx, chatID, cb.From, id, true)
		case cbRejectPrefix:
			return b.decideBudget(ctx, chatID, cb.From, id, false)
		}
	}
	return nil
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	if err := access.Require(user.Role, access.ManageTasks); err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	log.Printf("[info] start new task conversation user=%d", user.ID)
	b.clearDraft(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{kind: convTask, stage: stageTitle, condoID: condoID})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Nova tarefa.\n<b>Passo 1:</b> qual o título?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	if state.kind == convIncident {
		return b.handleIncidentConversation(ctx, msg, state)
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "O título não pode ficar vazio.", cancelKeyboard())
		}
		state.task.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Descreva a tarefa (ou toque em «Pular»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.task.Description = text
		}
		state.stage = stageCategory
		categories, err := b.svc.Condos.Categories(ctx, state.condoID)
		if err != nil {
			log.Printf("list categories condo=%d: %v", state.condoID, err)
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Escolha a categoria ou digite uma nova.", categoryKeyboard(categories))
	case stageCategory:
		if !isSkipInput(text) {
			state.task.Category = text
		}
		state.stage = stageFrequency
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 Qual a frequência?", frequencyKeyboard())
	case stageFrequency:
		freq, ok := parseFrequency(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Escolha uma das opções.", frequencyKeyboard())
		}
		state.task.Frequency = freq
		state.stage = stageDates
		prompt := "📆 Para quando? Envie <code>hoje</code> ou datas como <code>12/03/2025</code>."
		if freq == model.FrequencyOnce {
			prompt += " Várias datas separadas por vírgula criam uma tarefa para cada dia."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, skipKeyboard())
	case stageDates:
		if !isSkipInput(text) {
			dates, err := parseDates(text, b.now())
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Não entendi as datas. Use <code>hoje</code> ou <code>12/03/2025, 14/03/2025</code>.", skipKeyboard())
			}
			state.task.Dates = dates
		}
		state.stage = stageAssignee
		user, ok, err := b.currentUser(ctx, msg.Chat.ID, msg.From)
		if !ok {
			return err
		}
		staff, err := b.svc.Users.Staff(ctx, user.Actor(), state.condoID)
		if err != nil {
			log.Printf("list staff condo=%d: %v", state.condoID, err)
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, "👤 Quem vai executar? Escolha ou envie o id (ou «Pular»).", staffKeyboard(staff))
	case stageAssignee:
		if !isSkipInput(text) {
			id, err := parseLeadingID(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Envie o id do responsável ou toque em «Pular».", skipKeyboard())
			}
			state.task.AssignedTo = id
		}
		err := b.finishTaskCreation(ctx, msg, state)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversa reiniciada. Tente de novo com /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	user, ok, err := b.currentUser(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	created, err := b.svc.Tasks.CreateTask(ctx, user.Actor(), state.condoID, state.task, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}

	log.Printf("[info] tasks created count=%d user=%d", len(created), user.ID)

	var sb strings.Builder
	sb.WriteString("✅ <b>Tarefa salva</b>\n")
	for _, task := range created {
		fmt.Fprintf(&sb, "• #%d %s — %s · %s · %s\n", task.ID, escape(task.Title),
			task.ScheduledFor.In(b.now().Location()).Format("02/01/2006"),
			frequencyLabel(task.Frequency), escape(task.AssignedName))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelToday):
		return true, b.handleToday(ctx, msg)
	case strings.ToLower(menuLabelSchedule):
		return true, b.handleSchedule(ctx, msg)
	case strings.ToLower(menuLabelIncident):
		return true, b.startIncidentConversation(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}
