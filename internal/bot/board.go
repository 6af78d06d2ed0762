package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"condocheck/internal/access"
	"condocheck/internal/model"
	"condocheck/internal/service"
)

const listLimit = 10

func (b *Bot) startIncidentConversation(ctx context.Context, msg *tgbotapi.Message) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	if err := access.Require(user.Role, access.AddIncident); err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	b.clearDraft(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{kind: convIncident, stage: stageIncidentTitle, condoID: condoID})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🚨 Nova ocorrência. Qual o título?", cancelKeyboard())
}

func (b *Bot) handleIncidentConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageIncidentTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "O título não pode ficar vazio.", cancelKeyboard())
		}
		state.incident.Title = text
		state.stage = stageIncidentDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "📝 Descreva o ocorrido. Pode enviar uma foto com legenda (ou «Pular»).", skipKeyboard())
	case stageIncidentDescription:
		if len(msg.Photo) > 0 {
			state.incident.Photos = append(state.incident.Photos, msg.Photo[len(msg.Photo)-1].FileID)
			text = strings.TrimSpace(msg.Caption)
		}
		if !isSkipInput(text) {
			state.incident.Description = text
		}
		user, ok, err := b.currentUser(ctx, msg.Chat.ID, msg.From)
		b.clearConversation(msg.From.ID)
		if !ok {
			return err
		}
		incident, err := b.svc.Incidents.Report(ctx, user.Actor(), state.condoID, state.incident, b.now())
		if err != nil {
			return b.sendText(msg.Chat.ID, errorText(err))
		}
		log.Printf("[info] incident registered id=%d user=%d", incident.ID, user.ID)
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🚨 Ocorrência #%d registrada: %s", incident.ID, escape(incident.Title)))
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversa reiniciada. Tente de novo com /incident.")
	}
}

func (b *Bot) handleIncidents(ctx context.Context, msg *tgbotapi.Message) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	incidents, err := b.svc.Incidents.List(ctx, condoID, time.Time{}, time.Time{})
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if len(incidents) == 0 {
		return b.sendText(msg.Chat.ID, "Nenhuma ocorrência registrada.")
	}
	if len(incidents) > listLimit {
		incidents = incidents[:listLimit]
	}

	canResolve := access.Can(user.Role, access.ResolveIncident)
	var sb strings.Builder
	sb.WriteString("📕 <b>Livro de ocorrências</b>\n\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, inc := range incidents {
		sb.WriteString(formatIncident(inc, b.now().Location()))
		if canResolve {
			label := fmt.Sprintf("✔️ Resolver #%d", inc.ID)
			if inc.Status == model.IncidentResolved {
				label = fmt.Sprintf("↩️ Reabrir #%d", inc.ID)
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbResolvePrefix, inc.ID))))
		}
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(sb.String()))
	out.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) handleResolve(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Informe o id da ocorrência: /resolve 4")
	}
	return b.toggleIncident(ctx, msg.Chat.ID, msg.From, id)
}

func (b *Bot) toggleIncident(ctx context.Context, chatID int64, from *tgbotapi.User, id uint) error {
	user, condoID, ok, err := b.session(ctx, chatID, from)
	if !ok {
		return err
	}
	incident, err := b.svc.Incidents.Toggle(ctx, user.Actor(), condoID, id, b.now())
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if incident.Status == model.IncidentResolved {
		return b.sendText(chatID, fmt.Sprintf("✔️ Ocorrência «%s» resolvida.", escape(incident.Title)))
	}
	return b.sendText(chatID, fmt.Sprintf("↩️ Ocorrência «%s» reaberta.", escape(incident.Title)))
}

func (b *Bot) handlePost(ctx context.Context, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		return b.sendText(msg.Chat.ID, "Escreva o recado: /post Portão da garagem em manutenção")
	}
	return b.post(ctx, msg, nil, text)
}

func (b *Bot) handleDirect(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	idPart, text, _ := strings.Cut(args, " ")
	id, err := parseID(idPart)
	if err != nil || strings.TrimSpace(text) == "" {
		return b.sendText(msg.Chat.ID, "Use: /dm &lt;id&gt; &lt;texto&gt;")
	}
	return b.post(ctx, msg, &id, text)
}

func (b *Bot) post(ctx context.Context, msg *tgbotapi.Message, recipientID *uint, text string) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	posted, err := b.svc.Messages.Post(ctx, user.Actor(), condoID, recipientID, text, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if recipientID != nil {
		b.deliverDirect(ctx, *posted)
	}
	return b.sendText(msg.Chat.ID, "📨 Recado publicado.")
}

// deliverDirect pushes a direct message to the recipient's chat when linked.
func (b *Bot) deliverDirect(ctx context.Context, msg model.Message) {
	if msg.RecipientID == nil {
		return
	}
	recipient, err := b.svc.Users.Get(ctx, *msg.RecipientID)
	if err != nil || recipient.TelegramID == nil {
		return
	}
	text := fmt.Sprintf("✉️ <b>%s</b>: %s", escape(msg.SenderName), escape(msg.Text))
	if err := b.sendText(*recipient.TelegramID, text); err != nil {
		log.Printf("deliver message %d to %d: %v", msg.ID, recipient.ID, err)
	}
}

func (b *Bot) handleBoard(ctx context.Context, msg *tgbotapi.Message) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	messages, err := b.svc.Messages.Board(ctx, user.Actor(), condoID)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if len(messages) == 0 {
		return b.sendText(msg.Chat.ID, "O mural está vazio.")
	}
	if len(messages) > listLimit {
		messages = messages[:listLimit]
	}
	var sb strings.Builder
	sb.WriteString("📌 <b>Mural</b>\n\n")
	for _, m := range messages {
		sb.WriteString(formatMessage(m, b.now().Location()))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	st, err := b.svc.Tasks.Stats(ctx, user.Actor(), condoID, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	text := fmt.Sprintf("📊 <b>Painel</b>\n⏳ Pendentes: %d\n🔧 Em andamento: %d\n✅ Concluídas hoje: %d\n👤 Minhas abertas: %d",
		st.Pending, st.InProgress, st.CompletedToday, st.MyOpenTasks)
	if access.Can(user.Role, access.ManageProcurement) {
		text += fmt.Sprintf("\n💰 Orçamentos aguardando: %d", st.PendingBudgets)
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) < 2 {
		return b.sendText(msg.Chat.ID, "Use: /report 01/03/2025 31/03/2025 [instrução]")
	}
	loc := b.now().Location()
	from, err := parseDate(fields[0], loc)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Data inicial inválida.")
	}
	to, err := parseDate(fields[1], loc)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Data final inválida.")
	}
	prompt := strings.Join(fields[2:], " ")

	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	if err := b.sendText(msg.Chat.ID, "⏳ Gerando relatório..."); err != nil {
		return err
	}

	reportCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	report, err := b.svc.Reports.Generate(reportCtx, user.Actor(), condoID, from, to, prompt)
	if err != nil {
		if errors.Is(err, service.ErrReportUnavailable) {
			log.Printf("report condo=%d: %v", condoID, err)
		}
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendPlain(msg.Chat.ID, report)
}
