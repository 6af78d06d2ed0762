package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

func (b *Bot) handleBudgets(ctx context.Context, msg *tgbotapi.Message) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	if err := access.Require(user.Role, access.ManageProcurement); err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	budgets, err := b.svc.Procurement.Budgets(ctx, condoID)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if len(budgets) == 0 {
		return b.sendText(msg.Chat.ID, "Nenhum orçamento cadastrado.")
	}
	if len(budgets) > listLimit {
		budgets = budgets[:listLimit]
	}

	var sb strings.Builder
	sb.WriteString("💰 <b>Orçamentos</b>\n\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, budget := range budgets {
		sb.WriteString(formatBudget(budget))
		if budget.Status == model.BudgetPending {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👍 Aprovar #%d", budget.ID), fmt.Sprintf("%s%d", cbApprovePrefix, budget.ID)),
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👎 Reprovar #%d", budget.ID), fmt.Sprintf("%s%d", cbRejectPrefix, budget.ID)),
			))
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

func (b *Bot) handleDecision(ctx context.Context, msg *tgbotapi.Message, approve bool) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Informe o id do orçamento: /%s 3", msg.Command()))
	}
	return b.decideBudget(ctx, msg.Chat.ID, msg.From, id, approve)
}

func (b *Bot) decideBudget(ctx context.Context, chatID int64, from *tgbotapi.User, id uint, approve bool) error {
	user, condoID, ok, err := b.session(ctx, chatID, from)
	if !ok {
		return err
	}
	budget, err := b.svc.Procurement.Decide(ctx, user.Actor(), condoID, id, approve, b.now())
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	log.Printf("[info] budget decided id=%d status=%s user=%d", budget.ID, budget.Status, user.ID)
	if approve {
		return b.sendText(chatID, fmt.Sprintf("👍 Orçamento «%s» aprovado.", escape(budget.Title)))
	}
	return b.sendText(chatID, fmt.Sprintf("👎 Orçamento «%s» reprovado.", escape(budget.Title)))
}

func (b *Bot) handleVendors(ctx context.Context, msg *tgbotapi.Message) error {
	_, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	vendors, err := b.svc.Procurement.Vendors(ctx, condoID)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if len(vendors) == 0 {
		return b.sendText(msg.Chat.ID, "Nenhum fornecedor cadastrado.")
	}
	var sb strings.Builder
	sb.WriteString("🧰 <b>Fornecedores</b>\n\n")
	for _, v := range vendors {
		fmt.Fprintf(&sb, "<b>#%d</b> %s", v.ID, escape(v.Name))
		if v.Category != "" {
			sb.WriteString(" · " + escape(v.Category))
		}
		if v.Phone != "" {
			sb.WriteString(" · 📞 " + escape(v.Phone))
		}
		sb.WriteString("\n")
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleActivity(ctx context.Context, msg *tgbotapi.Message) error {
	user, condoID, ok, err := b.session(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	logs, err := b.svc.Activity.List(ctx, user.Actor(), condoID, listLimit)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if len(logs) == 0 {
		return b.sendText(msg.Chat.ID, "Nenhuma atividade registrada.")
	}
	loc := b.now().Location()
	var sb strings.Builder
	sb.WriteString("🗂 <b>Histórico</b>\n\n")
	for _, l := range logs {
		fmt.Fprintf(&sb, "%s · %s %s %s %s\n",
			l.Timestamp.In(loc).Format("02/01 15:04"), escape(l.UserName), l.Action, l.Module, escape(l.TargetName))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}
