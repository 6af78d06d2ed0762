package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"condocheck/internal/config"
	"condocheck/internal/model"
	"condocheck/internal/service"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type conversationKind int

const (
	convTask conversationKind = iota
	convIncident
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageCategory
	stageFrequency
	stageDates
	stageAssignee
	stageIncidentTitle
	stageIncidentDescription
)

type conversationState struct {
	kind     conversationKind
	stage    conversationStage
	condoID  uint
	task     service.TaskInput
	incident service.IncidentInput
}

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
)

type confirmationRequest struct {
	taskID uint
	action confirmationAction
}

// completionDraft collects photos and the observation for a task before the
// user confirms it.
type completionDraft struct {
	taskID      uint
	condoID     uint
	title       string
	photos      []string
	observation string
}

// Services groups what the bot talks to.
type Services struct {
	Users       *service.UserService
	Condos      *service.CondoService
	Tasks       *service.TaskService
	Incidents   *service.IncidentService
	Procurement *service.ProcurementService
	Messages    *service.MessageService
	Activity    *service.ActivityService
	Reminders   *service.ReminderService
	Reports     *service.ReportService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           telegramAPI
	svc           Services
	config        config.Config
	now           func() time.Time
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	drafts        map[int64]*completionDraft
	condos        map[int64]uint
	mu            sync.Mutex
}

func New(token string, svc Services, cfg config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return newBot(api, svc, cfg), nil
}

func newBot(api telegramAPI, svc Services, cfg config.Config) *Bot {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:           api,
		svc:           svc,
		config:        cfg,
		now:           func() time.Time { return time.Now().In(loc) },
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		drafts:        make(map[int64]*completionDraft),
		condos:        make(map[int64]uint),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.resetState(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Operação cancelada.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if draft := b.getDraft(msg.From.ID); draft != nil {
		return b.handleCompletionInput(ctx, msg, draft)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Não entendi a mensagem. Use /today para ver suas tarefas ou /help para a lista de comandos.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "login":
		return b.handleLogin(ctx, msg)
	case "condo":
		return b.handleCondo(ctx, msg)
	case "today":
		return b.handleToday(ctx, msg)
	case "schedule":
		return b.handleSchedule(ctx, msg)
	case "start_task":
		return b.handleStartTask(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "reopen":
		return b.handleReopen(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "incident":
		return b.startIncidentConversation(ctx, msg)
	case "incidents":
		return b.handleIncidents(ctx, msg)
	case "resolve":
		return b.handleResolve(ctx, msg)
	case "post":
		return b.handlePost(ctx, msg)
	case "dm":
		return b.handleDirect(ctx, msg)
	case "board":
		return b.handleBoard(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "budgets":
		return b.handleBudgets(ctx, msg)
	case "approve":
		return b.handleDecision(ctx, msg, true)
	case "reject":
		return b.handleDecision(ctx, msg, false)
	case "vendors":
		return b.handleVendors(ctx, msg)
	case "log":
		return b.handleActivity(ctx, msg)
	case "cancel":
		b.resetState(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Operação cancelada.")
	default:
		return b.sendText(msg.Chat.ID, "Comando não suportado. Veja /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if user, err := b.svc.Users.ByTelegram(ctx, msg.From.ID); err == nil {
		name = user.Name
	}
	if name == "" {
		name = "colaborador"
	}
	text := fmt.Sprintf("👋 Olá, %s!\n<b>Sou o assistente de rotinas do condomínio.</b>\n\n", escape(name)) +
		"Entre com /login &lt;id&gt; &lt;senha&gt; e depois use /today para ver suas tarefas do dia.\n" +
		"A lista completa de comandos está em /help."
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Comandos</b>\n" +
		"• /login &lt;id&gt; &lt;senha&gt; — vincular sua conta\n" +
		"• /today [all|permanent|pending|in_progress|completed] — tarefas de hoje\n" +
		"• /schedule — agenda de tarefas abertas\n" +
		"• /start_task &lt;id&gt; — iniciar uma tarefa\n" +
		"• /done &lt;id&gt; — concluir com fotos\n" +
		"• /reopen &lt;id&gt; — reabrir tarefa concluída (gestão)\n" +
		"• /delete &lt;id&gt; — excluir tarefa\n" +
		"• /newtask — cadastrar tarefa passo a passo\n" +
		"• /incident — registrar ocorrência\n" +
		"• /incidents — livro de ocorrências\n" +
		"• /resolve &lt;id&gt; — resolver ou reabrir ocorrência\n" +
		"• /post &lt;texto&gt; — recado para todos\n" +
		"• /dm &lt;id&gt; &lt;texto&gt; — recado direto\n" +
		"• /board — mural de recados\n" +
		"• /stats — painel do condomínio\n" +
		"• /report &lt;de&gt; &lt;até&gt; [instrução] — relatório com IA\n" +
		"• /vendors — fornecedores\n" +
		"• /budgets — orçamentos (gestão)\n" +
		"• /approve &lt;id&gt; · /reject &lt;id&gt; — decidir orçamento\n" +
		"• /log — histórico de atividades (gestão)\n" +
		"• /condo &lt;id&gt; — escolher condomínio (síndico)\n" +
		"• /cancel — cancelar a operação atual"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleLogin(ctx context.Context, msg *tgbotapi.Message) error {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		return b.sendText(msg.Chat.ID, "Use: /login &lt;id&gt; &lt;senha&gt;")
	}
	// The password should not stay in the chat history.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		log.Printf("delete login message: %v", err)
	}

	userID, err := parseID(fields[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "O id do usuário deve ser um número.")
	}
	user, err := b.svc.Users.Login(ctx, userID, fields[1], msg.From.ID)
	if err != nil {
		log.Printf("[info] failed login user=%d chat=%d", userID, msg.From.ID)
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	b.resetState(msg.From.ID)
	log.Printf("[info] user %d linked to chat %d", user.ID, msg.From.ID)

	if err := b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Bem-vindo, %s (%s).", escape(user.Name), escape(user.Role.Label()))); err != nil {
		return err
	}
	b.notifyToday(ctx, *user)
	return nil
}

func (b *Bot) handleCondo(ctx context.Context, msg *tgbotapi.Message) error {
	user, ok, err := b.currentUser(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return err
	}
	if user.CondoID != nil {
		return b.sendText(msg.Chat.ID, "Sua conta já pertence a um condomínio.")
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		condos, err := b.svc.Condos.List(ctx)
		if err != nil {
			return b.sendText(msg.Chat.ID, errorText(err))
		}
		var sb strings.Builder
		sb.WriteString("🏢 <b>Condomínios</b>\n")
		for _, c := range condos {
			fmt.Fprintf(&sb, "• #%d %s\n", c.ID, escape(c.Name))
		}
		sb.WriteString("\nEscolha com /condo &lt;id&gt;.")
		return b.sendText(msg.Chat.ID, sb.String())
	}
	id, err := parseID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "O id do condomínio deve ser um número.")
	}
	condo, err := b.svc.Condos.Get(ctx, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	b.mu.Lock()
	b.condos[msg.From.ID] = condo.ID
	b.mu.Unlock()
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🏢 Condomínio selecionado: %s", escape(condo.Name)))
}

// currentUser resolves the account linked to the sender. When ok is false the
// user has already been told what to do.
func (b *Bot) currentUser(ctx context.Context, chatID int64, from *tgbotapi.User) (*model.User, bool, error) {
	user, err := b.svc.Users.ByTelegram(ctx, from.ID)
	if err != nil {
		return nil, false, b.sendText(chatID, "🔐 Faça login primeiro: /login &lt;id&gt; &lt;senha&gt;")
	}
	return user, true, nil
}

// session resolves the sender and the condominium they act on.
func (b *Bot) session(ctx context.Context, chatID int64, from *tgbotapi.User) (*model.User, uint, bool, error) {
	user, ok, err := b.currentUser(ctx, chatID, from)
	if !ok {
		return nil, 0, false, err
	}
	if user.CondoID != nil {
		return user, *user.CondoID, true, nil
	}
	b.mu.Lock()
	condoID := b.condos[from.ID]
	b.mu.Unlock()
	if condoID == 0 {
		return nil, 0, false, b.sendText(chatID, "🏢 Escolha um condomínio com /condo &lt;id&gt;.")
	}
	return user, condoID, true, nil
}

func (b *Bot) resetState(userID int64) {
	b.clearConversation(userID)
	b.clearConfirmation(userID)
	b.clearDraft(userID)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

// sendPlain sends text without parse mode, split to fit Telegram's limit.
func (b *Bot) sendPlain(chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := b.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func (b *Bot) setDraft(userID int64, draft *completionDraft) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drafts[userID] = draft
}

func (b *Bot) getDraft(userID int64) *completionDraft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drafts[userID]
}

func (b *Bot) clearDraft(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.drafts, userID)
}
