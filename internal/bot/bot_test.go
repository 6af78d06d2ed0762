package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"condocheck/internal/config"
	"condocheck/internal/model"
	"condocheck/internal/repository"
	"condocheck/internal/service"
)

type fakeAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) last(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message sent")
	}
	return f.sent[len(f.sent)-1].Text
}

var brt = time.FixedZone("BRT", -3*60*60)

type fixture struct {
	bot     *Bot
	api     *fakeAPI
	svc     Services
	condoID uint
	manager *model.User
	janitor *model.User
	cleaner *model.User
	now     time.Time
}

const (
	managerChat int64 = 1001
	janitorChat int64 = 1003
	cleanerChat int64 = 1004
	password          = "segredo123"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	activity := service.NewActivityService(repository.NewLogRepository(db))
	vendorRepo := repository.NewVendorRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	tasks := service.NewTaskService(taskRepo, userRepo, vendorRepo, categoryRepo, budgetRepo, activity)
	svc := Services{
		Users:       service.NewUserService(userRepo, categoryRepo, activity),
		Condos:      service.NewCondoService(repository.NewCondoRepository(db), categoryRepo, activity),
		Tasks:       tasks,
		Incidents:   service.NewIncidentService(incidentRepo, activity),
		Procurement: service.NewProcurementService(vendorRepo, budgetRepo, activity),
		Messages:    service.NewMessageService(repository.NewMessageRepository(db), userRepo, activity),
		Activity:    activity,
		Reminders:   service.NewReminderService(tasks),
		Reports:     service.NewReportService(taskRepo, incidentRepo, nil),
	}

	now := time.Date(2025, 3, 12, 9, 0, 0, 0, brt)
	condo, err := svc.Condos.Create(ctx, model.SystemActor, "Residencial Ipê", "Rua A, 10", now)
	if err != nil {
		t.Fatalf("create condo: %v", err)
	}
	register := func(name string, role model.Role) *model.User {
		u, err := svc.Users.Register(ctx, model.SystemActor, service.UserInput{
			Name: name, Role: role, Password: password, CondoID: &condo.ID, Active: true,
		}, now)
		if err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		return u
	}

	api := &fakeAPI{}
	b := newBot(api, svc, config.Config{Location: brt})
	b.now = func() time.Time { return now }

	return &fixture{
		bot:     b,
		api:     api,
		svc:     svc,
		condoID: condo.ID,
		manager: register("Mariana", model.RoleGestor),
		janitor: register("João", model.RoleZelador),
		cleaner: register("Marcos", model.RoleLimpeza),
		now:     now,
	}
}

func (f *fixture) login(t *testing.T, user *model.User, chat int64) {
	t.Helper()
	if _, err := f.svc.Users.Login(context.Background(), user.ID, password, chat); err != nil {
		t.Fatalf("login %s: %v", user.Name, err)
	}
}

func (f *fixture) send(t *testing.T, msg *tgbotapi.Message) string {
	t.Helper()
	if err := f.bot.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handleMessage(%q): %v", msg.Text, err)
	}
	return f.api.last(t)
}

func command(chat int64, text string) *tgbotapi.Message {
	cmd, _, _ := strings.Cut(text, " ")
	msg := textMessage(chat, text)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return msg
}

func textMessage(chat int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chat, FirstName: "Teste"},
		Chat:      &tgbotapi.Chat{ID: chat, Type: "private"},
		Text:      text,
	}
}

func photoMessage(chat int64, fileID, caption string) *tgbotapi.Message {
	msg := textMessage(chat, "")
	msg.Caption = caption
	msg.Photo = []tgbotapi.PhotoSize{{FileID: fileID + "-small"}, {FileID: fileID}}
	return msg
}

func (f *fixture) createTask(t *testing.T, title string, assignee *model.User, freq model.TaskFrequency) model.Task {
	t.Helper()
	created, err := f.svc.Tasks.CreateTask(context.Background(), f.manager.Actor(), f.condoID, service.TaskInput{
		Title: title, Frequency: freq, AssignedTo: assignee.ID, Dates: []time.Time{f.now},
	}, f.now)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created[0]
}

func TestLoginCommandLinksChat(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "Limpar hall", f.janitor, model.FrequencyOnce)

	reply := f.send(t, command(janitorChat, "/login "+itoa(f.janitor.ID)+" "+password))
	if !strings.Contains(reply, "1 tarefa pendente") {
		t.Fatalf("expected today notice after login, got %q", reply)
	}
	user, err := f.svc.Users.ByTelegram(context.Background(), janitorChat)
	if err != nil || user.ID != f.janitor.ID {
		t.Fatalf("chat not linked: %v %v", user, err)
	}

	reply = f.send(t, command(cleanerChat, "/login "+itoa(f.cleaner.ID)+" errada"))
	if !strings.Contains(reply, "inválidos") {
		t.Fatalf("bad password reply = %q", reply)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	f := newFixture(t)
	if reply := f.send(t, command(cleanerChat, "/today")); !strings.Contains(reply, "/login") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestCompletionFlow(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.janitor, janitorChat)
	task := f.createTask(t, "Limpar piscina", f.janitor, model.FrequencyDaily)
	id := itoa(task.ID)

	if reply := f.send(t, command(janitorChat, "/done "+id)); !strings.Contains(reply, "/start_task") {
		t.Fatalf("done on pending task: %q", reply)
	}
	if reply := f.send(t, command(janitorChat, "/start_task "+id)); !strings.Contains(reply, "em andamento") {
		t.Fatalf("start reply = %q", reply)
	}
	f.send(t, command(janitorChat, "/done "+id))

	if reply := f.send(t, textMessage(janitorChat, btnFinish)); !strings.Contains(reply, "pelo menos uma foto") {
		t.Fatalf("finish without photo: %q", reply)
	}
	if reply := f.send(t, photoMessage(janitorChat, "photo-1", "filtro limpo")); !strings.Contains(reply, "Fotos recebidas: 1") {
		t.Fatalf("photo reply = %q", reply)
	}
	if reply := f.send(t, textMessage(janitorChat, btnFinish)); !strings.Contains(reply, "Confirmar a conclusão") {
		t.Fatalf("finish reply = %q", reply)
	}

	// Going back keeps the collected evidence.
	f.send(t, textMessage(janitorChat, btnCancel))
	f.send(t, photoMessage(janitorChat, "photo-2", ""))
	f.send(t, textMessage(janitorChat, btnFinish))

	stored, err := f.svc.Tasks.GetTask(context.Background(), f.janitor.Actor(), f.condoID, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.StatusInProgress {
		t.Fatalf("task committed before confirmation: %s", stored.Status)
	}

	if reply := f.send(t, textMessage(janitorChat, btnConfirm)); !strings.Contains(reply, "concluída") {
		t.Fatalf("confirm reply = %q", reply)
	}
	stored, err = f.svc.Tasks.GetTask(context.Background(), f.janitor.Actor(), f.condoID, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.StatusCompleted {
		t.Fatalf("status = %s", stored.Status)
	}
	if len(stored.Photos) != 2 || stored.Photos[0] != "photo-1" || stored.Photos[1] != "photo-2" {
		t.Errorf("photos = %v", stored.Photos)
	}
	if stored.CompletionObservation == nil || *stored.CompletionObservation != "filtro limpo" {
		t.Errorf("observation = %v", stored.CompletionObservation)
	}
	if f.bot.getDraft(janitorChat) != nil {
		t.Error("draft not cleared after commit")
	}
}

func TestReopenRequiresManagement(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.janitor, janitorChat)
	f.login(t, f.manager, managerChat)
	task := f.createTask(t, "Regar jardim", f.janitor, model.FrequencyOnce)
	ctx := context.Background()
	if _, err := f.svc.Tasks.StartTask(ctx, f.janitor.Actor(), f.condoID, task.ID, f.now); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Tasks.CompleteTask(ctx, f.janitor.Actor(), f.condoID, task.ID, schedulePhotos("a"), f.now); err != nil {
		t.Fatal(err)
	}

	if reply := f.send(t, command(janitorChat, "/reopen "+itoa(task.ID))); !strings.Contains(reply, "permissão") {
		t.Fatalf("janitor reopen reply = %q", reply)
	}
	if reply := f.send(t, command(managerChat, "/reopen "+itoa(task.ID))); !strings.Contains(reply, "reaberta") {
		t.Fatalf("manager reopen reply = %q", reply)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.manager, managerChat)
	task := f.createTask(t, "Trocar lâmpada", f.janitor, model.FrequencyOnce)

	if reply := f.send(t, command(managerChat, "/delete "+itoa(task.ID))); !strings.Contains(reply, "Excluir a tarefa") {
		t.Fatalf("delete reply = %q", reply)
	}
	if _, err := f.svc.Tasks.GetTask(context.Background(), f.manager.Actor(), f.condoID, task.ID); err != nil {
		t.Fatalf("task deleted before confirmation: %v", err)
	}
	if reply := f.send(t, textMessage(managerChat, btnConfirm)); !strings.Contains(reply, "excluída") {
		t.Fatalf("confirm reply = %q", reply)
	}
	if _, err := f.svc.Tasks.GetTask(context.Background(), f.manager.Actor(), f.condoID, task.ID); err == nil {
		t.Fatal("task still present after confirmed delete")
	}
}

func TestNewTaskConversation(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.cleaner, cleanerChat)
	if reply := f.send(t, command(cleanerChat, "/newtask")); !strings.Contains(reply, "permissão") {
		t.Fatalf("cleaner newtask reply = %q", reply)
	}

	f.login(t, f.manager, managerChat)
	f.send(t, command(managerChat, "/newtask"))
	f.send(t, textMessage(managerChat, "Vistoria extintores"))
	f.send(t, textMessage(managerChat, btnSkip))
	f.send(t, textMessage(managerChat, "Segurança"))
	f.send(t, textMessage(managerChat, "Única"))
	f.send(t, textMessage(managerChat, "12/03/2025, 14/03/2025"))
	reply := f.send(t, textMessage(managerChat, itoa(f.janitor.ID)+" · João"))
	if !strings.Contains(reply, "Tarefa salva") || strings.Count(reply, "Vistoria extintores") != 2 {
		t.Fatalf("finish reply = %q", reply)
	}

	agenda, err := f.svc.Tasks.Agenda(context.Background(), f.janitor.Actor(), f.condoID)
	if err != nil {
		t.Fatal(err)
	}
	if len(agenda) != 2 || agenda[0].AssignedName != "João" || agenda[0].Category != "Segurança" {
		t.Fatalf("agenda = %+v", agenda)
	}
}

func TestIncidentConversationAndToggle(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.janitor, janitorChat)
	f.login(t, f.manager, managerChat)

	f.send(t, command(janitorChat, "/incident"))
	f.send(t, textMessage(janitorChat, "Vazamento na garagem"))
	reply := f.send(t, photoMessage(janitorChat, "leak", "cano do subsolo"))
	if !strings.Contains(reply, "registrada") {
		t.Fatalf("incident reply = %q", reply)
	}

	incidents, err := f.svc.Incidents.List(context.Background(), f.condoID, time.Time{}, time.Time{})
	if err != nil || len(incidents) != 1 {
		t.Fatalf("incidents = %v, %v", incidents, err)
	}
	if incidents[0].Description != "cano do subsolo" || len(incidents[0].Photos) != 1 {
		t.Errorf("incident = %+v", incidents[0])
	}

	if reply := f.send(t, command(janitorChat, "/resolve "+itoa(incidents[0].ID))); !strings.Contains(reply, "permissão") {
		t.Fatalf("janitor resolve reply = %q", reply)
	}
	if reply := f.send(t, command(managerChat, "/resolve "+itoa(incidents[0].ID))); !strings.Contains(reply, "resolvida") {
		t.Fatalf("manager resolve reply = %q", reply)
	}
}

func TestBudgetDecisions(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.janitor, janitorChat)
	f.login(t, f.manager, managerChat)
	ctx := context.Background()

	pump := model.Budget{CondoID: f.condoID, Title: "Troca da bomba", Items: []model.BudgetItem{
		{Description: "Bomba", Quantity: 1, UnitPrice: 500},
		{Description: "Mão de obra", Quantity: 3, UnitPrice: 85},
	}}
	if err := f.svc.Procurement.SaveBudget(ctx, f.manager.Actor(), &pump, f.now); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}
	paint := model.Budget{CondoID: f.condoID, Title: "Pintura", Value: 1200}
	if err := f.svc.Procurement.SaveBudget(ctx, f.manager.Actor(), &paint, f.now); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	if reply := f.send(t, command(janitorChat, "/budgets")); !strings.Contains(reply, "permissão") {
		t.Fatalf("janitor budgets reply = %q", reply)
	}
	reply := f.send(t, command(managerChat, "/budgets"))
	if !strings.Contains(reply, "Troca da bomba") || !strings.Contains(reply, "R$ 755,00") || !strings.Contains(reply, "aguardando") {
		t.Fatalf("budgets reply = %q", reply)
	}

	if reply := f.send(t, command(janitorChat, "/approve "+itoa(pump.ID))); !strings.Contains(reply, "permissão") {
		t.Fatalf("janitor approve reply = %q", reply)
	}
	if reply := f.send(t, command(managerChat, "/approve "+itoa(pump.ID))); !strings.Contains(reply, "aprovado") {
		t.Fatalf("approve reply = %q", reply)
	}
	if reply := f.send(t, command(managerChat, "/approve")); !strings.Contains(reply, "/approve 3") {
		t.Fatalf("usage reply = %q", reply)
	}

	cb := &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: managerChat},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: managerChat}},
		Data:    cbRejectPrefix + itoa(paint.ID),
	}
	if err := f.bot.handleCallback(ctx, cb); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}
	if reply := f.api.last(t); !strings.Contains(reply, "reprovado") {
		t.Fatalf("reject reply = %q", reply)
	}

	budgets, err := f.svc.Procurement.Budgets(ctx, f.condoID)
	if err != nil {
		t.Fatal(err)
	}
	status := map[uint]model.BudgetStatus{}
	for _, b := range budgets {
		status[b.ID] = b.Status
	}
	if status[pump.ID] != model.BudgetApproved || status[paint.ID] != model.BudgetRejected {
		t.Errorf("statuses = %v", status)
	}

	reply = f.send(t, command(managerChat, "/log"))
	if !strings.Contains(reply, "APPROVE BUDGET Troca da bomba") || !strings.Contains(reply, "REJECT BUDGET Pintura") {
		t.Fatalf("log reply = %q", reply)
	}
	if reply := f.send(t, command(janitorChat, "/log")); !strings.Contains(reply, "permissão") {
		t.Fatalf("janitor log reply = %q", reply)
	}
}

func TestVendorsCommand(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.cleaner, cleanerChat)
	if reply := f.send(t, command(cleanerChat, "/vendors")); !strings.Contains(reply, "Nenhum fornecedor") {
		t.Fatalf("empty vendors reply = %q", reply)
	}
	vendor := model.Vendor{CondoID: f.condoID, Name: "Piscinas & Cia", Category: "Piscina", Phone: "51 9999-0000"}
	if err := f.svc.Procurement.SaveVendor(context.Background(), f.manager.Actor(), &vendor, f.now); err != nil {
		t.Fatalf("SaveVendor: %v", err)
	}
	reply := f.send(t, command(cleanerChat, "/vendors"))
	if !strings.Contains(reply, "Piscinas &amp; Cia") || !strings.Contains(reply, "51 9999-0000") {
		t.Fatalf("vendors reply = %q", reply)
	}
}

func TestReportUnavailableWithoutGenerator(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.manager, managerChat)
	reply := f.send(t, command(managerChat, "/report 01/03/2025 12/03/2025"))
	if !strings.Contains(reply, "Não foi possível gerar o relatório") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestSendDigestsOnlyToManagers(t *testing.T) {
	f := newFixture(t)
	f.login(t, f.manager, managerChat)
	f.login(t, f.cleaner, cleanerChat)
	f.createTask(t, "Varrer calçada", f.cleaner, model.FrequencyDaily)

	if err := f.bot.SendDigests(context.Background()); err != nil {
		t.Fatalf("SendDigests: %v", err)
	}
	f.api.mu.Lock()
	defer f.api.mu.Unlock()
	if len(f.api.sent) != 1 || f.api.sent[0].ChatID != managerChat {
		t.Fatalf("sent = %+v", f.api.sent)
	}
	if !strings.Contains(f.api.sent[0].Text, "Pendentes: 1") {
		t.Errorf("digest = %q", f.api.sent[0].Text)
	}
}
