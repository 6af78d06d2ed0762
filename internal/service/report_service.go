package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"condocheck/internal/access"
	"condocheck/internal/model"
)

// ErrReportUnavailable is returned when the text generator fails or is not configured.
var ErrReportUnavailable = errors.New("report unavailable")

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, jsonOutput bool) (string, error)
}

// ChecklistItem is one task suggested by the generator.
type ChecklistItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ReportService writes executive summaries of a period.
type ReportService struct {
	taskRepo     TaskRepository
	incidentRepo IncidentRepository
	gen          Generator
}

// NewReportService builds the service. gen may be nil, in which case every
// generation fails with ErrReportUnavailable.
func NewReportService(taskRepo TaskRepository, incidentRepo IncidentRepository, gen Generator) *ReportService {
	return &ReportService{taskRepo: taskRepo, incidentRepo: incidentRepo, gen: gen}
}

type reportTask struct {
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	Frequency    string     `json:"frequency"`
	Category     string     `json:"category,omitempty"`
	AssignedTo   string     `json:"assignedTo"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Observation  string     `json:"observation,omitempty"`
}

type reportIncident struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ReportedBy  string    `json:"reportedBy"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

// Generate asks the generator for a Markdown report over the tasks scheduled
// and incidents registered between from and to (whole days).
func (s *ReportService) Generate(ctx context.Context, actor model.Actor, condoID uint, from, to time.Time, customPrompt string) (string, error) {
	if err := access.Require(actor.Role, access.GenerateReport); err != nil {
		return "", err
	}
	if to.Before(from) {
		return "", invalid("report period ends before it starts")
	}
	prompt, err := s.Prompt(ctx, condoID, from, to, customPrompt)
	if err != nil {
		return "", err
	}
	text, err := s.generate(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Prompt assembles the report prompt without calling the generator.
func (s *ReportService) Prompt(ctx context.Context, condoID uint, from, to time.Time, customPrompt string) (string, error) {
	start, end := dayRange(from, to)

	tasks, err := s.taskRepo.ListByCondo(ctx, condoID)
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	var activities []reportTask
	for _, task := range tasks {
		if task.ScheduledFor.Before(start) || task.ScheduledFor.After(end) {
			continue
		}
		rt := reportTask{
			Title:        task.Title,
			Status:       string(task.Status),
			Frequency:    string(task.Frequency),
			Category:     task.Category,
			AssignedTo:   task.AssignedName,
			ScheduledFor: task.ScheduledFor,
			CompletedAt:  task.CompletedAt,
		}
		if task.CompletionObservation != nil {
			rt.Observation = *task.CompletionObservation
		}
		activities = append(activities, rt)
	}

	incidents, err := s.incidentRepo.ListByCondo(ctx, condoID)
	if err != nil {
		return "", fmt.Errorf("list incidents: %w", err)
	}
	var occurrences []reportIncident
	for _, inc := range incidents {
		if inc.Timestamp.Before(start) || inc.Timestamp.After(end) {
			continue
		}
		occurrences = append(occurrences, reportIncident{
			Title:       inc.Title,
			Description: inc.Description,
			ReportedBy:  inc.UserName,
			Timestamp:   inc.Timestamp,
			Status:      string(inc.Status),
		})
	}

	return buildReportPrompt(period(from, to), activities, occurrences, customPrompt)
}

// SuggestChecklist asks for five to seven essential tasks for today.
func (s *ReportService) SuggestChecklist(ctx context.Context, condoInfo string) ([]ChecklistItem, error) {
	prompt := fmt.Sprintf("Com base nas informações do condomínio: %q, gere um checklist de 5 a 7 tarefas essenciais "+
		"para um zelador realizar hoje. Retorne apenas um array JSON de objetos com os campos "+
		"\"title\", \"description\" e \"category\".", strings.TrimSpace(condoInfo))
	text, err := s.generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}
	return parseChecklist(text)
}

func (s *ReportService) generate(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("no generator configured: %w", ErrReportUnavailable)
	}
	text, err := s.gen.Generate(ctx, prompt, jsonOutput)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReportUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response: %w", ErrReportUnavailable)
	}
	return text, nil
}

func buildReportPrompt(periodDesc string, activities []reportTask, incidents []reportIncident, customPrompt string) (string, error) {
	activitiesJSON := "[]"
	if len(activities) > 0 {
		raw, err := json.Marshal(activities)
		if err != nil {
			return "", fmt.Errorf("encode tasks: %w", err)
		}
		activitiesJSON = string(raw)
	}
	incidentsJSON := "Nenhuma ocorrência registrada."
	if len(incidents) > 0 {
		raw, err := json.Marshal(incidents)
		if err != nil {
			return "", fmt.Errorf("encode incidents: %w", err)
		}
		incidentsJSON = string(raw)
	}

	var b strings.Builder
	b.WriteString("Você é um consultor especializado em gestão condominial de alto nível.\n")
	fmt.Fprintf(&b, "Gere um relatório executivo detalhado para o período de %s.\n\n", periodDesc)
	fmt.Fprintf(&b, "DADOS DE ATIVIDADES: %s\n", activitiesJSON)
	fmt.Fprintf(&b, "LIVRO DE OCORRÊNCIAS: %s\n\n", incidentsJSON)
	b.WriteString("O relatório deve:\n")
	b.WriteString("1. Ser profissional e executivo.\n")
	b.WriteString("2. Destacar a eficiência da equipe e a resolução de problemas (ocorrências).\n")
	b.WriteString("3. Apontar possíveis gargalos operacionais ou padrões de incidentes.\n")
	b.WriteString("4. Sugerir melhorias estratégicas e preventivas.")
	if p := strings.TrimSpace(customPrompt); p != "" {
		fmt.Fprintf(&b, "\n\nINSTRUÇÃO ESPECÍFICA DO USUÁRIO (Siga rigorosamente): %s", p)
	}
	b.WriteString("\n\nFormate a saída com títulos claros, use Markdown e mantenha um tom de autoridade e consultoria.")
	return b.String(), nil
}

func parseChecklist(text string) ([]ChecklistItem, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var items []ChecklistItem
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &items); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}
	out := items[:0]
	for _, item := range items {
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func period(from, to time.Time) string {
	if from.Year() == to.Year() && from.YearDay() == to.YearDay() {
		return from.Format("02/01/2006")
	}
	return fmt.Sprintf("%s a %s", from.Format("02/01/2006"), to.Format("02/01/2006"))
}
