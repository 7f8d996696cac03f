package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
	model  string
}

// DraftedTask is a task proposal extracted from free text
type DraftedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

func NewAIService(apiKey, model string) *AIService {
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// NewAIServiceWithConfig builds the service on a custom client configuration
func NewAIServiceWithConfig(config openai.ClientConfig, model string) *AIService {
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// DraftTasksFromText analyzes a project description and extracts collaboration tasks
func (s *AIService) DraftTasksFromText(ctx context.Context, text string) ([]DraftedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`Sos un asistente que planifica proyectos de ONGs. Extraé del siguiente texto las tareas concretas que una organización colaboradora podría cubrir.

Fecha y hora actual: %s

Texto:
%s

Devolvé un arreglo JSON con este formato:
[
  {
    "title": "título breve de la tarea (entre 3 y 150 caracteres)",
    "description": "detalle de la tarea",
    "dueDate": "fecha límite en ISO8601, por ejemplo 2025-10-28T23:59:59Z, o null si no se menciona"
  }
]

Reglas:
- Si no hay tareas devolvé un arreglo vacío []
- Convertí expresiones relativas ("mañana", "la semana que viene") en fechas concretas
- dueDate siempre es un string ISO8601 o null
- Devolvé solo JSON, sin texto adicional`, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseDrafts(resp.Choices[0].Message.Content)
}

// parseDrafts decodes the model output, tolerating a surrounding markdown code fence
func parseDrafts(content string) ([]DraftedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var drafts []DraftedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}
