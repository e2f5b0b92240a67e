package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/riverkeep/river-ops/internal/calendar"
)

// ChatCompleter is the part of the OpenAI client the drafting service uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client ChatCompleter
	model  string
}

// GeneratedTask is one task proposed by the model, not yet validated.
type GeneratedTask struct {
	Date         string `json:"date"`
	Section      string `json:"section"`
	AssigneeType string `json:"assignee_type"`
	Instructions string `json:"instructions"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithClient(openai.NewClient(apiKey))
}

func NewAIServiceWithClient(client ChatCompleter) *AIService {
	return &AIService{
		client: client,
		model:  openai.GPT4o,
	}
}

// GenerateTasksFromText turns a free-text work plan into task proposals.
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string, today time.Time, sections []string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You plan field work for a river restoration team. Extract concrete tasks from the text below.

Today: %s (%s)
Known sections: %s

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "date": "YYYY-MM-DD",
    "section": "one of the known sections, or empty when none applies",
    "assignee_type": "team or manager",
    "instructions": "what to do, one or two sentences"
  }
]

Rules:
- Return [] when the text contains no tasks
- Resolve relative dates ("tomorrow", "next Tuesday") against today
- Office, reporting and purchasing work goes to the manager; field work goes to the team
- Return only JSON, no commentary`,
		calendar.Key(today), today.Weekday(), strings.Join(sections, ", "), text)

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

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

// stripCodeFence removes a ```json fence the model sometimes wraps output in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
