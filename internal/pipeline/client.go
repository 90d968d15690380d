package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// Schema is the structural contract a generative response must satisfy
// after JSON decoding. Responses failing Validate are re-prompted with a
// correction hint.
type Schema interface {
	Validate() error
}

// Generator issues one schema-enforced generative call. Implementations
// retry internally and fail with a GenerationError once attempts are spent.
type Generator interface {
	Generate(ctx context.Context, prompt string, out Schema) error
}

// GeminiClient runs prompts through a Gemini agent. Stateless across
// invocations: every call gets its own agent session which is deleted when
// the call returns.
type GeminiClient struct {
	cfg      *Config
	runner   *runner.Runner
	sessions session.Service
	appName  string

	// call performs one round trip and returns the raw response text.
	// Production wiring points it at the runner-backed roundTrip.
	call func(ctx context.Context, prompt string) (string, error)
}

// NewGeminiClient builds the model, agent and runner once.
func NewGeminiClient(cfg *Config, apiKey string) (*GeminiClient, error) {
	ctx := context.Background()
	model, err := gemini.NewModel(ctx, cfg.Model, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}

	agentName := "roadmap generator"
	roadmapAgent, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Generate career roadmap content",
		Instruction: jsonOnlyInstruction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        roadmapAgent.Name(),
		Agent:          roadmapAgent,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %v", err)
	}

	c := &GeminiClient{
		cfg:      cfg,
		runner:   r,
		sessions: sessions,
		appName:  agentName,
	}
	c.call = c.roundTrip
	return c, nil
}

// Generate sends the prompt, decodes the response into out and validates
// it. Invalid responses are re-prompted with an error-correction hint,
// transient upstream failures are retried with exponential backoff and
// jitter, and the whole loop gives up with a typed GenerationError after
// cfg.MaxRetries attempts.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, out Schema) error {
	var lastErr error
	reason := ReasonUpstreamFailure
	attemptPrompt := prompt

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return fmt.Errorf("generation canceled: %w", err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		raw, err := c.call(callCtx, attemptPrompt)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				// Caller gave up; do not burn remaining attempts.
				return fmt.Errorf("generation canceled: %w", ctx.Err())
			}
			lastErr = err
			if errors.Is(err, context.DeadlineExceeded) {
				reason = ReasonTimeout
			} else {
				reason = ReasonUpstreamFailure
			}
			continue
		}

		cleaned := CleanJSON(raw)
		if err := json.Unmarshal([]byte(cleaned), out); err != nil {
			lastErr = fmt.Errorf("json unmarshal error: %w", err)
			reason = ReasonSchemaInvalid
			attemptPrompt = prompt + correctionHint(lastErr)
			continue
		}
		if err := out.Validate(); err != nil {
			lastErr = fmt.Errorf("schema validation error: %w", err)
			reason = ReasonSchemaInvalid
			attemptPrompt = prompt + correctionHint(lastErr)
			continue
		}
		return nil
	}

	return &GenerationError{Reason: reason, Attempts: c.cfg.MaxRetries, Err: lastErr}
}

// roundTrip goes once through the agent runner using a throwaway session,
// returning the final response text.
func (c *GeminiClient) roundTrip(ctx context.Context, prompt string) (string, error) {
	agentSession, err := c.sessions.Create(ctx, &session.CreateRequest{
		AppName:   c.appName,
		UserID:    "pipeline",
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		// Best effort, the in-memory service reclaims these anyway.
		_ = c.sessions.Delete(context.Background(), &session.DeleteRequest{
			AppName:   agentSession.Session.AppName(),
			UserID:    agentSession.Session.UserID(),
			SessionID: agentSession.Session.ID(),
		})
	}()

	stream := c.runner.Run(ctx, agentSession.Session.UserID(), agentSession.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event != nil && event.IsFinalResponse() && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}

	if output == "" {
		return "", fmt.Errorf("empty agent response")
	}
	return output, nil
}

// wait sleeps for the backoff delay before retry number attempt, honoring
// cancellation. Delay doubles per attempt, capped, with up to 50% jitter.
func (c *GeminiClient) wait(ctx context.Context, attempt int) error {
	delay := c.cfg.BaseDelay << (attempt - 1)
	if delay > c.cfg.MaxDelay {
		delay = c.cfg.MaxDelay
	}
	delay += rand.N(delay/2 + 1)
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func correctionHint(err error) string {
	return fmt.Sprintf("\n\nYour previous response was rejected: %v.\nReturn a single corrected JSON object and nothing else.", err)
}

// CleanJSON strips the markdown fences models like to wrap JSON in.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
