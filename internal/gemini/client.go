// Package gemini implements integration with Google's Gemini AI API.
// It classifies caregiver messages into structured care records and answers
// questions over recorded history.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/nanabot/internal/config"
	"github.com/edgard/nanabot/internal/sheets"
)

// Client defines the interface for AI operations used throughout the
// application.
type Client interface {
	// Classify reads a caregiver message into a structured record. It never
	// fails: after all attempts are exhausted it returns a low-confidence
	// fallback preserving the original text.
	Classify(ctx context.Context, text string) sheets.ParsedMessage

	// Answer generates a short natural-language answer to a question, grounded
	// in the provided data context.
	Answer(ctx context.Context, question, dataContext string) (string, error)

	// Healthcheck verifies that the API is reachable with the configured
	// credentials and model.
	Healthcheck(ctx context.Context) error
}

type sdkClient struct {
	genaiClient    *genai.Client
	log            *slog.Logger
	contentConfig  *genai.GenerateContentConfig
	modelName      string
	maxAttempts    int
	answerAttempts int
	retryDelay     time.Duration
}

// NewClient creates a new Gemini AI client with the provided configuration.
// It initializes the connection to the Gemini API and sets up generation
// parameters shared by all calls.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	baseCfg := &genai.GenerateContentConfig{
		Temperature:     &cfg.Temperature,
		TopP:            &cfg.TopP,
		MaxOutputTokens: cfg.MaxOutputTokens,

		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:    gi,
		log:            logger,
		contentConfig:  baseCfg,
		modelName:      cfg.ModelName,
		maxAttempts:    cfg.MaxAttempts,
		answerAttempts: cfg.AnswerAttempts,
		retryDelay:     time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

var classificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category":      {Type: genai.TypeString, Description: "One of: food, sleep, cry, behavior, question, other."},
		"confidence":    {Type: genai.TypeNumber, Description: "Classification confidence between 0.0 and 1.0."},
		"item":          {Type: genai.TypeString, Description: "Food or drink item name. Empty if not applicable."},
		"qty_value":     {Type: genai.TypeNumber, Description: "Quantity amount."},
		"qty_unit":      {Type: genai.TypeString, Description: "One of: ml, teaspoon, tablespoon, grams, minutes, hours, count."},
		"method":        {Type: genai.TypeString, Description: "One of: bottle, breast, solids, spoon."},
		"start_time":    {Type: genai.TypeString, Description: "Start of a time range as HH:MM."},
		"end_time":      {Type: genai.TypeString, Description: "End of a time range as HH:MM."},
		"duration_min":  {Type: genai.TypeInteger, Description: "Duration in minutes."},
		"intensity_1_5": {Type: genai.TypeInteger, Description: "Intensity from 1 to 5."},
		"description":   {Type: genai.TypeString, Description: "Short free-text description."},
		"notes":         {Type: genai.TypeString, Description: "Additional caregiver notes."},
	},
	Required: []string{"category", "confidence"},
}

// Classify reads a caregiver message into a structured record. Every kind of
// failure is retried with a fixed delay; once attempts run out the fallback
// classification is returned instead of an error.
func (c *sdkClient) Classify(ctx context.Context, text string) sheets.ParsedMessage {
	c.log.DebugContext(ctx, "Classifying message", "length", len(text))

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	copyCfg := *c.contentConfig
	copyCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: ClassifySystemInstruction}}}
	copyCfg.ResponseMIMEType = "application/json"
	copyCfg.ResponseSchema = classificationSchema

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		pm, err := c.classifyOnce(ctx, contents, &copyCfg)
		if err == nil {
			c.log.DebugContext(ctx, "Message classified",
				"category", pm.Category, "confidence", pm.Confidence, "attempt", attempt)
			return pm
		}

		var genAiAPIError *genai.APIError
		if errors.As(err, &genAiAPIError) {
			c.log.WarnContext(ctx, "Classification attempt failed",
				"attempt", attempt, "max_attempts", c.maxAttempts, "code", genAiAPIError.Code, "error", err)
		} else {
			c.log.WarnContext(ctx, "Classification attempt failed",
				"attempt", attempt, "max_attempts", c.maxAttempts, "error", err)
		}

		if attempt < c.maxAttempts {
			time.Sleep(c.retryDelay)
		}
	}

	c.log.ErrorContext(ctx, "Classification failed on all attempts, using fallback", "attempts", c.maxAttempts)
	return Fallback(text)
}

func (c *sdkClient) classifyOnce(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (sheets.ParsedMessage, error) {
	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return sheets.ParsedMessage{}, fmt.Errorf("gemini API call failed: %w", err)
	}

	raw, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		return sheets.ParsedMessage{}, err
	}

	pm, err := ParseClassification(raw)
	if err != nil {
		c.log.WarnContext(ctx, "Classification response was not parseable", "error", err, "response_text", raw)
		return sheets.ParsedMessage{}, err
	}
	return pm, nil
}

// Answer generates a short natural-language answer to a question, grounded in
// the provided data context. The caller validates the answer's plausibility
// and falls back to a deterministic summary on error.
func (c *sdkClient) Answer(ctx context.Context, question, dataContext string) (string, error) {
	c.log.DebugContext(ctx, "Generating answer", "question_length", len(question), "context_length", len(dataContext))

	var sb strings.Builder
	sb.WriteString("Recorded data:\n")
	sb.WriteString(dataContext)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)

	contents := []*genai.Content{genai.NewContentFromText(sb.String(), genai.RoleUser)}

	copyCfg := *c.contentConfig
	copyCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: AnswerSystemInstruction}}}

	var lastErr error
	for attempt := 1; attempt <= c.answerAttempts; attempt++ {
		resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, &copyCfg)
		if err == nil {
			var text string
			if text, err = c.extractTextFromResponse(ctx, resp); err == nil {
				return strings.TrimSpace(text), nil
			}
		}

		lastErr = err
		c.log.WarnContext(ctx, "Answer attempt failed",
			"attempt", attempt, "max_attempts", c.answerAttempts, "error", err)
		if attempt < c.answerAttempts {
			time.Sleep(c.retryDelay)
		}
	}

	return "", fmt.Errorf("gemini answer generation failed: %w", lastErr)
}

// Healthcheck verifies that the API is reachable with the configured
// credentials and model. CountTokens is used as a cheap probe that does not
// consume generation quota.
func (c *sdkClient) Healthcheck(ctx context.Context) error {
	contents := []*genai.Content{genai.NewContentFromText("ping", genai.RoleUser)}
	if _, err := c.genaiClient.Models.CountTokens(ctx, c.modelName, contents, nil); err != nil {
		return fmt.Errorf("gemini healthcheck failed: %w", err)
	}
	return nil
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	op := "gemini_operation"
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			parts := strings.Split(fn.Name(), ".")
			if len(parts) >= 2 {
				op = parts[len(parts)-1]
			}
		}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "operation", op, "reason", reasonMsg)
		return "", fmt.Errorf("%s blocked by safety filter: %s", op, reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "operation", op, "finish_reason", finishReason)

		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonStop {
			return "", fmt.Errorf("%s returned no content, finish reason: %s", op, finishReason)
		}

		return "", fmt.Errorf("%s returned empty content", op)
	}

	text := resp.Text()
	if text == "" {
		c.log.WarnContext(ctx, "Gemini response text is empty", "operation", op)
		return "", fmt.Errorf("%s returned empty text", op)
	}

	return text, nil
}
