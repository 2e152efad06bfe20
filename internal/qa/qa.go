package qa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/edgard/nanabot/internal/config"
	"github.com/edgard/nanabot/internal/gemini"
	"github.com/edgard/nanabot/internal/sheets"
)

// Answer length bounds. An AI answer outside them is treated as implausible
// and replaced with the deterministic fallback.
const (
	minAnswerLength = 50
	maxAnswerLength = 1000
)

// Service answers questions over recorded history and logs every answer.
type Service struct {
	store sheets.Store
	ai    gemini.Client
	loc   *time.Location
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates a question answering service.
func NewService(cfg *config.Config, store sheets.Store, ai gemini.Client, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve timezone: %w", err)
	}

	return &Service{
		store: store,
		ai:    ai,
		loc:   loc,
		log:   logger.With("component", "qa_service"),
		now:   time.Now,
	}, nil
}

// Answer produces an answer for a caregiver question and appends one Q&A_Log
// row. The row's backed_by_data flag is true only for an AI answer grounded
// in at least one record. A failed log append is logged and swallowed; the
// answer is already composed and must reach the user.
func (s *Service) Answer(ctx context.Context, question, identity, userName string) (string, error) {
	topics := DetectTopics(question)
	s.log.DebugContext(ctx, "Answering question", "chat_id", identity, "topics", topics)

	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	weekAgo := now.AddDate(0, 0, -7)

	sections, hasData, err := s.gather(ctx, topics, dayStart, weekAgo)
	if err != nil {
		return "", err
	}

	answer, fromAI := s.generate(ctx, question, sections, hasData)

	rec := &sheets.QARecord{
		Timestamp:    now,
		User:         userName,
		Question:     question,
		Answer:       answer,
		BackedByData: fromAI && hasData,
	}
	if err := s.store.AppendRecord(ctx, rec); err != nil {
		s.log.ErrorContext(ctx, "Failed to append Q&A log row", "error", err, "chat_id", identity)
	}

	s.log.InfoContext(ctx, "Question answered",
		"chat_id", identity, "topics", topics, "from_ai", fromAI, "backed_by_data", rec.BackedByData)
	return answer, nil
}

// gather fetches the last week of records for each topic and renders the
// per-topic summaries used as AI context and fallback material.
func (s *Service) gather(ctx context.Context, topics []Topic, dayStart, weekAgo time.Time) ([]string, bool, error) {
	var sections []string
	hasData := false

	for _, topic := range topics {
		switch topic {
		case TopicSleep:
			records, err := s.store.SleepSince(ctx, weekAgo)
			if err != nil {
				return nil, false, err
			}
			if len(records) > 0 {
				hasData = true
			}
			sections = append(sections, summarizeSleep(records, dayStart))
		case TopicFood:
			records, err := s.store.FoodSince(ctx, weekAgo)
			if err != nil {
				return nil, false, err
			}
			if len(records) > 0 {
				hasData = true
			}
			sections = append(sections, summarizeFood(records, dayStart))
		case TopicBehavior:
			records, err := s.store.BehaviorSince(ctx, weekAgo)
			if err != nil {
				return nil, false, err
			}
			if len(records) > 0 {
				hasData = true
			}
			sections = append(sections, summarizeBehavior(records, dayStart))
		}
	}
	return sections, hasData, nil
}

// generate asks the AI for an answer and validates its plausibility,
// reporting whether the returned text came from the AI.
func (s *Service) generate(ctx context.Context, question string, sections []string, hasData bool) (string, bool) {
	answer, err := s.ai.Answer(ctx, question, strings.Join(sections, "\n\n"))
	if err == nil {
		answer = strings.TrimSpace(answer)
		if n := len(answer); n > minAnswerLength && n < maxAnswerLength {
			return answer, true
		}
		s.log.WarnContext(ctx, "AI answer length out of bounds, using fallback", "length", len(answer))
	} else {
		s.log.WarnContext(ctx, "AI answer failed, using fallback", "error", err)
	}
	return fallbackAnswer(sections, hasData), false
}

// fallbackAnswer synthesizes an answer directly from the gathered summaries.
func fallbackAnswer(sections []string, hasData bool) string {
	if !hasData {
		return "🤖 I don't have any recorded data for that yet. Keep logging and ask me again soon!"
	}
	return "🤖 Here's what the records show:\n\n" + strings.Join(sections, "\n\n")
}
