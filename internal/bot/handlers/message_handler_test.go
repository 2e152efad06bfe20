package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/edgard/nanabot/internal/config"
	"github.com/edgard/nanabot/internal/qa"
	"github.com/edgard/nanabot/internal/sheets"
)

type stubStore struct {
	user      *sheets.User
	userErr   error
	appended  []sheets.Record
	appendErr error
}

func (s *stubStore) Ping(ctx context.Context) error { return nil }

func (s *stubStore) AppendRecord(ctx context.Context, rec sheets.Record) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, rec)
	return nil
}

func (s *stubStore) FoodSince(ctx context.Context, since time.Time) ([]sheets.FoodRecord, error) {
	return nil, nil
}

func (s *stubStore) SleepSince(ctx context.Context, since time.Time) ([]sheets.SleepRecord, error) {
	return nil, nil
}

func (s *stubStore) BehaviorSince(ctx context.Context, since time.Time) ([]sheets.BehaviorRecord, error) {
	return nil, nil
}

func (s *stubStore) GetUser(ctx context.Context, chatID string) (*sheets.User, error) {
	return s.user, s.userErr
}

func (s *stubStore) AdminIDs(ctx context.Context) ([]string, error) { return nil, nil }

func (s *stubStore) AllRows(ctx context.Context, sheet string) ([][]string, error) {
	return nil, nil
}

type stubAI struct {
	classification sheets.ParsedMessage
	answer         string
	answerErr      error
	answerCalls    int
}

func (a *stubAI) Classify(ctx context.Context, text string) sheets.ParsedMessage {
	return a.classification
}

func (a *stubAI) Answer(ctx context.Context, question, dataContext string) (string, error) {
	a.answerCalls++
	return a.answer, a.answerErr
}

func (a *stubAI) Healthcheck(ctx context.Context) error { return nil }

func newTestDeps(t *testing.T, store *stubStore, ai *stubAI) HandlerDeps {
	t.Helper()

	cfg := &config.Config{Timezone: "UTC", Messages: config.DefaultMessages}

	qaSvc, err := qa.NewService(cfg, store, ai, nil)
	if err != nil {
		t.Fatalf("qa.NewService() error = %v", err)
	}

	return HandlerDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,
		Store:  store,
		AI:     ai,
		QA:     qaSvc,
	}
}

func TestNeedsClarification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		confidence float64
		want       bool
	}{
		{name: "well below threshold", confidence: 0.30, want: true},
		{name: "just below threshold", confidence: 0.59, want: true},
		{name: "exactly at threshold files", confidence: 0.60, want: false},
		{name: "just above threshold", confidence: 0.61, want: false},
		{name: "full confidence", confidence: 1.0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pm := sheets.ParsedMessage{Category: sheets.CategoryFood, Confidence: tt.confidence}
			if got := needsClarification(pm, config.DefaultConfidenceThreshold); got != tt.want {
				t.Errorf("needsClarification(confidence=%.2f, threshold=%.2f) = %v, want %v",
					tt.confidence, config.DefaultConfidenceThreshold, got, tt.want)
			}
		})
	}
}

func TestFileMessageAppendsRecord(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	deps := newTestDeps(t, store, &stubAI{})

	qty := 120.0
	parsed := sheets.ParsedMessage{
		Category:   sheets.CategoryFood,
		Confidence: 0.9,
		Item:       "formula",
		QtyValue:   &qty,
		QtyUnit:    "ml",
		Method:     "bottle",
	}

	reply, err := fileMessage(context.Background(), deps, parsed, "drank 120 ml formula", "Dana", "12345")
	if err != nil {
		t.Fatalf("fileMessage() error = %v", err)
	}

	if len(store.appended) != 1 {
		t.Fatalf("appended %d records, want 1", len(store.appended))
	}
	rec := store.appended[0]
	if rec.Sheet() != sheets.SheetFood {
		t.Errorf("record sheet = %q, want %q", rec.Sheet(), sheets.SheetFood)
	}
	if reply != rec.Confirmation() {
		t.Errorf("reply = %q, want the record confirmation %q", reply, rec.Confirmation())
	}
	if !strings.HasPrefix(reply, "🍼 Food logged:") {
		t.Errorf("reply %q does not start with the food confirmation", reply)
	}
}

func TestFileMessageRoutesQuestionToQA(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	ai := &stubAI{answer: "She slept well today, one long nap in the morning and a shorter one after lunch. 😊"}
	deps := newTestDeps(t, store, ai)

	parsed := sheets.ParsedMessage{Category: sheets.CategoryQuestion, Confidence: 0.95}

	reply, err := fileMessage(context.Background(), deps, parsed, "How did she sleep?", "Dana", "12345")
	if err != nil {
		t.Fatalf("fileMessage() error = %v", err)
	}
	if reply != ai.answer {
		t.Errorf("reply = %q, want the QA answer", reply)
	}
	if ai.answerCalls != 1 {
		t.Errorf("AI answered %d times, want 1", ai.answerCalls)
	}

	if len(store.appended) != 1 {
		t.Fatalf("appended %d records, want 1 Q&A log row", len(store.appended))
	}
	if _, ok := store.appended[0].(*sheets.QARecord); !ok {
		t.Errorf("appended record type = %T, want *sheets.QARecord", store.appended[0])
	}
}

func TestFileMessageAppendError(t *testing.T) {
	t.Parallel()

	store := &stubStore{appendErr: errors.New("quota exceeded")}
	deps := newTestDeps(t, store, &stubAI{})

	parsed := sheets.ParsedMessage{Category: sheets.CategorySleep, Confidence: 0.8, StartTime: "13:00", EndTime: "14:00"}

	reply, err := fileMessage(context.Background(), deps, parsed, "slept 13:00-14:00", "Dana", "12345")
	if err == nil {
		t.Fatal("fileMessage() error = nil, want append failure")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error %q does not wrap the storage failure", err)
	}
	if reply != "" {
		t.Errorf("reply = %q, want empty on failure", reply)
	}
}
