package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dhruvbhatia/bizdesk-backend/internal/rag"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubGenerator struct {
	text   string
	err    error
	system string
	prompt string
}

func (s *stubGenerator) GenerateText(_ context.Context, system, prompt string) (string, error) {
	s.system = system
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	if s.text == "" {
		return "generated answer", nil
	}
	return s.text, nil
}

type stubRetriever struct {
	results  []rag.Result
	fallback []rag.Chunk
	err      error
	gotK     int
}

func (s *stubRetriever) Query(_ context.Context, _ enums.Role, _ string, k int) ([]rag.Result, error) {
	s.gotK = k
	return s.results, s.err
}

func (s *stubRetriever) Fallback(_ context.Context, _ enums.Role, _ int) []rag.Chunk {
	return s.fallback
}

type stubInventoryReader struct {
	items []models.InventoryItem
	err   error
}

func (s *stubInventoryReader) Snapshot(_ context.Context) ([]models.InventoryItem, error) {
	return s.items, s.err
}

func TestAskGroundsAnswerInRetrievedChunks(t *testing.T) {
	docID := uuid.New()
	gen := &stubGenerator{}
	ret := &stubRetriever{results: []rag.Result{
		{Chunk: rag.Chunk{DocumentID: docID, Text: "Returns accepted within 7 days."}, Distance: 0.4},
		{Chunk: rag.Chunk{DocumentID: docID, Text: "Refunds take 3 business days."}, Distance: 0.9},
	}}
	svc := NewService(gen, ret, &stubInventoryReader{}, 3)

	answer, err := svc.Ask(context.Background(), enums.RoleShopOwner, "what is the return window?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if answer.Text != "generated answer" {
		t.Fatalf("text = %q", answer.Text)
	}
	if ret.gotK != 3 {
		t.Fatalf("retrieved k = %d, want 3", ret.gotK)
	}
	if !strings.Contains(gen.prompt, "Returns accepted within 7 days.") {
		t.Fatalf("prompt missing chunk text: %q", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "Question: what is the return window?") {
		t.Fatalf("prompt missing question: %q", gen.prompt)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(answer.Sources))
	}
	if answer.Sources[0].DocumentID != docID.String() {
		t.Fatalf("source doc = %s", answer.Sources[0].DocumentID)
	}
	if answer.Sources[1].Distance != 0.9 {
		t.Fatalf("source distance = %v", answer.Sources[1].Distance)
	}
}

func TestAskSelectsPersonaByRole(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewService(gen, &stubRetriever{}, &stubInventoryReader{}, 3)

	if _, err := svc.Ask(context.Background(), enums.RoleAdmin, "do I need a trade license?"); err != nil {
		t.Fatalf("Ask admin: %v", err)
	}
	if !strings.Contains(gen.system, "MSME") {
		t.Fatalf("admin system instruction = %q", gen.system)
	}

	if _, err := svc.Ask(context.Background(), enums.RoleShopOwner, "how do refunds work?"); err != nil {
		t.Fatalf("Ask shop: %v", err)
	}
	if !strings.Contains(gen.system, "customer service") {
		t.Fatalf("shop system instruction = %q", gen.system)
	}
}

func TestAskFallsBackToLeadingChunks(t *testing.T) {
	docID := uuid.New()
	gen := &stubGenerator{}
	ret := &stubRetriever{fallback: []rag.Chunk{
		{DocumentID: docID, Text: "Store opens at 9am."},
	}}
	svc := NewService(gen, ret, &stubInventoryReader{}, 3)

	answer, err := svc.Ask(context.Background(), enums.RoleShopOwner, "opening hours?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(gen.prompt, "Store opens at 9am.") {
		t.Fatalf("prompt missing fallback chunk: %q", gen.prompt)
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(answer.Sources))
	}
	if answer.Sources[0].Distance != 0 {
		t.Fatalf("fallback distance = %v, want 0", answer.Sources[0].Distance)
	}
}

func TestAskEmptyCorpusStillAnswers(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewService(gen, &stubRetriever{}, &stubInventoryReader{}, 3)

	answer, err := svc.Ask(context.Background(), enums.RoleAdmin, "what is GST?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(gen.prompt, "no documents have been uploaded yet") {
		t.Fatalf("prompt = %q", gen.prompt)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("sources = %+v, want none", answer.Sources)
	}
}

func TestAskValidation(t *testing.T) {
	svc := NewService(&stubGenerator{}, &stubRetriever{}, &stubInventoryReader{}, 3)

	_, err := svc.Ask(context.Background(), enums.RoleAdmin, "   ")
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("empty question code = %v", pkgerrors.As(err).Code())
	}
	_, err = svc.Ask(context.Background(), enums.Role("clerk"), "hello")
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("invalid role code = %v", pkgerrors.As(err).Code())
	}
}

func TestAskGeneratorFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	svc := NewService(gen, &stubRetriever{}, &stubInventoryReader{}, 3)

	_, err := svc.Ask(context.Background(), enums.RoleAdmin, "question")
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("code = %v, want dependency", pkgerrors.As(err).Code())
	}
}

func TestAskInventoryIncludesTable(t *testing.T) {
	gen := &stubGenerator{}
	inv := &stubInventoryReader{items: []models.InventoryItem{
		{ProductName: "Rice Bag 5kg", Quantity: 12, UnitPrice: decimal.RequireFromString("349.50"), Category: "groceries"},
	}}
	svc := NewService(gen, &stubRetriever{}, inv, 3)

	answer, err := svc.AskInventory(context.Background(), enums.RoleShopOwner, "how many rice bags are left?")
	if err != nil {
		t.Fatalf("AskInventory: %v", err)
	}
	if !strings.Contains(gen.prompt, "Rice Bag 5kg | 12 | 349.50 | groceries") {
		t.Fatalf("prompt missing inventory row: %q", gen.prompt)
	}
	if !strings.Contains(gen.system, "inventory analyst") {
		t.Fatalf("system = %q", gen.system)
	}
	if answer.Note != "" {
		t.Fatalf("unexpected note on a read question: %q", answer.Note)
	}
}

func TestAskInventoryModificationNote(t *testing.T) {
	svc := NewService(&stubGenerator{}, &stubRetriever{}, &stubInventoryReader{}, 3)

	answer, err := svc.AskInventory(context.Background(), enums.RoleAdmin, "Please update the rice quantity to 20.")
	if err != nil {
		t.Fatalf("AskInventory: %v", err)
	}
	if answer.Note == "" {
		t.Fatal("expected advisory note for a modification question")
	}

	// "updates" as a substring of another word must not trigger the note.
	answer, err = svc.AskInventory(context.Background(), enums.RoleAdmin, "show me the latest updates-report")
	if err != nil {
		t.Fatalf("AskInventory: %v", err)
	}
	if answer.Note != "" {
		t.Fatalf("substring match triggered note: %q", answer.Note)
	}
}

func TestAnalyzeSchema(t *testing.T) {
	gen := &stubGenerator{text: "The file has name, qty and price columns."}
	svc := NewService(gen, &stubRetriever{}, &stubInventoryReader{}, 3)

	summary, err := svc.AnalyzeSchema(context.Background(), []string{"name", "qty", "price"}, [][]string{{"Rice", "10", "349.5"}})
	if err != nil {
		t.Fatalf("AnalyzeSchema: %v", err)
	}
	if summary == "" {
		t.Fatal("empty summary")
	}
	if !strings.Contains(gen.prompt, "Header: name, qty, price") {
		t.Fatalf("prompt = %q", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "Rice, 10, 349.5") {
		t.Fatalf("prompt missing sample row: %q", gen.prompt)
	}

	if _, err := svc.AnalyzeSchema(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestExcerptKeepsRunesIntact(t *testing.T) {
	short := excerpt("a short chunk")
	if short != "a short chunk" {
		t.Fatalf("short excerpt = %q", short)
	}

	// Devanagari runes are 3 bytes each; a byte-offset cut would land
	// mid-sequence for most limits.
	long := strings.Repeat("नमस्ते ", 40)
	got := excerpt(long)
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("long excerpt missing ellipsis: %q", got)
	}
	if len(got) > excerptLimit+len("...") {
		t.Fatalf("excerpt length = %d", len(got))
	}
}

func TestWantsModification(t *testing.T) {
	cases := []struct {
		question string
		want     bool
	}{
		{"add 10 units of rice", true},
		{"can you delete the old item?", true},
		{"what is the address of the supplier?", false},
		{"how many additional units arrived?", false},
		{"Set the price to 99.", true},
	}
	for _, tc := range cases {
		if got := wantsModification(tc.question); got != tc.want {
			t.Errorf("wantsModification(%q) = %v, want %v", tc.question, got, tc.want)
		}
	}
}
