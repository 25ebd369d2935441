package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dhruvbhatia/bizdesk-backend/internal/rag"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
)

// Generator produces text completions with an optional system instruction.
type Generator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

// Retriever finds the document chunks most relevant to a question within
// a role's index. Fallback supplies leading chunks when similarity search
// comes back empty.
type Retriever interface {
	Query(ctx context.Context, role enums.Role, question string, k int) ([]rag.Result, error)
	Fallback(ctx context.Context, role enums.Role, n int) []rag.Chunk
}

// InventoryReader supplies the full inventory for question answering.
type InventoryReader interface {
	Snapshot(ctx context.Context) ([]models.InventoryItem, error)
}

// Answer is a chat response with the sources that informed it.
type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
	Note    string   `json:"note,omitempty"`
}

// Source identifies a retrieved chunk used to ground an answer.
type Source struct {
	DocumentID string  `json:"document_id"`
	Distance   float64 `json:"distance"`
	Excerpt    string  `json:"excerpt"`
}

// Service answers questions with the generation model, grounded either in
// uploaded documents or in the inventory table.
type Service interface {
	Ask(ctx context.Context, role enums.Role, question string) (*Answer, error)
	AskInventory(ctx context.Context, role enums.Role, question string) (*Answer, error)
	AnalyzeSchema(ctx context.Context, header []string, samples [][]string) (string, error)
}

type service struct {
	generator Generator
	retriever Retriever
	inventory InventoryReader
	topK      int
}

// NewService constructs a chat service. topK controls how many document
// chunks are retrieved per question.
func NewService(generator Generator, retriever Retriever, inventory InventoryReader, topK int) Service {
	if topK <= 0 {
		topK = 3
	}
	return &service{
		generator: generator,
		retriever: retriever,
		inventory: inventory,
		topK:      topK,
	}
}

const excerptLimit = 200

func (s *service) Ask(ctx context.Context, role enums.Role, question string) (*Answer, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if strings.TrimSpace(question) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question is required")
	}

	results, err := s.retriever.Query(ctx, role, question, s.topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		for _, chunk := range s.retriever.Fallback(ctx, role, s.topK) {
			results = append(results, rag.Result{Chunk: chunk})
		}
	}

	prompt := buildDocumentPrompt(results, question)
	text, err := s.generator.GenerateText(ctx, systemInstructionFor(role), prompt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate answer")
	}

	answer := &Answer{Text: text}
	for _, result := range results {
		answer.Sources = append(answer.Sources, Source{
			DocumentID: result.Chunk.DocumentID.String(),
			Distance:   float64(result.Distance),
			Excerpt:    excerpt(result.Chunk.Text),
		})
	}
	return answer, nil
}

func (s *service) AskInventory(ctx context.Context, role enums.Role, question string) (*Answer, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if strings.TrimSpace(question) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question is required")
	}

	items, err := s.inventory.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	prompt := buildInventoryPrompt(items, question)
	text, err := s.generator.GenerateText(ctx, inventorySystemInstruction, prompt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate inventory answer")
	}

	answer := &Answer{Text: text}
	if wantsModification(question) {
		answer.Note = advisoryNote
	}
	return answer, nil
}

func (s *service) AnalyzeSchema(ctx context.Context, header []string, samples [][]string) (string, error) {
	if len(header) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "header is required")
	}

	text, err := s.generator.GenerateText(ctx, schemaSystemInstruction, buildSchemaPrompt(header, samples))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "analyze csv schema")
	}
	return text, nil
}

func excerpt(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= excerptLimit {
		return trimmed
	}
	// Back off to a rune boundary so the cut never splits a UTF-8 sequence.
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut] + "..."
}
