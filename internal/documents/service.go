package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhruvbhatia/bizdesk-backend/internal/rag"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/google/uuid"
)

// Embedder turns texts into fixed-dimension vectors via the external
// embedding model.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexStore is the role-scoped vector index surface the service writes
// to and queries.
type IndexStore interface {
	Add(role enums.Role, chunks []rag.Chunk) error
	Search(role enums.Role, query []float32, k int) ([]rag.Result, error)
	Head(role enums.Role, n int) []rag.Chunk
	Len(role enums.Role) int
}

type repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRole(ctx context.Context, role enums.Role) ([]models.Document, error)
}

// Service handles document ingestion and retrieval.
type Service interface {
	Ingest(ctx context.Context, role enums.Role, filename string, data []byte) (*models.Document, error)
	Query(ctx context.Context, role enums.Role, question string, k int) ([]rag.Result, error)
	Fallback(ctx context.Context, role enums.Role, n int) []rag.Chunk
	List(ctx context.Context, role enums.Role) ([]models.Document, error)
}

type service struct {
	repo         repository
	index        IndexStore
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
}

// ServiceParams bundles the dependencies required to build a document service.
type ServiceParams struct {
	Repo         repository
	Index        IndexStore
	Embedder     Embedder
	ChunkSize    int
	ChunkOverlap int
}

// NewService constructs a document service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("document repository is required")
	}
	if params.Index == nil {
		return nil, fmt.Errorf("index store is required")
	}
	if params.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if params.ChunkSize <= 0 {
		params.ChunkSize = DefaultChunkSize
	}
	if params.ChunkOverlap < 0 || params.ChunkOverlap >= params.ChunkSize {
		params.ChunkOverlap = DefaultChunkOverlap
	}
	return &service{
		repo:         params.Repo,
		index:        params.Index,
		embedder:     params.Embedder,
		chunkSize:    params.ChunkSize,
		chunkOverlap: params.ChunkOverlap,
	}, nil
}

func (s *service) Ingest(ctx context.Context, role enums.Role, filename string, data []byte) (*models.Document, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	text, err := ExtractText(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "extract document text")
	}
	if strings.TrimSpace(text) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no text content found in the uploaded file")
	}

	texts := ChunkWords(text, s.chunkSize, s.chunkOverlap)
	if len(texts) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "could not create text chunks from the document")
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "embed document chunks")
	}
	if len(vectors) != len(texts) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "embedding count mismatch")
	}

	docID := uuid.New()
	chunks := make([]rag.Chunk, 0, len(texts))
	for i, chunkText := range texts {
		chunks = append(chunks, rag.Chunk{
			DocumentID: docID,
			Text:       chunkText,
			Vector:     vectors[i],
		})
	}

	// Row first, chunks second. A failed insert leaves the index
	// untouched; a failed index write removes the row again so no
	// orphaned chunks survive in the gob file.
	doc := &models.Document{
		ID:         docID,
		Role:       role,
		Filename:   strings.TrimSpace(filename),
		ChunkCount: len(chunks),
	}
	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "insert document row")
	}

	if err := s.index.Add(role, chunks); err != nil {
		_ = s.repo.Delete(ctx, docID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "append to vector index")
	}
	return created, nil
}

func (s *service) Query(ctx context.Context, role enums.Role, question string, k int) ([]rag.Result, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if strings.TrimSpace(question) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question is required")
	}
	if k <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "k must be positive")
	}
	if s.index.Len(role) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "embed query")
	}
	if len(vectors) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "embedding count mismatch")
	}

	results, err := s.index.Search(role, vectors[0], k)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "search vector index")
	}
	return results, nil
}

func (s *service) Fallback(ctx context.Context, role enums.Role, n int) []rag.Chunk {
	return s.index.Head(role, n)
}

func (s *service) List(ctx context.Context, role enums.Role) ([]models.Document, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	rows, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list documents")
	}
	return rows, nil
}
