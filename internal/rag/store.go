package rag

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// Store owns the persisted per-role indices. Admin and shop owner chunks
// live in separate files and never mix; every read or write goes through
// the role's scope.
type Store struct {
	mu        sync.RWMutex
	dir       string
	dimension int
	indices   map[string]*Index
}

type persistedChunk struct {
	DocumentID uuid.UUID
	Text       string
	Vector     []float32
}

type persistedIndex struct {
	Dimension int
	Chunks    []persistedChunk
}

// NewStore loads any existing index files from dir, creating empty
// indices for scopes without a file.
func NewStore(dir string, dimension int) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("index directory is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("index dimension must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	s := &Store{
		dir:       dir,
		dimension: dimension,
		indices:   make(map[string]*Index),
	}

	for _, role := range []enums.Role{enums.RoleAdmin, enums.RoleShopOwner} {
		idx, err := s.loadIndex(role.IndexScope())
		if err != nil {
			return nil, err
		}
		s.indices[role.IndexScope()] = idx
	}

	return s, nil
}

// Add appends chunks to the role's index and persists the index file.
func (s *Store) Add(role enums.Role, chunks []Chunk) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indices[role.IndexScope()]
	if err := idx.Add(chunks); err != nil {
		return err
	}
	return s.saveIndex(role.IndexScope(), idx)
}

// Search queries the role's index only. Results from the other role's
// index can never appear.
func (s *Store) Search(role enums.Role, query []float32, k int) ([]Result, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indices[role.IndexScope()].Search(query, k)
}

// Head returns up to n chunks from the role's index in insertion order.
func (s *Store) Head(role enums.Role, n int) []Chunk {
	if !role.IsValid() {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indices[role.IndexScope()].Head(n)
}

// Len reports the chunk count of the role's index.
func (s *Store) Len(role enums.Role) int {
	if !role.IsValid() {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indices[role.IndexScope()].Len()
}

func (s *Store) indexPath(scope string) string {
	return filepath.Join(s.dir, scope+"_index.gob")
}

func (s *Store) loadIndex(scope string) (*Index, error) {
	path := s.indexPath(scope)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewIndex(s.dimension)
	}
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	defer file.Close()

	var persisted persistedIndex
	if err := gob.NewDecoder(file).Decode(&persisted); err != nil {
		return nil, fmt.Errorf("decoding index %s: %w", path, err)
	}
	if persisted.Dimension != s.dimension {
		return nil, fmt.Errorf("index %s has dimension %d, expected %d (rebuild the index after changing the embedding model)", path, persisted.Dimension, s.dimension)
	}

	idx, err := NewIndex(s.dimension)
	if err != nil {
		return nil, err
	}
	chunks := make([]Chunk, 0, len(persisted.Chunks))
	for _, chunk := range persisted.Chunks {
		chunks = append(chunks, Chunk(chunk))
	}
	if err := idx.Add(chunks); err != nil {
		return nil, err
	}
	return idx, nil
}

// saveIndex writes the full index through a temp file and rename so a
// crash mid-write never leaves a truncated index behind.
func (s *Store) saveIndex(scope string, idx *Index) error {
	persisted := persistedIndex{
		Dimension: idx.Dimension(),
		Chunks:    make([]persistedChunk, 0, idx.Len()),
	}
	for _, chunk := range idx.chunks {
		persisted.Chunks = append(persisted.Chunks, persistedChunk(chunk))
	}

	path := s.indexPath(scope)
	tmp, err := os.CreateTemp(s.dir, scope+"_index_*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}

	if err := gob.NewEncoder(tmp).Encode(persisted); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}
