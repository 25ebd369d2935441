package rag

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Chunk is one text span of an ingested document together with its
// embedding. Chunks are immutable once added.
type Chunk struct {
	DocumentID uuid.UUID
	Text       string
	Vector     []float32
}

// Result pairs a chunk with its Euclidean distance to the query vector.
type Result struct {
	Chunk    Chunk
	Distance float32
}

// Index is a flat L2 index: every query compares against every stored
// vector. Exact by construction; no approximate-search structures.
type Index struct {
	dimension int
	chunks    []Chunk
}

// NewIndex creates an empty index for vectors of the given width.
func NewIndex(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("index dimension must be positive")
	}
	return &Index{dimension: dimension}, nil
}

// Dimension returns the vector width the index accepts.
func (i *Index) Dimension() int {
	return i.dimension
}

// Len returns the number of stored chunks.
func (i *Index) Len() int {
	return len(i.chunks)
}

// Add appends chunks to the index. All vectors must match the index
// dimension; a mismatch rejects the whole batch.
func (i *Index) Add(chunks []Chunk) error {
	for pos, chunk := range chunks {
		if len(chunk.Vector) != i.dimension {
			return fmt.Errorf("chunk %d: vector dimension %d does not match index dimension %d", pos, len(chunk.Vector), i.dimension)
		}
	}
	i.chunks = append(i.chunks, chunks...)
	return nil
}

// Search returns the k nearest chunks to the query vector by Euclidean
// distance, closest first. Fewer than k results are returned when the
// index holds fewer chunks.
func (i *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != i.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), i.dimension)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	results := make([]Result, 0, len(i.chunks))
	for _, chunk := range i.chunks {
		results = append(results, Result{
			Chunk:    chunk,
			Distance: euclideanDistance(query, chunk.Vector),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Head returns up to n chunks in insertion order. Used as the fallback
// context when retrieval finds nothing relevant.
func (i *Index) Head(n int) []Chunk {
	if n <= 0 || len(i.chunks) == 0 {
		return nil
	}
	if n > len(i.chunks) {
		n = len(i.chunks)
	}
	head := make([]Chunk, n)
	copy(head, i.chunks[:n])
	return head
}

func euclideanDistance(a, b []float32) float32 {
	var sum float64
	for idx := range a {
		diff := float64(a[idx]) - float64(b[idx])
		sum += diff * diff
	}
	return float32(math.Sqrt(sum))
}
