package documents

import "strings"

const (
	// DefaultChunkSize is the chunk width in words.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how many words consecutive chunks share.
	DefaultChunkOverlap = 100
)

// ChunkWords splits text into fixed-size word windows with overlap. The
// last chunk may be shorter; empty chunks are dropped.
func ChunkWords(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 10
		}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := size - overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.TrimSpace(strings.Join(words[start:end], " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(words) {
			break
		}
	}
	return chunks
}
