package chunker

import (
	"fmt"

	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

// TextChunk is one window over the source text. Offsets are rune positions
// so the same input always yields the same chunk boundaries.
type TextChunk struct {
	Text  string
	Start int
	End   int
	Seq   int
}

// Chunk splits text into fixed-size windows of size runes with overlap runes
// shared between consecutive windows. Overlap must be smaller than size so
// every step makes forward progress.
func Chunk(text string, size, overlap int) ([]TextChunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", commonModels.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, size), got %d", commonModels.ErrInvalidConfiguration, overlap)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return []TextChunk{}, nil
	}

	step := size - overlap
	chunks := make([]TextChunk, 0, len(runes)/step+1)
	for start, seq := 0, 0; start < len(runes); start, seq = start+step, seq+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, TextChunk{
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
			Seq:   seq,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
