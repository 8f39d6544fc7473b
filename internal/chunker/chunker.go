// Package chunker splits text into overlapping word-bounded segments for
// retrieval indexing.
package chunker

import "strings"

// WordChunker splits text on word boundaries with a fixed overlap between
// consecutive chunks.
type WordChunker struct {
	chunkWords   int
	overlapWords int
}

// New creates a chunker. Words per chunk defaults to 200 with an overlap of
// 40; the overlap is clamped below the chunk size so the window always
// advances.
func New(chunkWords, overlapWords int) *WordChunker {
	if chunkWords <= 0 {
		chunkWords = 200
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	if overlapWords >= chunkWords {
		overlapWords = chunkWords - 1
	}
	return &WordChunker{chunkWords: chunkWords, overlapWords: overlapWords}
}

// Chunk splits text into overlapping segments. Empty or whitespace-only
// input produces no chunks.
func (c *WordChunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	step := c.chunkWords - c.overlapWords
	for i := 0; i < len(words); i += step {
		end := i + c.chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
