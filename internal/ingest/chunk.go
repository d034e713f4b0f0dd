package ingest

import "strings"

// PackParagraphs accumulates blank-line-separated paragraphs into chunks of
// at most chunkSize characters, emitting a chunk when the next paragraph
// would overflow. Paragraphs are never split, so a single oversized
// paragraph becomes its own chunk. Output is deterministic for identical
// input.
func PackParagraphs(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	var chunks []string
	var current strings.Builder

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(paragraph) > chunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(paragraph)
		current.WriteString("\n\n")
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// ChunkByWords splits text into chunks of approximately 0.75*targetTokens
// words (one token ~ 0.75 words), never splitting a word. Output is
// deterministic for identical input.
func ChunkByWords(text string, targetTokens int) []string {
	if targetTokens <= 0 {
		targetTokens = 500
	}
	wordsPerChunk := int(float64(targetTokens) * 0.75)
	if wordsPerChunk < 1 {
		wordsPerChunk = 1
	}

	words := strings.Fields(text)
	var chunks []string
	for start := 0; start < len(words); start += wordsPerChunk {
		end := start + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
