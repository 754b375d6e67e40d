package detect

import (
	"regexp"
	"strings"
)

// DefaultMinChunkSize is the minimum chunk size in words
const DefaultMinChunkSize = 100

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Chunk is a contiguous span of the source text, the unit every detection
// layer compares. Start and End are byte offsets into the original text;
// for regrouped sentence chunks the span runs from the first to the last
// buffered sentence (terminal punctuation excluded).
type Chunk struct {
	Text  string
	Start int
	End   int
	Index int
}

// ChunkText splits text into chunks of roughly minChunkSize words.
// Paragraphs (blank-line separated) already meeting the minimum are kept
// verbatim. Shorter paragraphs are split into sentences and greedily
// regrouped: the running buffer is flushed before the sentence that would
// cross the minimum, and the final partial buffer is flushed as a last,
// possibly short, chunk. Output order follows source order. Empty or
// whitespace-only input yields no chunks.
func ChunkText(text string, minChunkSize int) []Chunk {
	if minChunkSize <= 0 {
		minChunkSize = DefaultMinChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []Chunk

	offset := 0
	for _, para := range strings.Split(text, "\n\n") {
		paraStart := offset
		offset += len(para) + 2

		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			continue
		}
		start := paraStart + strings.Index(para, trimmed)

		if len(strings.Fields(trimmed)) >= minChunkSize {
			chunks = append(chunks, Chunk{Text: trimmed, Start: start, End: start + len(trimmed)})
			continue
		}

		chunks = append(chunks, regroupSentences(trimmed, start, minChunkSize)...)
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

func regroupSentences(para string, paraStart, minChunkSize int) []Chunk {
	var chunks []Chunk

	var buf []string
	bufWords := 0
	bufStart, bufEnd := 0, 0

	searchFrom := 0
	for _, raw := range sentenceBoundary.Split(para, -1) {
		sent := strings.TrimSpace(raw)
		if sent == "" {
			continue
		}

		sentStart := paraStart + searchFrom
		if rel := strings.Index(para[searchFrom:], sent); rel >= 0 {
			sentStart = paraStart + searchFrom + rel
			searchFrom += rel + len(sent)
		}
		sentEnd := sentStart + len(sent)

		words := len(strings.Fields(sent))
		if bufWords+words >= minChunkSize {
			if len(buf) > 0 {
				chunks = append(chunks, Chunk{Text: joinSentences(buf), Start: bufStart, End: bufEnd})
			}
			buf = []string{sent}
			bufWords = words
			bufStart, bufEnd = sentStart, sentEnd
		} else {
			if len(buf) == 0 {
				bufStart = sentStart
			}
			buf = append(buf, sent)
			bufWords += words
			bufEnd = sentEnd
		}
	}

	if len(buf) > 0 {
		chunks = append(chunks, Chunk{Text: joinSentences(buf), Start: bufStart, End: bufEnd})
	}

	return chunks
}

func joinSentences(sentences []string) string {
	return strings.Join(sentences, ". ") + "."
}

// truncate bounds s to max runes
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
