package knowledge

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// chunkOverlapRatio is the fraction of a chunk's tail carried into the next
// chunk for context preservation.
const chunkOverlapRatio = 0.1

// SentenceSplitter segments text into sentences for chunk packing.
type SentenceSplitter interface {
	Split(text string) []string
}

// ProseSentenceSplitter segments text with the prose NLP tokenizer. When
// prose cannot parse the text it falls back to punctuation scanning.
type ProseSentenceSplitter struct {
	fallback RegexSentenceSplitter
}

func NewProseSentenceSplitter() ProseSentenceSplitter {
	return ProseSentenceSplitter{fallback: NewRegexSentenceSplitter()}
}

func (s ProseSentenceSplitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	doc, err := prose.NewDocument(trimmed, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return s.fallback.Split(trimmed)
	}
	prosed := doc.Sentences()
	if len(prosed) == 0 {
		return s.fallback.Split(trimmed)
	}
	sentences := make([]string, 0, len(prosed))
	for _, sent := range prosed {
		if t := strings.TrimSpace(sent.Text); t != "" {
			sentences = append(sentences, t)
		}
	}
	return sentences
}

// RegexSentenceSplitter scans for terminal punctuation followed by
// whitespace. It keeps decimals like 1.6 and runs of punctuation intact.
type RegexSentenceSplitter struct{}

func NewRegexSentenceSplitter() RegexSentenceSplitter {
	return RegexSentenceSplitter{}
}

func (RegexSentenceSplitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	var sentences []string
	var builder strings.Builder

	isBoundary := func(r rune) bool {
		switch r {
		case '.', '!', '?':
			return true
		default:
			return false
		}
	}

	flush := func() {
		if builder.Len() == 0 {
			return
		}
		sentence := strings.TrimSpace(builder.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		builder.Reset()
	}

	for idx, r := range runes {
		builder.WriteRune(r)
		if !isBoundary(r) {
			continue
		}
		// A sentence ends only when punctuation is followed by whitespace
		// and then a non-punctuation rune.
		next := idx + 1
		sawSpace := false
		for next < len(runes) && (runes[next] == ' ' || runes[next] == '\n' || runes[next] == '\t') {
			next++
			sawSpace = true
		}
		if !sawSpace || next >= len(runes) || isBoundary(runes[next]) {
			continue
		}
		flush()
	}

	flush()

	if len(sentences) == 0 {
		return []string{trimmed}
	}
	return sentences
}

// SplitIntoChunks packs sentences into chunks of at most maxRunes runes and
// carries a tail of each chunk into the next one. Oversized sentences are
// sliced at rune boundaries.
func SplitIntoChunks(text string, maxRunes int, splitter SentenceSplitter) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if maxRunes <= 0 {
		return []string{trimmed}
	}

	sentences := splitter.Split(trimmed)
	if len(sentences) == 0 {
		sentences = []string{trimmed}
	}

	var chunks []string
	var current strings.Builder
	currentRunes := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
		current.Reset()
		currentRunes = 0
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentenceRunes := []rune(sentence)

		if len(sentenceRunes) > maxRunes {
			flush()
			for start := 0; start < len(sentenceRunes); start += maxRunes {
				end := min(start+maxRunes, len(sentenceRunes))
				segment := strings.TrimSpace(string(sentenceRunes[start:end]))
				if segment != "" {
					chunks = append(chunks, segment)
				}
			}
			continue
		}

		prospective := currentRunes + len(sentenceRunes)
		if currentRunes > 0 {
			prospective++
		}
		if prospective > maxRunes {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
			currentRunes++
		}
		current.WriteString(sentence)
		currentRunes += len(sentenceRunes)
	}
	flush()

	if len(chunks) <= 1 {
		return chunks
	}

	// Prepend each chunk with the tail of the previous one.
	withOverlap := make([]string, 0, len(chunks))
	var previousTail string
	for _, chunk := range chunks {
		if previousTail != "" {
			withOverlap = append(withOverlap, previousTail+" "+chunk)
		} else {
			withOverlap = append(withOverlap, chunk)
		}
		runes := []rune(chunk)
		tailLen := int(float64(len(runes)) * chunkOverlapRatio)
		if tailLen < 1 {
			tailLen = 1
		}
		previousTail = strings.TrimSpace(string(runes[len(runes)-tailLen:]))
	}
	return withOverlap
}
