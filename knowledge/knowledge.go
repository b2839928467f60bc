// Package knowledge holds the embedded fitness knowledge base: the topics
// that feed the retrieval index and the daily tips rotation.
package knowledge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "bodybae/errors"
)

//go:embed kb.yaml
var kbYAML []byte

// Topic is a single knowledge base entry.
type Topic struct {
	Topic   string `yaml:"topic"`
	Content string `yaml:"content"`
}

// Tip is a daily tip with its rotation category.
type Tip struct {
	Text     string `yaml:"text" json:"tip"`
	Category string `yaml:"category" json:"category"`
}

// Base is the parsed knowledge base.
type Base struct {
	Topics []Topic `yaml:"topics"`
	Tips   []Tip   `yaml:"tips"`
}

// Chunk is an indexable slice of a topic, sized for embedding.
type Chunk struct {
	ID    string
	Topic string
	Text  string
}

// Load parses the embedded knowledge base and validates that it is usable.
func Load() (*Base, error) {
	var base Base
	if err := yaml.Unmarshal(kbYAML, &base); err != nil {
		return nil, apperrors.WrapError(err, "failed to parse embedded knowledge base")
	}
	if len(base.Topics) == 0 {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "knowledge base contains no topics")
	}
	for i, topic := range base.Topics {
		if strings.TrimSpace(topic.Topic) == "" || strings.TrimSpace(topic.Content) == "" {
			return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "knowledge base topic %d is incomplete", i)
		}
	}
	for i, tip := range base.Tips {
		if strings.TrimSpace(tip.Text) == "" {
			return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "knowledge base tip %d is empty", i)
		}
	}
	return &base, nil
}

// Chunks renders every topic as "Topic: content" and splits it into pieces
// of at most maxRunes runes. Chunk IDs are deterministic so reindexing the
// same knowledge base produces the same documents.
func (b *Base) Chunks(splitter SentenceSplitter, maxRunes int) []Chunk {
	var chunks []Chunk
	for _, topic := range b.Topics {
		text := topic.Topic + ": " + topic.Content
		for i, part := range SplitIntoChunks(text, maxRunes, splitter) {
			chunks = append(chunks, Chunk{
				ID:    fmt.Sprintf("%s#%d", slugify(topic.Topic), i),
				Topic: topic.Topic,
				Text:  part,
			})
		}
	}
	return chunks
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
