package retrieval

import (
	"context"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Vectorizer turns text into a vector with cosine-similarity semantics.
// Swapping the sparse variant for the dense one must not change the
// retrieval contract: ordered candidates plus an explainer.
type Vectorizer interface {
	// Fit prepares the vectorizer over the corpus documents
	Fit(ctx context.Context, docs []string) error

	// Embed converts one text into a vector. Fit must be called first.
	Embed(ctx context.Context, text string) ([]float64, error)
}

func tokenize(text string) []string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.Fields(sb.String())
}

// TFIDFVectorizer is the sparse bag-of-words variant: term frequency
// weighted by smoothed inverse document frequency, L2 normalized.
// Fully deterministic, no external calls.
type TFIDFVectorizer struct {
	vocab map[string]int
	terms []string
	idf   []float64
}

var _ Vectorizer = &TFIDFVectorizer{}

// NewTFIDFVectorizer creates an unfitted sparse vectorizer
func NewTFIDFVectorizer() *TFIDFVectorizer {
	return &TFIDFVectorizer{vocab: map[string]int{}}
}

// Fit builds the vocabulary and document frequencies over the corpus
func (v *TFIDFVectorizer) Fit(ctx context.Context, docs []string) error {
	v.vocab = map[string]int{}
	v.terms = nil

	df := []int{}
	for _, doc := range docs {
		tokens := tokenize(doc)
		seen := map[string]bool{}
		for _, tok := range tokens {
			if _, ok := v.vocab[tok]; !ok {
				v.vocab[tok] = len(v.terms)
				v.terms = append(v.terms, tok)
				df = append(df, 0)
			}
			if !seen[tok] {
				df[v.vocab[tok]]++
				seen[tok] = true
			}
		}
	}

	n := len(docs)
	if n == 0 {
		n = 1
	}
	v.idf = make([]float64, len(df))
	for i, count := range df {
		v.idf[i] = math.Log(float64(1+n)/float64(1+count)) + 1.0
	}

	return nil
}

// Embed converts text to a TF-IDF vector over the fitted vocabulary.
// Out-of-vocabulary tokens are dropped.
func (v *TFIDFVectorizer) Embed(ctx context.Context, text string) ([]float64, error) {
	if v.idf == nil {
		return nil, goerr.New("vectorizer is not fitted")
	}

	vec := make([]float64, len(v.terms))
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	counts := map[int]int{}
	for _, tok := range tokens {
		if idx, ok := v.vocab[tok]; ok {
			counts[idx]++
		}
	}

	total := float64(len(tokens))
	var norm float64
	for idx, count := range counts {
		w := (float64(count) / total) * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range counts {
			vec[idx] /= norm
		}
	}

	return vec, nil
}

// EmbeddingVectorizer is the dense variant backed by an LLM embedding
// endpoint. Fit is a no-op; every Embed is one remote call.
type EmbeddingVectorizer struct {
	client    gollem.LLMClient
	dimension int
}

var _ Vectorizer = &EmbeddingVectorizer{}

// DefaultEmbeddingDimension matches the text embedding models exposed
// through gollem.
const DefaultEmbeddingDimension = 256

// NewEmbeddingVectorizer creates a dense vectorizer over an LLM client
func NewEmbeddingVectorizer(client gollem.LLMClient, dimension int) (*EmbeddingVectorizer, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required for the embedding vectorizer")
	}
	if dimension <= 0 {
		dimension = DefaultEmbeddingDimension
	}
	return &EmbeddingVectorizer{client: client, dimension: dimension}, nil
}

// Fit implements Vectorizer. Dense embeddings need no corpus statistics.
func (v *EmbeddingVectorizer) Fit(ctx context.Context, docs []string) error {
	return nil
}

// Embed implements Vectorizer
func (v *EmbeddingVectorizer) Embed(ctx context.Context, text string) ([]float64, error) {
	embeddings, err := v.client.GenerateEmbedding(ctx, v.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned")
	}
	return embeddings[0], nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
