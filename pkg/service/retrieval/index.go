package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
)

// themeBoost is added to the cosine score once per query theme matching
// a content tag.
const themeBoost = 0.12

// DefaultTopK is the default number of candidates returned by Search
const DefaultTopK = 5

// Query is the retrieval input built from reflection signals and the
// user's preferences.
type Query struct {
	Text       string
	Themes     []string
	FocusArea  string
	MaxMinutes int
	Limit      int
}

// Index ranks library items against a query vector. It is built once at
// startup and is safe for concurrent use.
type Index struct {
	items      []model.ContentItem
	docs       []string
	vectors    [][]float64
	sentences  map[string][]string
	vectorizer Vectorizer
}

// NewIndex fits the vectorizer over the library and embeds every item
func NewIndex(ctx context.Context, lib *content.Library, vectorizer Vectorizer) (*Index, error) {
	items := lib.Items()

	docs := make([]string, len(items))
	for i, item := range items {
		docs[i] = strings.Join([]string{item.Title, item.Summary, item.Instructions}, " \n")
	}

	if err := vectorizer.Fit(ctx, docs); err != nil {
		return nil, goerr.Wrap(err, "failed to fit vectorizer over content library")
	}

	vectors := make([][]float64, len(items))
	sentences := make(map[string][]string, len(items))
	for i, item := range items {
		vec, err := vectorizer.Embed(ctx, docs[i])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed content item", goerr.V("id", item.ID))
		}
		vectors[i] = vec
		sentences[item.ID.String()] = splitSentences(item.Instructions + " " + item.Summary)
	}

	return &Index{
		items:      items,
		docs:       docs,
		vectors:    vectors,
		sentences:  sentences,
		vectorizer: vectorizer,
	}, nil
}

// Search returns candidates ordered by score descending, ties broken by
// content ID ascending. Items longer than the time budget are excluded
// before ranking.
func (ix *Index) Search(ctx context.Context, q Query) ([]model.Candidate, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultTopK
	}

	queryText := q.Text
	if q.FocusArea != "" {
		queryText = q.FocusArea + " " + queryText
	}
	queryVec, err := ix.vectorizer.Embed(ctx, queryText)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	themes := map[string]bool{}
	for _, t := range q.Themes {
		themes[strings.ToLower(t)] = true
	}
	if q.FocusArea != "" {
		themes[strings.ToLower(q.FocusArea)] = true
	}

	candidates := make([]model.Candidate, 0, len(ix.items))
	for i, item := range ix.items {
		if q.MaxMinutes > 0 && item.DurationMinutes > q.MaxMinutes {
			continue
		}

		score := cosineSimilarity(queryVec, ix.vectors[i])
		for _, tag := range item.Tags {
			if themes[tag] {
				score += themeBoost
			}
		}

		candidates = append(candidates, model.Candidate{
			ContentID: item.ID,
			Score:     score,
			Explainer: ix.explain(q.Text, item),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ContentID < candidates[j].ContentID
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// explain quotes the content sentence with the highest token overlap
// against the query text.
func (ix *Index) explain(queryText string, item model.ContentItem) string {
	best := item.Summary
	bestScore := -1.0

	queryTokens := map[string]bool{}
	for _, tok := range tokenize(queryText) {
		queryTokens[tok] = true
	}

	for _, sent := range ix.sentences[item.ID.String()] {
		score := overlapScore(queryTokens, sent)
		if score > bestScore {
			bestScore = score
			best = sent
		}
	}

	return fmt.Sprintf("matched %q", best)
}

// overlapScore is the fraction of query tokens present in the sentence
func overlapScore(queryTokens map[string]bool, sentence string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	seen := map[string]bool{}
	for _, tok := range tokenize(sentence) {
		if queryTokens[tok] {
			seen[tok] = true
		}
	}
	return float64(len(seen)) / float64(len(queryTokens))
}

var sentenceSplit = regexp.MustCompile(`(?:[.!?])\s+`)

func splitSentences(text string) []string {
	chunks := sentenceSplit.Split(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		c = strings.TrimSpace(strings.TrimRight(c, ".!?"))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
