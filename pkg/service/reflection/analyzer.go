package reflection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

// Analyzer derives reflection signals from user text. It is a pure
// function of its input: identical text yields identical signals.
type Analyzer struct {
	scorer SentimentScorer
}

// Option is a functional option for Analyzer configuration
type Option func(*Analyzer)

// WithScorer replaces the default lexicon scorer with a model-backed one
func WithScorer(scorer SentimentScorer) Option {
	return func(a *Analyzer) {
		a.scorer = scorer
	}
}

// New creates an Analyzer with the deterministic lexicon scorer by default
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		scorer: &LexiconScorer{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes sentiment, themes and energy from the conversation
// plus the user's stated mood and focus area.
func (a *Analyzer) Analyze(conv model.Conversation, uc model.UserContext) model.ReflectionSignals {
	text := conv.JoinText()
	if uc.Mood != "" {
		text = text + "\n" + uc.Mood
	}

	normalized := normalize(text)
	sentiment := a.scorer.Score(normalized)
	themes := detectThemes(normalized, uc.Preferences.FocusArea)
	energy := deriveEnergy(normalized, sentiment, themes)

	return model.ReflectionSignals{
		Sentiment: sentiment,
		Themes:    themes,
		Energy:    energy,
		Summary: fmt.Sprintf("Sentiment %.2f. Themes: %s. Energy: %s.",
			sentiment, strings.Join(themes, ", "), energy),
	}
}

// normalize lowercases the text and strips punctuation, leaving
// space-separated word tokens.
func normalize(text string) string {
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
	return strings.Join(strings.Fields(sb.String()), " ")
}

// themeEntry pairs a theme label with its trigger keywords. Keywords may
// be multi-word phrases; matching is whole-word over normalized text.
type themeEntry struct {
	theme    string
	keywords []string
}

var themeTable = []themeEntry{
	{"stress", []string{"stress", "stressed", "overwhelm", "overwhelmed", "anxious", "anxiety", "pressure", "tense", "nervous"}},
	{"sleep", []string{"sleep", "slept", "insomnia", "tired", "restless", "bedtime", "woke", "nap"}},
	{"mobility", []string{"back", "posture", "stiff", "ache", "stretch", "tight", "sore"}},
	{"focus", []string{"distract", "distracted", "focus", "concentrate", "procrastinate", "deep work", "productive", "scattered"}},
	{"gratitude", []string{"grateful", "gratitude", "thankful", "appreciate", "blessings"}},
	{"energy", []string{"exhausted", "fatigued", "energized", "sluggish", "wired", "alert", "drained"}},
	{"mood", []string{"sad", "down", "blue", "happy", "joy", "calm", "irritable"}},
	{"loneliness", []string{"lonely", "alone", "isolated", "disconnected"}},
	{"body image", []string{"body image", "appearance", "weight", "mirror"}},
	{"burnout", []string{"burnout", "burned out", "burnt out", "depleted"}},
}

var knownThemes = func() map[string]bool {
	m := make(map[string]bool, len(themeTable))
	for _, e := range themeTable {
		m[e.theme] = true
	}
	return m
}()

// detectThemes returns themes ordered by the first occurrence of any of
// their keywords, deduplicated. A recognized focus area is appended when
// not already detected; "stress" is the default when nothing matches.
func detectThemes(normalized, focusArea string) []string {
	type hit struct {
		theme string
		pos   int
	}
	padded := " " + normalized + " "

	var hits []hit
	for _, entry := range themeTable {
		pos := -1
		for _, kw := range entry.keywords {
			if idx := strings.Index(padded, " "+kw+" "); idx >= 0 {
				if pos < 0 || idx < pos {
					pos = idx
				}
			}
		}
		if pos >= 0 {
			hits = append(hits, hit{theme: entry.theme, pos: pos})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	themes := make([]string, 0, len(hits)+1)
	seen := map[string]bool{}
	for _, h := range hits {
		if !seen[h.theme] {
			themes = append(themes, h.theme)
			seen[h.theme] = true
		}
	}

	if focusArea != "" && knownThemes[focusArea] && !seen[focusArea] {
		themes = append(themes, focusArea)
		seen[focusArea] = true
	}

	if len(themes) == 0 {
		themes = append(themes, "stress")
	}

	return themes
}

var (
	lowEnergyWords  = []string{"exhausted", "tired", "drained", "burned out", "burnt out", "wiped", "weary", "depleted"}
	highEnergyWords = []string{"wired", "alert", "motivated", "ready", "pumped", "energized"}
)

// deriveEnergy applies a fixed decision table: explicit low/high keywords
// win, then negative sentiment paired with the sleep theme implies low.
func deriveEnergy(normalized string, sentiment float64, themes []string) types.EnergyLevel {
	padded := " " + normalized + " "
	for _, w := range lowEnergyWords {
		if strings.Contains(padded, " "+w+" ") {
			return types.EnergyLow
		}
	}
	for _, w := range highEnergyWords {
		if strings.Contains(padded, " "+w+" ") {
			return types.EnergyHigh
		}
	}
	for _, t := range themes {
		if t == "sleep" && sentiment < 0 {
			return types.EnergyLow
		}
	}
	return types.EnergyMedium
}
