package lifequality

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

// Scoring weights. Sentiment dominates because it is the most direct
// observation; theme load and adherence temper it.
const (
	sentimentWeight = 0.50
	themeWeight     = 0.30
	adherenceWeight = 0.20
)

// MaxDelta is the volatility cap: consecutive scores for one user never
// differ by more than this.
const MaxDelta = 15.0

// Epsilon is the dead zone around the prior score within which the
// trend is reported as steady.
const Epsilon = 0.5

// DefaultRecentLimit bounds the history slice returned with a report
const DefaultRecentLimit = 7

// themeLoadWeights express how much each detected theme drags the
// score. Themes absent from the table carry the default load.
var themeLoadWeights = map[string]float64{
	"stress": 0.4,
	"sleep":  0.3,
}

const defaultThemeLoad = 0.15

// Adherence inference keyword tables. These mirror the sentiment
// lexicon style: word presence, not NLP.
var (
	adherencePositive = []string{
		"did it", "completed", "finished", "stuck to", "followed",
		"done", "managed to",
	}
	adherenceNegative = []string{
		"skipped", "missed", "forgot", "didn't", "did not",
		"couldn't", "could not", "failed",
	}
)

// Scorer computes and persists the life quality index. All writes go
// through the repository's per-user critical section, so two concurrent
// sessions for the same user both respect the volatility cap.
type Scorer struct {
	repo interfaces.LifeQualityRepository
	now  func() time.Time
}

// New creates a Scorer over the repository
func New(repo interfaces.LifeQualityRepository) *Scorer {
	return &Scorer{repo: repo, now: time.Now}
}

// Record computes the capped score for this session, appends it, and
// returns the new record with recent history attached.
func (s *Scorer) Record(ctx context.Context, userID types.UserID, sessionID types.SessionID, signals model.ReflectionSignals, adherence float64) (*model.LifeQualityReport, error) {
	raw := RawScore(signals, adherence)

	record, err := s.repo.AppendWith(ctx, userID, func(prior *model.LifeQualityRecord) (*model.LifeQualityRecord, error) {
		score, trend := capToward(prior, raw)
		return &model.LifeQualityRecord{
			SessionID: sessionID,
			UserID:    userID,
			Score:     score,
			Trend:     trend,
			CreatedAt: s.now(),
		}, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append life quality record", goerr.V("user_id", userID))
	}

	recent, err := s.repo.GetRecent(ctx, userID, DefaultRecentLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load life quality history", goerr.V("user_id", userID))
	}

	return &model.LifeQualityReport{
		Score:  record.Score,
		Trend:  record.Trend,
		Recent: recent,
	}, nil
}

// Report returns the most recent state without appending
func (s *Scorer) Report(ctx context.Context, userID types.UserID, limit int) (*model.LifeQualityReport, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	recent, err := s.repo.GetRecent(ctx, userID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load life quality history", goerr.V("user_id", userID))
	}
	if len(recent) == 0 {
		return &model.LifeQualityReport{Trend: types.TrendSteady}, nil
	}

	latest := recent[len(recent)-1]
	return &model.LifeQualityReport{
		Score:  latest.Score,
		Trend:  latest.Trend,
		Recent: recent,
	}, nil
}

// RawScore is the uncapped index in [0, 100]: a weighted blend of
// normalized sentiment, inverse theme load, and adherence.
func RawScore(signals model.ReflectionSignals, adherence float64) float64 {
	sentiment := clamp(signals.Sentiment, -1, 1)
	adherence = clamp(adherence, 0, 1)

	load := 0.0
	for _, theme := range signals.Themes {
		if w, ok := themeLoadWeights[theme]; ok {
			load += w
		} else {
			load += defaultThemeLoad
		}
	}
	if load > 1 {
		load = 1
	}

	score := sentimentWeight*(sentiment+1)/2 +
		themeWeight*(1-load) +
		adherenceWeight*adherence

	return clamp(score*100, 0, 100)
}

// InferAdherence estimates how well the user followed prior plans from
// their own words. Neutral absence of evidence leans slightly positive.
func InferAdherence(conv model.Conversation) float64 {
	text := " " + strings.ToLower(conv.JoinText()) + " "

	positive := containsAny(text, adherencePositive)
	negative := containsAny(text, adherenceNegative)

	switch {
	case positive && negative:
		return 0.55
	case positive:
		return 0.85
	case negative:
		return 0.35
	default:
		return 0.60
	}
}

// capToward bounds the raw score to prior +/- MaxDelta and labels the
// movement. Without a prior the raw score stands and the trend is
// steady.
func capToward(prior *model.LifeQualityRecord, raw float64) (float64, types.TrendLabel) {
	if prior == nil {
		return raw, types.TrendSteady
	}

	score := raw
	if score > prior.Score+MaxDelta {
		score = prior.Score + MaxDelta
	}
	if score < prior.Score-MaxDelta {
		score = prior.Score - MaxDelta
	}
	score = clamp(score, 0, 100)

	switch {
	case score > prior.Score+Epsilon:
		return score, types.TrendImproving
	case score < prior.Score-Epsilon:
		return score, types.TrendDeclining
	default:
		return score, types.TrendSteady
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
