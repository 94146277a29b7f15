package lifequality_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/repository/memory"
	"github.com/eudai-lab/eudaimon/pkg/service/lifequality"
)

func seedScore(t *testing.T, repo interfaces.LifeQualityRepository, userID types.UserID, score float64) {
	t.Helper()

	_, err := repo.AppendWith(context.Background(), userID, func(prior *model.LifeQualityRecord) (*model.LifeQualityRecord, error) {
		return &model.LifeQualityRecord{
			SessionID: types.NewSessionID(),
			UserID:    userID,
			Score:     score,
			Trend:     types.TrendSteady,
			CreatedAt: time.Now(),
		}, nil
	})
	gt.NoError(t, err).Required()
}

func conversation(texts ...string) model.Conversation {
	conv := model.Conversation{}
	for _, txt := range texts {
		conv.Messages = append(conv.Messages, model.Message{Role: model.RoleUser, Content: txt})
	}
	return conv
}

func TestRecordFirstSession(t *testing.T) {
	repo := memory.New().LifeQuality()
	scorer := lifequality.New(repo)

	signals := model.ReflectionSignals{Sentiment: 0.0, Themes: []string{"stress"}}
	report, err := scorer.Record(context.Background(), "user-1", types.NewSessionID(), signals, 0.60)
	gt.NoError(t, err).Required()

	// No prior: the raw score stands and the trend is steady.
	gt.Value(t, report.Trend).Equal(types.TrendSteady)
	gt.Value(t, report.Score).Equal(lifequality.RawScore(signals, 0.60))
	gt.Array(t, report.Recent).Length(1)
}

func TestRecordVolatilityCap(t *testing.T) {
	ctx := context.Background()

	t.Run("large improvement capped", func(t *testing.T) {
		repo := memory.New().LifeQuality()
		scorer := lifequality.New(repo)
		seedScore(t, repo, "user-1", 70)

		// sentiment 1, one light theme, full adherence: raw 95.5
		signals := model.ReflectionSignals{Sentiment: 1.0, Themes: []string{"gratitude"}}
		report, err := scorer.Record(ctx, "user-1", types.NewSessionID(), signals, 1.0)
		gt.NoError(t, err).Required()

		gt.Value(t, report.Score).Equal(70 + lifequality.MaxDelta)
		gt.Value(t, report.Trend).Equal(types.TrendImproving)
	})

	t.Run("large decline capped", func(t *testing.T) {
		repo := memory.New().LifeQuality()
		scorer := lifequality.New(repo)
		seedScore(t, repo, "user-1", 70)

		signals := model.ReflectionSignals{Sentiment: -1.0, Themes: []string{"stress", "sleep"}}
		report, err := scorer.Record(ctx, "user-1", types.NewSessionID(), signals, 0.0)
		gt.NoError(t, err).Required()

		gt.Value(t, report.Score).Equal(70 - lifequality.MaxDelta)
		gt.Value(t, report.Trend).Equal(types.TrendDeclining)
	})

	t.Run("small move within epsilon is steady", func(t *testing.T) {
		repo := memory.New().LifeQuality()
		scorer := lifequality.New(repo)

		signals := model.ReflectionSignals{Sentiment: 0.0, Themes: []string{"stress"}}
		raw := lifequality.RawScore(signals, 0.60)
		seedScore(t, repo, "user-1", raw)

		report, err := scorer.Record(ctx, "user-1", types.NewSessionID(), signals, 0.60)
		gt.NoError(t, err).Required()
		gt.Value(t, report.Trend).Equal(types.TrendSteady)
	})
}

func TestReport(t *testing.T) {
	ctx := context.Background()

	t.Run("no history", func(t *testing.T) {
		repo := memory.New().LifeQuality()
		scorer := lifequality.New(repo)

		report, err := scorer.Report(ctx, "user-1", 0)
		gt.NoError(t, err).Required()
		gt.Value(t, report.Trend).Equal(types.TrendSteady)
		gt.Array(t, report.Recent).Length(0)
	})

	t.Run("latest record wins", func(t *testing.T) {
		repo := memory.New().LifeQuality()
		scorer := lifequality.New(repo)
		seedScore(t, repo, "user-1", 40)
		seedScore(t, repo, "user-1", 52)

		report, err := scorer.Report(ctx, "user-1", 10)
		gt.NoError(t, err).Required()
		gt.Value(t, report.Score).Equal(52.0)
		gt.Array(t, report.Recent).Length(2)
	})
}

func TestRawScore(t *testing.T) {
	t.Run("best case is 100", func(t *testing.T) {
		score := lifequality.RawScore(model.ReflectionSignals{Sentiment: 1.0}, 1.0)
		gt.Value(t, score).Equal(100.0)
	})

	t.Run("worst case is near zero", func(t *testing.T) {
		signals := model.ReflectionSignals{
			Sentiment: -1.0,
			Themes:    []string{"stress", "sleep", "mood", "energy"},
		}
		score := lifequality.RawScore(signals, 0.0)
		gt.Value(t, score).Equal(0.0)
	})

	t.Run("out of range inputs are clamped", func(t *testing.T) {
		a := lifequality.RawScore(model.ReflectionSignals{Sentiment: 5.0}, 3.0)
		b := lifequality.RawScore(model.ReflectionSignals{Sentiment: 1.0}, 1.0)
		gt.Value(t, a).Equal(b)
	})

	t.Run("deterministic", func(t *testing.T) {
		signals := model.ReflectionSignals{Sentiment: -0.3, Themes: []string{"stress"}}
		first := lifequality.RawScore(signals, 0.6)
		for i := 0; i < 5; i++ {
			gt.Value(t, lifequality.RawScore(signals, 0.6)).Equal(first)
		}
	})
}

func TestInferAdherence(t *testing.T) {
	cases := []struct {
		name string
		text string
		want float64
	}{
		{"positive", "I did it every morning this week", 0.85},
		{"negative", "I skipped the walk again", 0.35},
		{"mixed", "I did it on Monday but skipped the rest", 0.55},
		{"no evidence", "just a regular week", 0.60},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := lifequality.InferAdherence(conversation(tc.text))
			gt.Value(t, got).Equal(tc.want)
		})
	}
}
