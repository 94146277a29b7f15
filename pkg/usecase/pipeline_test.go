package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/repository/memory"
	"github.com/eudai-lab/eudaimon/pkg/service/privacy"
	"github.com/eudai-lab/eudaimon/pkg/service/retrieval"
	"github.com/eudai-lab/eudaimon/pkg/usecase"
)

func newUseCases(t *testing.T, repo *memory.Memory, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()

	lib, err := content.Default()
	gt.NoError(t, err).Required()

	index, err := retrieval.NewIndex(context.Background(), lib, retrieval.NewTFIDFVectorizer())
	gt.NoError(t, err).Required()

	return usecase.New(repo, lib, index, opts...)
}

func userCtx(prefs ...string) model.UserContext {
	return model.NewUserContext("user-1", "a bit tense", "UTC", prefs)
}

func conversation(texts ...string) model.Conversation {
	conv := model.Conversation{}
	for _, txt := range texts {
		conv.Messages = append(conv.Messages, model.Message{Role: model.RoleUser, Content: txt})
	}
	return conv
}

// waitForSteps polls the audit trail until all expected step records of
// the session have been flushed by the async writer.
func waitForSteps(t *testing.T, repo *memory.Memory, sessionID types.SessionID, want int) []*model.StepRecord {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		records, err := repo.Steps().ListBySession(context.Background(), sessionID)
		gt.NoError(t, err).Required()
		if len(records) >= want || time.Now().After(deadline) {
			gt.Array(t, records).Length(want).Required()
			return records
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGeneratePlan(t *testing.T) {
	repo := memory.New()
	uc := newUseCases(t, repo)

	bundle, err := uc.GeneratePlan(context.Background(),
		userCtx("available_time_min=30"),
		conversation("Feeling tense before a talk. I have 30 min free at lunch."))
	gt.NoError(t, err).Required()

	t.Run("bundle is complete", func(t *testing.T) {
		gt.Value(t, bundle.SessionID.String()).NotEqual("")
		gt.Value(t, bundle.Empathy).NotEqual("")
		gt.Value(t, bundle.Nudge).NotEqual("")
		gt.Bool(t, len(bundle.Candidates) > 0).True()
		gt.Value(t, bundle.LifeQuality).NotNil()
	})

	t.Run("signals reflect the conversation", func(t *testing.T) {
		gt.Array(t, bundle.Signals.Themes).Has("stress")
		gt.Bool(t, bundle.Signals.Sentiment < 0).True()
	})

	t.Run("plan honors the time budget", func(t *testing.T) {
		gt.Bool(t, len(bundle.Plan.Items) >= 1).True()
		gt.Bool(t, len(bundle.Plan.Items) <= 2).True()
		gt.Bool(t, bundle.Plan.TotalMinutes() <= 30).True()
		gt.Value(t, bundle.Plan.Caution).Equal("")

		for _, item := range bundle.Plan.Items {
			gt.Bool(t, item.DurationMinutes >= 1).True()
			gt.Value(t, item.Citation).NotEqual("")
			gt.Value(t, item.Window).NotNil()
		}
	})

	t.Run("life quality score is bounded", func(t *testing.T) {
		gt.Bool(t, bundle.LifeQuality.Score >= 0).True()
		gt.Bool(t, bundle.LifeQuality.Score <= 100).True()
		gt.Value(t, bundle.LifeQuality.Trend).Equal(types.TrendSteady)
	})

	t.Run("audit trail covers every stage", func(t *testing.T) {
		records := waitForSteps(t, repo, bundle.SessionID, 9)

		seen := map[types.StepName]bool{}
		for _, rec := range records {
			seen[rec.Step] = true
			gt.Bool(t, rec.EndedAt.Before(rec.StartedAt)).False()
			gt.Bool(t, len(rec.Input) > 0).True()
			gt.Bool(t, len(rec.Output) > 0).True()
		}

		for _, step := range []types.StepName{
			types.StepReflection, types.StepRetrieval, types.StepEvidence,
			types.StepPlan, types.StepGuardrail, types.StepCalendar,
			types.StepLifeQuality, types.StepNudge, types.StepEmpathy,
		} {
			gt.Bool(t, seen[step]).True()
		}
	})

	t.Run("calendar step snapshots before and after annotation", func(t *testing.T) {
		records := waitForSteps(t, repo, bundle.SessionID, 9)

		var calRecord *model.StepRecord
		for _, rec := range records {
			if rec.Step == types.StepCalendar {
				calRecord = rec
			}
		}
		gt.Value(t, calRecord).NotNil()

		var before, after model.Plan
		gt.NoError(t, json.Unmarshal(calRecord.Input, &before)).Required()
		gt.NoError(t, json.Unmarshal(calRecord.Output, &after)).Required()

		gt.Array(t, before.Items).Length(len(after.Items)).Required()
		for i := range before.Items {
			gt.Value(t, before.Items[i].Window).Nil()
			gt.Value(t, after.Items[i].Window).NotNil()
		}
	})
}

func TestGeneratePlanInvalidInput(t *testing.T) {
	uc := newUseCases(t, memory.New())

	_, err := uc.GeneratePlan(context.Background(),
		model.NewUserContext("", "", "UTC", nil),
		conversation("hello"))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
}

func TestGeneratePlanDeterministic(t *testing.T) {
	uc := newUseCases(t, memory.New())
	ctx := context.Background()

	first, err := uc.GeneratePlan(ctx, userCtx("available_time_min=20"),
		conversation("slept badly, feeling stressed"))
	gt.NoError(t, err).Required()

	second, err := uc.GeneratePlan(ctx, userCtx("available_time_min=20"),
		conversation("slept badly, feeling stressed"))
	gt.NoError(t, err).Required()

	gt.Value(t, second.SessionID).NotEqual(first.SessionID)
	gt.Array(t, second.Plan.Items).Length(len(first.Plan.Items)).Required()
	for i := range first.Plan.Items {
		gt.Value(t, second.Plan.Items[i].ContentID).Equal(first.Plan.Items[i].ContentID)
		gt.Value(t, second.Plan.Items[i].DurationMinutes).Equal(first.Plan.Items[i].DurationMinutes)
	}
}

func TestGeneratePlanRedactsAuditTrail(t *testing.T) {
	repo := memory.New()
	uc := newUseCases(t, repo, usecase.WithRedactor(privacy.New(true)))

	bundle, err := uc.GeneratePlan(context.Background(), userCtx(),
		conversation("I am stressed, mail me at jane@example.com"))
	gt.NoError(t, err).Required()

	records := waitForSteps(t, repo, bundle.SessionID, 9)
	for _, rec := range records {
		gt.Bool(t, strings.Contains(string(rec.Input), "jane@example.com")).False()
		gt.Bool(t, strings.Contains(string(rec.Output), "jane@example.com")).False()
	}
}

func TestGetLifeQuality(t *testing.T) {
	uc := newUseCases(t, memory.New())
	ctx := context.Background()

	t.Run("invalid user rejected", func(t *testing.T) {
		_, err := uc.GetLifeQuality(ctx, "", 5)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("empty history reads steady", func(t *testing.T) {
		report, err := uc.GetLifeQuality(ctx, "user-1", 5)
		gt.NoError(t, err).Required()
		gt.Value(t, report.Trend).Equal(types.TrendSteady)
	})

	t.Run("reflects prior sessions", func(t *testing.T) {
		_, err := uc.GeneratePlan(ctx, userCtx(), conversation("feeling fine"))
		gt.NoError(t, err).Required()

		report, err := uc.GetLifeQuality(ctx, "user-1", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, report.Recent).Length(1)
	})
}

func TestGetSessionSteps(t *testing.T) {
	uc := newUseCases(t, memory.New())

	_, err := uc.GetSessionSteps(context.Background(), "")
	gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
}
