package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/service/calendar"
	"github.com/eudai-lab/eudaimon/pkg/service/lifequality"
	"github.com/eudai-lab/eudaimon/pkg/service/retrieval"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

// GeneratePlan runs the full pipeline for one session. Only invalid
// input is rejected; every downstream failure degrades to a
// deterministic result, so a valid request always yields a complete
// bundle.
func (uc *UseCases) GeneratePlan(ctx context.Context, userCtx model.UserContext, conv model.Conversation) (*model.PlanBundle, error) {
	if err := userCtx.UserID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "user ID is required",
			goerr.V(UserIDKey, userCtx.UserID))
	}

	sessionID := types.NewSessionID()
	logger := logging.From(ctx).With("session_id", sessionID)
	ctx = logging.With(ctx, logger)

	logger.Info("pipeline started", "user_id", userCtx.UserID)

	// Reflection feeds both branches, so it runs first.
	signals := uc.runReflection(ctx, sessionID, userCtx, conv)

	var (
		plan       model.Plan
		candidates []model.Candidate
		report     *model.LifeQualityReport
		nudge      string
	)

	// The plan branch and the trend branch share no state beyond the
	// signals, so they run concurrently. Neither returns an error.
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		plan, candidates = uc.runPlanBranch(egCtx, sessionID, userCtx, signals)
		return nil
	})
	eg.Go(func() error {
		report, nudge = uc.runTrendBranch(egCtx, sessionID, userCtx, conv, signals)
		return nil
	})
	_ = eg.Wait()

	empathy := uc.runEmpathy(ctx, sessionID, userCtx, signals)

	logger.Info("pipeline finished",
		"items", len(plan.Items),
		"total_minutes", plan.TotalMinutes(),
	)

	return &model.PlanBundle{
		SessionID:   sessionID,
		Empathy:     empathy,
		Signals:     signals,
		Candidates:  candidates,
		Plan:        plan,
		LifeQuality: report,
		Nudge:       nudge,
	}, nil
}

// GetLifeQuality returns the trend view without appending a record
func (uc *UseCases) GetLifeQuality(ctx context.Context, userID types.UserID, limit int) (*model.LifeQualityReport, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "user ID is required", goerr.V(UserIDKey, userID))
	}
	return uc.scorer.Report(ctx, userID, limit)
}

// GetSessionSteps returns the audit trail of one session in start order
func (uc *UseCases) GetSessionSteps(ctx context.Context, sessionID types.SessionID) ([]*model.StepRecord, error) {
	if sessionID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "session ID is required")
	}
	return uc.repo.Steps().ListBySession(ctx, sessionID)
}

func (uc *UseCases) runReflection(ctx context.Context, sessionID types.SessionID, userCtx model.UserContext, conv model.Conversation) model.ReflectionSignals {
	started := uc.now()
	signals := uc.analyzer.Analyze(conv, userCtx)
	uc.recordStep(ctx, sessionID, types.StepReflection, started,
		map[string]any{"conversation": uc.redactor.RedactConversation(conv), "mood": uc.redactor.Redact(userCtx.Mood)},
		signals)
	return signals
}

// runPlanBranch is retrieval through calendar annotation. Retrieval
// failures degrade to zero candidates, which the synthesizer turns into
// the safe default plan.
func (uc *UseCases) runPlanBranch(ctx context.Context, sessionID types.SessionID, userCtx model.UserContext, signals model.ReflectionSignals) (model.Plan, []model.Candidate) {
	logger := logging.From(ctx)

	started := uc.now()
	candidates, err := uc.index.Search(ctx, retrieval.Query{
		Text:       signals.Summary + " " + uc.redactor.Redact(userCtx.Mood),
		Themes:     signals.Themes,
		FocusArea:  userCtx.Preferences.FocusArea,
		MaxMinutes: userCtx.Preferences.AvailableMinutes,
		Limit:      uc.topK,
	})
	if err != nil {
		logger.Warn("retrieval failed, continuing with no candidates", "error", err.Error())
		candidates = nil
	}
	uc.recordStep(ctx, sessionID, types.StepRetrieval, started,
		map[string]any{"themes": signals.Themes, "max_minutes": userCtx.Preferences.AvailableMinutes},
		candidates)

	started = uc.now()
	evidenced := uc.evidence.Enforce(candidates, signals.Themes)
	uc.recordStep(ctx, sessionID, types.StepEvidence, started, candidates, evidenced)

	started = uc.now()
	draft, generated := uc.planner.Synthesize(ctx, evidenced, userCtx, signals)
	uc.recordStep(ctx, sessionID, types.StepPlan, started,
		map[string]any{"candidates": evidenced, "generated": generated},
		draft)

	started = uc.now()
	plan := uc.guard.Validate(ctx, draft, userCtx.Preferences.AvailableMinutes)
	uc.recordStep(ctx, sessionID, types.StepGuardrail, started, draft, plan)

	started = uc.now()
	annotated := calendar.Annotate(ctx, plan, userCtx.Timezone, userCtx.Preferences.TimeOfDay, uc.now())
	uc.recordStep(ctx, sessionID, types.StepCalendar, started, plan, annotated)

	return annotated, candidates
}

// runTrendBranch is life quality scoring plus the nudge. A scoring
// failure yields a nil report and a generic nudge rather than an error.
func (uc *UseCases) runTrendBranch(ctx context.Context, sessionID types.SessionID, userCtx model.UserContext, conv model.Conversation, signals model.ReflectionSignals) (*model.LifeQualityReport, string) {
	logger := logging.From(ctx)

	started := uc.now()
	adherence := lifequality.InferAdherence(conv)
	report, err := uc.scorer.Record(ctx, userCtx.UserID, sessionID, signals, adherence)
	if err != nil {
		logger.Warn("life quality scoring failed, continuing without trend", "error", err.Error())
		report = nil
	}
	uc.recordStep(ctx, sessionID, types.StepLifeQuality, started,
		map[string]any{"adherence": adherence}, report)

	started = uc.now()
	nudge := uc.nudger.Compose(ctx, userCtx.UserID, report, signals)
	uc.recordStep(ctx, sessionID, types.StepNudge, started, report, nudge)

	return report, nudge
}
