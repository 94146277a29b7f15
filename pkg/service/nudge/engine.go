package nudge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/gollem"

	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

// DefaultStreakWindow is the maximum gap between sessions that still
// counts as a continued streak.
const DefaultStreakWindow = 36 * time.Hour

// DefaultGenerationTimeout bounds the optional LLM rewrite
const DefaultGenerationTimeout = 10 * time.Second

// streakBucket collapses the streak count into the three tones the rule
// table distinguishes.
type streakBucket int

const (
	bucketFirst  streakBucket = iota // first session in a streak
	bucketSecond                     // second consecutive session
	bucketRun                        // three or more
)

func bucketOf(streak int) streakBucket {
	switch {
	case streak <= 1:
		return bucketFirst
	case streak == 2:
		return bucketSecond
	default:
		return bucketRun
	}
}

// ruleKey indexes the deterministic message table
type ruleKey struct {
	trend  types.TrendLabel
	bucket streakBucket
}

var nudgeRules = map[ruleKey]string{
	{types.TrendImproving, bucketFirst}:  "Nice start. Things are already pointing up, so one small action today keeps that moving.",
	{types.TrendImproving, bucketSecond}: "Two sessions in a row and the trend is up. Keep the streak going with today's plan.",
	{types.TrendImproving, bucketRun}:    "You are on a %d-day run and it shows. Protect the streak with just one of today's items.",
	{types.TrendSteady, bucketFirst}:     "Every streak starts somewhere. Today's plan is small on purpose, just begin.",
	{types.TrendSteady, bucketSecond}:    "Back again, that consistency matters more than any single score. Stay with it.",
	{types.TrendSteady, bucketRun}:       "A steady %d-day streak is a real habit forming. Hold the line today.",
	{types.TrendDeclining, bucketFirst}:  "Rough patches happen. Showing up today already counts, pick the shortest item first.",
	{types.TrendDeclining, bucketSecond}: "Two days in even when it is hard says a lot. Keep it small and gentle today.",
	{types.TrendDeclining, bucketRun}:    "A dip after %d days in a row is normal, not a reset. One easy item today is enough.",
}

// Engine composes the personalized nudge. The rule table is the
// deterministic base; when an LLM client is set the message may be
// rewritten, and any failure keeps the deterministic text.
type Engine struct {
	repo    interfaces.LifeQualityRepository
	llm     gollem.LLMClient
	window  time.Duration
	timeout time.Duration
}

// Option is a functional option for Engine configuration
type Option func(*Engine)

// WithLLM enables the generative rewrite of the rule-based nudge
func WithLLM(client gollem.LLMClient) Option {
	return func(e *Engine) {
		e.llm = client
	}
}

// WithStreakWindow overrides the streak continuation window
func WithStreakWindow(d time.Duration) Option {
	return func(e *Engine) {
		e.window = d
	}
}

// New creates an Engine over the life quality repository
func New(repo interfaces.LifeQualityRepository, opts ...Option) *Engine {
	e := &Engine{
		repo:    repo,
		window:  DefaultStreakWindow,
		timeout: DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compose returns the nudge for this session. It never fails: streak
// lookup errors degrade to a streak of one, generation errors keep the
// deterministic message.
func (e *Engine) Compose(ctx context.Context, userID types.UserID, report *model.LifeQualityReport, signals model.ReflectionSignals) string {
	logger := logging.From(ctx)

	streak, err := e.repo.GetStreak(ctx, userID, e.window)
	if err != nil {
		logger.Warn("failed to read streak, assuming first session", "error", err.Error())
		streak = 1
	}
	if streak < 1 {
		streak = 1
	}

	trend := types.TrendSteady
	if report != nil {
		trend = report.Trend
	}

	message := ruleMessage(trend, streak)

	if e.llm != nil {
		if rewritten, ok := e.rewrite(ctx, message, trend, streak, signals); ok {
			return rewritten
		}
	}

	return message
}

func ruleMessage(trend types.TrendLabel, streak int) string {
	bucket := bucketOf(streak)
	tmpl, ok := nudgeRules[ruleKey{trend, bucket}]
	if !ok {
		tmpl = nudgeRules[ruleKey{types.TrendSteady, bucketFirst}]
	}
	if bucket == bucketRun {
		return fmt.Sprintf(tmpl, streak)
	}
	return tmpl
}

// rewrite asks the LLM for a warmer phrasing of the rule-based nudge.
// The rewrite is rejected when it is empty, too long, or lost the
// streak reference.
func (e *Engine) rewrite(ctx context.Context, base string, trend types.TrendLabel, streak int, signals model.ReflectionSignals) (string, bool) {
	logger := logging.From(ctx)

	genCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	session, err := e.llm.NewSession(genCtx)
	if err != nil {
		logger.Warn("failed to create nudge session, keeping rule-based message", "error", err.Error())
		return "", false
	}

	prompt := fmt.Sprintf(
		"Rewrite this encouragement in one or two warm, specific sentences. "+
			"Keep the streak of %d sessions and the %s trend. "+
			"The user's current themes: %s. No medical advice, no emojis.\n\n%s",
		streak, trend, strings.Join(signals.Themes, ", "), base)

	resp, err := session.GenerateContent(genCtx, gollem.Text(prompt))
	if err != nil {
		logger.Warn("nudge generation failed, keeping rule-based message", "error", err.Error())
		return "", false
	}
	if len(resp.Texts) == 0 {
		return "", false
	}

	text := strings.TrimSpace(resp.Texts[0])
	if text == "" || len(text) > 400 {
		return "", false
	}

	return text, true
}
