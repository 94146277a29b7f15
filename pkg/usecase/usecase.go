package usecase

import (
	"time"

	"github.com/m-mizutani/gollem"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
	"github.com/eudai-lab/eudaimon/pkg/service/evidence"
	"github.com/eudai-lab/eudaimon/pkg/service/guardrail"
	"github.com/eudai-lab/eudaimon/pkg/service/lifequality"
	"github.com/eudai-lab/eudaimon/pkg/service/nudge"
	"github.com/eudai-lab/eudaimon/pkg/service/planner"
	"github.com/eudai-lab/eudaimon/pkg/service/privacy"
	"github.com/eudai-lab/eudaimon/pkg/service/reflection"
	"github.com/eudai-lab/eudaimon/pkg/service/retrieval"
)

// UseCases wires the pipeline stages together. One instance serves all
// requests; every stage is safe for concurrent use.
type UseCases struct {
	repo     interfaces.Repository
	lib      *content.Library
	index    *retrieval.Index
	analyzer *reflection.Analyzer
	evidence *evidence.Enforcer
	planner  *planner.Synthesizer
	guard    *guardrail.Validator
	scorer   *lifequality.Scorer
	nudger   *nudge.Engine
	redactor *privacy.Redactor

	llm  gollem.LLMClient
	topK int
	now  func() time.Time
}

type Option func(*UseCases)

// WithLLM enables the generative paths: plan synthesis, nudge rewrite
// and the empathy message. Without it every stage is deterministic.
func WithLLM(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llm = client
	}
}

// WithRedactor replaces the default disabled redactor
func WithRedactor(r *privacy.Redactor) Option {
	return func(uc *UseCases) {
		uc.redactor = r
	}
}

// WithTopK overrides the retrieval candidate count
func WithTopK(k int) Option {
	return func(uc *UseCases) {
		uc.topK = k
	}
}

// WithNow injects the clock, for tests
func WithNow(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, lib *content.Library, index *retrieval.Index, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		lib:      lib,
		index:    index,
		analyzer: reflection.New(),
		evidence: evidence.New(lib),
		guard:    guardrail.New(lib),
		scorer:   lifequality.New(repo.LifeQuality()),
		redactor: privacy.New(false),
		topK:     retrieval.DefaultTopK,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	plannerOpts := []planner.Option{}
	nudgeOpts := []nudge.Option{}
	if uc.llm != nil {
		plannerOpts = append(plannerOpts, planner.WithLLM(uc.llm))
		nudgeOpts = append(nudgeOpts, nudge.WithLLM(uc.llm))
	}
	uc.planner = planner.New(lib, plannerOpts...)
	uc.nudger = nudge.New(repo.LifeQuality(), nudgeOpts...)

	return uc
}
