package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/gollem"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

const empathyTimeout = 10 * time.Second

// runEmpathy composes the opening message of the response. The
// deterministic template always exists; the LLM may rephrase it and any
// failure keeps the template.
func (uc *UseCases) runEmpathy(ctx context.Context, sessionID types.SessionID, userCtx model.UserContext, signals model.ReflectionSignals) string {
	started := uc.now()

	message := empathyTemplate(signals)
	if uc.llm != nil {
		if rephrased, ok := uc.rephraseEmpathy(ctx, message, signals); ok {
			message = rephrased
		}
	}

	uc.recordStep(ctx, sessionID, types.StepEmpathy, started, signals, message)
	return message
}

// empathyTemplate acknowledges the dominant theme in the user's own
// terms. Tone tracks sentiment, never diagnoses.
func empathyTemplate(signals model.ReflectionSignals) string {
	theme := "how you're doing"
	if len(signals.Themes) > 0 {
		theme = signals.Themes[0]
	}

	switch {
	case signals.Sentiment < -0.25:
		return fmt.Sprintf("It sounds like %s has been weighing on you. That's a lot to carry, and taking a moment for yourself right now is a good call.", theme)
	case signals.Sentiment > 0.25:
		return fmt.Sprintf("It sounds like things are going well around %s. Let's build on that momentum with something small today.", theme)
	default:
		return fmt.Sprintf("Thanks for checking in about %s. A small, concrete step is often the easiest way forward.", theme)
	}
}

func (uc *UseCases) rephraseEmpathy(ctx context.Context, base string, signals model.ReflectionSignals) (string, bool) {
	logger := logging.From(ctx)

	genCtx, cancel := context.WithTimeout(ctx, empathyTimeout)
	defer cancel()

	session, err := uc.llm.NewSession(genCtx)
	if err != nil {
		logger.Warn("failed to create empathy session, keeping template", "error", err.Error())
		return "", false
	}

	prompt := fmt.Sprintf(
		"Rephrase this check-in response in one or two warm sentences. "+
			"The user's themes are %s and their sentiment is %.2f on a -1 to 1 scale. "+
			"Acknowledge, do not diagnose. No medical advice, no emojis.\n\n%s",
		strings.Join(signals.Themes, ", "), signals.Sentiment, base)

	resp, err := session.GenerateContent(genCtx, gollem.Text(prompt))
	if err != nil {
		logger.Warn("empathy generation failed, keeping template", "error", err.Error())
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
