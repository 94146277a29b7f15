package planner

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
)

var (
	errEmptyGeneration = goerr.New("LLM returned no text")
	errMalformedPlan   = goerr.New("generated plan violates the plan schema")
	errUnknownContent  = goerr.New("generated plan references content outside the evidenced candidates")
)

// generatedPlan mirrors the structured output schema
type generatedPlan struct {
	Day   string          `json:"day"`
	Items []generatedItem `json:"items"`
}

type generatedItem struct {
	ContentID       string `json:"content_id"`
	DurationMinutes int    `json:"duration_minutes"`
	WhyItHelps      string `json:"why_it_helps"`
	Instructions    string `json:"instructions"`
}

// buildResponseSchema creates the JSON schema for structured output
func planResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "DailyPlanResponse",
		Description: "A one-day wellbeing plan of one or two micro-actions",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"day": {
				Type:        gollem.TypeString,
				Description: "The day label for the plan, usually 'today'",
				Required:    true,
			},
			"items": {
				Type:        gollem.TypeArray,
				Description: "Ordered plan items, one or two entries",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"content_id": {
							Type:        gollem.TypeString,
							Description: "ID of a candidate content item, verbatim from the candidate list",
							Required:    true,
						},
						"duration_minutes": {
							Type:        gollem.TypeInteger,
							Description: "Minutes allotted to this item, at least 1",
							Required:    true,
						},
						"why_it_helps": {
							Type:        gollem.TypeString,
							Description: "One or two sentences connecting this item to how the user feels",
							Required:    true,
						},
						"instructions": {
							Type:        gollem.TypeString,
							Description: "Concrete steps the user can follow right now",
							Required:    true,
						},
					},
				},
			},
		},
	}
}

func buildPlanPrompt(candidates []model.EvidencedCandidate, uc model.UserContext, signals model.ReflectionSignals, strict bool) string {
	var sb strings.Builder

	sb.WriteString("You are a wellbeing planning assistant. Compose a plan for today from the candidate micro-actions below.\n\n")

	sb.WriteString("## User State\n\n")
	fmt.Fprintf(&sb, "- Sentiment: %.2f (range -1 to 1)\n", signals.Sentiment)
	fmt.Fprintf(&sb, "- Themes: %s\n", strings.Join(signals.Themes, ", "))
	fmt.Fprintf(&sb, "- Energy: %s\n", signals.Energy)
	fmt.Fprintf(&sb, "- Available time: %d minutes\n", uc.Preferences.AvailableMinutes)
	if uc.Preferences.FocusArea != "" {
		fmt.Fprintf(&sb, "- Focus area: %s\n", uc.Preferences.FocusArea)
	}
	if signals.Summary != "" {
		fmt.Fprintf(&sb, "- Summary: %s\n", signals.Summary)
	}

	sb.WriteString("\n## Candidate Micro-Actions\n\n")
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%s score=%.3f rationale=%s source=%s\n",
			c.ContentID, c.Score, c.Rationale, c.Citation.Source)
	}

	sb.WriteString("\n## Rules\n\n")
	sb.WriteString("- Pick 1 or 2 items from the candidates above. Do not invent new items.\n")
	fmt.Fprintf(&sb, "- Total duration must not exceed %d minutes.\n", uc.Preferences.AvailableMinutes)
	sb.WriteString("- Every duration is at least 1 minute.\n")
	sb.WriteString("- Never give medical advice, diagnoses, or claims of cures.\n")

	if strict {
		sb.WriteString("\nYour previous answer was rejected. Output ONLY the JSON object described by the schema. ")
		sb.WriteString("Every content_id must be copied exactly from the candidate list, and the total duration must fit the available time.\n")
	}

	return sb.String()
}
