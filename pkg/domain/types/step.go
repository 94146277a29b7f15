package types

// StepName identifies a pipeline stage in the audit trail
type StepName string

const (
	StepReflection  StepName = "reflection"
	StepRetrieval   StepName = "retrieval"
	StepEvidence    StepName = "evidence"
	StepPlan        StepName = "plan"
	StepGuardrail   StepName = "guardrail"
	StepCalendar    StepName = "calendar"
	StepLifeQuality StepName = "life_quality"
	StepNudge       StepName = "nudge"
	StepEmpathy     StepName = "empathy"
)

// String returns the string representation of the step name
func (s StepName) String() string {
	return string(s)
}
