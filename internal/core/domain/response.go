package domain

// GuardedAnswer is the validated, structured result of one accepted
// query. It is never persisted as-is; only Response survives as the
// assistant's conversation turn.
type GuardedAnswer struct {
	// Response is the answer text shown to the end user.
	Response string `json:"response"`

	// SentimentScore is the model's self-reported sentiment of the
	// answer in [-1, 1], or nil when the model omitted it.
	SentimentScore *float64 `json:"sentiment_score"`

	// SafetyFlag is a categorical safety label ("safe", "sensitive",
	// "crisis", ...), or nil when the model omitted it.
	SafetyFlag *string `json:"safety_flag"`
}

// GuardrailViolation records one failed content check on a generation
// candidate.
type GuardrailViolation struct {
	// Check is the name of the failing check.
	Check string

	// Reason is the human-readable failure reason, fed back to the
	// model as corrective guidance on retry.
	Reason string
}
