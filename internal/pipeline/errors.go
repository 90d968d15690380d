package pipeline

import (
	"errors"
	"fmt"
)

// Reasons attached to a GenerationError once retries are exhausted.
const (
	ReasonSchemaInvalid   = "schema_invalid"
	ReasonUpstreamFailure = "upstream_failure"
	ReasonTimeout         = "timeout"
)

// GenerationError is the terminal failure of a schema-enforced generative
// call. The client retries internally; by the time callers see this error
// every attempt has been spent.
type GenerationError struct {
	Reason   string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s) after %d attempts: %v", e.Reason, e.Attempts, e.Err)
	}
	return fmt.Sprintf("generation failed (%s) after %d attempts", e.Reason, e.Attempts)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err carries a GenerationError anywhere
// in its chain.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// Rules a ConstraintViolation can name.
const (
	RuleVerificationMethod = "verification_method"
	RuleLongSessions       = "long_sessions"
	RuleTimeBudget         = "time_budget"
	RuleResourceWhitelist  = "resource_whitelist"
)

// ConstraintViolation means the oracle could not repair a plan by trimming
// or redistribution. Fatal for the run.
type ConstraintViolation struct {
	WeekIndex int
	Rule      string
	Detail    string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("week %d violates %s: %s", e.WeekIndex, e.Rule, e.Detail)
}
