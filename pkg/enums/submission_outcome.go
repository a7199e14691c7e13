package enums

// SubmissionOutcome labels the result of a submit attempt for metrics.
type SubmissionOutcome string

const (
	SubmissionOutcomeAccepted        SubmissionOutcome = "accepted"
	SubmissionOutcomeHoneypot        SubmissionOutcome = "honeypot"
	SubmissionOutcomeInvalid         SubmissionOutcome = "invalid"
	SubmissionOutcomeSecurityFailed  SubmissionOutcome = "security_failed"
	SubmissionOutcomeRateLimited     SubmissionOutcome = "rate_limited"
	SubmissionOutcomeDependencyError SubmissionOutcome = "dependency_error"
)

// String implements fmt.Stringer.
func (o SubmissionOutcome) String() string {
	return string(o)
}
