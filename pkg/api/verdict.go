package api

import (
	"fmt"
	"strings"
)

// Verdict is the result of evaluating one artifact against one checker
// concern: either approved, or rejected with a one-line reason. A verdict
// is immutable once produced.
type Verdict struct {
	Approved bool
	Reason   string
}

// Approve returns an approving verdict.
func Approve() Verdict {
	return Verdict{Approved: true}
}

// Reject returns a rejecting verdict carrying the given reason.
func Reject(reason string) Verdict {
	return Verdict{Reason: reason}
}

const (
	approvedWord   = "APPROVED"
	rejectedPrefix = "REJECTED:"
)

// ParseVerdict parses the textual verdict protocol spoken by hosted
// checkers: the exact word "APPROVED", or "REJECTED: <one-line issue>".
// Anything else is an error, never an implicit approval or rejection.
func ParseVerdict(s string) (Verdict, error) {
	text := strings.TrimSpace(s)
	if text == approvedWord {
		return Approve(), nil
	}
	if strings.HasPrefix(text, rejectedPrefix) {
		reason := strings.TrimSpace(strings.TrimPrefix(text, rejectedPrefix))
		if reason == "" {
			reason = "rejected without reason"
		}
		return Reject(reason), nil
	}
	return Verdict{}, fmt.Errorf("malformed verdict %q: want %q or %q followed by a reason", text, approvedWord, rejectedPrefix)
}

// String renders the verdict in the same protocol ParseVerdict accepts.
func (v Verdict) String() string {
	if v.Approved {
		return approvedWord
	}
	return rejectedPrefix + " " + v.Reason
}

// CheckerVerdict pairs a verdict with the label of the checker that
// produced it.
type CheckerVerdict struct {
	Checker string
	Verdict Verdict
}

// VerdictSet is the collection of all verdicts for one critique pass of
// one stage, ordered by checker identity (index-aligned with the stage's
// checker specs). The engine only aggregates complete sets: every checker
// configured for the stage has exactly one entry.
type VerdictSet []CheckerVerdict

// Unanimous reports whether every verdict in the set is an approval.
// Aggregation is a commutative AND, so the order in which checkers
// completed is irrelevant.
func (vs VerdictSet) Unanimous() bool {
	for _, cv := range vs {
		if !cv.Verdict.Approved {
			return false
		}
	}
	return true
}

// Reasons returns the rejection reasons in checker order, prefixed with
// the rejecting checker's label. An approving checker contributes nothing.
func (vs VerdictSet) Reasons() []string {
	var reasons []string
	for _, cv := range vs {
		if cv.Verdict.Approved {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", cv.Checker, cv.Verdict.Reason))
	}
	return reasons
}
