package tmvalidate

import "github.com/r9s-ai/textmate-validate/pkg/grammar"

// Outcome is the verdict for one regex. Message is set only when Valid is
// false, and then holds the engine's error text unchanged.
type Outcome struct {
	Valid   bool   `json:"valid"`
	Message string `json:"error,omitempty"`
}

// ValidOutcome returns a passing Outcome.
func ValidOutcome() Outcome { return Outcome{Valid: true} }

// InvalidOutcome returns a failing Outcome carrying msg.
func InvalidOutcome(msg string) Outcome { return Outcome{Message: msg} }

// Passed reports whether the regex compiled.
func (o Outcome) Passed() bool { return o.Valid }

// Failed reports whether the regex was rejected. Message is meaningful only
// when Failed is true.
func (o Outcome) Failed() bool { return !o.Valid }

// Entry is the outcome for one located regex.
type Entry struct {
	grammar.LocatedRegex
	Outcome
}

// Result is the validation result of a grammar, in document order. It is
// built once by the Validator and must not be modified afterwards.
type Result []Entry

// Passed reports whether every entry passed. An empty Result passes.
func (r Result) Passed() bool {
	for _, e := range r {
		if !e.Valid {
			return false
		}
	}
	return true
}

// Failed reports whether at least one entry failed. An empty Result does not
// fail.
func (r Result) Failed() bool { return !r.Passed() }

// Valid returns the passing entries in order.
func (r Result) Valid() []Entry { return r.filter(true) }

// Invalid returns the failing entries in order. Each carries its Message.
func (r Result) Invalid() []Entry { return r.filter(false) }

// Counts returns total, valid and invalid entry counts.
func (r Result) Counts() (total, valid, invalid int) {
	for _, e := range r {
		if e.Valid {
			valid++
		} else {
			invalid++
		}
	}
	return len(r), valid, invalid
}

func (r Result) filter(valid bool) []Entry {
	out := make([]Entry, 0, len(r))
	for _, e := range r {
		if e.Valid == valid {
			out = append(out, e)
		}
	}
	return out
}
