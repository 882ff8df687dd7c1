package quiz

import "github.com/google/uuid"

// Ledger tracks the selected answer per question for a single attempt.
// Writes are last-wins overwrites; no history of prior selections is kept.
// The ledger does not validate that a value belongs to the question's option
// set — that is the session's job.
type Ledger struct {
	answers map[uuid.UUID]string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{answers: make(map[uuid.UUID]string)}
}

// Record stores the answer for a question, overwriting any prior selection.
func (l *Ledger) Record(questionID uuid.UUID, value string) {
	l.answers[questionID] = value
}

// Get returns the recorded answer for a question, if any.
func (l *Ledger) Get(questionID uuid.UUID) (string, bool) {
	v, ok := l.answers[questionID]
	return v, ok
}

// Len returns the number of answered questions.
func (l *Ledger) Len() int {
	return len(l.answers)
}

// Snapshot copies the ledger into a string-keyed map for transport
// (state endpoint, autosave payloads).
func (l *Ledger) Snapshot() map[string]string {
	out := make(map[string]string, len(l.answers))
	for id, v := range l.answers {
		out[id.String()] = v
	}
	return out
}

// Restore replays previously autosaved answers into the ledger. Invalid
// question ids are skipped.
func (l *Ledger) Restore(saved map[string]string) {
	for id, v := range saved {
		qid, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		l.answers[qid] = v
	}
}
