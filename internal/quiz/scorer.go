package quiz

import (
	"github.com/docentia/simulacro-backend/internal/model"
)

// ModuleScore aggregates correctness for one competency area.
type ModuleScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Breakdown is the result of scoring an attempt. Total counts every question
// in the attempt (including prompt-only items, for display); Scorable is the
// denominator actually used for the percentage. Prompt-only questions never
// contribute to Correct.
type Breakdown struct {
	Correct    int                          `json:"correct"`
	Total      int                          `json:"total"`
	Scorable   int                          `json:"scorable"`
	Percentage int                          `json:"percentage"`
	PerModule  map[model.Module]ModuleScore `json:"per_module"`
}

// Score grades the ledger against the question set. It never panics on an
// empty attempt: zero questions yields an all-zero breakdown.
func Score(questions []model.Question, answers *Ledger) Breakdown {
	b := Breakdown{
		Total:     len(questions),
		PerModule: make(map[model.Module]ModuleScore),
	}

	for _, q := range questions {
		ms := b.PerModule[q.Module]
		ms.Total++

		if !q.PromptOnly {
			b.Scorable++
			if got, ok := answers.Get(q.ID); ok && got == q.CorrectOption {
				b.Correct++
				ms.Correct++
			}
		}

		b.PerModule[q.Module] = ms
	}

	b.Percentage = Percentage(b.Correct, b.Scorable)
	return b
}

// Percentage computes round-half-up(correct/scorable*100). A zero denominator
// yields 0 rather than NaN or a panic.
func Percentage(correct, scorable int) int {
	if scorable <= 0 {
		return 0
	}
	return (correct*100 + scorable/2) / scorable
}
