// Package advice turns per-module mastery history into a study
// recommendation: which competency area to attack next, a textual nudge, and
// a concrete action step. The engine is a pure function of its input — the
// same mastery vector always selects the same module.
package advice

import (
	"fmt"

	"github.com/docentia/simulacro-backend/internal/model"
)

// DiagnosticModule is the fixed cold-start recommendation when the user has
// no history at all.
const DiagnosticModule = model.ModuleComprensionLectora

// Input is the mastery state the engine analyzes. Modules absent from
// Mastery default to 0.
type Input struct {
	Mastery          map[model.Module]int `json:"mastery"`
	AverageScore     float64              `json:"average_score"`
	TotalSimulations int                  `json:"total_simulations"`
}

// Recommendation is the engine's output.
type Recommendation struct {
	Advice     string       `json:"advice"`
	NextModule model.Module `json:"next_module"`
	ActionStep string       `json:"action_step"`
}

// score buckets
const (
	bucketLow  = "low"  // < 40
	bucketMid  = "mid"  // 40..79
	bucketHigh = "high" // >= 80
)

// Analyze selects the weakest module and derives the matching nudge. Ties
// are broken by the declared order of model.Modules, regardless of map
// iteration order. A fully cold profile yields the diagnostic default.
func Analyze(in Input) Recommendation {
	weakest := DiagnosticModule
	lowest := -1
	allZero := true

	for _, m := range model.Modules {
		score := in.Mastery[m]
		if score != 0 {
			allZero = false
		}
		if lowest == -1 || score < lowest {
			lowest = score
			weakest = m
		}
	}

	if allZero && in.TotalSimulations == 0 {
		return Recommendation{
			NextModule: DiagnosticModule,
			Advice: "Aún no tienes historial. Comienza con un simulacro de diagnóstico " +
				"para conocer tu punto de partida.",
			ActionStep: fmt.Sprintf("Realiza un simulacro de %s de 10 preguntas.",
				DiagnosticModule.DisplayName()),
		}
	}

	return Recommendation{
		NextModule: weakest,
		Advice:     adviceText(weakest, lowest, in.TotalSimulations),
		ActionStep: actionStep(weakest, lowest),
	}
}

func scoreBucket(score int) string {
	switch {
	case score < 40:
		return bucketLow
	case score < 80:
		return bucketMid
	default:
		return bucketHigh
	}
}

func adviceText(m model.Module, score, sims int) string {
	name := m.DisplayName()

	switch scoreBucket(score) {
	case bucketLow:
		if sims < 5 {
			return fmt.Sprintf("Tu dominio de %s es bajo (%d%%). Dedica tus próximas "+
				"sesiones a este módulo antes de avanzar.", name, score)
		}
		return fmt.Sprintf("Llevas %d simulacros y %s sigue siendo tu punto débil (%d%%). "+
			"Cambia de estrategia: repasa la teoría antes de seguir practicando.", sims, name, score)
	case bucketMid:
		return fmt.Sprintf("Vas por buen camino, pero %s (%d%%) todavía te resta puntos. "+
			"Un par de simulacros enfocados deberían cerrar la brecha.", name, score)
	default:
		return fmt.Sprintf("Excelente dominio general. Mantén %s (%d%%) afilado con "+
			"repasos cortos y sube la dificultad.", name, score)
	}
}

func actionStep(m model.Module, score int) string {
	name := m.DisplayName()

	switch scoreBucket(score) {
	case bucketLow:
		return fmt.Sprintf("Haz un simulacro de %s en modo estudio, con explicaciones activadas.", name)
	case bucketMid:
		return fmt.Sprintf("Haz un simulacro cronometrado de %s de 15 preguntas.", name)
	default:
		return fmt.Sprintf("Haz un simulacro de %s con dificultad avanzada.", name)
	}
}
