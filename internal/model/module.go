package model

// Module enumerates the five competency areas covered by the simulacros.
// The declared order doubles as the fixed priority used to break ties when
// the advice engine picks the weakest module.
type Module string

const (
	ModuleComprensionLectora       Module = "comprension_lectora"
	ModuleRazonamientoLogico       Module = "razonamiento_logico"
	ModuleConocimientosPedagogicos Module = "conocimientos_pedagogicos"
	ModuleMatematica               Module = "matematica"
	ModuleCienciaTecnologia        Module = "ciencia_tecnologia"
)

// Modules lists all competency areas in priority order.
var Modules = []Module{
	ModuleComprensionLectora,
	ModuleRazonamientoLogico,
	ModuleConocimientosPedagogicos,
	ModuleMatematica,
	ModuleCienciaTecnologia,
}

// Valid reports whether m is a known competency area.
func (m Module) Valid() bool {
	for _, known := range Modules {
		if m == known {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable Spanish name of the module.
func (m Module) DisplayName() string {
	switch m {
	case ModuleComprensionLectora:
		return "Comprensión Lectora"
	case ModuleRazonamientoLogico:
		return "Razonamiento Lógico"
	case ModuleConocimientosPedagogicos:
		return "Conocimientos Pedagógicos"
	case ModuleMatematica:
		return "Matemática"
	case ModuleCienciaTecnologia:
		return "Ciencia y Tecnología"
	default:
		return string(m)
	}
}

// Difficulty grades a question.
type Difficulty string

const (
	DifficultyBaja      Difficulty = "baja"
	DifficultyMedia     Difficulty = "media"
	DifficultyMediaAlta Difficulty = "media_alta"
	DifficultyAlta      Difficulty = "alta"
	DifficultyAvanzada  Difficulty = "avanzada"
)
