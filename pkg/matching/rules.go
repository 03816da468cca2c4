package matching

import (
	"regexp"

	"guideline-agent-be/internal/entity"
)

// Score contributions of the lexical scorer.
const (
	ExactMatchScore    = 100.0
	ContainmentBonus   = 70.0
	SynonymBonus       = 40.0
	WordOverlapWeight  = 30.0
	PriorityMultiplier = 0.5
	ContinuityBonus    = 15.0

	// continuityWindow is how many trailing messages are classified for the continuity bonus.
	continuityWindow = 3
	// partialMatchMinRunes guards substring matches between short tokens.
	partialMatchMinRunes = 3
)

type CategoryPatterns struct {
	Category string
	Patterns []string
}

// CategoryTable is scanned in order, first hit wins.
var CategoryTable = []CategoryPatterns{
	{
		Category: entity.GuidelineCategoryVentas,
		Patterns: []string{"precio", "costo", "cuánto cuesta", "tarifa", "alquiler", "disponible",
			"zona", "ubicación", "barrio", "ver piso", "visita", "reservar"},
	},
	{
		Category: entity.GuidelineCategoryGestion,
		Patterns: []string{"avería", "problema", "roto", "no funciona", "arreglar", "técnico",
			"pago", "factura", "recibo", "agua", "luz", "calefacción", "emergencia"},
	},
	{
		Category: entity.GuidelineCategoryGeneral,
		Patterns: []string{"hola", "buenos días", "buenas tardes", "gracias", "adiós", "información"},
	},
}

// FlowRule boosts guidelines of category To when the previous message was about From.
type FlowRule struct {
	From  string
	To    string
	Boost float64
}

var DefaultFlowRules = []FlowRule{
	{From: entity.GuidelineCategoryVentas, To: entity.GuidelineCategoryVentas, Boost: 20},
	{From: entity.GuidelineCategoryGeneral, To: entity.GuidelineCategoryVentas, Boost: 15},
	{From: entity.GuidelineCategoryGestion, To: entity.GuidelineCategoryGestion, Boost: 20},
}

type verbPattern struct {
	re     *regexp.Regexp
	weight float64
}

// Only patterns with a capture group can contribute; the keyword must also occur in the message.
var verbPatterns = []verbPattern{
	{regexp.MustCompile(`pregunta?\s+(?:sobre\s+|por\s+)?(\w+)`), 50},
	{regexp.MustCompile(`quiere?\s+(?:saber\s+|conocer\s+)?(\w+)`), 45},
	{regexp.MustCompile(`necesita?\s+(\w+)`), 45},
	{regexp.MustCompile(`busca?\s+(\w+)`), 45},
	{regexp.MustCompile(`interesa?\s+(\w+)`), 45},
	{regexp.MustCompile(`reporta?\s+(\w+)`), 50},
	{regexp.MustCompile(`tiene?\s+(?:un\s+)?problema`), 50},
	{regexp.MustCompile(`hay\s+(?:un\s+)?(\w+)`), 45},
	{regexp.MustCompile(`no\s+funciona`), 50},
	{regexp.MustCompile(`quiere?\s+(?:ver\s+|visitar\s+)?(\w+)`), 45},
	{regexp.MustCompile(`solicita?\s+(\w+)`), 45},
	{regexp.MustCompile(`pide?\s+(\w+)`), 45},
	{regexp.MustCompile(`menciona?\s+(\w+)`), 40},
	{regexp.MustCompile(`dice?\s+(\w+)`), 40},
	{regexp.MustCompile(`habla?\s+(?:de\s+|sobre\s+)?(\w+)`), 40},
}

type synonymEntry struct {
	key      string
	synonyms []string
}

var synonymTable = []synonymEntry{
	{"saluda", []string{"hola", "buenos días", "buenas tardes", "buenas noches", "buenas", "saludos"}},
	{"saludo", []string{"hola", "buenos días", "buenas tardes", "buenas noches", "buenas"}},
	{"precio", []string{"precio", "costo", "cuánto cuesta", "tarifa", "valor", "cuesta", "costar", "vale", "cuánto"}},
	{"disponible", []string{"disponible", "disponibilidad", "libre", "alquilar", "alquiler", "busco", "buscando"}},
	{"alquileres", []string{"alquiler", "alquilar", "piso", "estudio", "apartamento", "habitación"}},
	{"ubicacion", []string{"zona", "ubicación", "barrio", "dónde", "dirección", "cerca", "metro", "centro"}},
	{"visita", []string{"ver", "visitar", "visita", "conocer", "enseñar", "mostrar"}},
	{"reserva", []string{"reservar", "reserva", "apartar", "contratar", "alquilar"}},
	{"incluye", []string{"incluye", "incluido", "servicios", "qué tiene", "qué trae"}},
	{"requisitos", []string{"requisitos", "documentos", "documentación", "necesito", "piden"}},
	{"avería", []string{"avería", "roto", "no funciona", "arreglar", "falla", "daño", "estropeado", "lavadora", "nevera"}},
	{"reporta", []string{"reportar", "informar", "avisar", "decir", "comentar"}},
	{"problemas", []string{"problema", "problemas", "fallo", "mal", "error"}},
	{"agua", []string{"agua", "agua caliente", "agua fría", "grifo", "ducha"}},
	{"luz", []string{"luz", "electricidad", "corriente", "bombilla", "interruptor"}},
	{"calefacción", []string{"calefacción", "calor", "radiador", "frío"}},
	{"urgente", []string{"urgente", "emergencia", "urgencia", "ahora", "inmediatamente", "rápido"}},
	{"pago", []string{"pago", "pagar", "factura", "recibo", "cuota", "mensualidad"}},
	{"salida", []string{"salida", "check-out", "irme", "dejar", "terminar contrato", "fin contrato"}},
	{"renovar", []string{"renovar", "extender", "continuar", "quedarme más", "ampliar"}},
}

var stopwords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {}, "es": {}, "son": {},
	"de": {}, "del": {}, "al": {}, "por": {}, "para": {}, "con": {}, "sin": {}, "sobre": {},
	"entre": {}, "y": {}, "o": {}, "que": {}, "en": {}, "a": {}, "se": {},
}

type conditionCleaner struct {
	re          *regexp.Regexp
	replacement string
}

// Applied in order to a lowercased condition.
var conditionCleaners = []conditionCleaner{
	{regexp.MustCompile(`cuando\s+el\s+usuario\s+`), ""},
	{regexp.MustCompile(`cuando\s+usuario\s+`), ""},
	{regexp.MustCompile(`cuando\s+un\s+inquilino\s+`), ""},
	{regexp.MustCompile(`cuando\s+alguien\s+`), ""},
	{regexp.MustCompile(`cuando\s+hay\s+`), "hay "},
	{regexp.MustCompile(`cuando\s+`), ""},
	{regexp.MustCompile(`\s+`), " "},
}
