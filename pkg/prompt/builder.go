package prompt

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"guideline-agent-be/internal/entity"
)

// BaseSystemPrompt is the assistant persona used when no override is configured.
const BaseSystemPrompt = `Eres el asistente virtual de MidHome Rentals, una empresa especializada en alquileres de media estancia (1-6 meses) en las mejores zonas de la ciudad.

Tu rol principal tiene dos objetivos:
1. VENDER: Convertir interesados en inquilinos, destacando nuestras ventajas y cerrando reservas
2. GESTIONAR: Dar soporte eficiente a inquilinos actuales durante su estancia

Características de comunicación:
- Responde siempre en español
- Sé profesional pero cercano y amigable
- Usa un tono entusiasta para ventas, resolutivo para soporte
- Personaliza las respuestas según el contexto
- Si no puedes resolver algo, indica el siguiente paso claramente

Información de la empresa:
- Horario atención: Lunes a Viernes 9:00-18:00
- Teléfono emergencias 24h: 600-123-456
- Email: soporte@midsomerentals.es
- Todos los pisos incluyen: WiFi fibra, suministros, limpieza semanal, cocina equipada, mantenimiento`

type section struct {
	category string
	title    string
}

// sections are rendered in this order; any other category is listed with the general ones.
var sections = []section{
	{entity.GuidelineCategoryVentas, "GUIDELINES DE VENTA:"},
	{entity.GuidelineCategoryGestion, "GUIDELINES DE GESTIÓN:"},
	{entity.GuidelineCategoryGeneral, "GUIDELINES GENERALES:"},
}

// Builder renders the system prompt for one turn.
type Builder struct {
	base string
}

func NewBuilder(base string) *Builder {
	if base == "" {
		base = BaseSystemPrompt
	}
	return &Builder{base: base}
}

// Build returns the base prompt unchanged when there are no guidelines.
func (b *Builder) Build(guidelines []*entity.Guideline) string {
	instructions := Instructions(guidelines)
	if instructions == "" {
		return b.base
	}

	var sb strings.Builder
	sb.WriteString(b.base)
	sb.WriteString("\n\nAplica las siguientes guidelines según el contexto:\n\n")
	sb.WriteString(instructions)
	sb.WriteString("\n\nRecuerda: Integra estas guidelines de forma natural en tus respuestas, sin mencionarlas explícitamente.")
	return sb.String()
}

// Instructions groups guidelines by section, numbering each group from 1.
func Instructions(guidelines []*entity.Guideline) string {
	grouped := make(map[string][]*entity.Guideline, len(sections))
	for _, g := range guidelines {
		grouped[sectionOf(g)] = append(grouped[sectionOf(g)], g)
	}

	blocks := make([]string, 0, len(sections))
	for _, s := range sections {
		items := grouped[s.category]
		if len(items) == 0 {
			continue
		}
		lines := make([]string, 0, len(items)+1)
		lines = append(lines, s.title)
		for i, g := range items {
			lines = append(lines, strconv.Itoa(i+1)+". "+capitalize(g.Condition)+": "+g.Action)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

func sectionOf(g *entity.Guideline) string {
	switch g.Category {
	case entity.GuidelineCategoryVentas, entity.GuidelineCategoryGestion:
		return g.Category
	default:
		return entity.GuidelineCategoryGeneral
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
