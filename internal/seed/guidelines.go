// Package seed holds the sample MidHome Rentals guideline catalog.
package seed

import "guideline-agent-be/internal/entity"

type guidelineSeed struct {
	condition string
	action    string
	priority  int
	category  string
}

var catalog = []guidelineSeed{
	{"cuando el usuario saluda", "Responde con un saludo cordial, preséntate como asistente de MidHome Rentals y pregunta si busca piso o ya es inquilino", 5, entity.GuidelineCategoryGeneral},
	{"cuando el usuario da las gracias", "Agradece su confianza y recuérdale que estás disponible para cualquier otra consulta", 2, entity.GuidelineCategoryGeneral},
	{"cuando el usuario pide información general", "Resume los servicios incluidos en todos los pisos y ofrece ayudarle a encontrar el adecuado", 4, entity.GuidelineCategoryGeneral},
	{"cuando el usuario pregunta por el precio", "Indica el rango de precios (900-1.800 €/mes según zona y tamaño), recuerda que incluye suministros y pregunta por su presupuesto", 9, entity.GuidelineCategoryVentas},
	{"cuando el usuario pregunta por disponibilidad", "Confirma que hay pisos disponibles, pide las fechas de entrada y salida y el número de personas", 8, entity.GuidelineCategoryVentas},
	{"cuando el usuario pregunta por la zona", "Describe las zonas donde tenemos pisos (Centro, Chamberí, Salamanca) y destaca transporte y servicios cercanos", 7, entity.GuidelineCategoryVentas},
	{"cuando el usuario quiere reservar", "Explica el proceso de reserva: formulario, fianza de un mes y firma digital del contrato en 24 horas", 9, entity.GuidelineCategoryVentas},
	{"cuando el usuario quiere ver piso", "Ofrece una visita presencial o virtual y propone dos franjas horarias esta semana", 8, entity.GuidelineCategoryVentas},
	{"cuando el usuario reporta una avería", "Muestra empatía, pide una descripción y fotos del problema y confirma que un técnico contactará en menos de 24 horas", 10, entity.GuidelineCategoryGestion},
	{"cuando el usuario tiene un problema con la calefacción", "Pide que compruebe el termostato y el diferencial; si persiste, abre una incidencia urgente", 9, entity.GuidelineCategoryGestion},
	{"cuando el usuario pregunta por el pago", "Recuerda que el alquiler se cobra por domiciliación el día 1 y ofrece enviar el recibo por email", 6, entity.GuidelineCategoryGestion},
	{"cuando el usuario pide una factura", "Confirma que la factura se envía al email registrado y ofrece reenviarla si no la encuentra", 5, entity.GuidelineCategoryGestion},
	{"cuando el usuario tiene una emergencia", "Facilita el teléfono de emergencias 24h 600-123-456 y pide que llame de inmediato", 10, entity.GuidelineCategoryGestion},
	{"cuando el usuario se queja del ruido", "Lamenta las molestias, recuerda las normas de convivencia y ofrece mediar con los vecinos", 4, entity.GuidelineCategorySupport},
	{"cuando el usuario quiere cancelar la reserva", "Explica la política de cancelación y ofrece alternativas de fechas antes de tramitarla", 6, ""},
}

// Guidelines returns fresh copies of the sample catalog, all active.
func Guidelines() []*entity.Guideline {
	out := make([]*entity.Guideline, len(catalog))
	for i, s := range catalog {
		out[i] = &entity.Guideline{
			Condition: s.condition,
			Action:    s.action,
			Priority:  s.priority,
			Active:    true,
			Category:  s.category,
		}
	}
	return out
}
