package onboarding

import (
	"fmt"
	"strings"

	"github.com/dietic/aliado-bot/models"
)

// User-facing copy. Single fixed locale (es-PE); WhatsApp markup is limited
// to the bold/italic subset.
const (
	msgWelcomeFallback = "Hola 👋 Soy Aliado. ¿Quieres registrarte como proveedor de servicios? Responde *sí* para empezar."
	msgWelcomeAccepted = "¡Perfecto, vamos a registrarte!"
	msgWelcomeDeclined = "No te preocupes. Puedes encontrar más información sobre nosotros en nuestra web: https://aliado.pe"

	msgAskName       = "¿Cuál es tu nombre completo?"
	msgAskDistricts  = "¿En qué distrito(s) trabajas? Envía uno o varios separados por comas."
	msgAskServices   = "Perfecto, ¿qué servicios ofreces? (p.ej. plomería, electricidad)"
	msgAskExperience = "¿Tienes experiencia o certificaciones? Descríbelo brevemente."

	msgRepromptName       = "No entendí tu nombre. Por favor escribe tu nombre completo."
	msgRepromptDistricts  = "No entendí los distritos. Por favor envía uno o varios separados por comas."
	msgRepromptServices   = "No entendí los servicios. Por favor escribe los que ofreces."
	msgRepromptExperience = "Por favor describe tu experiencia, aunque sea breve."
	msgRepromptConfirm    = "No entendí. Responde *confirmar* para terminar o *corregir* para empezar de nuevo."

	msgRestart = "Entendido, empecemos de nuevo. ¿Cuál es tu nombre completo?"

	msgNormalizerRetry = "No pude procesar tus datos en este momento. Por favor responde *confirmar* para intentarlo de nuevo."
	msgDraftUnusable   = "No reconocí tus distritos o servicios. Responde *corregir* para ingresarlos nuevamente."
	msgTryLater        = "Error interno. Por favor intenta más tarde."

	msgAvailableOn  = "¡Listo! Ahora apareces como disponible."
	msgAvailableOff = "Entendido, ya no apareces como disponible."

	msgNudge = "¿Seguimos con tu registro? Te faltan pocos pasos."
)

// confirmation tokens accepted at AWAIT_CONFIRM, case-insensitive, from
// free text or quick-reply payload.
const (
	tokenConfirm = "confirmar"
	tokenCorrect = "corregir"
)

// quick-reply payloads of the welcome template.
const (
	payloadJoinYes = "welcome_yes"
	payloadJoinNo  = "welcome_no"
)

// availability keywords a finalized provider can text at any time.
const (
	keywordAvailable   = "disponible"
	keywordUnavailable = "ocupado"
)

func summaryPrompt(s *models.Session) string {
	return "Estos son tus datos:\n" +
		fmt.Sprintf("• *Nombre:* %s\n", s.Name) +
		fmt.Sprintf("• *Distritos:* %s\n", s.Districts) +
		fmt.Sprintf("• *Servicios:* %s\n", s.Services) +
		fmt.Sprintf("• *Experiencia:* %s\n\n", s.Experience) +
		"¿Todo correcto? Responde *confirmar* o *corregir*."
}

func welcomeSummary(cleaned *models.CleanedDraft) string {
	name := strings.TrimSpace(cleaned.FirstName + " " + cleaned.LastName)
	return "*¡Bienvenido 🎉!*\n\n" +
		"Estos son los datos que nos has dado:\n\n" +
		fmt.Sprintf("*• Nombre:* %s\n", name) +
		fmt.Sprintf("*• Distritos:* %s\n", strings.Join(cleaned.Districts, ", ")) +
		fmt.Sprintf("*• Servicios:* %s\n\n", strings.Join(cleaned.Categories, ", ")) +
		"Ahora eres un Aliado. Envía *DISPONIBLE* para empezar a recibir pedidos."
}
