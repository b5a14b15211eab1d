package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/joshua-takyi/rsvp/internal/models"
)

type copyText struct {
	InvitationSubject   string
	ConfirmationSubject string
	PlusOneSubject      string

	Greeting        string
	InvitationTitle string
	InvitationIntro string
	PlusOneIntro    string // formatted with the host's name
	DetailsHeading  string
	DateLabel       string
	LocationLabel   string
	CallToAction    string
	Button          string
	LinkFallback    string
	Deadline        string // formatted with the response deadline
	LookForward     string
	Questions       string
	SignOff         string

	ConfirmationTitle string
	ConfirmationIntro string
	ResponseHeading   string
	AttendingLabel    string
	DietaryLabel      string
	PlusOneLabel      string
	Yes               string
	No                string
	None              string
	SeeYou            string
	SorryToMiss       string
}

var copies = map[models.Language]copyText{
	models.LanguageEN: {
		InvitationSubject:   "You're Invited to Our Wedding!",
		ConfirmationSubject: "Thank you for your RSVP!",
		PlusOneSubject:      "You're Invited to Our Wedding as a Plus-One!",
		Greeting:            "Dear",
		InvitationTitle:     "Save the Date!",
		InvitationIntro:     "We are delighted to invite you to our wedding celebration!",
		PlusOneIntro:        "%s has invited you to join them at our wedding celebration!",
		DetailsHeading:      "Wedding Details",
		DateLabel:           "Date",
		LocationLabel:       "Location",
		CallToAction:        "Please let us know if you can attend by clicking the button below:",
		Button:              "RSVP Now",
		LinkFallback:        "If the button doesn't work, you can copy and paste the following link into your browser:",
		Deadline:            "We kindly ask that you respond by %s.",
		LookForward:         "We look forward to celebrating with you!",
		Questions:           "If you have any questions, please don't hesitate to contact us.",
		SignOff:             "With love,",
		ConfirmationTitle:   "Thank You!",
		ConfirmationIntro:   "Thank you for responding to our wedding invitation!",
		ResponseHeading:     "Your Response",
		AttendingLabel:      "Attending",
		DietaryLabel:        "Dietary Requirements",
		PlusOneLabel:        "Plus-one",
		Yes:                 "Yes",
		No:                  "No",
		None:                "None",
		SeeYou:              "We can't wait to celebrate with you!",
		SorryToMiss:         "We're sorry you can't make it. Your response has been recorded.",
	},
	models.LanguageES: {
		InvitationSubject:   "¡Estás Invitado a Nuestra Boda!",
		ConfirmationSubject: "¡Gracias por tu Confirmación!",
		PlusOneSubject:      "¡Estás Invitado a Nuestra Boda como Acompañante!",
		Greeting:            "Querido/a",
		InvitationTitle:     "¡Reserva la Fecha!",
		InvitationIntro:     "¡Nos complace invitarte a la celebración de nuestra boda!",
		PlusOneIntro:        "¡%s te ha invitado a acompañarle en la celebración de nuestra boda!",
		DetailsHeading:      "Detalles de la Boda",
		DateLabel:           "Fecha",
		LocationLabel:       "Lugar",
		CallToAction:        "Por favor, haznos saber si puedes asistir haciendo clic en el botón de abajo:",
		Button:              "Confirmar Asistencia",
		LinkFallback:        "Si el botón no funciona, puedes copiar y pegar el siguiente enlace en tu navegador:",
		Deadline:            "Te pedimos amablemente que respondas antes del %s.",
		LookForward:         "¡Esperamos celebrar contigo!",
		Questions:           "Si tienes alguna pregunta, no dudes en contactarnos.",
		SignOff:             "Con cariño,",
		ConfirmationTitle:   "¡Gracias!",
		ConfirmationIntro:   "¡Gracias por responder a nuestra invitación de boda!",
		ResponseHeading:     "Tu Respuesta",
		AttendingLabel:      "Asistirás",
		DietaryLabel:        "Requisitos Dietéticos",
		PlusOneLabel:        "Acompañante",
		Yes:                 "Sí",
		No:                  "No",
		None:                "Ninguno",
		SeeYou:              "¡Estamos deseando celebrar contigo!",
		SorryToMiss:         "Sentimos que no puedas venir. Hemos registrado tu respuesta.",
	},
	models.LanguageNL: {
		InvitationSubject:   "Je Bent Uitgenodigd voor Onze Bruiloft!",
		ConfirmationSubject: "Bedankt voor je Reactie!",
		PlusOneSubject:      "Je Bent Uitgenodigd voor Onze Bruiloft als Introducé!",
		Greeting:            "Beste",
		InvitationTitle:     "Save the Date!",
		InvitationIntro:     "We nodigen je van harte uit voor ons bruiloftsfeest!",
		PlusOneIntro:        "%s heeft je uitgenodigd om mee te gaan naar ons bruiloftsfeest!",
		DetailsHeading:      "Details van de Bruiloft",
		DateLabel:           "Datum",
		LocationLabel:       "Locatie",
		CallToAction:        "Laat ons weten of je erbij kunt zijn door op de onderstaande knop te klikken:",
		Button:              "Nu Reageren",
		LinkFallback:        "Als de knop niet werkt, kopieer en plak dan de volgende link in je browser:",
		Deadline:            "We vragen je vriendelijk om te reageren voor %s.",
		LookForward:         "We kijken ernaar uit om het samen met je te vieren!",
		Questions:           "Heb je vragen, neem dan gerust contact met ons op.",
		SignOff:             "Met liefde,",
		ConfirmationTitle:   "Bedankt!",
		ConfirmationIntro:   "Bedankt voor je reactie op onze trouwuitnodiging!",
		ResponseHeading:     "Jouw Reactie",
		AttendingLabel:      "Aanwezig",
		DietaryLabel:        "Dieetwensen",
		PlusOneLabel:        "Introducé",
		Yes:                 "Ja",
		No:                  "Nee",
		None:                "Geen",
		SeeYou:              "We kunnen niet wachten om het met je te vieren!",
		SorryToMiss:         "Jammer dat je er niet bij kunt zijn. Je reactie is genoteerd.",
	},
}

func copyFor(lang models.Language) copyText {
	if c, ok := copies[lang]; ok {
		return c
	}
	return copies[models.LanguageEN]
}

type templateData struct {
	T                copyText
	GuestName        string
	HostName         string
	CoupleNames      string
	EventDate        string
	EventLocation    string
	ResponseDeadline string
	RSVPURL          string
	Attending        bool
	Dietary          string
	PlusOne          string
}

const htmlLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
{{block "content" .}}{{end}}
<p>{{.T.SignOff}}<br>{{.CoupleNames}}</p>
</body>
</html>`

const invitationHTML = `{{define "content"}}
<div style="text-align: center; margin-bottom: 30px;"><h1 style="color: #d4a373;">{{.T.InvitationTitle}}</h1></div>
<p>{{.T.Greeting}} {{.GuestName}},</p>
{{if .HostName}}<p>{{printf .T.PlusOneIntro .HostName}}</p>{{else}}<p>{{.T.InvitationIntro}}</p>{{end}}
<div style="background-color: #fefae0; padding: 20px; border-radius: 8px; margin: 20px 0;">
<h2 style="color: #bc6c25; margin-top: 0;">{{.T.DetailsHeading}}</h2>
<p><strong>{{.T.DateLabel}}:</strong> {{.EventDate}}</p>
<p><strong>{{.T.LocationLabel}}:</strong> {{.EventLocation}}</p>
</div>
<p>{{.T.CallToAction}}</p>
<div style="text-align: center; margin: 30px 0;">
<a href="{{.RSVPURL}}" style="background-color: #d4a373; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; font-size: 18px;">{{.T.Button}}</a>
</div>
<p>{{.T.LinkFallback}}</p>
<p style="word-break: break-all; color: #606c38;"><a href="{{.RSVPURL}}">{{.RSVPURL}}</a></p>
{{if .ResponseDeadline}}<p>{{printf .T.Deadline .ResponseDeadline}}</p>{{end}}
<p>{{.T.LookForward}}</p>
<p style="font-size: 12px; color: #888; text-align: center;">{{.T.Questions}}</p>
{{end}}`

const confirmationHTML = `{{define "content"}}
<div style="text-align: center; margin-bottom: 30px;"><h1 style="color: #d4a373;">{{.T.ConfirmationTitle}}</h1></div>
<p>{{.T.Greeting}} {{.GuestName}},</p>
<p>{{.T.ConfirmationIntro}}</p>
<div style="background-color: #fefae0; padding: 20px; border-radius: 8px; margin: 20px 0;">
<h2 style="color: #bc6c25; margin-top: 0;">{{.T.ResponseHeading}}</h2>
<p><strong>{{.T.AttendingLabel}}:</strong> {{if .Attending}}{{.T.Yes}}{{else}}{{.T.No}}{{end}}</p>
{{if .Attending}}<p><strong>{{.T.DietaryLabel}}:</strong> {{.Dietary}}</p>
<p><strong>{{.T.PlusOneLabel}}:</strong> {{.PlusOne}}</p>{{end}}
</div>
<p>{{if .Attending}}{{.T.SeeYou}}{{else}}{{.T.SorryToMiss}}{{end}}</p>
{{end}}`

const textLayout = `{{.T.Greeting}} {{.GuestName}},

{{block "content" .}}{{end}}
{{.T.SignOff}}
{{.CoupleNames}}
`

const invitationText = `{{define "content"}}{{if .HostName}}{{printf .T.PlusOneIntro .HostName}}{{else}}{{.T.InvitationIntro}}{{end}}

{{.T.DetailsHeading}}:
- {{.T.DateLabel}}: {{.EventDate}}
- {{.T.LocationLabel}}: {{.EventLocation}}

{{.T.CallToAction}}
{{.RSVPURL}}
{{if .ResponseDeadline}}
{{printf .T.Deadline .ResponseDeadline}}
{{end}}
{{.T.LookForward}}
{{end}}`

const confirmationText = `{{define "content"}}{{.T.ConfirmationIntro}}

{{.T.ResponseHeading}}:
- {{.T.AttendingLabel}}: {{if .Attending}}{{.T.Yes}}{{else}}{{.T.No}}{{end}}
{{- if .Attending}}
- {{.T.DietaryLabel}}: {{.Dietary}}
- {{.T.PlusOneLabel}}: {{.PlusOne}}
{{- end}}

{{if .Attending}}{{.T.SeeYou}}{{else}}{{.T.SorryToMiss}}{{end}}
{{end}}`

type renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

var renderers = map[models.EmailType]renderer{
	models.EmailTypeInvitation:    newRenderer(invitationHTML, invitationText),
	models.EmailTypePlusOneInvite: newRenderer(invitationHTML, invitationText),
	models.EmailTypeConfirmation:  newRenderer(confirmationHTML, confirmationText),
}

func newRenderer(htmlContent, textContent string) renderer {
	h := htmltemplate.Must(htmltemplate.New("layout").Parse(htmlLayout))
	h = htmltemplate.Must(h.Parse(htmlContent))
	t := texttemplate.Must(texttemplate.New("layout").Parse(textLayout))
	t = texttemplate.Must(t.Parse(textContent))
	return renderer{html: h, text: t}
}

func subjectFor(kind models.EmailType, c copyText) string {
	switch kind {
	case models.EmailTypeConfirmation:
		return c.ConfirmationSubject
	case models.EmailTypePlusOneInvite:
		return c.PlusOneSubject
	default:
		return c.InvitationSubject
	}
}

// render produces the subject and both bodies for kind in lang, falling back
// to English for unknown languages.
func render(kind models.EmailType, lang models.Language, data templateData) (subject, html, text string, err error) {
	r, ok := renderers[kind]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email type %q", kind)
	}
	data.T = copyFor(lang)

	var hb, tb bytes.Buffer
	if err := r.html.Execute(&hb, data); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := r.text.Execute(&tb, data); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", kind, err)
	}
	return subjectFor(kind, data.T), hb.String(), tb.String(), nil
}
