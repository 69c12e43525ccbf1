package emails

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/romyseb/wedding/internal/locale"
)

// Kind selects the wording of an access link email.
type Kind string

const (
	KindInvite Kind = "invite"
	KindResend Kind = "resend"
)

var subjects = map[string]map[Kind]string{
	locale.Spanish: {
		KindInvite: "Tu enlace de acceso a la boda",
		KindResend: "Tu nuevo enlace de acceso",
	},
	locale.French: {
		KindInvite: "Ton lien d'accès au mariage",
		KindResend: "Ton nouveau lien d'accès",
	},
}

// plainBodies are the text/plain alternatives: greeting, lead sentence, link.
var plainBodies = map[string]map[Kind]string{
	locale.Spanish: {
		KindInvite: "¡Hola %s!\n\nEste es tu enlace personal de acceso a la página de nuestra boda:\n%s\n\nCon cariño,\nRomi & Sebas\n",
		KindResend: "¡Hola %s!\n\nAquí tienes tu nuevo enlace personal de acceso. El enlace anterior ya no es válido:\n%s\n\nCon cariño,\nRomi & Sebas\n",
	},
	locale.French: {
		KindInvite: "Bonjour %s !\n\nVoici ton lien personnel d'accès au site de notre mariage :\n%s\n\nAvec tout notre amour,\nRomi & Sebas\n",
		KindResend: "Bonjour %s !\n\nVoici ton nouveau lien personnel d'accès. L'ancien lien n'est plus valable :\n%s\n\nAvec tout notre amour,\nRomi & Sebas\n",
	},
}

var anonymousGuest = map[string]string{
	locale.Spanish: "invitado/a",
	locale.French:  "invité(e)",
}

// Data is the input of an access link email.
type Data struct {
	FirstName string
	Link      string
}

// Email is a rendered message ready to hand to a mailer.
type Email struct {
	Locale  string
	Subject string
	Text    string
	HTML    string
}

// Renderer produces localized access link emails from embedded templates.
type Renderer struct {
	templates  map[string]*template.Template
	negotiator *locale.Negotiator
}

// NewRenderer parses invite.<locale>.html for every site locale found in files.
func NewRenderer(files fs.FS, negotiator *locale.Negotiator) (*Renderer, error) {
	if files == nil {
		return nil, errors.New("emails: template filesystem is required")
	}
	if negotiator == nil {
		negotiator = locale.NewNegotiator(locale.Default)
	}

	templates := make(map[string]*template.Template, len(locale.Supported()))
	for _, loc := range locale.Supported() {
		name := fmt.Sprintf("invite.%s.html", loc)
		tmpl, err := template.ParseFS(files, name)
		if err != nil {
			return nil, fmt.Errorf("emails: parse %s: %w", name, err)
		}
		templates[loc] = tmpl
	}

	return &Renderer{templates: templates, negotiator: negotiator}, nil
}

// Render builds the email for the guest's preferred language. Languages without a
// template use the negotiator's fallback locale.
func (r *Renderer) Render(preferred string, kind Kind, data Data) (Email, error) {
	if data.Link == "" {
		return Email{}, errors.New("emails: access link is required")
	}
	if kind != KindResend {
		kind = KindInvite
	}

	loc := r.negotiator.Normalize(preferred)
	tmpl, ok := r.templates[loc]
	if !ok {
		return Email{}, fmt.Errorf("emails: no template for locale %q", loc)
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Data
		Resend bool
	}{Data: data, Resend: kind == KindResend})
	if err != nil {
		return Email{}, fmt.Errorf("emails: render %s: %w", loc, err)
	}

	name := strings.TrimSpace(data.FirstName)
	if name == "" {
		name = anonymousGuest[loc]
	}

	return Email{
		Locale:  loc,
		Subject: subjects[loc][kind],
		Text:    fmt.Sprintf(plainBodies[loc][kind], name, data.Link),
		HTML:    buf.String(),
	}, nil
}
