package emails

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/romyseb/wedding/internal/locale"
	"github.com/romyseb/wedding/web"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()

	files, err := web.EmailTemplates()
	require.NoError(t, err)
	renderer, err := NewRenderer(files, locale.NewNegotiator("fr"))
	require.NoError(t, err)
	return renderer
}

func TestRenderSpanishInvite(t *testing.T) {
	renderer := newRenderer(t)

	email, err := renderer.Render("es", KindInvite, Data{
		FirstName: "Ana",
		Link:      "https://romyseb.ch/acces?token=abc.def",
	})
	require.NoError(t, err)
	require.Equal(t, "es", email.Locale)
	require.Equal(t, "Tu enlace de acceso a la boda", email.Subject)
	require.Contains(t, email.HTML, "¡Hola Ana!")
	require.Contains(t, email.HTML, `href="https://romyseb.ch/acces?token=abc.def"`)
}

func TestRenderResendUsesResendSubject(t *testing.T) {
	renderer := newRenderer(t)

	email, err := renderer.Render("fr", KindResend, Data{FirstName: "Léa", Link: "https://romyseb.ch/acces?token=x"})
	require.NoError(t, err)
	require.Equal(t, "Ton nouveau lien d'accès", email.Subject)
	require.Contains(t, email.HTML, "nouveau lien")
}

func TestRenderFallsBackForUnsupportedLanguages(t *testing.T) {
	renderer := newRenderer(t)

	email, err := renderer.Render("it", KindInvite, Data{Link: "https://romyseb.ch/acces?token=x"})
	require.NoError(t, err)
	require.Equal(t, "fr", email.Locale)
	require.Contains(t, email.HTML, "invité(e)")
}

func TestRenderEscapesGuestInput(t *testing.T) {
	renderer := newRenderer(t)

	email, err := renderer.Render("es", KindInvite, Data{FirstName: "<script>", Link: "https://romyseb.ch/acces?token=x"})
	require.NoError(t, err)
	require.NotContains(t, email.HTML, "<script>")
	require.Contains(t, email.HTML, "&lt;script&gt;")
}

func TestRenderRequiresLink(t *testing.T) {
	renderer := newRenderer(t)

	_, err := renderer.Render("es", KindInvite, Data{FirstName: "Ana"})
	require.Error(t, err)
}

func TestNewRendererRequiresAllLocales(t *testing.T) {
	files := fstest.MapFS{"invite.es.html": {Data: []byte("{{.Link}}")}}
	_, err := NewRenderer(files, nil)
	require.Error(t, err)

	_, err = NewRenderer(nil, nil)
	require.Error(t, err)
}

func TestRenderIncludesPlainTextAlternative(t *testing.T) {
	renderer := newRenderer(t)

	email, err := renderer.Render("es", KindResend, Data{Link: "https://romyseb.ch/acces?token=x"})
	require.NoError(t, err)
	require.Contains(t, email.Text, "¡Hola invitado/a!")
	require.Contains(t, email.Text, "nuevo enlace")
	require.Contains(t, email.Text, "https://romyseb.ch/acces?token=x")
	require.NotContains(t, email.Text, "<")
}
