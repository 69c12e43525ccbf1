package locale

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	n := NewNegotiator("fr")

	cases := map[string]string{
		"":       "fr",
		"es":     "es",
		"ES":     "es",
		"es-AR":  "es",
		"fr-CH":  "fr",
		"it":     "fr",
		"de":     "fr",
		"en":     "fr",
		"zz-!!":  "fr",
	}
	for input, expected := range cases {
		require.Equal(t, expected, n.Normalize(input), "input %q", input)
	}
}

func TestNegotiatorFallback(t *testing.T) {
	require.Equal(t, "es", NewNegotiator("es").Normalize("en"))
	require.Equal(t, Default, NewNegotiator("pt").Fallback())
}

func TestFromRequest(t *testing.T) {
	n := NewNegotiator("fr")

	req := httptest.NewRequest("GET", "/", nil)
	require.Equal(t, "fr", n.FromRequest(req))

	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
	require.Equal(t, "es", n.FromRequest(req))

	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	require.Equal(t, "fr", n.FromRequest(req))

	require.Equal(t, "fr", n.FromRequest(nil))
}

func TestIsSupported(t *testing.T) {
	require.True(t, IsSupported("es"))
	require.True(t, IsSupported(" FR "))
	require.False(t, IsSupported("en"))
	require.Equal(t, []string{"fr", "es"}, Supported())
}
