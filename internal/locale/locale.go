package locale

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// Site locales. Pages and emails exist in these languages only.
const (
	Spanish = "es"
	French  = "fr"

	// Default is used when nothing better matches.
	Default = French
)

var supportedTags = []language.Tag{language.French, language.Spanish}

// Supported returns the site locales in preference order.
func Supported() []string {
	return []string{French, Spanish}
}

// IsSupported reports whether value is exactly one of the site locales.
func IsSupported(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case Spanish, French:
		return true
	}
	return false
}

// Negotiator maps arbitrary language hints onto a site locale.
type Negotiator struct {
	fallback string
	matcher  language.Matcher
}

// NewNegotiator builds a Negotiator. An unsupported fallback is replaced by Default.
func NewNegotiator(fallback string) *Negotiator {
	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if !IsSupported(fallback) {
		fallback = Default
	}
	return &Negotiator{
		fallback: fallback,
		matcher:  language.NewMatcher(supportedTags),
	}
}

// Fallback returns the locale used when no hint matches.
func (n *Negotiator) Fallback() string {
	return n.fallback
}

// Normalize resolves a single language hint such as "es", "es-AR" or "it".
func (n *Negotiator) Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return n.fallback
	}
	tag, err := language.Parse(value)
	if err != nil {
		return n.fallback
	}
	return n.match(tag)
}

// FromRequest resolves the locale from the Accept-Language header.
func (n *Negotiator) FromRequest(r *http.Request) string {
	if r == nil {
		return n.fallback
	}
	accept := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if accept == "" {
		return n.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return n.fallback
	}
	return n.match(tags...)
}

func (n *Negotiator) match(tags ...language.Tag) string {
	tag, _, confidence := n.matcher.Match(tags...)
	if confidence == language.No {
		return n.fallback
	}
	base, _ := tag.Base()
	if !IsSupported(base.String()) {
		return n.fallback
	}
	return base.String()
}
