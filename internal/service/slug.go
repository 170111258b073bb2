package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// Slugify turns a title into a URL-safe slug: "Página de Inicio" -> "pagina-de-inicio".
// It returns "" when nothing usable is left.
func Slugify(title string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		stripped = title
	}

	base := strings.ToLower(strings.TrimSpace(stripped))
	base = strings.NewReplacer(" ", "-", "_", "-").Replace(base)
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	return strings.Trim(base, "-")
}
