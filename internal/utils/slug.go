package utils

import (
	"regexp"
	"strings"
)

// Service and blog titles are Dutch with the occasional French loanword, so
// accented vowels fold to plain ASCII before the slug is cut.
var accentFold = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify builds the URL path segment for a title.
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = accentFold.Replace(s)
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "&", " en ")
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
