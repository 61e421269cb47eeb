package namespace

import (
	"strings"
	"unicode"
)

// Root is the top-level container every theme namespace lives under.
const Root = "Themes"

// Constantize turns a slug into a namespace segment. The first letter, and
// every letter that follows a "-", is upper-cased and that "-" dropped. All
// other characters are kept, "_" included, so distinct slugs always give
// distinct segments.
//
//	acme          -> Acme
//	my-cool-theme -> MyCoolTheme
//	my_theme      -> My_theme
//	alpha-2       -> Alpha-2
func Constantize(slug string) string {
	runes := []rune(slug)
	var b strings.Builder
	b.Grow(len(slug))
	upper := true
	for i, r := range runes {
		if r == '-' && i+1 < len(runes) && unicode.IsLetter(runes[i+1]) {
			upper = true
			continue
		}
		if upper && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

// ForTheme returns the dotted namespace path for a theme slug.
func ForTheme(slug string) string {
	return Root + Separator + Constantize(slug)
}

// UnderscorePath converts a qualified name to its lower snake case path form.
// Both "." and "::" are accepted as separators.
//
//	Themes.MyTheme                -> themes/my_theme
//	Themes::Acme::HomeController  -> themes/acme/home_controller
func UnderscorePath(qualified string) string {
	qualified = strings.ReplaceAll(qualified, "::", Separator)
	segments := strings.Split(qualified, Separator)
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		out = append(out, Underscore(seg))
	}
	return strings.Join(out, "/")
}

// Underscore converts a CamelCase word to snake_case.
func Underscore(word string) string {
	runes := []rune(word)
	var b strings.Builder
	b.Grow(len(word) + 4)
	for i, r := range runes {
		if r == '-' {
			b.WriteByte('_')
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
