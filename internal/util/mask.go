// Package util contiene helpers chicos sin dependencias del dominio.
package util

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "…"

// MaskEmail deja visible la primera letra del usuario y del primer label del
// dominio: "alice@example.com" → "a…@e….com". Corta por runas, así el
// resultado siempre es UTF-8 válido.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	user, domain, ok := strings.Cut(s, "@")
	if !ok || user == "" {
		if utf8.RuneCountInString(s) <= 3 {
			return "***"
		}
		first, _ := utf8.DecodeRuneInString(s)
		last, _ := utf8.DecodeLastRuneInString(s)
		return string(first) + ellipsis + string(last)
	}

	labels := strings.Split(domain, ".")
	labels[0] = keepFirstRune(labels[0])
	return keepFirstRune(user) + "@" + strings.Join(labels, ".")
}

// keepFirstRune reemplaza todo después de la primera runa por "…".
// Con una sola runa no hay nada que ocultar.
func keepFirstRune(s string) string {
	if utf8.RuneCountInString(s) <= 1 {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size] + ellipsis
}
