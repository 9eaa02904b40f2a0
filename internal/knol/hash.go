// Package knol identifies imported card content independently of formatting.
package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/flashwise/internal/domain"
)

func normalizePart(part string) string {
	p := strings.ReplaceAll(part, "\r\n", "\n")
	return strings.ToLower(strings.TrimSpace(p))
}

// Normalize joins the draft's fields after trimming, lowercasing and
// normalizing line endings. Fields are separated by a newline so adjacent
// fields cannot run together.
func Normalize(d domain.Draft) string {
	return strings.Join([]string{
		normalizePart(d.Question),
		normalizePart(d.Answer),
		normalizePart(d.Context),
	}, "\n")
}

// Hash returns the hex SHA-256 of the normalized draft.
func Hash(d domain.Draft) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(Normalize(d))))
}

// Front renders a draft's question as the card front.
func Front(d domain.Draft) string {
	return strings.TrimSpace(d.Question)
}

// Back renders a draft's answer as the card back. Context, when present, is
// shown below the answer.
func Back(d domain.Draft) string {
	back := strings.TrimSpace(d.Answer)
	if c := strings.TrimSpace(d.Context); c != "" {
		back += "\n\n" + c
	}
	return back
}
