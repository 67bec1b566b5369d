// internal/nlu/classifier/normalize.go
package classifier

import "strings"

// Normalize prepares raw utterance text for rule matching: trim, lowercase,
// collapse runs of whitespace. Korean text is unaffected by lowercasing;
// facility ids and English keywords become case-insensitive.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
}
