// Package shortcode generates the random identifiers that shortened
// URLs are addressed by. Codes are uniform over an alphanumeric
// alphabet and carry no uniqueness guarantee; uniqueness is enforced
// by the storage layer at insert time.
package shortcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the set of characters short codes are drawn from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultLength is the short code length used unless configured otherwise.
const DefaultLength = 6

// Generate returns a random code of the given length.
func Generate(length int) (string, error) {
	const op = "shortcode.Generate"

	code, err := gonanoid.Generate(Alphabet, length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}
