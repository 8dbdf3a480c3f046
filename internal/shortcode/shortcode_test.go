package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	t.Run("fixed length and alphabet", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := Generate(DefaultLength)

			assert.NoError(t, err)
			assert.Len(t, code, DefaultLength)

			for _, r := range code {
				assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected character %q in code %q", r, code)
			}
		}
	})

	t.Run("custom length", func(t *testing.T) {
		code, err := Generate(10)

		assert.NoError(t, err)
		assert.Len(t, code, 10)
	})

	t.Run("independent across calls", func(t *testing.T) {
		seen := make(map[string]struct{})

		for i := 0; i < 1000; i++ {
			code, err := Generate(DefaultLength)

			assert.NoError(t, err)
			seen[code] = struct{}{}
		}

		// 1000 draws from a 62^6 space collide with negligible probability.
		assert.Greater(t, len(seen), 990)
	})
}
