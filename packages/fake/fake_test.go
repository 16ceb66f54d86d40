package fake

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_SameSeedSameNames(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Name(), b.Name())
	}
}

func TestGenerator_NamePrintable(t *testing.T) {
	g := New(7)
	for i := 0; i < 50; i++ {
		name := g.Name()
		assert.NotEmpty(t, name)
		assert.Contains(t, name, " ")
		for _, r := range name {
			assert.True(t, unicode.IsPrint(r), "non printable rune in %q", name)
		}
	}
}

func TestGenerator_EmailsAreDistinct(t *testing.T) {
	g := New(1)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		email := g.Email("Ada Lovelace")
		assert.True(t, strings.HasPrefix(email, "ada.lovelace."), email)
		assert.True(t, strings.HasSuffix(email, "@example.com"), email)
		assert.False(t, seen[email], "duplicate email %s", email)
		seen[email] = true
	}
}

func TestGenerator_Client(t *testing.T) {
	c := New(3).Client()

	assert.NotEmpty(t, c.DisplayName)
	assert.Contains(t, c.Email, "@")
}

func TestEmailLocal(t *testing.T) {
	assert.Equal(t, "mary.o.connor", emailLocal("Mary O-Connor"))
	assert.Equal(t, "jean.luc", emailLocal("  Jean Luc "))
	assert.Equal(t, "", emailLocal("!!!"))
}

func TestNew_ZeroSeed(t *testing.T) {
	assert.NotZero(t, New(0).Seed())
}
