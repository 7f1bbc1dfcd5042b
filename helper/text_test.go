package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToASCII(t *testing.T) {
	t.Run("Accents keep their base letter", func(t *testing.T) {
		assert.Equal(t, "Pliocene Epoque", ToASCII("Pliocène Époque"))
	})

	t.Run("Symbols outside ASCII are dropped", func(t *testing.T) {
		assert.Equal(t, "10 m thick", ToASCII("10 m thick—"))
	})

	t.Run("Plain ASCII is unchanged", func(t *testing.T) {
		assert.Equal(t, "basalt and andesite", ToASCII("basalt and andesite"))
	})
}

func TestNormalizeUnicode(t *testing.T) {
	t.Run("Ligatures are expanded", func(t *testing.T) {
		assert.Equal(t, "fine grained", NormalizeUnicode("ﬁne grained"))
	})
}
