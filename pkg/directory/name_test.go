package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		ident string
		want  string
	}{
		{"\x00", "."},
		{"\x01", ".."},
		{"A", "A"},
		{"B.", "B"},
		{"C.TXT;1", "C.TXT"},
		{"README.;1", "README"},
		{"BOOT.CAT;1", "BOOT.CAT"},
		{"ARCHIVE.TAR;12", "ARCHIVE.TAR"},
		{"USR", "USR"},
		{"usr", "usr"},
		{"readme", "readme"},
		{".", "."},
		{";1", ";1"},
		{"A;B", "A;B"},
		{"X;", "X;"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeName([]byte(c.ident)), "identifier %q", c.ident)
	}
}

func TestNormalizeNameIsIdempotent(t *testing.T) {
	for _, ident := range []string{"C.TXT;1", "README.;1", "A.B.C;1", "LONGNAME.EXT;3", "Z;9", "KERNEL.;1"} {
		once := NormalizeName([]byte(ident))
		twice := NormalizeName([]byte(once))
		assert.Equal(t, once, twice, "identifier %q", ident)
		assert.NotContains(t, once, ";", "identifier %q", ident)
	}
}

func TestNormalizeDoesNotCopy(t *testing.T) {
	ident := []byte("FILE.TXT;1")
	got := normalize(ident)
	assert.Equal(t, "FILE.TXT", string(got))
	assert.Same(t, &ident[0], &got[0])
}
