package helpers

import (
	"bytes"

	"github.com/rstms/cdrom-kit/pkg/consts"
)

// PadString returns s in a field of length bytes filled with spaces. Longer strings are cut.
func PadString(s string, length int) []byte {
	b := make([]byte, length)
	n := copy(b, s)
	for i := n; i < length; i++ {
		b[i] = consts.ISO9660_FILLER
	}
	return b
}

// TrimPadding returns the text of a fixed width field without trailing spaces or NUL bytes.
func TrimPadding(b []byte) string {
	return string(bytes.TrimRight(b, " \x00"))
}
