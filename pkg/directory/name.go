package directory

import (
	"bytes"

	"github.com/rstms/cdrom-kit/pkg/consts"
)

var (
	selfName   = []byte(".")
	parentName = []byte("..")
)

// NormalizeName returns the name a file identifier is presented as.
//
// The identifiers 0x00 and 0x01 become "." and "..". Any other identifier longer than two bytes
// loses a trailing ";<version>" suffix, and then one trailing '.' when more than one byte remains,
// so "README.;1" reads as "README" and "NOTES.TXT;1" as "NOTES.TXT". Directory identifiers carry no
// version and are returned unchanged.
func NormalizeName(ident []byte) string {
	return string(normalize(ident))
}

// normalize is NormalizeName without the copy: the result aliases ident or a package constant and
// must not be modified.
func normalize(ident []byte) []byte {
	if isSpecial(ident) {
		if ident[0] == consts.ISO9660_IDENT_SELF {
			return selfName
		}
		return parentName
	}

	name := ident
	if len(name) > 2 {
		if i := bytes.LastIndexByte(name, consts.ISO9660_SEPARATOR_2); i > 0 && isVersion(name[i+1:]) {
			name = name[:i]
		}
	}
	if len(name) > 1 && name[len(name)-1] == consts.ISO9660_SEPARATOR_1 {
		name = name[:len(name)-1]
	}
	return name
}

func isSpecial(ident []byte) bool {
	return len(ident) == 1 && (ident[0] == consts.ISO9660_IDENT_SELF || ident[0] == consts.ISO9660_IDENT_PARENT)
}

func isVersion(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
