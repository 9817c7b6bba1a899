package directory

import "fmt"

// FileFlags is the decoded flags byte of a directory record, LSB first.
type FileFlags struct {
	Existence      bool
	Directory      bool
	AssociatedFile bool
	Record         bool
	Protection     bool
	Unused1        bool
	Unused2        bool
	MultiExtent    bool
}

const (
	flagExistence      = 0x01
	flagDirectory      = 0x02
	flagAssociatedFile = 0x04
	flagRecord         = 0x08
	flagProtection     = 0x10
	flagUnused1        = 0x20
	flagUnused2        = 0x40
	flagMultiExtent    = 0x80
)

func (ff *FileFlags) Set(flags uint8) {
	ff.Existence = flags&flagExistence != 0
	ff.Directory = flags&flagDirectory != 0
	ff.AssociatedFile = flags&flagAssociatedFile != 0
	ff.Record = flags&flagRecord != 0
	ff.Protection = flags&flagProtection != 0
	ff.Unused1 = flags&flagUnused1 != 0
	ff.Unused2 = flags&flagUnused2 != 0
	ff.MultiExtent = flags&flagMultiExtent != 0
}

// Byte encodes the flags back into their on-disk form.
func (ff FileFlags) Byte() uint8 {
	var b uint8
	for _, f := range []struct {
		set bool
		bit uint8
	}{
		{ff.Existence, flagExistence},
		{ff.Directory, flagDirectory},
		{ff.AssociatedFile, flagAssociatedFile},
		{ff.Record, flagRecord},
		{ff.Protection, flagProtection},
		{ff.Unused1, flagUnused1},
		{ff.Unused2, flagUnused2},
		{ff.MultiExtent, flagMultiExtent},
	} {
		if f.set {
			b |= f.bit
		}
	}
	return b
}

func (ff FileFlags) String() string {
	return fmt.Sprintf("Existence=%t, Directory=%t, Associated File=%t, Record=%t, Protection=%t, Multi-Extent=%t",
		ff.Existence,
		ff.Directory,
		ff.AssociatedFile,
		ff.Record,
		ff.Protection,
		ff.MultiExtent)
}
