package cdromfs

import (
	"errors"
	"fmt"
	"io"

	"github.com/rstms/cdrom-kit/pkg/sector"
)

// ReadAt reads len(p) bytes of the entry starting at byte off. Reading stops at Length, with io.EOF
// when fewer than len(p) bytes were available.
func (d *Dirent) ReadAt(p []byte, off int64) (int, error) {
	if err := d.check(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("read at negative offset %d: %w", off, ErrOutOfRange)
	}
	size := int64(d.length)
	if off >= size {
		return 0, io.EOF
	}

	block := make([]byte, sector.Size)
	n := 0
	for n < len(p) && off+int64(n) < size {
		pos := off + int64(n)
		if err := d.ReadBlock(uint32(pos/sector.Size), block); err != nil {
			return n, err
		}
		chunk := block[pos%sector.Size:]
		if remain := size - pos; int64(len(chunk)) > remain {
			chunk = chunk[:remain]
		}
		n += copy(p[n:], chunk)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// ReadAll returns the entry's contents, exactly Length bytes.
func (d *Dirent) ReadAll() ([]byte, error) {
	data := make([]byte, d.length)
	if len(data) == 0 {
		return data, d.check()
	}
	if _, err := d.ReadAt(data, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}

// Reader returns an io.SectionReader over the entry's contents.
func (d *Dirent) Reader() *io.SectionReader {
	return io.NewSectionReader(d, 0, int64(d.length))
}
