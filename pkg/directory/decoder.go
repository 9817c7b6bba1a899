package directory

import (
	"fmt"
)

// Decoder walks the directory records packed in a directory's content.
//
//	dec := directory.NewDecoder(data, length)
//	for dec.Next() {
//		rec := dec.Record()
//		...
//	}
//	if err := dec.Err(); err != nil {
//		...
//	}
//
// Iteration stops when the declared length is used up, at the first record whose length byte is
// zero, or at the first record that is malformed. Only the last case sets Err. The Record returned
// by Record is reused by the next call to Next.
type Decoder struct {
	buf    []byte
	length int64
	off    int
	recOff int
	rec    Record
	done   bool
	err    error
}

// NewDecoder returns a Decoder over buf, which holds a directory of length bytes. buf may be longer
// than length, as it is when a directory is loaded in whole sectors.
func NewDecoder(buf []byte, length uint32) *Decoder {
	return &Decoder{buf: buf, length: int64(length)}
}

// Next advances to the next record and reports whether there is one.
func (d *Decoder) Next() bool {
	if d.done {
		return false
	}
	if int64(d.off) >= d.length {
		d.done = true
		return false
	}
	if d.off >= len(d.buf) {
		return d.fail(fmt.Errorf("%w: directory length %d exceeds the %d byte buffer", ErrMalformedRecord, d.length, len(d.buf)))
	}

	n := int(d.buf[d.off])
	if n == 0 {
		d.done = true
		return false
	}
	if d.off+n > len(d.buf) {
		return d.fail(fmt.Errorf("%w: record at offset %d with length %d runs past the %d byte buffer", ErrMalformedRecord, d.off, n, len(d.buf)))
	}
	if err := d.rec.Unmarshal(d.buf[d.off : d.off+n]); err != nil {
		return d.fail(fmt.Errorf("record at offset %d: %w", d.off, err))
	}

	d.recOff = d.off
	d.off += n
	return true
}

// Reset rewinds the decoder to the first record and clears any error.
func (d *Decoder) Reset() {
	d.off, d.recOff, d.done, d.err = 0, 0, false, nil
}

// Record returns the current record. It is only valid after Next returned true.
func (d *Decoder) Record() *Record {
	return &d.rec
}

// Offset returns the byte offset of the current record within the directory.
func (d *Decoder) Offset() int {
	return d.recOff
}

// Err returns the error that ended iteration early, or nil.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) fail(err error) bool {
	d.err = err
	d.done = true
	return false
}
