package cdromfs

import (
	"fmt"
	"time"
)

// Entry describes one record of a directory listing.
type Entry struct {
	Name     string
	Sector   uint32
	Length   uint32
	Dir      bool
	Recorded time.Time
}

// ReadDir writes the name of every record in the directory, "." and ".." included, into buf in
// on-disk order. Each name is followed by a NUL byte. It returns the number of bytes written. When
// buf cannot hold every name, buf is left untouched and the error is ErrShortBuffer.
func (d *Dirent) ReadDir(buf []byte) (int, error) {
	dec, err := d.loadDirectory()
	if err != nil {
		return 0, err
	}

	total := 0
	for dec.Next() {
		total += dec.Record().NameLength() + 1
	}
	if err := dec.Err(); err != nil {
		d.volume.logger.Debug("Directory listing ended early", "directory", d.sector, "error", err)
		return 0, fmt.Errorf("read dir at sector %d: %w", d.sector, err)
	}
	if total > len(buf) {
		return 0, fmt.Errorf("read dir: %d byte buffer, %d needed: %w", len(buf), total, ErrShortBuffer)
	}

	dec.Reset()
	n := 0
	for dec.Next() {
		rec := dec.Record()
		// buf has room, so the append writes in place
		rec.AppendName(buf[:n])
		n += rec.NameLength()
		buf[n] = 0
		n++
	}
	return n, nil
}

// Entries lists the directory, "." and ".." included, in on-disk order. A malformed record fails
// the listing with ErrMalformedRecord.
func (d *Dirent) Entries() ([]Entry, error) {
	dec, err := d.loadDirectory()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for dec.Next() {
		rec := dec.Record()
		entries = append(entries, Entry{
			Name:     rec.Name(),
			Sector:   rec.Extent,
			Length:   rec.DataLength,
			Dir:      rec.IsDir(),
			Recorded: rec.RecordingTime(),
		})
	}
	if err := dec.Err(); err != nil {
		d.volume.logger.Debug("Directory listing ended early", "directory", d.sector, "error", err)
		return nil, fmt.Errorf("list directory at sector %d: %w", d.sector, err)
	}
	return entries, nil
}

// IsSpecial reports whether the entry is "." or "..".
func (e Entry) IsSpecial() bool {
	return e.Name == "." || e.Name == ".."
}
