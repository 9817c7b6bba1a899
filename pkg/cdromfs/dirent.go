package cdromfs

import (
	"fmt"
	"time"

	"github.com/rstms/cdrom-kit/pkg/directory"
	"github.com/rstms/cdrom-kit/pkg/encoding"
	"github.com/rstms/cdrom-kit/pkg/sector"
)

// Dirent is a handle on one file or directory of a Volume. Its fields never change; walking the
// tree always produces new handles. The caller that receives a Dirent owns it and closes it.
type Dirent struct {
	volume   *Volume
	sector   uint32
	length   uint32
	dir      bool
	recorded [7]byte
	closed   bool
}

func newDirent(v *Volume, start, length uint32, dir bool) *Dirent {
	return &Dirent{
		volume: v,
		sector: start,
		length: length,
		dir:    dir,
	}
}

func (d *Dirent) check() error {
	if d == nil || d.closed || d.volume.closed {
		return ErrClosed
	}
	return nil
}

// Load reads the entry's whole extent. The buffer is rounded up to whole sectors; only the first
// Length bytes belong to the entry.
func (d *Dirent) Load() ([]byte, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	data, err := sector.Load(d.volume.dev, d.volume.unit, d.sector, d.length)
	if err != nil {
		return nil, fmt.Errorf("failed to load extent at sector %d: %w", d.sector, err)
	}
	return data, nil
}

// loadDirectory loads the entry and returns a decoder over it.
func (d *Dirent) loadDirectory() (*directory.Decoder, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if !d.dir {
		return nil, fmt.Errorf("extent at sector %d: %w", d.sector, ErrNotDirectory)
	}
	data, err := d.Load()
	if err != nil {
		return nil, err
	}
	return directory.NewDecoder(data, d.length), nil
}

// Lookup returns a new handle on the child called name. Names are compared exactly after the version
// suffix and bare trailing dot are removed; "." and ".." are never matched. A missing child gives
// ErrNotFound, unless the scan stopped at a malformed record, which gives ErrMalformedRecord.
func (d *Dirent) Lookup(name string) (*Dirent, error) {
	dec, err := d.loadDirectory()
	if err != nil {
		return nil, err
	}
	logger := d.volume.logger
	logger.Trace("Looking up name", "name", name, "directory", d.sector)

	if name != "" {
		for dec.Next() {
			rec := dec.Record()
			if !rec.Matches(name) {
				continue
			}
			if err := d.volume.checkExtent(rec.Extent, rec.DataLength); err != nil {
				return nil, fmt.Errorf("lookup %q: %w", name, err)
			}
			child := newDirent(d.volume, rec.Extent, rec.DataLength, rec.IsDir())
			child.recorded = rec.Recorded
			logger.Trace("Found name", "name", name, "sector", child.sector, "length", child.length, "dir", child.dir)
			return child, nil
		}
	}
	if err := dec.Err(); err != nil {
		logger.Debug("Directory listing ended early", "directory", d.sector, "error", err)
		return nil, fmt.Errorf("lookup %q in directory at sector %d: %w", name, d.sector, err)
	}
	return nil, fmt.Errorf("lookup %q: %w", name, ErrNotFound)
}

// ReadBlock reads sector block of the entry's extent into dst, which must hold a full sector.
func (d *Dirent) ReadBlock(block uint32, dst []byte) error {
	if err := d.check(); err != nil {
		return err
	}
	if len(dst) < sector.Size {
		return fmt.Errorf("read block: %d byte buffer: %w", len(dst), ErrShortBuffer)
	}
	if block >= sector.Count(d.length) {
		return fmt.Errorf("read block %d of a %d byte extent: %w", block, d.length, ErrOutOfRange)
	}
	return sector.ReadBlock(d.volume.dev, d.volume.unit, d.sector, block, dst)
}

// Length is the entry's size in bytes.
func (d *Dirent) Length() uint32 {
	return d.length
}

// Sector is the first sector of the entry's extent.
func (d *Dirent) Sector() uint32 {
	return d.sector
}

func (d *Dirent) IsDir() bool {
	return d.dir
}

// ModTime is the recording time of the entry's directory record, or the zero time when unknown.
func (d *Dirent) ModTime() time.Time {
	t, err := encoding.UnmarshalRecordingDateTime(d.recorded)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Volume returns the volume the entry belongs to.
func (d *Dirent) Volume() *Volume {
	return d.volume
}

// Close releases the handle. Closing twice is harmless.
func (d *Dirent) Close() error {
	if d != nil {
		d.closed = true
	}
	return nil
}
