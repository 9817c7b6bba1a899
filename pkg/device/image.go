package device

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rstms/cdrom-kit/pkg/logging"
)

// attachment is one image bound to a device unit.
type attachment struct {
	reader io.ReaderAt
	closer io.Closer
	size   int64
}

// ImageDevice is a BlockDevice backed by disc images, one per unit.
type ImageDevice struct {
	units  map[int]*attachment
	logger *logging.Logger
}

// NewImageDevice returns an ImageDevice with no units attached.
func NewImageDevice(logger *logging.Logger) *ImageDevice {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &ImageDevice{
		units:  make(map[int]*attachment),
		logger: logger,
	}
}

// Attach binds r to unit. size is the image length in bytes; reads past it fail.
func (d *ImageDevice) Attach(unit int, r io.ReaderAt, size int64) error {
	if _, ok := d.units[unit]; ok {
		return fmt.Errorf("unit %d already attached", unit)
	}
	if size < 0 {
		return fmt.Errorf("invalid image size %d", size)
	}
	d.units[unit] = &attachment{reader: r, size: size}
	d.logger.Debug("Attached image", "unit", unit, "size", size)
	return nil
}

// AttachFile opens the image at location and binds it to unit. The file is closed by Detach or Close.
func (d *ImageDevice) AttachFile(unit int, location string) error {
	f, err := os.Open(location)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat image %s: %w", location, err)
	}
	if info.IsDir() {
		f.Close()
		return fmt.Errorf("image %s is a directory", location)
	}
	if err := d.Attach(unit, f, info.Size()); err != nil {
		f.Close()
		return err
	}
	d.units[unit].closer = f
	return nil
}

// Detach unbinds unit, closing its image if the device opened it.
func (d *ImageDevice) Detach(unit int) error {
	a, ok := d.units[unit]
	if !ok {
		return fmt.Errorf("unit %d is not attached", unit)
	}
	delete(d.units, unit)
	d.logger.Debug("Detached image", "unit", unit)
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Close detaches every unit.
func (d *ImageDevice) Close() error {
	var errs []error
	for unit := range d.units {
		if err := d.Detach(unit); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sectors returns the number of whole sectors in the image bound to unit.
func (d *ImageDevice) Sectors(unit int) (uint32, error) {
	a, ok := d.units[unit]
	if !ok {
		return 0, fmt.Errorf("%w: unit %d is not attached", ErrIO, unit)
	}
	return uint32(a.size / SectorSize), nil
}

// ReadSectors implements BlockDevice.
func (d *ImageDevice) ReadSectors(unit int, dst []byte, count int, start uint32) error {
	a, ok := d.units[unit]
	if !ok {
		return fmt.Errorf("%w: unit %d is not attached", ErrIO, unit)
	}
	if count < 0 {
		return fmt.Errorf("%w: invalid sector count %d", ErrIO, count)
	}
	n := count * SectorSize
	if len(dst) < n {
		return fmt.Errorf("%w: buffer of %d bytes cannot hold %d sectors", ErrIO, len(dst), count)
	}

	offset := int64(start) * SectorSize
	if offset+int64(n) > a.size {
		return fmt.Errorf("%w: sectors %d-%d are beyond the end of unit %d", ErrIO, start, int64(start)+int64(count)-1, unit)
	}

	d.logger.Trace("Reading sectors", "unit", unit, "start", start, "count", count)
	read, err := a.reader.ReadAt(dst[:n], offset)
	if read == n {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: unit %d sector %d: %w", ErrIO, unit, start, err)
}
