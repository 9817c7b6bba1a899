// Package sector turns offsets within an extent into physical sector reads.
package sector

import (
	"errors"
	"fmt"
	"io"

	"github.com/rstms/cdrom-kit/pkg/device"
)

// Size is the size in bytes of one sector.
const Size = device.SectorSize

// Count returns the number of whole sectors needed to hold length bytes.
func Count(length uint32) uint32 {
	return uint32((uint64(length) + Size - 1) / Size)
}

// ReadBlock reads sector block of the extent starting at extent into dst, which must hold at least
// one sector. A smaller dst fails with io.ErrShortBuffer without touching the device.
func ReadBlock(dev device.BlockDevice, unit int, extent, block uint32, dst []byte) error {
	if len(dst) < Size {
		return fmt.Errorf("buffer of %d bytes is smaller than a sector: %w", len(dst), io.ErrShortBuffer)
	}
	lba := uint64(extent) + uint64(block)
	if lba > uint64(^uint32(0)) {
		return fmt.Errorf("%w: block %d of extent %d overflows the sector address", device.ErrIO, block, extent)
	}
	if err := dev.ReadSectors(unit, dst[:Size], 1, uint32(lba)); err != nil {
		return wrap(err)
	}
	return nil
}

// Load reads the whole extent into a new buffer sized to the extent's sector-rounded length.
// Only the first length bytes are meaningful.
func Load(dev device.BlockDevice, unit int, extent, length uint32) ([]byte, error) {
	n := Count(length)
	buf := make([]byte, int(n)*Size)
	if n == 0 {
		return buf, nil
	}
	if err := dev.ReadSectors(unit, buf, int(n), extent); err != nil {
		return nil, wrap(err)
	}
	return buf, nil
}

// wrap makes sure err is recognisable as a device failure.
func wrap(err error) error {
	if errors.Is(err, device.ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", device.ErrIO, err)
}
