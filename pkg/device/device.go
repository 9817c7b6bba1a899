// Package device provides the sector-addressed block storage the cdromfs driver reads from.
package device

import (
	"errors"

	"github.com/rstms/cdrom-kit/pkg/consts"
)

// SectorSize is the size in bytes of one addressable sector.
const SectorSize = consts.ISO9660_SECTOR_SIZE

// ErrIO marks every failure of the underlying device. Callers test for it with errors.Is.
var ErrIO = errors.New("device i/o error")

// BlockDevice reads whole sectors from a numbered device unit.
type BlockDevice interface {
	// ReadSectors fills dst with count sectors starting at sector start. dst must hold at least
	// count*SectorSize bytes. The read either completes in full or returns an error.
	ReadSectors(unit int, dst []byte, count int, start uint32) error
}
