// Package cdromfs reads ISO-9660 volumes from a sector-addressed block device.
//
// A Volume is opened on one device unit and hands out Dirent handles for the root directory.
// Dirents look up children, list directories and read sectors of their extent. Every lookup
// reads and decodes the directory from the device again; nothing is cached.
//
// Volumes and Dirents are not safe for concurrent use.
package cdromfs

import (
	"fmt"

	"github.com/rstms/cdrom-kit/pkg/consts"
	"github.com/rstms/cdrom-kit/pkg/descriptor"
	"github.com/rstms/cdrom-kit/pkg/device"
	"github.com/rstms/cdrom-kit/pkg/logging"
	"github.com/rstms/cdrom-kit/pkg/option"
	"github.com/rstms/cdrom-kit/pkg/sector"
)

// Volume is a mounted ISO-9660 filesystem on one device unit.
type Volume struct {
	dev          device.BlockDevice
	unit         int
	rootSector   uint32
	rootLength   uint32
	totalSectors uint32
	rootRecorded [7]byte

	label     string
	systemID  string
	blockSize uint16
	strict    bool
	logger    *logging.Logger
	closed    bool
}

// Open scans the volume descriptor area of unit for a primary volume descriptor.
//
// Sectors 16 through 31 are probed in order. Sectors without the CD001 magic and descriptors of
// other types are skipped. A terminator before any primary descriptor, or sixteen sectors without
// one, fail with ErrNoFilesystem. A failed read aborts the scan with ErrIO.
func Open(dev device.BlockDevice, unit int, opts ...option.OpenOption) (*Volume, error) {
	o := option.DefaultOpenOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	logger.Info("Scanning for iso9660 filesystem", "unit", unit)

	buf := make([]byte, sector.Size)
	for i := 0; i < consts.ISO9660_DESCRIPTOR_SCAN_SECTORS; i++ {
		lba := uint32(consts.ISO9660_SYSTEM_AREA_SECTORS + i)
		logger.Debug("Checking volume descriptor", "unit", unit, "sector", lba)

		if err := sector.ReadBlock(dev, unit, lba, 0, buf); err != nil {
			logger.Error(err, "Failed to read volume descriptor", "unit", unit, "sector", lba)
			return nil, fmt.Errorf("failed to read volume descriptor at sector %d: %w", lba, err)
		}

		var header descriptor.VolumeDescriptorHeader
		if err := header.Unmarshal(buf); err != nil {
			return nil, err
		}
		if !header.Valid() {
			logger.Trace("Skipping sector without descriptor magic", "sector", lba)
			continue
		}

		switch header.Type() {
		case descriptor.VolumeDescriptorPrimary:
			var pvd descriptor.PrimaryVolumeDescriptor
			if err := pvd.Unmarshal(buf); err != nil {
				return nil, fmt.Errorf("%w: primary volume descriptor at sector %d: %w", ErrNoFilesystem, lba, err)
			}
			v := &Volume{
				dev:          dev,
				unit:         unit,
				rootSector:   pvd.RootDirectoryRecord.Extent,
				rootLength:   pvd.RootDirectoryRecord.DataLength,
				totalSectors: pvd.VolumeSpaceSize,
				rootRecorded: pvd.RootDirectoryRecord.Recorded,
				label:        pvd.VolumeIdentifier,
				systemID:     pvd.SystemIdentifier,
				blockSize:    pvd.LogicalBlockSize,
				strict:       o.StrictBounds,
				logger:       logger,
			}
			if v.blockSize != 0 && v.blockSize != sector.Size {
				logger.Info("Ignoring non-standard logical block size", "unit", unit, "blockSize", v.blockSize)
			}
			logger.Info("Mounted filesystem", "unit", unit, "label", v.label, "sectors", v.totalSectors)
			return v, nil
		case descriptor.VolumeDescriptorSetTerminator:
			logger.Info("No filesystem found", "unit", unit, "reason", "terminator before primary descriptor")
			return nil, fmt.Errorf("%w: unit %d: set terminator at sector %d before a primary descriptor", ErrNoFilesystem, unit, lba)
		default:
			logger.Debug("Skipping volume descriptor", "unit", unit, "sector", lba, "type", header.Type())
		}
	}

	logger.Info("No filesystem found", "unit", unit)
	return nil, fmt.Errorf("%w: unit %d: no primary descriptor in sectors %d-%d", ErrNoFilesystem, unit,
		consts.ISO9660_SYSTEM_AREA_SECTORS, consts.ISO9660_SYSTEM_AREA_SECTORS+consts.ISO9660_DESCRIPTOR_SCAN_SECTORS-1)
}

// Root returns a new handle on the root directory. The caller owns it and must close it.
func (v *Volume) Root() (*Dirent, error) {
	if v.closed {
		return nil, ErrClosed
	}
	if err := v.checkExtent(v.rootSector, v.rootLength); err != nil {
		return nil, fmt.Errorf("root directory: %w", err)
	}
	root := newDirent(v, v.rootSector, v.rootLength, true)
	root.recorded = v.rootRecorded
	return root, nil
}

// Close unmounts the volume. The device is left untouched. Dirents of a closed volume fail with ErrClosed.
func (v *Volume) Close() error {
	if v.closed {
		return ErrClosed
	}
	v.closed = true
	v.logger.Info("Unmounted filesystem", "unit", v.unit)
	return nil
}

func (v *Volume) Unit() int {
	return v.unit
}

func (v *Volume) RootSector() uint32 {
	return v.rootSector
}

func (v *Volume) RootLength() uint32 {
	return v.rootLength
}

// TotalSectors is the volume space size recorded in the primary descriptor.
func (v *Volume) TotalSectors() uint32 {
	return v.totalSectors
}

// Label returns the volume identifier.
func (v *Volume) Label() string {
	return v.label
}

func (v *Volume) SystemID() string {
	return v.systemID
}

func (v *Volume) String() string {
	return fmt.Sprintf("ISO 9660 volume %q on unit %d (%d sectors)", v.label, v.unit, v.totalSectors)
}

// checkExtent rejects extents that end past the last sector of the volume.
func (v *Volume) checkExtent(start, length uint32) error {
	if !v.strict {
		return nil
	}
	end := uint64(start) + uint64(sector.Count(length))
	if end > uint64(v.totalSectors) {
		return fmt.Errorf("%w: extent at sector %d of %d bytes ends past sector %d", ErrOutOfRange, start, length, v.totalSectors)
	}
	return nil
}
