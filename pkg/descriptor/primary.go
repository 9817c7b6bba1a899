package descriptor

import (
	"bytes"
	"fmt"

	"github.com/rstms/cdrom-kit/pkg/consts"
	"github.com/rstms/cdrom-kit/pkg/directory"
	"github.com/rstms/cdrom-kit/pkg/encoding"
	"github.com/rstms/cdrom-kit/pkg/helpers"
)

// Byte offsets of the primary volume descriptor fields read by the driver.
const (
	offsetSystemIdentifier = 8
	offsetVolumeIdentifier = 40
	offsetVolumeSpaceSize  = 80
	offsetVolumeSetSize    = 120
	offsetVolumeSequence   = 124
	offsetLogicalBlockSize = 128
	offsetRootRecord       = 156
	offsetFileStructure    = 881

	identifierSize = 32
)

// PrimaryVolumeDescriptor holds the fields of a primary descriptor that locate the file hierarchy.
type PrimaryVolumeDescriptor struct {
	VolumeDescriptorHeader
	SystemIdentifier string
	VolumeIdentifier string
	// Volume Space Size is the number of logical blocks in the volume.
	//  | Encoding: BothByteOrder
	VolumeSpaceSize uint32
	// Logical Block Size in bytes, 2048 on optical media.
	//  | Encoding: BothByteOrder
	LogicalBlockSize uint16
	// Root Directory Record describes the extent of the root directory. Its identifier is 0x00.
	RootDirectoryRecord directory.Record
}

// Unmarshal decodes a primary descriptor sector. The root record's identifier is copied so the
// descriptor does not alias data.
func (pvd *PrimaryVolumeDescriptor) Unmarshal(data []byte) error {
	if len(data) < consts.ISO9660_SECTOR_SIZE {
		return fmt.Errorf("%w: %d bytes", ErrShortDescriptor, len(data))
	}
	if err := pvd.VolumeDescriptorHeader.Unmarshal(data); err != nil {
		return err
	}
	if pvd.Type() != VolumeDescriptorPrimary {
		return fmt.Errorf("descriptor type %s is not primary", pvd.Type())
	}

	pvd.SystemIdentifier = helpers.TrimPadding(data[offsetSystemIdentifier : offsetSystemIdentifier+identifierSize])
	pvd.VolumeIdentifier = helpers.TrimPadding(data[offsetVolumeIdentifier : offsetVolumeIdentifier+identifierSize])
	pvd.VolumeSpaceSize = encoding.Uint32LSB(data[offsetVolumeSpaceSize : offsetVolumeSpaceSize+8])
	pvd.LogicalBlockSize = encoding.Uint16LSB(data[offsetLogicalBlockSize : offsetLogicalBlockSize+4])

	root := data[offsetRootRecord : offsetRootRecord+consts.ISO9660_ROOT_RECORD_SIZE]
	if err := pvd.RootDirectoryRecord.Unmarshal(root); err != nil {
		return fmt.Errorf("failed to unmarshal root directory record: %w", err)
	}
	pvd.RootDirectoryRecord.Identifier = bytes.Clone(pvd.RootDirectoryRecord.Identifier)
	return nil
}

// Marshal encodes the descriptor into a full sector.
func (pvd *PrimaryVolumeDescriptor) Marshal() ([]byte, error) {
	root, err := pvd.RootDirectoryRecord.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal root directory record: %w", err)
	}
	if len(root) != consts.ISO9660_ROOT_RECORD_SIZE {
		return nil, fmt.Errorf("root directory record is %d bytes, want %d", len(root), consts.ISO9660_ROOT_RECORD_SIZE)
	}

	data := pvd.VolumeDescriptorHeader.Marshal()
	copy(data[offsetSystemIdentifier:], helpers.PadString(pvd.SystemIdentifier, identifierSize))
	copy(data[offsetVolumeIdentifier:], helpers.PadString(pvd.VolumeIdentifier, identifierSize))
	encoding.PutBothByteOrders32(data[offsetVolumeSpaceSize:], pvd.VolumeSpaceSize)
	encoding.PutBothByteOrders16(data[offsetVolumeSetSize:], 1)
	encoding.PutBothByteOrders16(data[offsetVolumeSequence:], 1)
	encoding.PutBothByteOrders16(data[offsetLogicalBlockSize:], pvd.LogicalBlockSize)
	copy(data[offsetRootRecord:], root)
	data[offsetFileStructure] = 1
	return data, nil
}
