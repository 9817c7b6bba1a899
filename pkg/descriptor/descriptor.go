package descriptor

import (
	"errors"
	"fmt"

	"github.com/rstms/cdrom-kit/pkg/consts"
)

// VolumeDescriptorType represents the type of volume descriptor in the ISO 9660 standard.
type VolumeDescriptorType byte

const (
	// VolumeDescriptorBootRecord indicates a Boot Record (type 0).
	VolumeDescriptorBootRecord VolumeDescriptorType = 0x00

	// VolumeDescriptorPrimary indicates a Primary Volume Descriptor (type 1).
	VolumeDescriptorPrimary VolumeDescriptorType = 0x01

	// VolumeDescriptorSupplementary indicates a Supplementary Volume Descriptor (type 2).
	VolumeDescriptorSupplementary VolumeDescriptorType = 0x02

	// VolumeDescriptorPartition indicates a Partition Volume Descriptor (type 3).
	VolumeDescriptorPartition VolumeDescriptorType = 0x03

	// VolumeDescriptorSetTerminator indicates the Volume Descriptor Set Terminator (type 255).
	VolumeDescriptorSetTerminator VolumeDescriptorType = 0xFF
)

func (t VolumeDescriptorType) String() string {
	switch t {
	case VolumeDescriptorBootRecord:
		return "boot record"
	case VolumeDescriptorPrimary:
		return "primary"
	case VolumeDescriptorSupplementary:
		return "supplementary"
	case VolumeDescriptorPartition:
		return "partition"
	case VolumeDescriptorSetTerminator:
		return "terminator"
	default:
		return fmt.Sprintf("reserved(%d)", byte(t))
	}
}

// ErrShortDescriptor is returned when fewer bytes than a descriptor needs are supplied.
var ErrShortDescriptor = errors.New("volume descriptor is too short")

type VolumeDescriptorHeader struct {
	// Volume Descriptor Types.
	//  | 0 = Boot Record
	//  | 1 = Primary
	//  | 2 = Supplementary
	//  | 3 = Partition
	//  | 4 - 254 = Reserved
	//  | 255 = Terminator
	VolumeDescriptorType VolumeDescriptorType
	// Standard Identifier should always be 'CD001'.
	StandardIdentifier [5]byte
	// Volume Descriptor Version. The contents and interpretation depend on the Volume Descriptor Type field.
	VolumeDescriptorVersion uint8
}

// NewHeader returns a header of type t carrying the standard identifier.
func NewHeader(t VolumeDescriptorType) VolumeDescriptorHeader {
	h := VolumeDescriptorHeader{
		VolumeDescriptorType:    t,
		VolumeDescriptorVersion: consts.ISO9660_VOLUME_DESC_VERSION,
	}
	copy(h.StandardIdentifier[:], consts.ISO9660_STD_IDENTIFIER)
	return h
}

func (h *VolumeDescriptorHeader) Type() VolumeDescriptorType {
	return h.VolumeDescriptorType
}

func (h *VolumeDescriptorHeader) Identifier() string {
	return string(h.StandardIdentifier[:])
}

func (h *VolumeDescriptorHeader) Version() uint8 {
	return h.VolumeDescriptorVersion
}

// Valid reports whether the header carries the 'CD001' magic.
func (h *VolumeDescriptorHeader) Valid() bool {
	return string(h.StandardIdentifier[:]) == consts.ISO9660_STD_IDENTIFIER
}

// Unmarshal decodes the header from the first bytes of a descriptor sector.
func (h *VolumeDescriptorHeader) Unmarshal(data []byte) error {
	if len(data) < consts.ISO9660_VOLUME_DESC_HEADER_SIZE {
		return fmt.Errorf("%w: %d bytes", ErrShortDescriptor, len(data))
	}
	h.VolumeDescriptorType = VolumeDescriptorType(data[0])
	copy(h.StandardIdentifier[:], data[1:6])
	h.VolumeDescriptorVersion = data[6]
	return nil
}

// Marshal encodes the header into a full zeroed sector, ready to be extended by a descriptor body.
func (h *VolumeDescriptorHeader) Marshal() []byte {
	data := make([]byte, consts.ISO9660_SECTOR_SIZE)
	data[0] = byte(h.VolumeDescriptorType)
	copy(data[1:6], h.StandardIdentifier[:])
	data[6] = h.VolumeDescriptorVersion
	return data
}
