package directory

import (
	"errors"
	"fmt"
	"time"

	"github.com/rstms/cdrom-kit/pkg/consts"
	"github.com/rstms/cdrom-kit/pkg/encoding"
)

const headerSize = consts.ISO9660_DIRECTORY_RECORD_HEADER_SIZE

// ErrMalformedRecord is reported when a directory record does not fit its declared or available length.
var ErrMalformedRecord = errors.New("malformed directory record")

// Record is one directory record. After Unmarshal, Identifier aliases the buffer the record was
// decoded from.
type Record struct {
	// Length of Directory Record in bytes, including padding and system use.
	Length uint8
	// Extended Attribute Record Length, zero when none is recorded.
	ExtendedAttributeLength uint8
	// Location of Extent: logical block number of the first sector of the entry.
	//  | Encoding: BothByteOrder
	Extent uint32
	// Data Length of the entry in bytes.
	//  | Encoding: BothByteOrder
	DataLength uint32
	// Recording Date and Time in the 7-byte numeric format.
	Recorded [7]byte
	Flags    FileFlags
	// File Unit Size and Interleave Gap Size, zero unless recorded in interleaved mode.
	FileUnitSize      uint8
	InterleaveGapSize uint8
	// Volume Sequence Number of the volume holding the extent.
	//  | Encoding: BothByteOrder
	VolumeSequenceNumber uint16
	// File Identifier, without the padding byte. 0x00 and 0x01 denote the directory itself and its parent.
	Identifier []byte
}

// Unmarshal decodes the record at the start of data. It checks every length before reading and
// never copies data.
func (r *Record) Unmarshal(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: %d bytes is shorter than the %d byte header", ErrMalformedRecord, len(data), headerSize)
	}
	length := int(data[0])
	identLength := int(data[32])
	if length < headerSize+identLength {
		return fmt.Errorf("%w: record length %d cannot hold a %d byte identifier", ErrMalformedRecord, length, identLength)
	}
	if length > len(data) {
		return fmt.Errorf("%w: record length %d exceeds the %d bytes available", ErrMalformedRecord, length, len(data))
	}

	r.Length = data[0]
	r.ExtendedAttributeLength = data[1]
	r.Extent = encoding.Uint32LSB(data[2:10])
	r.DataLength = encoding.Uint32LSB(data[10:18])
	copy(r.Recorded[:], data[18:25])
	r.Flags.Set(data[25])
	r.FileUnitSize = data[26]
	r.InterleaveGapSize = data[27]
	r.VolumeSequenceNumber = encoding.Uint16LSB(data[28:32])
	r.Identifier = data[headerSize : headerSize+identLength]
	return nil
}

// Marshal encodes the record. The length field is computed from the identifier; a padding byte is
// added when the identifier length is even.
func (r *Record) Marshal() ([]byte, error) {
	if len(r.Identifier) == 0 {
		return nil, errors.New("record has no identifier")
	}
	size := r.Size()
	if size > 255 {
		return nil, fmt.Errorf("identifier of %d bytes does not fit in a directory record", len(r.Identifier))
	}

	data := make([]byte, size)
	data[0] = byte(size)
	data[1] = r.ExtendedAttributeLength
	encoding.PutBothByteOrders32(data[2:10], r.Extent)
	encoding.PutBothByteOrders32(data[10:18], r.DataLength)
	copy(data[18:25], r.Recorded[:])
	data[25] = r.Flags.Byte()
	data[26] = r.FileUnitSize
	data[27] = r.InterleaveGapSize
	encoding.PutBothByteOrders16(data[28:32], r.VolumeSequenceNumber)
	data[32] = byte(len(r.Identifier))
	copy(data[headerSize:], r.Identifier)
	return data, nil
}

// Size is the number of bytes Marshal produces.
func (r *Record) Size() int {
	size := headerSize + len(r.Identifier)
	if len(r.Identifier)%2 == 0 {
		size++
	}
	return size
}

// IsDir reports whether the record describes a directory.
func (r *Record) IsDir() bool {
	return r.Flags.Directory
}

// IsSelf reports whether the record is the directory's own "." entry.
func (r *Record) IsSelf() bool {
	return isSpecial(r.Identifier) && r.Identifier[0] == consts.ISO9660_IDENT_SELF
}

// IsParent reports whether the record is the ".." entry.
func (r *Record) IsParent() bool {
	return isSpecial(r.Identifier) && r.Identifier[0] == consts.ISO9660_IDENT_PARENT
}

// IsSpecial checks for "." or "..".
func (r *Record) IsSpecial() bool {
	return isSpecial(r.Identifier)
}

// Name returns the normalized identifier.
func (r *Record) Name() string {
	return NormalizeName(r.Identifier)
}

// Matches reports whether the normalized identifier equals name exactly. The "." and ".." records
// never match.
func (r *Record) Matches(name string) bool {
	if r.IsSpecial() {
		return false
	}
	return string(normalize(r.Identifier)) == name
}

// AppendName appends the normalized identifier to dst.
func (r *Record) AppendName(dst []byte) []byte {
	return append(dst, normalize(r.Identifier)...)
}

// NameLength is the length of the normalized identifier.
func (r *Record) NameLength() int {
	return len(normalize(r.Identifier))
}

// RecordingTime decodes the recording date and time. Unspecified or invalid values give the zero time.
func (r *Record) RecordingTime() time.Time {
	t, err := encoding.UnmarshalRecordingDateTime(r.Recorded)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r *Record) String() string {
	return fmt.Sprintf("%q extent=%d length=%d flags=[%s]", r.Name(), r.Extent, r.DataLength, r.Flags)
}
