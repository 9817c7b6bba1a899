package encoding

import (
	"encoding/binary"
	"fmt"
	"time"
)

// PutBothByteOrders32 writes val into an 8-byte field, little-endian first and big-endian second.
func PutBothByteOrders32(dst []byte, val uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], val)
	binary.BigEndian.PutUint32(dst[4:8], val)
}

// PutBothByteOrders16 writes val into a 4-byte field, little-endian first and big-endian second.
func PutBothByteOrders16(dst []byte, val uint16) {
	binary.LittleEndian.PutUint16(dst[0:2], val)
	binary.BigEndian.PutUint16(dst[2:4], val)
}

// Uint32LSB reads the little-endian half of a both-byte-order field. Readers on optical media only
// trust the little-endian copy, so a mismatched big-endian half is ignored.
func Uint32LSB(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[0:4])
}

// Uint16LSB reads the little-endian half of a 16-bit both-byte-order field.
func Uint16LSB(data []byte) uint16 {
	return binary.LittleEndian.Uint16(data[0:2])
}

// MarshalRecordingDateTime converts a time.Time into the 7-byte Recording Date and Time format used by
// directory records. All fields are stored as numerical values, not ASCII digits.
func MarshalRecordingDateTime(t time.Time) ([7]byte, error) {
	var b [7]byte
	if t.IsZero() {
		return b, nil
	}

	year, month, day := t.Date()
	hour, minute, second := t.Clock()

	if year < 1900 || year > 2155 {
		return b, fmt.Errorf("year %d out of range for recording date and time (must be between 1900 and 2155)", year)
	}
	b[0] = byte(year - 1900)
	b[1] = byte(month)
	b[2] = byte(day)
	b[3] = byte(hour)
	b[4] = byte(minute)
	b[5] = byte(second)

	_, offsetSec := t.Zone()
	offset15 := offsetSec / (15 * 60)
	if offset15 < -48 || offset15 > 52 {
		return b, fmt.Errorf("time zone offset %ds is out of the allowed range", offsetSec)
	}
	b[6] = byte(int8(offset15))
	return b, nil
}

// UnmarshalRecordingDateTime converts a 7-byte Recording Date and Time field into a time.Time.
//
//	Byte 1: years since 1900,
//	Byte 2: month (1-12),
//	Byte 3: day,
//	Byte 4: hour,
//	Byte 5: minute,
//	Byte 6: second,
//	Byte 7: offset from GMT in 15-minute intervals (signed).
//
// All seven bytes zero means the time is not specified and yields the zero time.
func UnmarshalRecordingDateTime(b [7]byte) (time.Time, error) {
	if b == [7]byte{} {
		return time.Time{}, nil
	}

	month := time.Month(b[1])
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("invalid month: %d", b[1])
	}
	if b[2] < 1 || b[2] > 31 {
		return time.Time{}, fmt.Errorf("invalid day: %d", b[2])
	}
	if b[3] > 23 || b[4] > 59 || b[5] > 59 {
		return time.Time{}, fmt.Errorf("invalid time of day: %02d:%02d:%02d", b[3], b[4], b[5])
	}
	offset15 := int8(b[6])
	if offset15 < -48 || offset15 > 52 {
		return time.Time{}, fmt.Errorf("invalid time zone offset: %d", offset15)
	}

	loc := time.UTC
	if offset15 != 0 {
		loc = time.FixedZone("", int(offset15)*15*60)
	}
	return time.Date(int(b[0])+1900, month, int(b[2]), int(b[3]), int(b[4]), int(b[5]), 0, loc), nil
}
