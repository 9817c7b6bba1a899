package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalAll(t *testing.T, records ...*Record) []byte {
	t.Helper()
	var data []byte
	for _, r := range records {
		b, err := r.Marshal()
		require.NoError(t, err)
		data = append(data, b...)
	}
	return data
}

func names(t *testing.T, dec *Decoder) []string {
	t.Helper()
	var out []string
	for dec.Next() {
		out = append(out, dec.Record().Name())
	}
	return out
}

func TestDecoder_OnDiskOrder(t *testing.T) {
	data := marshalAll(t,
		&Record{Identifier: []byte("A"), Extent: 20, DataLength: 1},
		&Record{Identifier: []byte("B."), Extent: 21, DataLength: 2},
		&Record{Identifier: []byte("C.TXT;1"), Extent: 22, DataLength: 3},
	)
	dec := NewDecoder(data, uint32(len(data)))
	assert.Equal(t, []string{"A", "B", "C.TXT"}, names(t, dec))
	require.NoError(t, dec.Err())
}

func TestDecoder_FindsRecordEncodedWithTrailingDot(t *testing.T) {
	data := marshalAll(t,
		&Record{Identifier: []byte("A"), Extent: 20},
		&Record{Identifier: []byte("B."), Extent: 21, DataLength: 77},
		&Record{Identifier: []byte("C.TXT;1"), Extent: 22},
	)
	dec := NewDecoder(data, uint32(len(data)))
	var found *Record
	for dec.Next() {
		if dec.Record().Matches("B") {
			rec := *dec.Record()
			found = &rec
			break
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, uint32(21), found.Extent)
	assert.Equal(t, uint32(77), found.DataLength)
	assert.Equal(t, []byte("B."), found.Identifier)
}

func TestDecoder_SpecialRecords(t *testing.T) {
	data := marshalAll(t,
		&Record{Identifier: []byte{0x00}, Flags: FileFlags{Directory: true}},
		&Record{Identifier: []byte{0x01}, Flags: FileFlags{Directory: true}},
		&Record{Identifier: []byte("FILE;1")},
	)
	dec := NewDecoder(data, uint32(len(data)))
	assert.Equal(t, []string{".", "..", "FILE"}, names(t, dec))
}

func TestDecoder_ZeroLengthEndsDirectory(t *testing.T) {
	first := marshalAll(t,
		&Record{Identifier: []byte("A")},
		&Record{Identifier: []byte("B.")},
	)
	hidden := marshalAll(t, &Record{Identifier: []byte("HIDDEN;1")})

	data := append(append(append([]byte{}, first...), 0, 0, 0, 0), hidden...)
	dec := NewDecoder(data, uint32(len(data)))
	assert.Equal(t, []string{"A", "B"}, names(t, dec))
	require.NoError(t, dec.Err())
}

func TestDecoder_DeclaredLengthLimitsRecords(t *testing.T) {
	data := marshalAll(t,
		&Record{Identifier: []byte("A")},
		&Record{Identifier: []byte("B.")},
	)
	// a sector-rounded buffer with the declared length covering only the first record
	buf := make([]byte, 2048)
	copy(buf, data)
	dec := NewDecoder(buf, 34)
	assert.Equal(t, []string{"A"}, names(t, dec))
	require.NoError(t, dec.Err())
}

func TestDecoder_MalformedRecordsStopEarly(t *testing.T) {
	good := marshalAll(t, &Record{Identifier: []byte("A")})

	t.Run("record past buffer", func(t *testing.T) {
		bad := marshalAll(t, &Record{Identifier: []byte("LONGNAME.TXT;1")})
		data := append(append([]byte{}, good...), bad[:20]...)
		dec := NewDecoder(data, 4096)
		assert.Equal(t, []string{"A"}, names(t, dec))
		require.ErrorIs(t, dec.Err(), ErrMalformedRecord)
	})

	t.Run("record shorter than header", func(t *testing.T) {
		data := append(append([]byte{}, good...), 5, 0, 0, 0, 0)
		dec := NewDecoder(data, uint32(len(data)))
		assert.Equal(t, []string{"A"}, names(t, dec))
		require.ErrorIs(t, dec.Err(), ErrMalformedRecord)
	})

	t.Run("declared length beyond buffer", func(t *testing.T) {
		dec := NewDecoder(good, uint32(len(good)+100))
		assert.Equal(t, []string{"A"}, names(t, dec))
		require.ErrorIs(t, dec.Err(), ErrMalformedRecord)
	})

	t.Run("next after end stays false", func(t *testing.T) {
		dec := NewDecoder(good, uint32(len(good)))
		require.True(t, dec.Next())
		require.False(t, dec.Next())
		require.False(t, dec.Next())
	})
}

func TestDecoder_Offset(t *testing.T) {
	data := marshalAll(t,
		&Record{Identifier: []byte("A")},
		&Record{Identifier: []byte("BB;1")},
	)
	dec := NewDecoder(data, uint32(len(data)))
	require.True(t, dec.Next())
	assert.Equal(t, 0, dec.Offset())
	require.True(t, dec.Next())
	assert.Equal(t, 34, dec.Offset())
}

func TestDecoder_Reset(t *testing.T) {
	data := marshalAll(t,
		&Record{Identifier: []byte("A")},
		&Record{Identifier: []byte("BB;1")},
	)
	dec := NewDecoder(data, uint32(len(data)))
	for dec.Next() {
	}
	dec.Reset()
	require.True(t, dec.Next())
	assert.Equal(t, "A", dec.Record().Name())
	assert.Equal(t, 0, dec.Offset())

	bad := NewDecoder(data[:40], uint32(len(data)))
	for bad.Next() {
	}
	require.Error(t, bad.Err())
	bad.Reset()
	require.NoError(t, bad.Err())
	require.True(t, bad.Next())
}
