package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixedHeader_ValidPackets(t *testing.T) {
	tests := []struct {
		name           string
		input          []byte
		expectedType   Type
		expectedFlags  byte
		expectedRemLen uint32
	}{
		{"CONNECT", []byte{0x10, 0x00}, CONNECT, 0x00, 0},
		{"CONNACK", []byte{0x20, 0x02}, CONNACK, 0x00, 2},
		{"PUBLISH QoS0", []byte{0x30, 0x0A}, PUBLISH, 0x00, 10},
		{"PUBLISH QoS1 dup retain", []byte{0x3B, 0x07}, PUBLISH, 0x0B, 7},
		{"PUBACK", []byte{0x40, 0x02}, PUBACK, 0x00, 2},
		{"PUBREC", []byte{0x50, 0x02}, PUBREC, 0x00, 2},
		{"PUBREL", []byte{0x62, 0x02}, PUBREL, 0x02, 2},
		{"PUBCOMP", []byte{0x70, 0x02}, PUBCOMP, 0x00, 2},
		{"SUBSCRIBE", []byte{0x82, 0x08}, SUBSCRIBE, 0x02, 8},
		{"SUBACK", []byte{0x90, 0x03}, SUBACK, 0x00, 3},
		{"UNSUBSCRIBE", []byte{0xA2, 0x04}, UNSUBSCRIBE, 0x02, 4},
		{"UNSUBACK", []byte{0xB0, 0x02}, UNSUBACK, 0x00, 2},
		{"PINGREQ", []byte{0xC0, 0x00}, PINGREQ, 0x00, 0},
		{"PINGRESP", []byte{0xD0, 0x00}, PINGRESP, 0x00, 0},
		{"DISCONNECT", []byte{0xE0, 0x00}, DISCONNECT, 0x00, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseFixedHeader(bytes.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedType, h.Type)
			assert.Equal(t, tt.expectedFlags, h.Flags)
			assert.Equal(t, tt.expectedRemLen, h.RemainingLength)
		})
	}
}

func TestParseFixedHeader_RejectsReservedType(t *testing.T) {
	_, err := ParseFixedHeader(bytes.NewReader([]byte{0x00, 0x00}))
	require.Error(t, err)
	assert.True(t, IsMalformedFrame(err))
}

func TestParseFixedHeader_RejectsUnknownType(t *testing.T) {
	_, err := ParseFixedHeader(bytes.NewReader([]byte{0xF0, 0x00}))
	require.Error(t, err)
	assert.True(t, IsMalformedFrame(err))
}

func TestParseFixedHeader_RejectsBadReservedFlags(t *testing.T) {
	// PUBREL requires flags 0x02; 0x60 sets flags 0x00.
	_, err := ParseFixedHeader(bytes.NewReader([]byte{0x60, 0x02}))
	require.Error(t, err)
	assert.True(t, IsMalformedFrame(err))
}

func TestEncodeFixedHeader_RoundTrip(t *testing.T) {
	h := FixedHeader{Type: SUBSCRIBE, Flags: 0x02, RemainingLength: 8}
	var buf bytes.Buffer
	require.NoError(t, EncodeFixedHeader(&buf, h))

	decoded, err := ParseFixedHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func FuzzParseFixedHeader(f *testing.F) {
	seeds := [][]byte{
		{0x10, 0x00}, {0x20, 0x02}, {0x30, 0x00}, {0x32, 0x05},
		{0x3D, 0x08}, {0x40, 0x02}, {0x62, 0x02}, {0x82, 0x05},
		{0x90, 0x03}, {0xC0, 0x00}, {0x00, 0x00}, {0xF0, 0x00},
		{0x60, 0x02}, {0x80, 0x02},
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		h, err := ParseFixedHeader(bytes.NewReader(data))
		if err == nil {
			assert.True(t, h.Type >= CONNECT && h.Type <= DISCONNECT)
			assert.LessOrEqual(t, h.RemainingLength, MaxRemainingLength)
		}
	})
}
