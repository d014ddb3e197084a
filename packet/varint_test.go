package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRemainingLength(t *testing.T) {
	tests := []struct {
		name     string
		input    uint32
		expected []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"max_single_byte", 127, []byte{0x7F}},
		{"min_two_byte", 128, []byte{0x80, 0x01}},
		{"max_two_byte", 16383, []byte{0xFF, 0x7F}},
		{"min_three_byte", 16384, []byte{0x80, 0x80, 0x01}},
		{"max_three_byte", 2097151, []byte{0xFF, 0xFF, 0x7F}},
		{"min_four_byte", 2097152, []byte{0x80, 0x80, 0x80, 0x01}},
		{"max_four_byte", 268435455, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRemainingLength(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEncodeRemainingLength_TooLarge(t *testing.T) {
	_, err := EncodeRemainingLength(268435456)
	require.Error(t, err)
	assert.True(t, IsMalformedFrame(err))
}

func TestDecodeRemainingLength(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected uint32
	}{
		{"zero", []byte{0x00}, 0},
		{"max_single_byte", []byte{0x7F}, 127},
		{"min_two_byte", []byte{0x80, 0x01}, 128},
		{"max_two_byte", []byte{0xFF, 0x7F}, 16383},
		{"min_three_byte", []byte{0x80, 0x80, 0x01}, 16384},
		{"max_three_byte", []byte{0xFF, 0xFF, 0x7F}, 2097151},
		{"min_four_byte", []byte{0x80, 0x80, 0x80, 0x01}, 2097152},
		{"max_four_byte", []byte{0xFF, 0xFF, 0xFF, 0x7F}, 268435455},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRemainingLength(bytes.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeRemainingLength_RejectsFiveBytes(t *testing.T) {
	_, err := DecodeRemainingLength(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x01}))
	require.Error(t, err)
	assert.True(t, IsMalformedFrame(err))
}

func TestDecodeRemainingLength_RejectsTruncated(t *testing.T) {
	_, err := DecodeRemainingLength(bytes.NewReader([]byte{0x80, 0x80}))
	require.Error(t, err)
}

func TestRemainingLength_RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 268435455} {
		encoded, err := EncodeRemainingLength(v)
		require.NoError(t, err)
		assert.Equal(t, SizeRemainingLength(v), len(encoded))

		decoded, err := DecodeRemainingLength(bytes.NewReader(encoded))
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}

func FuzzRemainingLengthRoundTrip(f *testing.F) {
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 268435455} {
		f.Add(v)
	}

	f.Fuzz(func(t *testing.T, value uint32) {
		encoded, err := EncodeRemainingLength(value)
		if value > MaxRemainingLength {
			require.Error(t, err)
			return
		}
		require.NoError(t, err)
		assert.LessOrEqual(t, len(encoded), 4)

		decoded, err := DecodeRemainingLength(bytes.NewReader(encoded))
		require.NoError(t, err)
		assert.Equal(t, value, decoded)
	})
}

func FuzzDecodeRemainingLength(f *testing.F) {
	seeds := [][]byte{
		{0x00}, {0x7F}, {0x80, 0x01}, {0xFF, 0x7F},
		{0x80, 0x80, 0x01}, {0xFF, 0xFF, 0x7F},
		{0x80, 0x80, 0x80, 0x01}, {0xFF, 0xFF, 0xFF, 0x7F},
		{0x80}, {0x80, 0x80, 0x80, 0x80},
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		value, err := DecodeRemainingLength(bytes.NewReader(data))
		if err == nil {
			assert.LessOrEqual(t, value, MaxRemainingLength)
		}
	})
}
