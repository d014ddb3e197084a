package store

import (
	"github.com/DataDog/zstd"
	"github.com/fxamacker/cbor/v2"
)

// CompressionThreshold is the encoded-value size, in bytes, above which
// encodeValue zstd-compresses the CBOR payload. Below it the framing and
// compression overhead isn't worth paying.
const CompressionThreshold = 256

const (
	encodingRaw         byte = 0x00
	encodingZstdWrapped byte = 0x01
)

// encodeValue CBOR-encodes value and, if the result exceeds
// CompressionThreshold, zstd-compresses it. The first output byte is a
// format tag (encodingRaw or encodingZstdWrapped) so decodeValue never has
// to guess.
func encodeValue[T any](value T) ([]byte, error) {
	raw, err := cbor.Marshal(value)
	if err != nil {
		return nil, err
	}

	if len(raw) <= CompressionThreshold {
		return append([]byte{encodingRaw}, raw...), nil
	}

	compressed, err := zstd.Compress(nil, raw)
	if err != nil {
		return nil, err
	}
	return append([]byte{encodingZstdWrapped}, compressed...), nil
}

// decodeValue reverses encodeValue. A CBOR decode failure here is treated
// as data corruption by callers, not an ordinary not-found: the format tag
// framing guarantees we're looking at what encodeValue produced, or at
// something that was never ours.
func decodeValue[T any](data []byte) (T, error) {
	var zero T
	if len(data) == 0 {
		return zero, malformedValue("empty stored value")
	}

	tag, body := data[0], data[1:]

	var raw []byte
	switch tag {
	case encodingRaw:
		raw = body
	case encodingZstdWrapped:
		decompressed, err := zstd.Decompress(nil, body)
		if err != nil {
			return zero, malformedValue("zstd decompress: " + err.Error())
		}
		raw = decompressed
	default:
		return zero, malformedValue("unrecognized value encoding tag")
	}

	var value T
	if err := cbor.Unmarshal(raw, &value); err != nil {
		return zero, malformedValue("cbor decode: " + err.Error())
	}
	return value, nil
}

func malformedValue(reason string) error {
	return &CorruptValueError{Reason: reason}
}
