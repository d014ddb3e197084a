package packet

import (
	"io"
	"unicode/utf8"
)

// ReadByte reads a single byte from r.
func ReadByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapEOF(err, "byte")
	}
	return b[0], nil
}

// WriteByte writes a single byte to w.
func WriteByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// ReadUint16 reads a big-endian u16 from r.
func ReadUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapEOF(err, "u16")
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// WriteUint16 writes value to w as a big-endian u16.
func WriteUint16(w io.Writer, value uint16) error {
	_, err := w.Write([]byte{byte(value >> 8), byte(value)})
	return err
}

// ReadUTF8String reads a u16-length-prefixed UTF-8 string, failing if the
// declared bytes are not well-formed UTF-8. [MQTT-1.5.3]
func ReadUTF8String(r io.Reader) (string, error) {
	length, err := ReadUint16(r)
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", wrapEOF(err, "UTF-8 string body")
	}
	if !utf8.Valid(buf) {
		return "", malformed("invalid UTF-8 in string field")
	}
	return string(buf), nil
}

// WriteUTF8String emits value's byte length as a big-endian u16 followed by
// its bytes. Fails if value is longer than 65535 bytes.
func WriteUTF8String(w io.Writer, value string) error {
	if len(value) > 0xFFFF {
		return malformedf("string of %d bytes exceeds u16 length limit", len(value))
	}
	if err := WriteUint16(w, uint16(len(value))); err != nil {
		return err
	}
	if len(value) == 0 {
		return nil
	}
	_, err := io.WriteString(w, value)
	return err
}

// ReadBlob reads a u16-length-prefixed opaque byte string, identical framing
// to ReadUTF8String but without UTF-8 validation.
func ReadBlob(r io.Reader) ([]byte, error) {
	length, err := ReadUint16(r)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapEOF(err, "blob body")
	}
	return buf, nil
}

// WriteBlob emits value's byte length as a big-endian u16 followed by its
// bytes. Fails if value is longer than 65535 bytes.
func WriteBlob(w io.Writer, value []byte) error {
	if len(value) > 0xFFFF {
		return malformedf("blob of %d bytes exceeds u16 length limit", len(value))
	}
	if err := WriteUint16(w, uint16(len(value))); err != nil {
		return err
	}
	if len(value) == 0 {
		return nil
	}
	_, err := w.Write(value)
	return err
}
