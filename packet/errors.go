package packet

import (
	"errors"
	"fmt"
	"io"
)

// MalformedFrameError is the sole error classification the codec produces.
// Reason names the clause or condition violated, e.g. "remaining length
// mismatch: expected 7, consumed 5" or "[MQTT-3.1.2-14] invalid will qos
// bits". There is no recoverable/partial decode: callers treat any
// MalformedFrameError as a protocol violation.
type MalformedFrameError struct {
	Reason string
}

func (e *MalformedFrameError) Error() string {
	return "mqtt: malformed frame: " + e.Reason
}

func malformed(reason string) error {
	return &MalformedFrameError{Reason: reason}
}

func malformedf(format string, args ...interface{}) error {
	return &MalformedFrameError{Reason: fmt.Sprintf(format, args...)}
}

// IsMalformedFrame reports whether err is (or wraps) a MalformedFrameError.
func IsMalformedFrame(err error) bool {
	var mf *MalformedFrameError
	return errors.As(err, &mf)
}

// wrapEOF turns an io.EOF/io.ErrUnexpectedEOF from a ReadFull into a
// MalformedFrameError naming what was being read; other I/O errors (closed
// connection, timeout) pass through unchanged for the caller to handle as a
// transport failure rather than a protocol violation.
func wrapEOF(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return malformedf("unexpected end of input reading %s", what)
	}
	return err
}
