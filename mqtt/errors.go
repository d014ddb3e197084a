package mqtt

import (
	"fmt"

	"github.com/axmq/mqtt311/packet"
)

// malformed and malformedf build the same *packet.MalformedFrameError the
// primitive codec uses, so callers never need to distinguish a failure
// surfaced by the mqtt package from one surfaced by packet: both satisfy
// packet.IsMalformedFrame.
func malformed(reason string) error {
	return &packet.MalformedFrameError{Reason: reason}
}

func malformedf(format string, args ...interface{}) error {
	return &packet.MalformedFrameError{Reason: fmt.Sprintf(format, args...)}
}
