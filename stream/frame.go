package stream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/png"

	"github.com/matt-g-everett/skytx/anim"
)

// MarshalFrame converts a rendered frame into the wire payload published
// to display devices: an 8-byte little-endian generation header followed
// by the PNG-encoded image.
func MarshalFrame(f anim.Frame) ([]byte, error) {
	var buf bytes.Buffer
	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], f.Generation)
	buf.Write(header[:])

	if err := png.Encode(&buf, f.Image); err != nil {
		return nil, fmt.Errorf("encoding frame %d: %w", f.Generation, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalFrameGeneration reads the generation header back out of a wire
// payload, for receivers that drop frames older than the last one shown.
func UnmarshalFrameGeneration(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("frame payload too short: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint64(data[:8]), nil
}
