// Package frame implements the binary output protocol: type-tagged,
// length-prefixed frames carrying either JSON control messages or PCM audio.
package frame

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Frame type tags.
const (
	TypeJSON  byte = 1
	TypeAudio byte = 2
)

const headerSize = 5 // 1-byte type + 4-byte little-endian payload length

// DeviceList is the control payload answering a list-devices command.
type DeviceList struct {
	Type    string   `json:"type"`
	Devices []string `json:"devices"`
}

// NewDeviceList builds a device-list payload. A nil slice still marshals as
// an empty JSON array, never null.
func NewDeviceList(names []string) DeviceList {
	if names == nil {
		names = []string{}
	}
	return DeviceList{Type: "device-list", Devices: names}
}

// CommandError is the control payload reporting a failed command.
type CommandError struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Error   string `json:"error"`
}

// NewCommandError builds an error payload for the named command.
func NewCommandError(command string, err error) CommandError {
	return CommandError{Type: "error", Command: command, Error: err.Error()}
}

// Writer serializes frames onto a shared sink. Each frame is written in one
// critical section, so concurrent control and audio writers never interleave
// bytes inside a frame.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Writer emitting frames to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteJSON marshals v and writes it as one control frame.
func (w *Writer) WriteJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("frame: marshal control payload: %w", err)
	}
	return w.Write(TypeJSON, payload)
}

// WriteAudio encodes samples as s16le PCM and writes them as one audio frame.
func (w *Writer) WriteAudio(samples []float32) error {
	return w.Write(TypeAudio, EncodePCM16(samples))
}

// Write writes one frame as a single Write call on the sink.
func (w *Writer) Write(typ byte, payload []byte) error {
	buf := make([]byte, headerSize+len(payload))
	buf[0] = typ
	binary.LittleEndian.PutUint32(buf[1:headerSize], uint32(len(payload)))
	copy(buf[headerSize:], payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(buf); err != nil {
		return fmt.Errorf("frame: write frame: %w", err)
	}
	return nil
}

// EncodePCM16 converts normalized float samples to little-endian signed
// 16-bit PCM. Each sample is clamped to [-1, 1], scaled by 32767 and
// truncated.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(s*32767)))
	}
	return out
}
