// Package capture resolves audio input devices and delivers normalized
// float32 samples from the hardware callback.
package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Format is the sample representation delivered by a capture stream.
type Format int

const (
	FormatUnknown Format = iota
	FormatF32
	FormatS16
	FormatU8
)

func (f Format) String() string {
	switch f {
	case FormatF32:
		return "f32"
	case FormatS16:
		return "s16"
	case FormatU8:
		return "u8"
	default:
		return "unknown"
	}
}

// Device describes one enumerated input device.
type Device struct {
	ID      string
	Name    string
	Default bool
}

// StreamConfig is a negotiated capture configuration.
type StreamConfig struct {
	DeviceID   string
	DeviceName string
	Format     Format
	Channels   int
	SampleRate int
}

// SampleFunc receives normalized float32 samples on the hardware callback
// context. Multi-channel buffers arrive flattened in interleaved order, one
// value per sample; they are not downmixed.
type SampleFunc func(samples []float32)

// Stream is one running capture stream.
type Stream interface {
	Start() error
	// Close stops the stream and releases the device, blocking until the
	// backend guarantees no further callback runs.
	Close() error
}

// Engine enumerates devices and opens capture streams.
type Engine interface {
	Devices() ([]Device, error)
	// Resolve picks the device for the given selector and negotiates its
	// stream configuration.
	Resolve(name string) (StreamConfig, error)
	// Open builds a stream on cfg's device delivering samples to fn. The
	// stream is created stopped; Start begins callbacks.
	Open(cfg StreamConfig, fn SampleFunc) (Stream, error)
	Close() error
}

// DefaultToken is the reserved selector for the default input device.
const DefaultToken = "default"

// SelectDevice resolves a device selector against an enumeration snapshot.
// An empty selector or the reserved token (case-insensitive) picks the
// device flagged default, falling back to the first enumerated device.
// Anything else must equal a device name exactly; first match wins.
func SelectDevice(devices []Device, name string) (Device, error) {
	if name == "" || strings.EqualFold(name, DefaultToken) {
		for _, d := range devices {
			if d.Default {
				return d, nil
			}
		}
		if len(devices) > 0 {
			return devices[0], nil
		}
		return Device{}, errors.New("no input devices available")
	}
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("input device not found: %s", name)
}

// Negotiate picks a stream configuration from a device's reported formats:
// the first entry with a non-zero channel count decides sample format and
// channels, and the highest rate among entries sharing that format and
// channel count wins.
func Negotiate(configs []StreamConfig) (StreamConfig, error) {
	for _, c := range configs {
		if c.Channels == 0 {
			continue
		}
		best := c
		for _, v := range configs {
			if v.Format == c.Format && v.Channels == c.Channels && v.SampleRate > best.SampleRate {
				best = v
			}
		}
		return best, nil
	}
	return StreamConfig{}, errors.New("no supported input configuration")
}

// DecodeSamples converts one raw interleaved hardware buffer to normalized
// float32 values, preserving sample count and order.
func DecodeSamples(f Format, data []byte) []float32 {
	switch f {
	case FormatF32:
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
		}
		return out
	case FormatS16:
		out := make([]float32, len(data)/2)
		for i := range out {
			out[i] = float32(int16(binary.LittleEndian.Uint16(data[2*i:]))) / 32768
		}
		return out
	case FormatU8:
		out := make([]float32, len(data))
		for i, b := range data {
			out[i] = (float32(b) - 128) / 128
		}
		return out
	default:
		return nil
	}
}
