package capture

import (
	"encoding/binary"
	"math"
	"testing"
)

func enumeration() []Device {
	return []Device{
		{ID: "01", Name: "Mic A"},
		{ID: "02", Name: "Mic B", Default: true},
		{ID: "03", Name: "Mic C"},
		{ID: "04", Name: "Mic C"},
	}
}

func TestSelectDeviceDefaultSelectors(t *testing.T) {
	for _, name := range []string{"", "default", "DEFAULT", "Default"} {
		dev, err := SelectDevice(enumeration(), name)
		if err != nil {
			t.Fatalf("SelectDevice(%q) failed: %v", name, err)
		}
		if dev.Name != "Mic B" {
			t.Errorf("SelectDevice(%q) = %q, want the default device Mic B", name, dev.Name)
		}
	}
}

func TestSelectDeviceFallsBackToFirstWithoutDefaultFlag(t *testing.T) {
	devices := []Device{{ID: "01", Name: "Mic A"}, {ID: "02", Name: "Mic B"}}
	dev, err := SelectDevice(devices, "")
	if err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	if dev.Name != "Mic A" {
		t.Errorf("got %q, want the first enumerated device", dev.Name)
	}
}

func TestSelectDeviceEmptyEnumeration(t *testing.T) {
	if _, err := SelectDevice(nil, ""); err == nil {
		t.Error("expected an error with no devices enumerated")
	}
	if _, err := SelectDevice(nil, "Mic A"); err == nil {
		t.Error("expected a not-found error with no devices enumerated")
	}
}

func TestSelectDeviceExactMatchIsCaseSensitive(t *testing.T) {
	dev, err := SelectDevice(enumeration(), "Mic A")
	if err != nil || dev.ID != "01" {
		t.Errorf("SelectDevice(Mic A) = %+v, %v", dev, err)
	}
	if _, err := SelectDevice(enumeration(), "mic a"); err == nil {
		t.Error("lowercase name should not match Mic A")
	}
	if _, err := SelectDevice(enumeration(), "Mic"); err == nil {
		t.Error("prefix should not match any device")
	}
}

func TestSelectDeviceFirstMatchWins(t *testing.T) {
	dev, err := SelectDevice(enumeration(), "Mic C")
	if err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	if dev.ID != "03" {
		t.Errorf("got device %s, want the first of the duplicates (03)", dev.ID)
	}
}

func TestNegotiatePicksFirstNonZeroChannelEntry(t *testing.T) {
	configs := []StreamConfig{
		{Format: FormatF32, Channels: 0, SampleRate: 48000},
		{Format: FormatS16, Channels: 2, SampleRate: 44100},
		{Format: FormatS16, Channels: 2, SampleRate: 48000},
		{Format: FormatF32, Channels: 1, SampleRate: 96000},
	}
	cfg, err := Negotiate(configs)
	if err != nil {
		t.Fatalf("Negotiate failed: %v", err)
	}
	if cfg.Format != FormatS16 || cfg.Channels != 2 {
		t.Errorf("negotiated %s/%d channels, want s16/2 from the first usable entry", cfg.Format, cfg.Channels)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("negotiated %d Hz, want the 48000 Hz variant", cfg.SampleRate)
	}
}

func TestNegotiateIgnoresOtherFormatsForRateSelection(t *testing.T) {
	configs := []StreamConfig{
		{Format: FormatS16, Channels: 2, SampleRate: 44100},
		{Format: FormatF32, Channels: 2, SampleRate: 192000},
	}
	cfg, err := Negotiate(configs)
	if err != nil {
		t.Fatalf("Negotiate failed: %v", err)
	}
	if cfg.Format != FormatS16 || cfg.SampleRate != 44100 {
		t.Errorf("negotiated %s at %d Hz, want s16 at 44100", cfg.Format, cfg.SampleRate)
	}
}

func TestNegotiateFailsWithoutUsableEntry(t *testing.T) {
	if _, err := Negotiate(nil); err == nil {
		t.Error("expected an error for an empty format list")
	}
	zeroOnly := []StreamConfig{{Format: FormatF32, Channels: 0, SampleRate: 48000}}
	if _, err := Negotiate(zeroOnly); err == nil {
		t.Error("expected an error when every entry reports zero channels")
	}
}

func TestNegotiateKeepsUnknownFormats(t *testing.T) {
	// Formats the stream builder cannot decode are still negotiable; the
	// failure surfaces when the stream is opened.
	configs := []StreamConfig{{Format: FormatUnknown, Channels: 2, SampleRate: 48000}}
	cfg, err := Negotiate(configs)
	if err != nil {
		t.Fatalf("Negotiate failed: %v", err)
	}
	if cfg.Format != FormatUnknown {
		t.Errorf("negotiated %s, want the unknown format entry", cfg.Format)
	}
}

func TestDecodeSamplesF32(t *testing.T) {
	want := []float32{0, 0.5, -0.25, 1}
	data := make([]byte, 4*len(want))
	for i, v := range want {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	got := DecodeSamples(FormatF32, data)
	if len(got) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestDecodeSamplesS16(t *testing.T) {
	in := []int16{0, 16384, -32768, 32767}
	want := []float32{0, 0.5, -1, 32767.0 / 32768}
	data := make([]byte, 2*len(in))
	for i, v := range in {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(v))
	}
	got := DecodeSamples(FormatS16, data)
	if len(got) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestDecodeSamplesU8(t *testing.T) {
	data := []byte{128, 0, 255, 192}
	want := []float32{0, -1, 127.0 / 128, 0.5}
	got := DecodeSamples(FormatU8, data)
	if len(got) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestDecodeSamplesPreservesInterleavedCount(t *testing.T) {
	// Stereo data stays flat: 2 frames x 2 channels = 4 samples out.
	data := make([]byte, 8)
	got := DecodeSamples(FormatS16, data)
	if len(got) != 4 {
		t.Errorf("decoded %d samples, want 4 (no downmixing)", len(got))
	}
}
