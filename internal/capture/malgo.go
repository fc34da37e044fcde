package capture

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

type malgoEngine struct {
	ctx *malgo.AllocatedContext
	log zerolog.Logger
}

// NewEngine initializes a miniaudio context for capture. Backend log
// messages are forwarded to the diagnostic channel at debug level.
func NewEngine(log zerolog.Logger) (Engine, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug().Str("component", "miniaudio").Msg(strings.TrimSpace(message))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	return &malgoEngine{ctx: ctx, log: log}, nil
}

func (e *malgoEngine) Devices() ([]Device, error) {
	infos, err := e.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{
			ID:      hex.EncodeToString(info.ID[:]),
			Name:    info.Name(),
			Default: info.IsDefault != 0,
		})
	}
	return devices, nil
}

func (e *malgoEngine) Resolve(name string) (StreamConfig, error) {
	devices, err := e.Devices()
	if err != nil {
		return StreamConfig{}, err
	}
	dev, err := SelectDevice(devices, name)
	if err != nil {
		return StreamConfig{}, err
	}
	configs, err := e.deviceConfigs(dev)
	if err != nil {
		return StreamConfig{}, err
	}
	cfg, err := Negotiate(configs)
	if err != nil {
		return StreamConfig{}, fmt.Errorf("device %s: %w", dev.Name, err)
	}
	cfg.DeviceID = dev.ID
	cfg.DeviceName = dev.Name
	return cfg, nil
}

// deviceConfigs queries the device's native data formats and maps them to
// stream configurations in the order the backend reports them.
func (e *malgoEngine) deviceConfigs(dev Device) ([]StreamConfig, error) {
	id, err := parseDeviceID(dev.ID)
	if err != nil {
		return nil, err
	}
	info, err := e.ctx.DeviceInfo(malgo.Capture, id, malgo.Shared)
	if err != nil {
		return nil, fmt.Errorf("failed to query device %s: %w", dev.Name, err)
	}
	count := info.FormatCount
	if count > uint32(len(info.Formats)) {
		count = uint32(len(info.Formats))
	}
	configs := make([]StreamConfig, 0, count)
	for i := uint32(0); i < count; i++ {
		df := info.Formats[i]
		configs = append(configs, StreamConfig{
			Format:     fromMalgoFormat(df.Format),
			Channels:   int(df.Channels),
			SampleRate: int(df.SampleRate),
		})
	}
	return configs, nil
}

func (e *malgoEngine) Open(cfg StreamConfig, fn SampleFunc) (Stream, error) {
	format, ok := toMalgoFormat(cfg.Format)
	if !ok {
		return nil, fmt.Errorf("unsupported sample format: %s", cfg.Format)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = format
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if cfg.DeviceID != "" {
		id, err := parseDeviceID(cfg.DeviceID)
		if err != nil {
			return nil, err
		}
		deviceConfig.Capture.DeviceID = id.Pointer()
	}

	stream := &malgoStream{
		log: e.log.With().Str("device", cfg.DeviceName).Logger(),
	}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			fn(DecodeSamples(cfg.Format, input))
		},
		// The backend stopping a running stream on its own is the runtime
		// error miniaudio surfaces; it is logged, not recovered from.
		Stop: func() {
			if !stream.closing.Load() {
				stream.log.Warn().Msg("Capture stream stopped by backend")
			}
		},
	}

	device, err := malgo.InitDevice(e.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}
	stream.device = device
	return stream, nil
}

func (e *malgoEngine) Close() error {
	err := e.ctx.Uninit()
	e.ctx.Free()
	return err
}

type malgoStream struct {
	device  *malgo.Device
	log     zerolog.Logger
	started bool
	closing atomic.Bool
}

func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return err
	}
	s.started = true
	return nil
}

// Close stops the device if it was started and releases it. Uninit blocks
// until the backend has torn the device down, so no callback runs after
// Close returns.
func (s *malgoStream) Close() error {
	s.closing.Store(true)
	var err error
	if s.started {
		err = s.device.Stop()
	}
	s.device.Uninit()
	return err
}

func parseDeviceID(s string) (malgo.DeviceID, error) {
	var id malgo.DeviceID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid device ID: %w", err)
	}
	copy(id[:], raw)
	return id, nil
}

func fromMalgoFormat(f malgo.FormatType) Format {
	switch f {
	case malgo.FormatF32:
		return FormatF32
	case malgo.FormatS16:
		return FormatS16
	case malgo.FormatU8:
		return FormatU8
	default:
		return FormatUnknown
	}
}

func toMalgoFormat(f Format) (malgo.FormatType, bool) {
	switch f {
	case FormatF32:
		return malgo.FormatF32, true
	case FormatS16:
		return malgo.FormatS16, true
	case FormatU8:
		return malgo.FormatU8, true
	default:
		return malgo.FormatUnknown, false
	}
}
