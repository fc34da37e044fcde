package session

import (
	"github.com/rs/zerolog"

	"github.com/petems/audio-recorder/internal/capture"
	"github.com/petems/audio-recorder/internal/command"
	"github.com/petems/audio-recorder/internal/frame"
	"github.com/petems/audio-recorder/internal/resample"
)

// UnknownDeviceName replaces device names the backend cannot report.
const UnknownDeviceName = "Unknown Device"

// Config carries the controller's collaborators.
type Config struct {
	Engine capture.Engine
	Writer *frame.Writer
	Queue  *command.Queue
	Logger zerolog.Logger
	// SilentFailures suppresses error frames on failed starts, restoring
	// the fire-and-forget contract older consumers rely on.
	SilentFailures bool
}

// Controller consumes the command queue one command at a time and owns at
// most one live session. Start performs the Stop transition within the same
// handler invocation, so no two stream lifecycles ever overlap.
type Controller struct {
	engine capture.Engine
	writer *frame.Writer
	queue  *command.Queue
	log    zerolog.Logger
	silent bool

	session *Session
}

// NewController wires a controller from cfg.
func NewController(cfg Config) *Controller {
	return &Controller{
		engine: cfg.Engine,
		writer: cfg.Writer,
		queue:  cfg.Queue,
		log:    cfg.Logger,
		silent: cfg.SilentFailures,
	}
}

// Run processes commands until the queue closes, then releases any live
// session.
func (c *Controller) Run() {
	for {
		cmd, ok := c.queue.Pop()
		if !ok {
			break
		}
		switch cmd.Name {
		case command.Start:
			c.handleStart(cmd.DeviceName)
		case command.Stop:
			c.handleStop()
		case command.ListDevices:
			c.handleListDevices()
		}
	}
	c.handleStop()
}

func (c *Controller) handleStart(deviceName string) {
	c.handleStop()

	cfg, err := c.engine.Resolve(deviceName)
	if err != nil {
		c.startFailed(deviceName, err)
		return
	}

	var conv converter
	if cfg.SampleRate != TargetSampleRate {
		rc, err := resample.New(cfg.SampleRate, TargetSampleRate, ChunkSize, 1)
		if err != nil {
			c.startFailed(deviceName, err)
			return
		}
		conv = rc
	}

	sess := newSession(conv, c.writer, c.log)
	stream, err := c.engine.Open(cfg, sess.Feed)
	if err != nil {
		c.startFailed(deviceName, err)
		return
	}
	sess.stream = stream

	if err := stream.Start(); err != nil {
		if cerr := stream.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("Failed to release unstarted stream")
		}
		c.startFailed(deviceName, err)
		return
	}

	c.session = sess
	c.log.Info().
		Str("session", sess.id).
		Str("device", cfg.DeviceName).
		Str("format", cfg.Format.String()).
		Int("channels", cfg.Channels).
		Int("rate", cfg.SampleRate).
		Bool("resampling", conv != nil).
		Msg("Capture started")
}

func (c *Controller) handleStop() {
	if c.session == nil {
		return
	}
	if err := c.session.close(); err != nil {
		c.log.Error().Err(err).Str("session", c.session.id).Msg("Failed to stop stream cleanly")
	}
	c.log.Info().Str("session", c.session.id).Msg("Capture stopped")
	c.session = nil
}

func (c *Controller) handleListDevices() {
	devices, err := c.engine.Devices()
	if err != nil {
		c.log.Error().Err(err).Msg("Device enumeration failed")
		devices = nil
	}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		name := d.Name
		if name == "" {
			name = UnknownDeviceName
		}
		names = append(names, name)
	}
	if err := c.writer.WriteJSON(frame.NewDeviceList(names)); err != nil {
		c.log.Error().Err(err).Msg("Failed to write device list")
	}
}

func (c *Controller) startFailed(deviceName string, err error) {
	c.log.Error().Err(err).Str("device", deviceName).Msg("Failed to start recording")
	if c.silent {
		return
	}
	if werr := c.writer.WriteJSON(frame.NewCommandError(string(command.Start), err)); werr != nil {
		c.log.Error().Err(werr).Msg("Failed to write error frame")
	}
}
