// Package command decodes the newline-delimited JSON control protocol and
// queues decoded commands for the session controller.
package command

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Name identifies a control command.
type Name string

const (
	Start       Name = "start"
	Stop        Name = "stop"
	ListDevices Name = "list-devices"
)

// Command is one decoded control command.
type Command struct {
	Name       Name   `json:"command"`
	DeviceName string `json:"device_name,omitempty"`
}

// Parse decodes a single control line. Unknown command names are rejected.
func Parse(line []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return Command{}, fmt.Errorf("command: decode line: %w", err)
	}
	switch cmd.Name {
	case Start, Stop, ListDevices:
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("command: unknown command %q", cmd.Name)
	}
}

// Source reads control lines from r and enqueues every decoded command.
type Source struct {
	r     io.Reader
	queue *Queue
	log   zerolog.Logger
}

// NewSource returns a Source feeding queue from r.
func NewSource(r io.Reader, queue *Queue, log zerolog.Logger) *Source {
	return &Source{r: r, queue: queue, log: log}
}

// Run reads until end of input, then closes the queue. Blank lines are
// skipped; undecodable lines are dropped with no feedback on the control
// channel.
func (s *Source) Run() {
	defer s.queue.Close()

	sc := bufio.NewScanner(s.r)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		cmd, err := Parse(line)
		if err != nil {
			s.log.Debug().Err(err).Msg("Dropping undecodable control line")
			continue
		}
		s.queue.Push(cmd)
	}
	if err := sc.Err(); err != nil {
		s.log.Error().Err(err).Msg("Control input read failed")
	}
}
