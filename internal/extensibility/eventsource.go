package extensibility

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comalice/narrativex/realtime"
)

// CommandSink accepts host commands. *realtime.Runtime implements it.
type CommandSink interface {
	Send(cmd realtime.Command) error
}

// ParseCommand parses one line of the host command language:
//
//	play | pause | toggle | reset
//	set <input> <value>     value is a YAML scalar: true, 3, "text"
//	flip <input>
//	replay [stage]
func ParseCommand(line string) (realtime.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return realtime.Command{}, fmt.Errorf("empty command")
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]
	switch verb {
	case "play":
		return realtime.Command{Type: realtime.CommandPlay}, nil
	case "pause":
		return realtime.Command{Type: realtime.CommandPause}, nil
	case "toggle", "p":
		return realtime.Command{Type: realtime.CommandToggle}, nil
	case "reset", "r":
		return realtime.Command{Type: realtime.CommandReset}, nil
	case "flip":
		if len(args) != 1 {
			return realtime.Command{}, fmt.Errorf("usage: flip <input>")
		}
		return realtime.Command{Type: realtime.CommandToggleInput, Name: args[0]}, nil
	case "replay":
		cmd := realtime.Command{Type: realtime.CommandReplay}
		if len(args) > 0 {
			cmd.Stage = args[0]
		}
		return cmd, nil
	case "set":
		if len(args) < 2 {
			return realtime.Command{}, fmt.Errorf("usage: set <input> <value>")
		}
		var value any
		raw := strings.Join(args[1:], " ")
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return realtime.Command{}, fmt.Errorf("set %s: %w", args[0], err)
		}
		return realtime.Command{Type: realtime.CommandSetInput, Name: args[0], Value: value}, nil
	default:
		return realtime.Command{}, fmt.Errorf("unknown command %q", verb)
	}
}

// LineCommandSource reads host commands, one per line, from a reader such as stdin.
// Blank lines and lines starting with '#' are skipped.
type LineCommandSource struct {
	r      io.Reader
	logger *log.Logger
	replay string
}

// NewLineCommandSource creates a source over r. Unparseable lines are reported to
// logger, or the standard logger when nil.
func NewLineCommandSource(r io.Reader, logger *log.Logger) *LineCommandSource {
	if logger == nil {
		logger = log.Default()
	}
	return &LineCommandSource{r: r, logger: logger}
}

// WithReplayStage sets the stage a bare "replay" restarts from.
func (s *LineCommandSource) WithReplayStage(stage string) *LineCommandSource {
	s.replay = stage
	return s
}

// Run forwards commands to sink until the reader is exhausted or ctx is done.
// A full sink drops the command with a log line.
func (s *LineCommandSource) Run(ctx context.Context, sink CommandSink) error {
	sc := bufio.NewScanner(s.r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			s.logger.Printf("commands: %v", err)
			continue
		}
		if cmd.Type == realtime.CommandReplay && cmd.Stage == "" {
			cmd.Stage = s.replay
		}
		if err := sink.Send(cmd); err != nil {
			s.logger.Printf("commands: %s dropped: %v", cmd.Type, err)
		}
	}
	return sc.Err()
}

// TimerCommandSource sends the same command every interval, e.g. flipping a
// protection input on a kiosk display.
type TimerCommandSource struct {
	cmd      realtime.Command
	interval time.Duration
}

// NewTimerCommandSource creates a TimerCommandSource that sends cmd every d.
func NewTimerCommandSource(cmd realtime.Command, d time.Duration) *TimerCommandSource {
	return &TimerCommandSource{cmd: cmd, interval: d}
}

// Run sends until ctx is done. Send errors are ignored; the next tick retries.
func (t *TimerCommandSource) Run(ctx context.Context, sink CommandSink) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = sink.Send(t.cmd)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
