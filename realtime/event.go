package realtime

import (
	"fmt"
	"sort"
)

// CommandType identifies a host request.
type CommandType int

const (
	CommandPlay CommandType = iota + 1
	CommandPause
	CommandToggle
	CommandReset
	CommandSetInput
	CommandReplay
	CommandToggleInput
)

func (c CommandType) String() string {
	switch c {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandToggle:
		return "toggle"
	case CommandReset:
		return "reset"
	case CommandSetInput:
		return "set_input"
	case CommandReplay:
		return "replay"
	case CommandToggleInput:
		return "toggle_input"
	default:
		return fmt.Sprintf("CommandType(%d)", int(c))
	}
}

// Command is a host request applied at the next tick boundary. Name and Value are
// used by CommandSetInput, Name by CommandToggleInput, Stage by CommandReplay.
type Command struct {
	Type  CommandType
	Name  string
	Value any
	Stage string
}

// CommandWithMeta adds sequencing metadata for deterministic ordering
type CommandWithMeta struct {
	Command     Command
	SequenceNum uint64
	Priority    int
}

// sortCommands orders commands deterministically
func (rt *Runtime) sortCommands(cmds []CommandWithMeta) {
	// Stable sort preserves insertion order for equal priorities
	sort.SliceStable(cmds, func(i, j int) bool {
		// Primary: Higher priority first
		if cmds[i].Priority != cmds[j].Priority {
			return cmds[i].Priority > cmds[j].Priority
		}

		// Secondary: Earlier sequence number first (FIFO)
		return cmds[i].SequenceNum < cmds[j].SequenceNum
	})
}
