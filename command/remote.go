package command

import (
	. "github.com/elijahnyp/remote_control/util"
)

// Op names the RemoteControl transition an Event reports.
type Op string

const (
	SET  Op = "set"
	UNDO Op = "undo"
	REDO Op = "redo"
)

// Event is handed to the OnChange observer after every transition.
type Event struct {
	Op      Op     `json:"op"`
	Command string `json:"command"`
	Depth   int    `json:"depth"` // history depth after the transition
}

// RemoteControl is the invoker. It keeps a LIFO history for undo and a
// single last-set slot for redo.
//
// Redo re-runs whatever was last passed to SetCommand, not the entry most
// recently undone, so repeated undo/redo does not walk back through the
// history the way an editor redo stack would. Each redo pushes a new
// history entry that a later undo takes back.
//
// RemoteControl is not safe for concurrent use; one goroutine owns it.
type RemoteControl struct {
	history  []Command
	last     Command
	observer func(Event)
}

func NewRemoteControl() *RemoteControl {
	return &RemoteControl{history: make([]Command, 0)}
}

// OnChange registers fn to be called after each set, undo and redo. Passing
// nil removes the observer.
func (r *RemoteControl) OnChange(fn func(Event)) {
	r.observer = fn
}

// SetCommand executes c, pushes it onto the history and remembers it for redo.
func (r *RemoteControl) SetCommand(c Command) {
	if c == nil {
		Logger.Debug().Msg("set with nil command ignored")
		return
	}
	c.Execute()
	r.history = append(r.history, c)
	r.last = c
	Logger.Debug().Msgf("set %s (history %d)", Name(c), len(r.history))
	r.notify(SET, c)
}

// UndoCommand pops the newest history entry and undoes it. Empty history is a no-op.
func (r *RemoteControl) UndoCommand() {
	if len(r.history) == 0 {
		Logger.Debug().Msg("nothing to undo")
		return
	}
	c := r.history[len(r.history)-1]
	r.history[len(r.history)-1] = nil
	r.history = r.history[:len(r.history)-1]
	c.Undo()
	Logger.Debug().Msgf("undo %s (history %d)", Name(c), len(r.history))
	r.notify(UNDO, c)
}

// RedoCommand executes the last-set command again and pushes it back onto
// the history. Without a prior SetCommand it is a no-op.
func (r *RemoteControl) RedoCommand() {
	if r.last == nil {
		Logger.Debug().Msg("nothing to redo")
		return
	}
	r.last.Execute()
	r.history = append(r.history, r.last)
	Logger.Debug().Msgf("redo %s (history %d)", Name(r.last), len(r.history))
	r.notify(REDO, r.last)
}

func (r *RemoteControl) CanUndo() bool {
	return len(r.history) > 0
}

func (r *RemoteControl) CanRedo() bool {
	return r.last != nil
}

// Last returns the last-set command, nil if none.
func (r *RemoteControl) Last() Command {
	return r.last
}

// History returns a copy of the history, oldest first.
func (r *RemoteControl) History() []Command {
	out := make([]Command, len(r.history))
	copy(out, r.history)
	return out
}

func (r *RemoteControl) notify(op Op, c Command) {
	if r.observer != nil {
		r.observer(Event{Op: op, Command: Name(c), Depth: len(r.history)})
	}
}
