package command

// Command is a single action the remote can run and take back.
//
// Undo called right after Execute must leave the receiver the way it was
// before Execute, assuming nothing else touched it in between.
type Command interface {
	Execute()
	Undo()
}

// Switchable is the receiver side of a command: anything with a pair of
// inverse operations.
type Switchable interface {
	Name() string
	On()
	Off()
}

// Reversible binds one forward operation to its inverse. The receiver
// behind the two funcs is borrowed, not owned; it has to outlive every
// RemoteControl history entry pointing at the command.
type Reversible struct {
	name    string
	forward func()
	inverse func()
}

func NewReversible(name string, forward, inverse func()) *Reversible {
	return &Reversible{name: name, forward: forward, inverse: inverse}
}

// TurnOn returns "<device>_on": Execute switches s on, Undo switches it off.
func TurnOn(s Switchable) *Reversible {
	return NewReversible(s.Name()+"_on", s.On, s.Off)
}

// TurnOff returns "<device>_off": Execute switches s off, Undo switches it on.
func TurnOff(s Switchable) *Reversible {
	return NewReversible(s.Name()+"_off", s.Off, s.On)
}

func (r *Reversible) Execute() {
	r.forward()
}

func (r *Reversible) Undo() {
	r.inverse()
}

func (r *Reversible) String() string {
	return r.name
}

// Name returns a printable name for c, "" for nil.
func Name(c Command) string {
	if c == nil {
		return ""
	}
	if s, ok := c.(interface{ String() string }); ok {
		return s.String()
	}
	return "unnamed"
}
