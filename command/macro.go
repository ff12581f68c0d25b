package command

// Macro runs an ordered group of commands as one unit.
type Macro struct {
	name     string
	commands []Command
}

func NewMacro(name string, commands ...Command) *Macro {
	m := &Macro{name: name}
	for _, c := range commands {
		m.Add(c)
	}
	return m
}

// Add appends c. Duplicates are allowed and nothing is copied.
func (m *Macro) Add(c Command) {
	if c == nil {
		return
	}
	m.commands = append(m.commands, c)
}

func (m *Macro) Execute() {
	for _, c := range m.commands {
		c.Execute()
	}
}

// Undo unwinds the members last to first so order dependent receivers end
// up where they started.
func (m *Macro) Undo() {
	for i := len(m.commands) - 1; i >= 0; i-- {
		m.commands[i].Undo()
	}
}

func (m *Macro) Len() int {
	return len(m.commands)
}

func (m *Macro) String() string {
	return m.name
}
