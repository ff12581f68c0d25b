package main

import (
	"fmt"

	"github.com/elijahnyp/remote_control/command"
	"github.com/elijahnyp/remote_control/state"
	. "github.com/elijahnyp/remote_control/util"
	orderedmap "github.com/wk8/go-ordered-map"
)

// Catalog holds the devices of one model and every command that can be
// requested by name, in declaration order: per device "<name>_on" and
// "<name>_off", per location "<location>_on" and "<location>_off", then the
// configured macros.
type Catalog struct {
	devices  []*state.Switch
	rooms    []state.Room
	commands *orderedmap.OrderedMap
}

func BuildCatalog(m Model, report state.Reporter) (*Catalog, error) {
	c := &Catalog{commands: orderedmap.New()}

	var devices []state.Device
	for _, spec := range m.Devices {
		sw, err := state.NewSwitch(spec.Kind, spec.Name, spec.Location, report)
		if err != nil {
			return nil, err
		}
		c.devices = append(c.devices, sw)
		devices = append(devices, sw)
		if err := c.add(command.TurnOn(sw)); err != nil {
			return nil, err
		}
		if err := c.add(command.TurnOff(sw)); err != nil {
			return nil, err
		}
	}

	c.rooms = state.GroupByLocation(devices)
	for _, room := range c.rooms {
		on := command.NewMacro(room.Name + "_on")
		off := command.NewMacro(room.Name + "_off")
		for _, d := range room.Devices {
			sw := d.(*state.Switch)
			on.Add(command.TurnOn(sw))
			off.Add(command.TurnOff(sw))
		}
		if err := c.add(on); err != nil {
			return nil, err
		}
		if err := c.add(off); err != nil {
			return nil, err
		}
	}

	for _, spec := range m.Macros {
		macro := command.NewMacro(spec.Name)
		for _, step := range spec.Steps {
			cmd, ok := c.Lookup(step)
			if !ok {
				return nil, fmt.Errorf("macro %s: %w: %s", spec.Name, ErrUnknownCommand, step)
			}
			macro.Add(cmd)
		}
		if err := c.add(macro); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(cmd command.Command) error {
	name := command.Name(cmd)
	if _, exists := c.commands.Get(name); exists {
		return fmt.Errorf("%w: command name %s defined twice", ErrInvalidModel, name)
	}
	c.commands.Set(name, cmd)
	return nil
}

func (c *Catalog) Lookup(name string) (command.Command, bool) {
	v, ok := c.commands.Get(name)
	if !ok {
		return nil, false
	}
	return v.(command.Command), true
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, c.commands.Len())
	for pair := c.commands.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key.(string))
	}
	return names
}

func (c *Catalog) Devices() []*state.Switch {
	return c.devices
}

// Rooms lists the locations of the catalog's devices in order of first appearance.
func (c *Catalog) Rooms() []state.Room {
	return c.rooms
}
