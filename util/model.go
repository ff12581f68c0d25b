package util

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidModel = errors.New("invalid model")

// Model is the device layout read from the "model" config section.
type Model struct {
	Devices []DeviceSpec `mapstructure:"devices"`
	Macros  []MacroSpec  `mapstructure:"macros"`
}

type DeviceSpec struct {
	Name        string `mapstructure:"name"`
	Kind        string `mapstructure:"kind"`
	Location    string `mapstructure:"location"`
	State_topic string `mapstructure:"state_topic"`
}

// MacroSpec is a named sequence of catalog command names.
type MacroSpec struct {
	Name  string   `mapstructure:"name"`
	Steps []string `mapstructure:"steps"`
}

func (d DeviceSpec) StateTopic() string {
	if d.State_topic != "" {
		return d.State_topic
	}
	return TopicBase() + "/" + d.Name + "/state"
}

func (d DeviceSpec) CommandTopic() string {
	return TopicBase() + "/" + d.Name + "/set"
}

func (m *Model) BuildModel() error {
	var fresh Model
	err := Config.UnmarshalKey("model", &fresh)
	if err != nil {
		Logger.Error().Msgf("error unmarshaling model: %v", err)
		return fmt.Errorf("unmarshal model: %w", err)
	}
	if err := fresh.Validate(); err != nil {
		return err
	}
	*m = fresh
	return nil
}

// Validate checks names are present and unique. Device kinds are checked
// when the devices are built.
func (m Model) Validate() error {
	seen := make(map[string]bool)
	for _, d := range m.Devices {
		if d.Name == "" {
			return fmt.Errorf("%w: device without a name", ErrInvalidModel)
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: duplicate device %s", ErrInvalidModel, d.Name)
		}
		seen[d.Name] = true
	}
	for _, mc := range m.Macros {
		if mc.Name == "" {
			return fmt.Errorf("%w: macro without a name", ErrInvalidModel)
		}
		if len(mc.Steps) == 0 {
			return fmt.Errorf("%w: macro %s has no steps", ErrInvalidModel, mc.Name)
		}
	}
	return nil
}

func (m Model) FindDevice(name string) (DeviceSpec, bool) {
	for _, entry := range m.Devices {
		if entry.Name == name {
			return entry, true
		}
	}
	return DeviceSpec{}, false
}

// FindDeviceByCommandTopic maps a "<base>/<device>/set" topic back to its device.
func (m Model) FindDeviceByCommandTopic(topic string) (DeviceSpec, bool) {
	name := strings.TrimSuffix(strings.TrimPrefix(topic, TopicBase()+"/"), "/set")
	d, ok := m.FindDevice(name)
	if !ok || d.CommandTopic() != topic {
		return DeviceSpec{}, false
	}
	return d, true
}

func (m Model) SubscribeTopics() []string {
	var topics []string
	for _, d := range m.Devices {
		topics = append(topics, d.CommandTopic())
	}
	return topics
}
