package util

import (
	"errors"
	"testing"
)

func testModel() Model {
	return Model{
		Devices: []DeviceSpec{
			{Name: "living_light", Kind: "light", Location: "living_room"},
			{Name: "living_tv", Kind: "tv", Location: "living_room", State_topic: "custom/tv"},
			{Name: "bedroom_ac", Kind: "ac", Location: "bedroom"},
		},
		Macros: []MacroSpec{
			{Name: "movie_night", Steps: []string{"living_light_off", "living_tv_on"}},
		},
	}
}

func TestDeviceSpec_Topics(t *testing.T) {
	Config.Set("topic_base", "remote")

	tests := []struct {
		name         string
		spec         DeviceSpec
		stateTopic   string
		commandTopic string
	}{
		{"Default state topic", DeviceSpec{Name: "porch_light"}, "remote/porch_light/state", "remote/porch_light/set"},
		{"Custom state topic", DeviceSpec{Name: "tv", State_topic: "custom/tv"}, "custom/tv", "remote/tv/set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.StateTopic(); got != tt.stateTopic {
				t.Errorf("StateTopic() = %s, expected %s", got, tt.stateTopic)
			}
			if got := tt.spec.CommandTopic(); got != tt.commandTopic {
				t.Errorf("CommandTopic() = %s, expected %s", got, tt.commandTopic)
			}
		})
	}
}

func TestModel_FindDevice(t *testing.T) {
	model := testModel()

	d, ok := model.FindDevice("bedroom_ac")
	if !ok || d.Kind != "ac" {
		t.Errorf("FindDevice(bedroom_ac) = %+v, %v", d, ok)
	}

	if _, ok := model.FindDevice("garage"); ok {
		t.Error("FindDevice(garage) should not find anything")
	}
}

func TestModel_FindDeviceByCommandTopic(t *testing.T) {
	Config.Set("topic_base", "remote")
	model := testModel()

	tests := []struct {
		topic    string
		expected string
		found    bool
	}{
		{"remote/living_light/set", "living_light", true},
		{"remote/living_tv/set", "living_tv", true},
		{"custom/tv", "", false},
		{"remote/unknown/set", "", false},
		{"other/living_light/set", "", false},
		{"remote/living_light/state", "", false},
		{"remote/living_light", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			d, ok := model.FindDeviceByCommandTopic(tt.topic)
			if ok != tt.found || d.Name != tt.expected {
				t.Errorf("FindDeviceByCommandTopic(%s) = %s, %v; expected %s, %v", tt.topic, d.Name, ok, tt.expected, tt.found)
			}
		})
	}
}

func TestModel_SubscribeTopics(t *testing.T) {
	Config.Set("topic_base", "remote")
	model := testModel()

	topics := model.SubscribeTopics()

	expected := []string{"remote/living_light/set", "remote/living_tv/set", "remote/bedroom_ac/set"}
	if len(topics) != len(expected) {
		t.Fatalf("SubscribeTopics() = %v, expected %v", topics, expected)
	}
	for i := range expected {
		if topics[i] != expected[i] {
			t.Errorf("topic %d = %s, expected %s", i, topics[i], expected[i])
		}
	}
}

func TestModel_Validate(t *testing.T) {
	tests := []struct {
		name    string
		model   Model
		wantErr bool
	}{
		{"Valid", testModel(), false},
		{"Empty", Model{}, false},
		{"Unnamed device", Model{Devices: []DeviceSpec{{Kind: "light"}}}, true},
		{"Duplicate device", Model{Devices: []DeviceSpec{{Name: "a"}, {Name: "a"}}}, true},
		{"Unnamed macro", Model{Macros: []MacroSpec{{Steps: []string{"a_on"}}}}, true},
		{"Empty macro", Model{Macros: []MacroSpec{{Name: "nothing"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Validate() error should wrap ErrInvalidModel, got %v", err)
			}
		})
	}
}

func TestModel_BuildModel(t *testing.T) {
	Config.Set("model", map[string]interface{}{
		"devices": []map[string]interface{}{
			{"name": "hall_light", "kind": "light", "location": "hall"},
			{"name": "hall_tv", "kind": "tv", "location": "hall", "state_topic": "tv/state"},
		},
		"macros": []map[string]interface{}{
			{"name": "hall_evening", "steps": []string{"hall_light_on", "hall_tv_on"}},
		},
	})
	defer Config.Set("model", nil)

	var m Model
	if err := m.BuildModel(); err != nil {
		t.Fatalf("BuildModel() returned error: %v", err)
	}

	if len(m.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(m.Devices))
	}
	if m.Devices[1].State_topic != "tv/state" {
		t.Errorf("state_topic = %s, expected tv/state", m.Devices[1].State_topic)
	}
	if len(m.Macros) != 1 || len(m.Macros[0].Steps) != 2 {
		t.Errorf("macros = %+v", m.Macros)
	}
}

func TestModel_BuildModelInvalidKeepsOld(t *testing.T) {
	Config.Set("model", map[string]interface{}{
		"devices": []map[string]interface{}{
			{"name": "dup", "kind": "light"},
			{"name": "dup", "kind": "tv"},
		},
	})
	defer Config.Set("model", nil)

	m := testModel()
	if err := m.BuildModel(); err == nil {
		t.Fatal("BuildModel() should reject duplicate devices")
	}
	if len(m.Devices) != 3 {
		t.Errorf("model should be left untouched, has %d devices", len(m.Devices))
	}
}
