package util

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConstructHAAdvertisement(t *testing.T) {
	Config.Set("topic_base", "remote")
	Config.Set("id_base", "remote_control")

	advertisement := ConstructHAAdvertisement(DeviceSpec{Name: "living_light", Kind: "light"})

	if advertisement.Name != "living_light" {
		t.Errorf("Name = %s, expected living_light", advertisement.Name)
	}
	if advertisement.StateTopic != "remote/living_light/state" {
		t.Errorf("StateTopic = %s", advertisement.StateTopic)
	}
	if advertisement.CommandTopic != "remote/living_light/set" {
		t.Errorf("CommandTopic = %s", advertisement.CommandTopic)
	}
	if advertisement.PayloadOn != "ON" || advertisement.PayloadOff != "OFF" {
		t.Errorf("Payloads = %s/%s, expected ON/OFF", advertisement.PayloadOn, advertisement.PayloadOff)
	}
	if advertisement.Platform != "switch" {
		t.Errorf("Platform = %s, expected 'switch'", advertisement.Platform)
	}
	if advertisement.UniqueID != "remote_switch-living_light" {
		t.Errorf("UniqueID = %s", advertisement.UniqueID)
	}
	if advertisement.Icon != "mdi:lightbulb" {
		t.Errorf("Icon = %s", advertisement.Icon)
	}

	if len(advertisement.HAAvdvertisementAvailability) != 1 {
		t.Errorf("Expected 1 availability item, got %d", len(advertisement.HAAvdvertisementAvailability))
	} else {
		avail := advertisement.HAAvdvertisementAvailability[0]
		if avail.Topic != "remote/online" {
			t.Errorf("Availability topic = %s, expected 'remote/online'", avail.Topic)
		}
		if avail.PayloadAvailable != "online" || avail.PayloadNotAvailable != "offline" {
			t.Errorf("Availability payloads = %s/%s", avail.PayloadAvailable, avail.PayloadNotAvailable)
		}
	}

	if advertisement.Device.Name != "remote_control" {
		t.Errorf("Device name = %s, expected 'remote_control'", advertisement.Device.Name)
	}
}

func TestConstructHAAdvertisementCustomStateTopic(t *testing.T) {
	Config.Set("topic_base", "remote")

	advertisement := ConstructHAAdvertisement(DeviceSpec{Name: "den_tv", Kind: "tv", State_topic: "den/tv"})

	if advertisement.StateTopic != "den/tv" {
		t.Errorf("StateTopic = %s, expected den/tv", advertisement.StateTopic)
	}
	if advertisement.Icon != "mdi:television" {
		t.Errorf("Icon = %s", advertisement.Icon)
	}
}

func TestHAAdvertisement_ToJson(t *testing.T) {
	jsonStr := ConstructHAAdvertisement(DeviceSpec{Name: "bedroom_ac", Kind: "ac"}).ToJson()

	if jsonStr == "" {
		t.Fatal("ToJson() should not return empty string")
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		t.Fatalf("ToJson() produced invalid JSON: %v", err)
	}
	for _, key := range []string{"availability", "device", "uniq_id", "state_topic", "command_topic", "platform"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("JSON is missing %s: %s", key, jsonStr)
		}
	}
	if fields["icon"] != "mdi:air-conditioner" {
		t.Errorf("icon = %v", fields["icon"])
	}

	noIcon := ConstructHAAdvertisement(DeviceSpec{Name: "mystery"}).ToJson()
	if strings.Contains(noIcon, `"icon"`) {
		t.Errorf("icon should be omitted for unknown kinds: %s", noIcon)
	}
}

func TestAdvertiseHA(t *testing.T) {
	Config.Set("topic_base", "remote")
	devices := []DeviceSpec{
		{Name: "living_light", Kind: "light"},
		{Name: "bedroom_ac", Kind: "ac"},
		{Name: ""}, // skipped
	}

	mockClient := &MockMQTTClient{}
	AdvertiseHA(devices, mockClient)

	calls := mockClient.Published()
	if len(calls) != 2 {
		t.Fatalf("Expected 2 publish calls, got %d", len(calls))
	}

	published := make(map[string]string)
	for _, call := range calls {
		published[call.Topic] = call.Payload.(string) //nolint:errcheck // test helper
	}

	for _, name := range []string{"living_light", "bedroom_ac"} {
		topic := "homeassistant/switch/" + name + "/config"
		payload, exists := published[topic]
		if !exists {
			t.Errorf("Expected publish to %s", topic)
			continue
		}
		var advertisement HAAdvertisement
		if err := json.Unmarshal([]byte(payload), &advertisement); err != nil {
			t.Errorf("Invalid JSON payload for %s: %v", name, err)
		}
		if advertisement.Name != name {
			t.Errorf("advertisement name = %s, expected %s", advertisement.Name, name)
		}
	}
}

func TestAdvertiseHAPublishError(t *testing.T) {
	mockClient := &MockMQTTClient{publishErr: errors.New("not authorized")}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("AdvertiseHA should log publish errors, not panic: %v", r)
		}
	}()
	AdvertiseHA([]DeviceSpec{{Name: "porch_light"}}, mockClient)
}
