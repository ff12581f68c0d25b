package util

import (
	"encoding/json"
	"fmt"

	MQTT "github.com/eclipse/paho.mqtt.golang"
)

type HAAvdvertisementAvailability struct {
	Topic               string `json:"topic"`                 // : "remote/online"
	PayloadAvailable    string `json:"payload_available"`     // : "online"
	PayloadNotAvailable string `json:"payload_not_available"` // : "offline"
}

type HADeviceSpec struct {
	Name        string   `json:"name"` // : "remote_control"
	Identifiers []string `json:"ids"`  // : ["remote_control"]
}

type HAAdvertisement struct { //nolint:govet // struct layout optimized for JSON field order
	HAAvdvertisementAvailability []HAAvdvertisementAvailability `json:"availability"`
	Device                       HADeviceSpec                   `json:"device"`
	UniqueID                     string                         `json:"uniq_id"`       // "remote_switch-porch_light"
	Name                         string                         `json:"name"`          // : "porch_light"
	StateTopic                   string                         `json:"state_topic"`   // : "remote/porch_light/state"
	CommandTopic                 string                         `json:"command_topic"` // : "remote/porch_light/set"
	PayloadOn                    string                         `json:"payload_on"`    // : "ON"
	PayloadOff                   string                         `json:"payload_off"`
	Icon                         string                         `json:"icon,omitempty"`
	Platform                     string                         `json:"platform"` // "switch"
	Qos                          int                            `json:"qos"`
	Retain                       bool                           `json:"retain"`
}

func (ha HAAdvertisement) ToJson() string {
	data, err := json.Marshal(ha)
	if err != nil {
		Logger.Error().Msgf("Error marshalling HAAdvertisement: %v", err)
		return ""
	}
	return string(data)
}

func kindIcon(kind string) string {
	switch kind {
	case "light":
		return "mdi:lightbulb"
	case "ac":
		return "mdi:air-conditioner"
	case "tv":
		return "mdi:television"
	}
	return ""
}

func ConstructHAAdvertisement(d DeviceSpec) HAAdvertisement {
	return HAAdvertisement{
		Name:         d.Name,
		StateTopic:   d.StateTopic(),
		CommandTopic: d.CommandTopic(),
		PayloadOn:    "ON",
		PayloadOff:   "OFF",
		HAAvdvertisementAvailability: []HAAvdvertisementAvailability{
			{
				Topic:               OnlineTopic(),
				PayloadAvailable:    "online",
				PayloadNotAvailable: "offline",
			},
		},
		Qos:      0,
		UniqueID: "remote_switch-" + d.Name,
		Icon:     kindIcon(d.Kind),
		Platform: "switch",
		Device: HADeviceSpec{
			Name:        Config.GetString("id_base"),
			Identifiers: []string{Config.GetString("id_base")},
		},
	}
}

func DiscoveryTopic(d DeviceSpec) string {
	return "homeassistant/switch/" + d.Name + "/config"
}

func AdvertiseHA(devices []DeviceSpec, client MQTT.Client) {
	for _, d := range devices {
		if d.Name == "" {
			continue
		}
		ha := ConstructHAAdvertisement(d)
		if token := client.Publish(DiscoveryTopic(d), 0, false, ha.ToJson()); token.Wait() && token.Error() != nil {
			Logger.Error().Msgf("Error Publishing: %v", fmt.Errorf("%w", token.Error()))
		}
	}
}
