package main

import (
	"strings"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	. "github.com/elijahnyp/remote_control/util"
)

var device_topics []string

func commandReceiver(client MQTT.Client, message MQTT.Message) {
	Logger.Debug().Msgf("Message Received on topic %s", message.Topic())
	req, err := ParseRequest(message.Payload())
	if err != nil {
		Logger.Warn().Msgf("bad request on %s: %v", message.Topic(), err)
		return
	}
	controller.Enqueue(req)
}

// deviceSetReceiver turns an ON/OFF on "<topic_base>/<device>/set" into the
// matching <device>_on / <device>_off request.
func deviceSetReceiver(client MQTT.Client, message MQTT.Message) {
	req, ok := deviceSetRequest(activeModel(), message.Topic(), message.Payload())
	if !ok {
		Logger.Warn().Msgf("ignoring %q on %s", string(message.Payload()), message.Topic())
		return
	}
	controller.Enqueue(req)
}

func deviceSetRequest(m Model, topic string, payload []byte) (Request, bool) {
	device, ok := m.FindDeviceByCommandTopic(topic)
	if !ok {
		return Request{}, false
	}
	switch strings.ToUpper(strings.TrimSpace(string(payload))) {
	case "ON", "1", "TRUE":
		return Request{Action: RUN, Command: device.Name + "_on"}, true
	case "OFF", "0", "FALSE":
		return Request{Action: RUN, Command: device.Name + "_off"}, true
	}
	return Request{}, false
}

// subscribeRemoteTopics registers the command topic and one set topic per
// device, dropping set topics of devices that went away.
func subscribeRemoteTopics(m Model) {
	RegisterMQTTSubscription(Config.GetString("command_topic"), commandReceiver)

	current := m.SubscribeTopics()
	keep := make(map[string]bool, len(current))
	for _, topic := range current {
		keep[topic] = true
		RegisterMQTTSubscription(topic, deviceSetReceiver)
	}
	for _, topic := range device_topics {
		if !keep[topic] {
			RegisterMQTTSubscription(topic, nil)
		}
	}
	device_topics = current
}
