package util

import (
	"fmt"
	"sync"

	MQTT "github.com/eclipse/paho.mqtt.golang"
)

var (
	clientMu   sync.RWMutex
	mqttClient MQTT.Client
)

var (
	registryMu      sync.Mutex
	subscriptions   map[string]MQTT.MessageHandler
	connectHandlers map[string]func(MQTT.Client)
)

var connectHandler MQTT.OnConnectHandler = func(client MQTT.Client) {
	Logger.Info().Msg("Connected")
	subscribe(client)
	client.Publish(OnlineTopic(), 0, false, "online").Wait()
	registryMu.Lock()
	handlers := make([]func(MQTT.Client), 0, len(connectHandlers))
	for _, handler := range connectHandlers {
		handlers = append(handlers, handler)
	}
	registryMu.Unlock()
	for _, handler := range handlers {
		handler(client)
	}
}

// RegisterMQTTConnectHook runs handler on every (re)connect. A nil handler removes it.
func RegisterMQTTConnectHook(name string, handler func(MQTT.Client)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if connectHandlers == nil {
		connectHandlers = make(map[string]func(client MQTT.Client))
	}
	if handler == nil {
		delete(connectHandlers, name)
	} else {
		connectHandlers[name] = handler
	}
}

func subscribe(client MQTT.Client) {
	registryMu.Lock()
	subs := make(map[string]MQTT.MessageHandler, len(subscriptions))
	for topic, handler := range subscriptions {
		subs[topic] = handler
	}
	registryMu.Unlock()
	for topic, handler := range subs {
		if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
			Logger.Error().Msgf("Error Subscribing to %s: %v", topic, fmt.Errorf("%w", token.Error()))
		}
	}
}

// RegisterMQTTSubscription records a topic handler. It takes effect on the
// next connect, or immediately when the client is already connected. A nil
// handler removes the topic.
func RegisterMQTTSubscription(topic string, handler MQTT.MessageHandler) {
	registryMu.Lock()
	if subscriptions == nil {
		subscriptions = make(map[string]MQTT.MessageHandler)
	}
	if handler == nil {
		delete(subscriptions, topic)
	} else {
		subscriptions[topic] = handler
	}
	registryMu.Unlock()

	client := GetClient()
	if client == nil || !client.IsConnected() {
		return
	}
	var token MQTT.Token
	if handler == nil {
		token = client.Unsubscribe(topic)
	} else {
		token = client.Subscribe(topic, 0, handler)
	}
	if token.Wait() && token.Error() != nil {
		Logger.Error().Msgf("Error updating subscription %s: %v", topic, token.Error())
	}
}

// GetClient returns the current MQTT client, nil before MqttInit.
func GetClient() MQTT.Client {
	clientMu.RLock()
	defer clientMu.RUnlock()
	return mqttClient
}

// SetClient swaps the MQTT client and returns the previous one.
func SetClient(client MQTT.Client) MQTT.Client {
	clientMu.Lock()
	defer clientMu.Unlock()
	old := mqttClient
	mqttClient = client
	return old
}

// Publish sends payload on topic, logging instead of failing when there is no client.
func Publish(topic string, retained bool, payload interface{}) {
	client := GetClient()
	if client == nil {
		Logger.Debug().Msgf("no mqtt client, dropping publish to %s", topic)
		return
	}
	if token := client.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
		Logger.Error().Msgf("Error publishing to %s: %v", topic, token.Error())
	}
}

func receiver(client MQTT.Client, message MQTT.Message) {
	Logger.Warn().Msgf("Received message on %v but no handler", message.Topic())
}

var connectLostHandler MQTT.ConnectionLostHandler = func(client MQTT.Client, err error) {
	Logger.Info().Msgf("Connect lost: %v", err)
}

func clientOptions() *MQTT.ClientOptions {
	opts := MQTT.NewClientOptions()
	opts.AddBroker(Config.GetString("broker_uri"))
	opts.SetClientID(Config.GetString("id_base") + "_" + GetRandString(6))
	opts.SetUsername(Config.GetString("username"))
	opts.SetPassword(Config.GetString("password"))
	opts.SetCleanSession(Config.GetBool("cleansess"))
	opts.SetAutoReconnect(true)
	opts.SetWill(OnlineTopic(), "offline", 0, false)
	opts.OnConnectionLost = connectLostHandler
	opts.OnConnect = connectHandler
	opts.SetDefaultPublishHandler(receiver)
	return opts
}

func MqttInit() {
	opts := clientOptions()

	if old := SetClient(nil); old != nil {
		Logger.Debug().Msg("Client exists - destroying")
		if old.IsConnected() {
			old.Disconnect(1000)
		}
	}

	client := MQTT.NewClient(opts)
	SetClient(client)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}
}
