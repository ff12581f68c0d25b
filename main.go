package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	. "github.com/elijahnyp/remote_control/util"
)

// current holds the last model that built into a working catalog. Config
// reloads replace it from the watcher goroutine while MQTT and HA read it.
var current atomic.Pointer[Model]

var controller *Controller

func activeModel() Model {
	if m := current.Load(); m != nil {
		return *m
	}
	return Model{}
}

// loadModel rebuilds the catalog from the current config and hands it to the controller.
func loadModel() {
	var next Model
	if err := next.BuildModel(); err != nil {
		Logger.Error().Msgf("Error building model, keeping the previous one: %v", err)
		return
	}
	catalog, err := BuildCatalog(next, newReporter(next, wsHub.BroadcastUpdate))
	if err != nil {
		Logger.Error().Msgf("Error building command catalog, keeping the previous one: %v", err)
		return
	}
	current.Store(&next)
	if client := GetClient(); client != nil && client.IsConnected() {
		AdvertiseHA(next.Devices, client)
	}
	if controller == nil {
		controller = NewController(catalog, Config.GetInt("queue_size"))
		controller.OnBroadcast(wsHub.BroadcastUpdate)
		return
	}
	controller.Reload(catalog)
}

func main() {
	LogInit("trace")
	SetupConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsHub = NewHub()
	go wsHub.Run(ctx)

	RegisterNewConfigListener(func() { LogInit(Config.GetString("log_level")) })
	RegisterNewConfigListener(loadModel)
	RegisterNewConfigListener(func() { subscribeRemoteTopics(activeModel()) })
	RegisterMQTTConnectHook("haadvertise", func(client MQTT.Client) {
		AdvertiseHA(activeModel().Devices, client)
	})
	RegisterNewConfigListener(MqttInit)
	OnNewConfig()
	if controller == nil {
		Logger.Fatal().Msg("no usable model, unable to start")
	}
	go controller.Run(ctx)

	monitor := NewMonitorServer()
	monitor.AddHandler("/ws", ServeWebSocket)
	monitor.AddHandler("/api/status", APIStatus)
	monitor.AddHandler("/api/command", APICommand)
	if err := monitor.Start(); err != nil {
		Logger.Error().Msgf("Error starting monitor server: %v", err)
	}
	RegisterNewConfigListener(func() { monitor.Restart() })

	Logger.Info().Msg("ready")
	go OnlinePinger(ctx)
	go HAAdvertiser(ctx)

	<-ctx.Done()
	Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	monitor.Stop(shutdownCtx)
	if client := GetClient(); client != nil && client.IsConnected() {
		client.Publish(OnlineTopic(), 0, false, "offline").WaitTimeout(time.Second)
		client.Disconnect(1000)
	}
}

// OnlinePinger keeps the availability topic fresh.
func OnlinePinger(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		Publish(OnlineTopic(), false, "online")
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// HAAdvertiser - advertises Home Assistant discovery messages every 5 minutes
func HAAdvertiser(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if client := GetClient(); client != nil && client.IsConnected() {
				Logger.Debug().Msg("Advertising Home Assistant discovery messages")
				AdvertiseHA(activeModel().Devices, client)
			}
		}
	}
}
