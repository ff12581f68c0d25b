package util

import (
	"crypto/rand"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "REMOTE"

var Config = viper.New()

var (
	listenersMu      sync.Mutex
	config_listeners []func()
)

func RegisterNewConfigListener(new_listener func()) {
	listenersMu.Lock()
	defer listenersMu.Unlock()
	for _, listener := range config_listeners {
		if reflect.ValueOf(new_listener).Pointer() == reflect.ValueOf(listener).Pointer() {
			Logger.Warn().Msg("config listener already registered")
			return
		}
	}
	config_listeners = append(config_listeners, new_listener)
}

// OnNewConfig runs the listeners in registration order. Listeners may
// register further listeners; those run on the next change.
func OnNewConfig() {
	listenersMu.Lock()
	listeners := make([]func(), len(config_listeners))
	copy(listeners, config_listeners)
	listenersMu.Unlock()
	for _, listener := range listeners {
		listener()
	}
}

func GetRandString(n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	for i := range b {
		randBytes := make([]byte, 1)
		if _, err := rand.Read(randBytes); err != nil {
			b[i] = letterBytes[i%len(letterBytes)]
		} else {
			b[i] = letterBytes[int(randBytes[0])%len(letterBytes)]
		}
	}
	return string(b)
}

func setDefaults() {
	Config.SetDefault("Broker_URI", "tcp://mqtt")
	Config.SetDefault("Cleansess", false)
	Config.SetDefault("Id_base", "remote_control")
	Config.SetDefault("Username", "")
	Config.SetDefault("Password", "")
	Config.SetDefault("Log_level", "info")
	Config.SetDefault("Details_port", 8080)
	Config.SetDefault("Topic_base", "remote")
	Config.SetDefault("Command_topic", "remote/command")
	Config.SetDefault("Queue_size", 10)
}

// TopicBase is the prefix for everything this service publishes.
func TopicBase() string {
	return strings.TrimSuffix(Config.GetString("topic_base"), "/")
}

// OnlineTopic carries the availability ("online"/"offline") of the service.
func OnlineTopic() string {
	return TopicBase() + "/online"
}

func SetupConfig() {
	Config.SetEnvPrefix(ENV_PREFIX)
	Config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults()

	// config file
	Config.SetConfigName("remote_control")
	Config.AddConfigPath("/")
	Config.AddConfigPath("./")
	Config.AddConfigPath("./config")
	Config.AddConfigPath("/etc")
	Config.AddConfigPath("/remote_control")
	Config.AddConfigPath("/remote_control/config")

	err := Config.ReadInConfig()
	if err != nil {
		Logger.Error().Msgf("unable to read config file: %v", fmt.Errorf("%w", err))
	}

	// environment variables
	Config.AutomaticEnv()

	// watch for changes
	if err == nil {
		Config.WatchConfig()
		Config.OnConfigChange(func(e fsnotify.Event) {
			Logger.Info().Msgf("Config file changed: %v", e.Name)
			Logger.Debug().Msgf("Config Additional Info: %v", e.String())
			OnNewConfig()
		})
	}
}
