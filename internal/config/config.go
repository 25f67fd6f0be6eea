package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/towops/towops/internal/dispatch"
	"github.com/towops/towops/internal/telemetry"
)

const EnvPrefix = "TOWOPS_"

// sections whose keys are nested one level deep, TOWOPS_MQTT_BROKER -> mqtt.broker
var sections = []string{"mqtt_", "rotation_", "tracking_", "log_"}

type AppConfig struct {
	k *koanf.Koanf
}

func NewAppConfig() *AppConfig {
	c := &AppConfig{k: koanf.New(".")}

	setDefaults(c.k)

	return c
}

func (c *AppConfig) Load(filename ...string) bool {
	loaded := false

	for _, name := range filename {
		if err := c.k.Load(file.Provider(name), yaml.Parser()); err != nil {
			slog.Info(fmt.Sprintf("error loading config: %s", err.Error()))
		} else {
			loaded = true
		}
	}

	return loaded
}

func (c *AppConfig) LoadEnv(prefix string) error {
	return c.k.Load(env.Provider(prefix, ".", func(s string) string {
		return envKey(prefix, s)
	}), nil)
}

func envKey(prefix, s string) string {
	s1 := strings.ToLower(strings.TrimPrefix(s, prefix))

	for _, pr := range sections {
		if strings.HasPrefix(s1, pr) {
			s1 = strings.Replace(s1, "_", ".", 1)
			break
		}
	}

	slog.Debug("ENV param: " + s1)

	return s1
}

func (c *AppConfig) Bool(key string) bool {
	return c.k.Bool(key)
}

func (c *AppConfig) String(key string) string {
	return c.k.String(key)
}

func (c *AppConfig) Float64(key string) float64 {
	return c.k.Float64(key)
}

func (c *AppConfig) Int(key string) int {
	return c.k.Int(key)
}

func (c *AppConfig) Set(key string, v any) error {
	return c.k.Set(key, v)
}

func (c *AppConfig) APIAddr() string {
	return c.k.String("api_addr")
}

func (c *AppConfig) LocalAddr() string {
	return c.k.String("local_addr")
}

func (c *AppConfig) DB() string {
	return c.k.String("db")
}

func (c *AppConfig) SeedFile() string {
	return c.k.String("seed_file")
}

func (c *AppConfig) LogJSON() bool {
	return c.k.Bool("log.json")
}

func (c *AppConfig) MQTTEnabled() bool {
	return c.k.Bool("mqtt.enabled")
}

func (c *AppConfig) DispatchOptions() dispatch.Options {
	opts := dispatch.DefaultOptions()

	if z := c.k.String("default_zone"); z != "" {
		opts.DefaultZone = z
	}

	if v := c.k.Float64("default_speed_kmh"); v > 0 {
		opts.DefaultSpeedKmh = v
	}

	opts.StrictZones = c.k.Bool("rotation.strict_zones")
	opts.StrictTransitions = c.k.Bool("tracking.strict_transitions")

	return opts
}

func (c *AppConfig) Telemetry() telemetry.Config {
	return telemetry.Config{
		Broker:   c.k.String("mqtt.broker"),
		ClientID: c.k.String("mqtt.client_id"),
		Username: c.k.String("mqtt.username"),
		Password: c.k.String("mqtt.password"),
		Topic:    c.k.String("mqtt.topic"),
		QoS:      byte(c.k.Int("mqtt.qos")),
		Rate:     c.k.Float64("mqtt.rate"),
		Burst:    c.k.Int("mqtt.burst"),
	}
}

func setDefaults(k *koanf.Koanf) {
	k.Set("api_addr", ":8000")
	k.Set("local_addr", "localhost:8001")
	k.Set("db", ":memory:")
	k.Set("seed_file", "")

	k.Set("default_zone", dispatch.DefaultZone)
	k.Set("default_speed_kmh", dispatch.DefaultSpeedKmh)

	k.Set("rotation.strict_zones", true)
	k.Set("tracking.strict_transitions", false)

	k.Set("log.json", false)

	k.Set("mqtt.enabled", false)
	k.Set("mqtt.broker", "tcp://localhost:1883")
	k.Set("mqtt.topic", "towops/units/+/position")
	k.Set("mqtt.qos", 0)
	k.Set("mqtt.rate", 5)
	k.Set("mqtt.burst", 10)
}
