package telemetry

import (
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
	// Rate is the sustained number of accepted reports per second for one unit, 0 means unlimited.
	Rate  float64
	Burst int
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

type subscriber interface {
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is not set")
	}

	if cfg.Topic == "" {
		return nil, fmt.Errorf("mqtt topic is not set")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "towops-" + uuid.NewString()[:8]
	}

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}

	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	return opts, nil
}
