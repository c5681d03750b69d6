// Package notify fans committed fleet state changes out to MQTT so
// dashboards and integrations can react without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/frotadev/fleet-manager/internal/state"
)

// ChangeTopic is the topic every committed mutation is announced on.
const ChangeTopic = "fleet/state/changed"

const publishTimeout = 5 * time.Second

// Publisher publishes state change events to an MQTT broker.
type Publisher struct {
	client mqtt.Client
	logger *log.Logger
}

// NewPublisher connects to the broker named by MQTT_BROKER (falling back to
// the local default) and returns a ready publisher.
func NewPublisher(logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "tcp://mosquitto:1883"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("fleet-manager-" + fmt.Sprint(os.Getpid())).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt connect timed out for broker %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect failed: %w", err)
	}

	logger.WithField("broker", broker).Info("Connected to MQTT broker")
	return &Publisher{client: client, logger: logger}, nil
}

// PublishChange announces a committed mutation. Delivery failures are logged
// and swallowed: the broker is a fan-out convenience, never part of the
// mutation cascade.
func (p *Publisher) PublishChange(ev state.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.WithError(err).Error("Failed to encode change event")
		return
	}

	token := p.client.Publish(ChangeTopic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.logger.WithField("token", ev.Token).Warn("MQTT publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		p.logger.WithError(err).WithField("token", ev.Token).Error("Failed to publish change event")
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
