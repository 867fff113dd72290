package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// publisher is the part of mqtt.Client used for sending.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type MQTT struct {
	client      mqtt.Client
	sender      publisher
	logger      *slog.Logger
	topicPrefix string
}

func NewMQTT(host string, port int, username, password, topicPrefix string) *MQTT {
	logger := slog.Default().With("module", "notify")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", host, port))
	opts.SetClientID(fmt.Sprintf("gridfees-%d", time.Now().Unix()))
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected", slog.String("host", host), slog.Int("port", port))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	installMqttLoggers(slog.Default().With("module", "mqtt"))

	client := mqtt.NewClient(opts)
	return &MQTT{
		client:      client,
		sender:      client,
		logger:      logger,
		topicPrefix: strings.TrimSuffix(topicPrefix, "/"),
	}
}

func (m *MQTT) Connect() error {
	m.logger.Debug("connecting MQTT client")
	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect mqtt: %w", token.Error())
	}
	return nil
}

func (m *MQTT) Disconnect() {
	if m.client == nil {
		return
	}
	m.logger.Info("disconnecting MQTT client")
	m.client.Disconnect(250)
}

func (m *MQTT) Topic(name string) string {
	if m.topicPrefix == "" {
		return name
	}
	return m.topicPrefix + "/" + name
}

// DatasetReloaded is retained so late subscribers see the current dataset state.
func (m *MQTT) DatasetReloaded(e DatasetEvent) error {
	return m.publish(m.Topic("dataset"), true, e)
}

func (m *MQTT) Calculated(e CalculationEvent) error {
	return m.publish(m.Topic("calculation"), false, e)
}

func (m *MQTT) publish(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	token := m.sender.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timeout when publishing to %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("error when publishing to %s: %w", topic, token.Error())
	}
	m.logger.Debug("published MQTT message", slog.String("topic", topic), slog.Int("bytes", len(payload)))
	return nil
}
