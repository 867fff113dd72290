package notify

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakePublisher struct {
	messages []published
	token    *fakeToken
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.messages = append(p.messages, published{topic: topic, retained: retained, payload: payload.([]byte)})
	if p.token != nil {
		return p.token
	}
	return &fakeToken{}
}

func newTestMQTT(prefix string, p *fakePublisher) *MQTT {
	return &MQTT{sender: p, logger: slog.Default(), topicPrefix: prefix}
}

func TestDatasetReloaded(t *testing.T) {
	p := &fakePublisher{}
	m := newTestMQTT("gridfees", p)

	if err := m.DatasetReloaded(NewDatasetEvent("data.json", 12, 1, errors.New("bad row"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.messages) != 1 {
		t.Fatalf("got %d messages, wanted 1", len(p.messages))
	}
	msg := p.messages[0]
	if msg.topic != "gridfees/dataset" || !msg.retained {
		t.Errorf("got topic %q retained %v", msg.topic, msg.retained)
	}

	var e DatasetEvent
	if err := json.Unmarshal(msg.payload, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Event != EventDatasetReloaded || e.Rows != 12 || e.Error != "bad row" {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestCalculated(t *testing.T) {
	p := &fakePublisher{}
	m := newTestMQTT("", p)

	if err := m.Calculated(NewCalculationEvent("Elia", "HV", true, 12.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.messages[0].topic; got != "calculation" {
		t.Errorf("got topic %q, wanted calculation", got)
	}
}

func TestPublishErrors(t *testing.T) {
	tests := []struct {
		name  string
		token *fakeToken
	}{
		{name: "timeout", token: &fakeToken{timeout: true}},
		{name: "broker error", token: &fakeToken{err: errors.New("not authorized")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMQTT("x/", &fakePublisher{token: tt.token})
			if err := m.Calculated(NewCalculationEvent("Elia", "HV", false, 1)); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestTopic(t *testing.T) {
	m := NewMQTT("localhost", 1883, "", "", "fees/")
	if got := m.Topic("dataset"); got != "fees/dataset" {
		t.Errorf("got %q, wanted fees/dataset", got)
	}
}
