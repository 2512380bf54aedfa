//go:build integration

package mqtt

import (
	"testing"
	"time"
)

// Requires a broker on localhost:1883 (docker compose up mosquitto).
func TestIntegration_MatrixStateRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = "localhost"

	c, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close()

	topic := Topics{}.MatrixState("integration")
	received := make(chan []byte, 1)

	if err := c.Subscribe(topic, 1, func(_ string, payload []byte) error {
		received <- payload
		return nil
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := c.PublishJSON(topic, map[string]map[string]int{"routes": {"1": 3}}, false); err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != `{"routes":{"1":3}}` {
			t.Errorf("payload = %s", payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
