package endpoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/madmax/chardev-core/internal/chardev"
	"github.com/madmax/chardev-core/internal/hostos"
	"github.com/madmax/chardev-core/internal/infrastructure/mqtt"
)

// fakeClient records subscriptions and published messages in place of a
// real broker connection.
type fakeClient struct {
	mu        sync.Mutex
	handlers  map[string]mqtt.MessageHandler
	published []publication

	publishErr   error
	subscribeErr error
}

type publication struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeClient) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publication{topic, append([]byte(nil), payload...), qos, retained})
	return nil
}

func (f *fakeClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.handlers[topic] = handler
	return nil
}

// deliver simulates an inbound message on a subscribed topic.
func (f *fakeClient) deliver(t *testing.T, topic string, payload []byte) error {
	t.Helper()
	f.mu.Lock()
	handler, ok := f.handlers[topic]
	f.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription for topic %q", topic)
	}
	return handler(topic, payload)
}

// lastPublished returns the most recent publication on a topic.
func (f *fakeClient) lastPublished(t *testing.T, topic string) publication {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.published) - 1; i >= 0; i-- {
		if f.published[i].topic == topic {
			return f.published[i]
		}
	}
	t.Fatalf("nothing published on topic %q", topic)
	return publication{}
}

func newTestEndpoint(t *testing.T) (*Endpoint, *fakeClient, *chardev.Controller) {
	t.Helper()
	ctrl := chardev.NewController(hostos.NewMemoryHost(), "mydev", "chard")
	client := newFakeClient()
	ep := New(ctrl, client, 1)
	if err := ep.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return ep, client, ctrl
}

func TestStartSubscribesOperationTopics(t *testing.T) {
	_, client, _ := newTestEndpoint(t)

	want := []string{
		"chardev/mydev/open",
		"chardev/mydev/write",
		"chardev/mydev/read",
		"chardev/mydev/close",
	}
	for _, topic := range want {
		if _, ok := client.handlers[topic]; !ok {
			t.Errorf("missing subscription for %q", topic)
		}
	}
	if len(client.handlers) != len(want) {
		t.Errorf("subscriptions = %d, want %d", len(client.handlers), len(want))
	}
}

func TestStartFailsWhenSubscribeFails(t *testing.T) {
	ctrl := chardev.NewController(hostos.NewMemoryHost(), "mydev", "chard")
	client := newFakeClient()
	client.subscribeErr = errors.New("broker gone")

	ep := New(ctrl, client, 1)
	if err := ep.Start(); err == nil {
		t.Error("Start() error = nil, want subscription error")
	}
}

func TestHandleOpenPublishesRetainedCounter(t *testing.T) {
	_, client, _ := newTestEndpoint(t)

	if err := client.deliver(t, "chardev/mydev/open", nil); err != nil {
		t.Fatalf("open handler error = %v", err)
	}
	if err := client.deliver(t, "chardev/mydev/open", nil); err != nil {
		t.Fatalf("open handler error = %v", err)
	}

	pub := client.lastPublished(t, "chardev/mydev/opens")
	if !pub.retained {
		t.Error("opens publication not retained")
	}

	var body map[string]int64
	if err := json.Unmarshal(pub.payload, &body); err != nil {
		t.Fatalf("unmarshalling opens payload: %v", err)
	}
	if body["opens"] != 2 {
		t.Errorf("opens = %d, want 2", body["opens"])
	}
}

func TestWriteThenReadOverMQTT(t *testing.T) {
	_, client, _ := newTestEndpoint(t)

	if err := client.deliver(t, "chardev/mydev/write", []byte("hello")); err != nil {
		t.Fatalf("write handler error = %v", err)
	}

	ack := client.lastPublished(t, "chardev/mydev/ack")
	var ackBody map[string]int
	if err := json.Unmarshal(ack.payload, &ackBody); err != nil {
		t.Fatalf("unmarshalling ack: %v", err)
	}
	if ackBody["accepted"] != 5 {
		t.Errorf("accepted = %d, want 5 (input length, not stored length)", ackBody["accepted"])
	}

	if err := client.deliver(t, "chardev/mydev/read", nil); err != nil {
		t.Fatalf("read handler error = %v", err)
	}
	msg := client.lastPublished(t, "chardev/mydev/message")
	if string(msg.payload) != "hello (5 letters)" {
		t.Errorf("message payload = %q, want %q", msg.payload, "hello (5 letters)")
	}

	// Drained: the next read publishes an empty payload.
	if err := client.deliver(t, "chardev/mydev/read", nil); err != nil {
		t.Fatalf("second read handler error = %v", err)
	}
	if empty := client.lastPublished(t, "chardev/mydev/message"); len(empty.payload) != 0 {
		t.Errorf("second read payload = %q, want empty", empty.payload)
	}
}

func TestOversizedWritePublishesError(t *testing.T) {
	_, client, _ := newTestEndpoint(t)

	err := client.deliver(t, "chardev/mydev/write", bytes.Repeat([]byte("x"), 300))
	if !errors.Is(err, chardev.ErrMessageTooLong) {
		t.Fatalf("write handler error = %v, want ErrMessageTooLong", err)
	}

	pub := client.lastPublished(t, "chardev/mydev/error")
	var body map[string]string
	if err := json.Unmarshal(pub.payload, &body); err != nil {
		t.Fatalf("unmarshalling error payload: %v", err)
	}
	if body["error"] == "" {
		t.Error("error payload missing error field")
	}
}

func TestHandleClose(t *testing.T) {
	_, client, ctrl := newTestEndpoint(t)

	if err := client.deliver(t, "chardev/mydev/open", nil); err != nil {
		t.Fatalf("open handler error = %v", err)
	}
	if err := client.deliver(t, "chardev/mydev/close", nil); err != nil {
		t.Fatalf("close handler error = %v", err)
	}

	// Close never decrements the counter.
	if got := ctrl.GetStats().Opens; got != 1 {
		t.Errorf("Opens = %d after close, want 1", got)
	}
}
