package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benmeehan/pcremote/internal/mocks"
	"github.com/benmeehan/pcremote/internal/models"
	"github.com/benmeehan/pcremote/internal/relay"
	"github.com/benmeehan/pcremote/internal/services"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	mu       sync.Mutex
	received []models.InboundMessage
	release  chan struct{}
}

func (h *stubHandler) Handle(ctx context.Context, msg models.InboundMessage) relay.Reply {
	if h.release != nil {
		<-h.release
	}
	h.mu.Lock()
	h.received = append(h.received, msg)
	h.mu.Unlock()
	return relay.Reply{Text: "echo: " + msg.Text, Image: []byte{1, 2}, ImageType: "image/jpeg"}
}

func (h *stubHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

type relayFixture struct {
	client    *mocks.MockMQTTClient
	handler   *stubHandler
	svc       *services.RelayService
	callback  MQTT.MessageHandler
	published chan []byte
}

func newRelayFixture(t *testing.T, handler *stubHandler) *relayFixture {
	t.Helper()
	f := &relayFixture{
		client:    new(mocks.MockMQTTClient),
		handler:   handler,
		published: make(chan []byte, 10),
	}
	f.client.On("Subscribe", "home/pc/inbound", byte(1), mock.Anything).
		Run(func(args mock.Arguments) { f.callback = args.Get(2).(MQTT.MessageHandler) }).
		Return(mocks.NewCompletedToken(nil))
	f.client.On("Unsubscribe", []string{"home/pc/inbound"}).Return(mocks.NewCompletedToken(nil))
	f.client.On("Publish", mock.Anything, byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) { f.published <- args.Get(3).([]byte) }).
		Return(mocks.NewCompletedToken(nil))

	f.svc = services.NewRelayService("home/pc", 1, 2, f.client, handler, zerolog.Nop())
	require.NoError(t, f.svc.Start())
	require.NotNil(t, f.callback)
	return f
}

func (f *relayFixture) deliver(payload string) {
	f.callback(nil, mocks.NewMockMessage("home/pc/inbound", []byte(payload)))
}

func TestRelayService_PublishesReplyToChatTopic(t *testing.T) {
	f := newRelayFixture(t, &stubHandler{})

	f.deliver(`{"id":"m-1","user_id":"1001","chat_id":"c-9","text":"hi"}`)

	select {
	case raw := <-f.published:
		var reply models.OutboundReply
		require.NoError(t, json.Unmarshal(raw, &reply))
		assert.Equal(t, "m-1", reply.InReplyTo)
		assert.Equal(t, "c-9", reply.ChatID)
		assert.Equal(t, "echo: hi", reply.Text)
		assert.Equal(t, []byte{1, 2}, reply.Image)
		assert.Equal(t, "image/jpeg", reply.ImageType)
	case <-time.After(2 * time.Second):
		t.Fatal("no reply published")
	}

	require.NoError(t, f.svc.Stop())
	f.client.AssertCalled(t, "Publish", "home/pc/outbound/c-9", byte(1), false, mock.Anything)
	assert.Equal(t, 0, f.svc.InFlight())
}

func TestRelayService_DropsMalformedPayloads(t *testing.T) {
	f := newRelayFixture(t, &stubHandler{})

	f.deliver(`{not json`)
	f.deliver(`{"id":"m-2","user_id":"1001","text":"no chat"}`)

	require.NoError(t, f.svc.Stop())
	assert.Equal(t, 0, f.handler.count())
	f.client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayService_StopWaitsForInFlight(t *testing.T) {
	handler := &stubHandler{release: make(chan struct{})}
	f := newRelayFixture(t, handler)

	f.deliver(`{"id":"m-3","user_id":"1001","chat_id":"c-1","text":"slow"}`)
	assert.Eventually(t, func() bool { return f.svc.InFlight() == 1 }, time.Second, 5*time.Millisecond)

	stopped := make(chan error, 1)
	go func() { stopped <- f.svc.Stop() }()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a request was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(handler.release)
	require.NoError(t, <-stopped)
	assert.Equal(t, 1, handler.count())
	assert.Len(t, f.published, 1)
}

func TestRelayService_DropsAfterStop(t *testing.T) {
	f := newRelayFixture(t, &stubHandler{})
	require.NoError(t, f.svc.Stop())

	f.deliver(`{"id":"m-4","user_id":"1001","chat_id":"c-1","text":"late"}`)

	assert.Equal(t, 0, f.handler.count())
	assert.Equal(t, 0, f.svc.InFlight())
}

func TestRelayService_StartStopErrors(t *testing.T) {
	f := newRelayFixture(t, &stubHandler{})
	assert.EqualError(t, f.svc.Start(), "relay service is already running")
	require.NoError(t, f.svc.Stop())
	assert.EqualError(t, f.svc.Stop(), "relay service is not running")

	client := new(mocks.MockMQTTClient)
	client.On("Subscribe", "pc/inbound", byte(0), mock.Anything).Return(mocks.NewCompletedToken(errors.New("not authorized")))
	svc := services.NewRelayService("pc", 0, 1, client, &stubHandler{}, zerolog.Nop())

	assert.EqualError(t, svc.Start(), "not authorized")
}

func TestRelayService_Topics(t *testing.T) {
	svc := services.NewRelayService("pcremote", 1, 1, new(mocks.MockMQTTClient), &stubHandler{}, zerolog.Nop())

	assert.Equal(t, "pcremote/inbound", svc.InboundTopic())
	assert.Equal(t, "pcremote/outbound/42", svc.OutboundTopic("42"))
}
