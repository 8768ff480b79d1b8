package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benmeehan/pcremote/internal/models"
	"github.com/benmeehan/pcremote/internal/relay"
	"github.com/benmeehan/pcremote/internal/utils"
	"github.com/benmeehan/pcremote/pkg/mqtt"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

const publishTimeout = 10 * time.Second

// MessageHandler turns one inbound chat message into a reply.
type MessageHandler interface {
	Handle(ctx context.Context, msg models.InboundMessage) relay.Reply
}

type inflightRequest struct {
	MessageID string
	UserID    string
	ChatID    string
	Started   time.Time
}

// RelayService receives chat messages from the transport bridge over MQTT,
// handles each one on a bounded worker pool and publishes the reply.
type RelayService struct {
	// Configuration Fields
	topicPrefix string
	qos         int
	workers     int

	// Dependencies
	mqttClient mqtt.MQTTClient
	handler    MessageHandler
	logger     zerolog.Logger

	// Internal state management
	mu       sync.Mutex
	running  bool
	pool     *utils.WorkerPool
	inflight cmap.ConcurrentMap[string, inflightRequest]

	// Context for handlers; cancelled only after the pool has drained
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRelayService initializes a new RelayService with given parameters.
func NewRelayService(topicPrefix string, qos, workers int, mqttClient mqtt.MQTTClient, handler MessageHandler, logger zerolog.Logger) *RelayService {
	return &RelayService{
		topicPrefix: topicPrefix,
		qos:         qos,
		workers:     workers,
		mqttClient:  mqttClient,
		handler:     handler,
		logger:      logger,
		inflight:    cmap.New[inflightRequest](),
	}
}

// InboundTopic is where the transport bridge publishes user messages.
func (rs *RelayService) InboundTopic() string {
	return rs.topicPrefix + "/inbound"
}

// OutboundTopic is where replies for chatID are published.
func (rs *RelayService) OutboundTopic(chatID string) string {
	return fmt.Sprintf("%s/outbound/%s", rs.topicPrefix, chatID)
}

// Start subscribes to the inbound topic.
func (rs *RelayService) Start() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.running {
		rs.logger.Warn().Msg("RelayService is already running")
		return errors.New("relay service is already running")
	}

	rs.ctx, rs.cancel = context.WithCancel(context.Background())
	rs.pool = utils.NewWorkerPool(rs.workers, rs.logger)

	topic := rs.InboundTopic()
	rs.logger.Info().Str("topic", topic).Int("workers", rs.workers).Msg("Starting RelayService and subscribing to MQTT topic")
	token := rs.mqttClient.Subscribe(topic, byte(rs.qos), rs.HandleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		rs.logger.Error().Err(err).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		rs.pool.Shutdown()
		rs.cancel()
		return err
	}

	rs.running = true
	rs.logger.Info().Str("topic", topic).Msg("Successfully subscribed to MQTT topic")
	return nil
}

// Stop unsubscribes and waits for in-flight requests to finish.
func (rs *RelayService) Stop() error {
	rs.mu.Lock()
	if !rs.running {
		rs.mu.Unlock()
		rs.logger.Warn().Msg("RelayService is not running")
		return errors.New("relay service is not running")
	}
	rs.running = false
	rs.mu.Unlock()

	topic := rs.InboundTopic()
	token := rs.mqttClient.Unsubscribe(topic)
	token.Wait()
	unsubErr := token.Error()
	if unsubErr != nil {
		rs.logger.Error().Err(unsubErr).Str("topic", topic).Msg("Failed to unsubscribe from MQTT topic")
	}

	for id, req := range rs.inflight.Items() {
		rs.logger.Warn().
			Str("request_id", id).
			Str("message_id", req.MessageID).
			Str("chat_id", req.ChatID).
			Dur("running", time.Since(req.Started)).
			Msg("Waiting for in-flight request")
	}

	rs.pool.Shutdown()
	rs.cancel()

	rs.logger.Info().Msg("RelayService stopped successfully")
	return unsubErr
}

// InFlight returns the number of requests currently being handled.
func (rs *RelayService) InFlight() int {
	return rs.inflight.Count()
}

// HandleMessage decodes an inbound message and queues it for handling.
// Malformed payloads carry no usable identity to answer and are dropped.
func (rs *RelayService) HandleMessage(client MQTT.Client, msg MQTT.Message) {
	var inbound models.InboundMessage
	if err := json.Unmarshal(msg.Payload(), &inbound); err != nil {
		rs.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("Dropping malformed inbound message")
		return
	}
	if inbound.ChatID == "" {
		rs.logger.Warn().Str("message_id", inbound.ID).Msg("Dropping inbound message without chat_id")
		return
	}

	rs.mu.Lock()
	pool, ctx := rs.pool, rs.ctx
	rs.mu.Unlock()
	if pool == nil {
		rs.logger.Warn().Str("message_id", inbound.ID).Msg("Dropping inbound message, relay is not started")
		return
	}

	requestID := uuid.NewString()
	rs.inflight.Set(requestID, inflightRequest{
		MessageID: inbound.ID,
		UserID:    inbound.UserID,
		ChatID:    inbound.ChatID,
		Started:   time.Now(),
	})

	err := pool.Submit(func() {
		defer rs.inflight.Remove(requestID)
		rs.process(ctx, requestID, inbound)
	})
	if err != nil {
		rs.inflight.Remove(requestID)
		rs.logger.Warn().Err(err).Str("message_id", inbound.ID).Msg("Dropping inbound message, relay is stopping")
	}
}

func (rs *RelayService) process(ctx context.Context, requestID string, inbound models.InboundMessage) {
	logger := rs.logger.With().Str("request_id", requestID).Str("message_id", inbound.ID).Logger()
	logger.Debug().Str("user_id", inbound.UserID).Msg("Handling inbound message")

	reply := rs.handler.Handle(ctx, inbound)

	if err := rs.publishReply(inbound, reply); err != nil {
		logger.Error().Err(err).Msg("Failed to publish reply")
	}
}

func (rs *RelayService) publishReply(inbound models.InboundMessage, reply relay.Reply) error {
	payload, err := json.Marshal(models.OutboundReply{
		InReplyTo: inbound.ID,
		ChatID:    inbound.ChatID,
		Text:      reply.Text,
		Image:     reply.Image,
		ImageType: reply.ImageType,
	})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	topic := rs.OutboundTopic(inbound.ChatID)
	token := rs.mqttClient.Publish(topic, byte(rs.qos), false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	rs.logger.Debug().Str("topic", topic).Int("bytes", len(payload)).Msg("Reply published")
	return nil
}
