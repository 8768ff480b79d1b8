package mqtt

import (
	"errors"
	"testing"

	"github.com/benmeehan/pcremote/internal/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions_Plain(t *testing.T) {
	files := new(mocks.MockFileOperations)
	s := NewMqttService(files, zerolog.Nop())

	opts, err := s.clientOptions(Options{Broker: "tcp://broker:1883", ClientID: "relay-1", Username: "relay", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "relay-1", opts.ClientID)
	assert.Equal(t, "relay", opts.Username)
	assert.Nil(t, opts.TLSConfig)
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "broker:1883", opts.Servers[0].Host)
	files.AssertNotCalled(t, "ReadFileRaw", "")
}

func TestClientOptions_RequiresBroker(t *testing.T) {
	s := NewMqttService(new(mocks.MockFileOperations), zerolog.Nop())

	_, err := s.clientOptions(Options{ClientID: "relay-1"})

	assert.EqualError(t, err, "mqtt broker is required")
}

func TestClientOptions_CACertificateErrors(t *testing.T) {
	files := new(mocks.MockFileOperations)
	files.On("ReadFileRaw", "/missing.pem").Return(nil, errors.New("no such file"))
	files.On("ReadFileRaw", "/garbage.pem").Return([]byte("not a certificate"), nil)
	s := NewMqttService(files, zerolog.Nop())

	_, err := s.clientOptions(Options{Broker: "ssl://broker:8883", CACertificate: "/missing.pem"})
	assert.ErrorContains(t, err, "failed to read CA certificate")

	_, err = s.clientOptions(Options{Broker: "ssl://broker:8883", CACertificate: "/garbage.pem"})
	assert.EqualError(t, err, "failed to append CA certificate")
}

func TestPassThroughs(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	token := mocks.NewCompletedToken(nil)
	client.On("IsConnected").Return(true)
	client.On("Publish", "pc/outbound/1", byte(1), false, []byte("{}")).Return(token)
	client.On("Unsubscribe", []string{"pc/inbound"}).Return(token)
	client.On("Disconnect", uint(250)).Return()

	s := &MqttService{client: client, logger: zerolog.Nop()}

	assert.True(t, s.IsConnected())
	assert.Same(t, token, s.Publish("pc/outbound/1", 1, false, []byte("{}")))
	assert.Same(t, token, s.Unsubscribe("pc/inbound"))
	s.Disconnect(250)
	client.AssertExpectations(t)
}

func TestIsConnected_Uninitialized(t *testing.T) {
	s := NewMqttService(new(mocks.MockFileOperations), zerolog.Nop())
	assert.False(t, s.IsConnected())
}
