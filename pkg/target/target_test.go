package target

import (
	"testing"

	"github.com/benmeehan/pcremote/pkg/wol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	device, err := New("AA-BB-CC-DD-EE-FF", "desk.lan", 8765, "", 0)

	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", device.MAC.String())
	assert.Equal(t, wol.DefaultBroadcastAddr, device.BroadcastAddr)
	assert.Equal(t, wol.DefaultPort, device.WOLPort)
	assert.Equal(t, "http://desk.lan:8765", device.AgentURL())
	assert.Equal(t, "255.255.255.255:9", device.Sender().Addr())
}

func TestNew_Validation(t *testing.T) {
	_, err := New("aa:bb:cc", "desk.lan", 8765, "", 0)
	assert.ErrorIs(t, err, wol.ErrInvalidAddress)

	_, err = New("aa:bb:cc:dd:ee:ff", "", 8765, "", 0)
	assert.Error(t, err)

	_, err = New("aa:bb:cc:dd:ee:ff", "desk.lan", 0, "", 0)
	assert.Error(t, err)

	_, err = New("aa:bb:cc:dd:ee:ff", "desk.lan", 8765, "", 70000)
	assert.Error(t, err)
}

func TestAgentURL_IPv4(t *testing.T) {
	device, err := New("aa:bb:cc:dd:ee:ff", "192.168.1.20", 9000, "192.168.1.255", 7)

	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:9000", device.AgentURL())
	assert.Equal(t, "192.168.1.255:7", device.Sender().Addr())
}
