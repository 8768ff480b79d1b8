package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/pcremote/internal/clipboard"
	"github.com/benmeehan/pcremote/internal/mocks"
	"github.com/benmeehan/pcremote/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClipboardService(reader *mocks.ClipboardReader) (*services.ClipboardService, *clipboard.History) {
	history := clipboard.NewHistory(clipboard.DefaultCapacity)
	return services.NewClipboardService(10*time.Millisecond, reader, history, zerolog.Nop()), history
}

// TestClipboardService_SampleRecordsChanges pushes each distinct observation.
func TestClipboardService_SampleRecordsChanges(t *testing.T) {
	reader := new(mocks.ClipboardReader)
	svc, history := newClipboardService(reader)

	reader.On("ReadAll").Return("A", nil).Once()
	reader.On("ReadAll").Return("A", nil).Once()
	reader.On("ReadAll").Return("B", nil).Once()
	reader.On("ReadAll").Return("A", nil).Once()

	for i := 0; i < 4; i++ {
		svc.Sample()
	}

	assert.Equal(t, []string{"A", "B", "A"}, history.Snapshot())
	reader.AssertExpectations(t)
}

// TestClipboardService_IgnoresEmptyContent leaves history untouched.
func TestClipboardService_IgnoresEmptyContent(t *testing.T) {
	reader := new(mocks.ClipboardReader)
	svc, history := newClipboardService(reader)
	reader.On("ReadAll").Return("", nil)

	svc.Sample()

	assert.Equal(t, 0, history.Len())
}

// TestClipboardService_ReadErrorsAreSwallowed keeps sampling after failures.
func TestClipboardService_ReadErrorsAreSwallowed(t *testing.T) {
	reader := new(mocks.ClipboardReader)
	svc, history := newClipboardService(reader)

	reader.On("ReadAll").Return("", errors.New("no clipboard owner")).Twice()
	reader.On("ReadAll").Return("recovered", nil).Once()

	svc.Sample()
	svc.Sample()
	svc.Sample()

	assert.Equal(t, []string{"recovered"}, history.Snapshot())
}

// TestClipboardService_StartStop samples in the background and rejects double transitions.
func TestClipboardService_StartStop(t *testing.T) {
	reader := new(mocks.ClipboardReader)
	svc, history := newClipboardService(reader)
	reader.On("ReadAll").Return("copied", nil)

	require.NoError(t, svc.Start())
	assert.EqualError(t, svc.Start(), "clipboard service is already running")

	assert.Eventually(t, func() bool {
		head, ok := history.Head()
		return ok && head == "copied"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.Stop())
	assert.EqualError(t, svc.Stop(), "clipboard service is not running")
}
