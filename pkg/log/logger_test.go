package log

import (
	"testing"
	"time"

	"github.com/wisp-protocol/wisp-go/pkg/transport"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	// Exercise every payload variant.
	event := Event{
		Timestamp: time.Now(),
		SessionID: "test-sess",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	}
	logger.Log(event)

	event.Frame = &FrameEvent{Size: 100, Data: []byte{1, 2, 3}}
	logger.Log(event)

	event.Frame = nil
	event.Message = &MessageEvent{Type: MessageTypeRequest, Kind: "hello", MessageID: 1}
	logger.Log(event)

	event.Message = nil
	event.StateChange = &StateChangeEvent{Entity: StateEntityConnection, NewState: "connected"}
	logger.Log(event)

	event.StateChange = nil
	event.Dispatch = &DispatchEvent{Channel: transport.ChannelDiscovery}
	logger.Log(event)

	event.Dispatch = nil
	event.Error = &ErrorEventData{Message: "test error"}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}
