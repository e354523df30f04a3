package provision

import (
	"errors"
	"log/slog"

	"github.com/wisp-protocol/wisp-go/pkg/transport"
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// Workflow errors.
var (
	ErrNotStarted     = errors.New("workflow not started")
	ErrAlreadyStarted = errors.New("workflow already started")
	ErrNoTransport    = errors.New("no transport configured")
	ErrScanStart      = errors.New("scan start failed")
)

// Config configures a Workflow.
type Config struct {
	// Transport performs the actual radio and network operations and
	// emits the events the workflow consumes.
	Transport transport.Transport

	// Messages supplies the status text the workflow publishes.
	// Empty fields fall back to DefaultMessages.
	Messages Messages

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.Transport == nil {
		return ErrNoTransport
	}
	return nil
}

// StepID names one of the three provisioning step trackers.
type StepID uint8

const (
	// StepSession - credential exchange with the device.
	StepSession StepID = iota

	// StepApply - the device applies the configuration and joins.
	StepApply

	// StepFinal - the device confirms the network connection.
	StepFinal
)

// String returns the step name.
func (s StepID) String() string {
	switch s {
	case StepSession:
		return "SESSION"
	case StepApply:
		return "APPLY"
	case StepFinal:
		return "FINAL"
	default:
		return "UNKNOWN"
	}
}

// StepProgress tracks the lifecycle of one provisioning step. The fields
// are independent booleans rather than a strict enum: a later event may
// reinterpret a step that already finished, setting Failed next to Done.
type StepProgress struct {
	// Done reports that the step reached a terminal state.
	Done bool

	// InProgress reports that the step is being worked on.
	InProgress bool

	// Failed reports that the terminal state was a failure.
	Failed bool

	// Message carries detail text for the step, usually from the device.
	Message string
}

// FailureKind classifies workflow failures carried on failure events.
type FailureKind uint8

const (
	// FailureNone - the event is not a failure.
	FailureNone FailureKind = iota

	// FailureScanStart - the transport rejected a scan request.
	FailureScanStart

	// FailureScan - a device or network scan reported failure.
	FailureScan

	// FailureConnect - the connection attempt failed.
	FailureConnect

	// FailureSessionInit - the provisioning session could not start.
	FailureSessionInit

	// FailureApply - the device failed to apply the configuration.
	FailureApply

	// FailureCustomData - a custom data exchange failed.
	FailureCustomData
)

// String returns the failure kind name.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "NONE"
	case FailureScanStart:
		return "SCAN_START"
	case FailureScan:
		return "SCAN"
	case FailureConnect:
		return "CONNECT"
	case FailureSessionInit:
		return "SESSION_INIT"
	case FailureApply:
		return "APPLY"
	case FailureCustomData:
		return "CUSTOM_DATA"
	default:
		return "UNKNOWN"
	}
}

// Event types for workflow callbacks.
type EventType uint8

const (
	// EventStatusChanged - the status text changed with no more specific event.
	EventStatusChanged EventType = iota

	// EventDevicesChanged - the discovered device list changed.
	EventDevicesChanged

	// EventNetworksChanged - new network scan results arrived.
	EventNetworksChanged

	// EventConnected - the control channel is established.
	EventConnected

	// EventDisconnected - the device reported the session closed.
	EventDisconnected

	// EventStepChanged - a provisioning step advanced.
	EventStepChanged

	// EventCompleted - provisioning finished successfully.
	EventCompleted

	// EventFailed - a failure was recorded; Kind says which.
	EventFailed
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case EventStatusChanged:
		return "STATUS_CHANGED"
	case EventDevicesChanged:
		return "DEVICES_CHANGED"
	case EventNetworksChanged:
		return "NETWORKS_CHANGED"
	case EventConnected:
		return "CONNECTED"
	case EventDisconnected:
		return "DISCONNECTED"
	case EventStepChanged:
		return "STEP_CHANGED"
	case EventCompleted:
		return "COMPLETED"
	case EventFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Event represents a workflow change notification.
type Event struct {
	// Type is the event type.
	Type EventType

	// Status is the workflow status text after the change.
	Status string

	// Step identifies the step for step events.
	Step StepID

	// Device is the recorded device for connection events.
	Device transport.Device

	// Kind classifies the failure for EventFailed.
	Kind FailureKind

	// Message carries transport-supplied detail, if any.
	Message string
}

// EventHandler handles workflow events.
type EventHandler func(Event)

// State is a point-in-time snapshot of the workflow.
type State struct {
	// Started reports whether the workflow is consuming transport events.
	Started bool

	// Discovering reports an active device scan.
	Discovering bool

	// Scanning reports an active network scan.
	Scanning bool

	// Connecting reports a connection attempt in flight.
	Connecting bool

	// Devices holds the discovered devices in first-seen order.
	Devices []transport.Device

	// Networks holds the most recent scan results.
	Networks []wifi.Network

	// ConnectedDevice is the device recorded by Connect.
	ConnectedDevice transport.Device

	// HasConnectedDevice reports whether ConnectedDevice is set.
	HasConnectedDevice bool

	// SelectedNetwork is the network last submitted.
	SelectedNetwork wifi.Network

	// HasSelectedNetwork reports whether SelectedNetwork is set.
	HasSelectedNetwork bool

	// Session tracks the credential exchange step.
	Session StepProgress

	// Apply tracks the configuration apply step.
	Apply StepProgress

	// Final tracks the completion step.
	Final StepProgress

	// Status is the human-readable workflow status.
	Status string
}
