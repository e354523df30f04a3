package transport

import (
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// Channel names an event stream exposed by a Transport.
// Values are stable; they appear in protocol capture files.
type Channel uint8

const (
	// ChannelDiscovery carries device discovery results and scan lifecycle.
	ChannelDiscovery Channel = 0
	// ChannelNetworkScan carries wireless networks visible to the device.
	ChannelNetworkScan Channel = 1
	// ChannelConnection carries session lifecycle changes.
	ChannelConnection Channel = 2
	// ChannelProvisioning carries credential application progress codes.
	ChannelProvisioning Channel = 3
	// ChannelCustomData carries application-defined data exchange outcomes.
	ChannelCustomData Channel = 4
	// ChannelPermission carries platform permission changes.
	ChannelPermission Channel = 5
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case ChannelDiscovery:
		return "DISCOVERY"
	case ChannelNetworkScan:
		return "NETWORK_SCAN"
	case ChannelConnection:
		return "CONNECTION"
	case ChannelProvisioning:
		return "PROVISIONING"
	case ChannelCustomData:
		return "CUSTOM_DATA"
	case ChannelPermission:
		return "PERMISSION"
	default:
		return "UNKNOWN"
	}
}

// Event is implemented by every channel payload type.
type Event interface {
	// Channel identifies the stream the event belongs to.
	Channel() Channel
}

// Handler receives events for the channel it was subscribed to.
type Handler func(Event)

// Device describes a device found in setup mode.
type Device struct {
	// Identity uniquely identifies the device; discovery deduplicates on it.
	Identity string

	// Name is the human-readable device name.
	Name string

	// Addr is the transport-specific address used to reach the device,
	// for example "192.168.4.21:7632". Empty when not yet resolved.
	Addr string
}

// DiscoveryKind tags the variant carried by a DiscoveryEvent.
type DiscoveryKind uint8

const (
	// DiscoveryDeviceList replaces the known device set wholesale.
	DiscoveryDeviceList DiscoveryKind = 0
	// DiscoveryDevice reports a single, possibly already known device.
	DiscoveryDevice DiscoveryKind = 1
	// DiscoveryScanStatus reports a discovery scan lifecycle change.
	DiscoveryScanStatus DiscoveryKind = 2
)

// String returns the discovery kind name.
func (k DiscoveryKind) String() string {
	switch k {
	case DiscoveryDeviceList:
		return "DEVICE_LIST"
	case DiscoveryDevice:
		return "DEVICE"
	case DiscoveryScanStatus:
		return "SCAN_STATUS"
	default:
		return "UNKNOWN"
	}
}

// ScanStatus reports the lifecycle of a discovery scan.
type ScanStatus uint8

const (
	// ScanStarted indicates the scan began.
	ScanStarted ScanStatus = 0
	// ScanCompleted indicates the scan finished normally.
	ScanCompleted ScanStatus = 1
	// ScanIdle indicates the scan stopped without completing.
	ScanIdle ScanStatus = 2
	// ScanFailed indicates the scan aborted with an error.
	ScanFailed ScanStatus = 3
)

// String returns the scan status name.
func (s ScanStatus) String() string {
	switch s {
	case ScanStarted:
		return "STARTED"
	case ScanCompleted:
		return "COMPLETED"
	case ScanIdle:
		return "IDLE"
	case ScanFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ScanStatusChange carries a discovery scan lifecycle change.
type ScanStatusChange struct {
	Status ScanStatus

	// Message holds failure detail when Status is ScanFailed.
	Message string
}

// DiscoveryEvent is the payload on ChannelDiscovery. Kind selects the
// variant; only the matching field is meaningful.
type DiscoveryEvent struct {
	Kind DiscoveryKind

	// Devices is the full result set (Kind == DiscoveryDeviceList).
	Devices []Device

	// Device is an incremental result (Kind == DiscoveryDevice).
	Device Device

	// Scan is a lifecycle change (Kind == DiscoveryScanStatus).
	Scan ScanStatusChange
}

// Channel implements Event.
func (DiscoveryEvent) Channel() Channel { return ChannelDiscovery }

// NetworkScanEvent is the payload on ChannelNetworkScan. A scan pass
// produces either a complete network list or a failure, never both.
type NetworkScanEvent struct {
	// Networks is the bulk scan result. Valid when Failed is false.
	Networks []wifi.Network

	// Failed marks an aborted scan.
	Failed bool

	// Message holds the transport's failure text, surfaced verbatim.
	Message string
}

// Channel implements Event.
func (NetworkScanEvent) Channel() Channel { return ChannelNetworkScan }

// ConnStatus reports a session lifecycle change. Unknown values must be
// tolerated by consumers: future transports may add codes.
type ConnStatus uint8

const (
	// ConnConnected indicates the secured session is established.
	ConnConnected ConnStatus = 0
	// ConnFailed indicates the connection attempt did not succeed.
	ConnFailed ConnStatus = 1
	// ConnDisconnected indicates an established session ended.
	ConnDisconnected ConnStatus = 2
)

// String returns the connection status name.
func (s ConnStatus) String() string {
	switch s {
	case ConnConnected:
		return "CONNECTED"
	case ConnFailed:
		return "FAILED"
	case ConnDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// ConnectionEvent is the payload on ChannelConnection.
type ConnectionEvent struct {
	Status ConnStatus
}

// Channel implements Event.
func (ConnectionEvent) Channel() Channel { return ChannelConnection }

// ProvStatus is a provisioning progress code reported by the device.
// Values are stable; they cross the wire.
type ProvStatus uint8

const (
	// StatusInitFailed indicates the provisioning session could not start.
	StatusInitFailed ProvStatus = 0
	// StatusConfigSent indicates the credentials were transmitted.
	StatusConfigSent ProvStatus = 1
	// StatusConfigFailed indicates the device rejected the configuration.
	StatusConfigFailed ProvStatus = 2
	// StatusConfigApplied indicates the device accepted the configuration
	// and is joining the network.
	StatusConfigApplied ProvStatus = 3
	// StatusApplyFailed indicates the device could not join the network.
	StatusApplyFailed ProvStatus = 4
	// StatusCompleted indicates provisioning succeeded.
	StatusCompleted ProvStatus = 5
	// StatusProvFailed indicates provisioning failed after configuration.
	StatusProvFailed ProvStatus = 6
)

// String returns the provisioning status name.
func (s ProvStatus) String() string {
	switch s {
	case StatusInitFailed:
		return "INIT_FAILED"
	case StatusConfigSent:
		return "CONFIG_SENT"
	case StatusConfigFailed:
		return "CONFIG_FAILED"
	case StatusConfigApplied:
		return "CONFIG_APPLIED"
	case StatusApplyFailed:
		return "APPLY_FAILED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusProvFailed:
		return "PROV_FAILED"
	default:
		return "UNKNOWN"
	}
}

// ProvisioningEvent is the payload on ChannelProvisioning.
type ProvisioningEvent struct {
	Status ProvStatus

	// Message is the device's accompanying detail text, if any.
	Message string
}

// Channel implements Event.
func (ProvisioningEvent) Channel() Channel { return ChannelProvisioning }

// CustomDataStatus reports the outcome of a custom data exchange.
type CustomDataStatus uint8

const (
	// CustomDataSending indicates the payload is being transmitted.
	CustomDataSending CustomDataStatus = 0
	// CustomDataSuccess indicates the device acknowledged the payload.
	CustomDataSuccess CustomDataStatus = 1
	// CustomDataFailed indicates the exchange failed.
	CustomDataFailed CustomDataStatus = 2
)

// String returns the custom data status name.
func (s CustomDataStatus) String() string {
	switch s {
	case CustomDataSending:
		return "SENDING"
	case CustomDataSuccess:
		return "SUCCESS"
	case CustomDataFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// CustomDataEvent is the payload on ChannelCustomData.
type CustomDataEvent struct {
	Status CustomDataStatus

	// Message is the device's acknowledgment text. Consumers confirm
	// success against the content, not the status code alone.
	Message string
}

// Channel implements Event.
func (CustomDataEvent) Channel() Channel { return ChannelCustomData }

// PermissionEvent is the payload on ChannelPermission.
type PermissionEvent struct {
	Granted bool
	Message string
}

// Channel implements Event.
func (PermissionEvent) Channel() Channel { return ChannelPermission }

// Compile-time checks that every payload implements Event.
var (
	_ Event = DiscoveryEvent{}
	_ Event = NetworkScanEvent{}
	_ Event = ConnectionEvent{}
	_ Event = ProvisioningEvent{}
	_ Event = CustomDataEvent{}
	_ Event = PermissionEvent{}
)
