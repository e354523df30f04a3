package transport

// Transport is the capability surface a provisioning workflow drives.
//
// Every call is fire-and-forget: a nil error means the request was
// accepted for dispatch, not that the operation succeeded. Completion
// and failure are observed through events on the corresponding channel.
// Implementations must be safe for concurrent use.
type Transport interface {
	// CheckPermissions verifies the platform allows the radio and
	// network operations the transport needs. Denials also surface as
	// events on ChannelPermission.
	CheckPermissions() error

	// StartDiscovery begins scanning for devices in setup mode whose
	// advertised name starts with prefix. An empty prefix matches all.
	// Results arrive on ChannelDiscovery.
	StartDiscovery(prefix string) error

	// StopDiscovery ends an active discovery scan. Calling it with no
	// scan in progress is harmless.
	StopDiscovery() error

	// Connect establishes a secured session with a discovered device,
	// presenting the proof of possession. The outcome arrives on
	// ChannelConnection.
	Connect(identity string, proofOfPossession string) error

	// ConnectViaNetwork establishes a session with a device that is
	// already reachable on the local network, without prior discovery.
	ConnectViaNetwork(proofOfPossession string) error

	// Disconnect tears down the session. Calling it with no session
	// established is harmless.
	Disconnect() error

	// StartNetworkScan asks the connected device to scan for wireless
	// networks in range. Results arrive on ChannelNetworkScan.
	StartNetworkScan() error

	// SubmitCredential sends the selected network and its secret to
	// the connected device. Open networks submit an empty secret.
	// Progress arrives on ChannelProvisioning.
	SubmitCredential(ssid string, secret string) error

	// SendCustomData transmits an application-defined payload to the
	// connected device under the given name. The outcome arrives on
	// ChannelCustomData.
	SendCustomData(name string, payload []byte) error

	// Subscribe registers fn for events on ch and returns a cancel
	// func that releases the registration. Cancel is idempotent.
	// Implementations deliver events serially in emit order.
	Subscribe(ch Channel, fn Handler) (cancel func())
}
