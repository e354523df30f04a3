package provision

// Messages is the catalog of status text the workflow publishes. It is
// pure data: callers may replace any entry, for localization or tone,
// without changing workflow behavior. Empty fields fall back to the
// DefaultMessages text.
//
// Network scan errors are the one exception: their text comes from the
// transport verbatim and is never catalog-translated.
type Messages struct {
	// ScanFailed is published when a device scan reports failure.
	ScanFailed string

	// Connected is published when the control channel is established.
	Connected string

	// ConnectFailed is published when the connection attempt fails.
	ConnectFailed string

	// Disconnected is published when the device reports the session closed.
	Disconnected string

	// SessionError is published when the provisioning session cannot start.
	SessionError string

	// Applied is published when the device accepted the configuration.
	Applied string

	// Completed is published when provisioning finished successfully.
	Completed string

	// ApplyError is published when the device failed to join the network.
	ApplyError string

	// CustomDataSending is published while a custom payload is in transit.
	CustomDataSending string

	// CustomDataSent is published when the device confirmed a custom payload.
	CustomDataSent string

	// CustomDataFailed is published when a custom payload was not accepted.
	CustomDataFailed string
}

// DefaultMessages returns the English catalog.
func DefaultMessages() Messages {
	return Messages{
		ScanFailed:        "scan failed",
		Connected:         "connected",
		ConnectFailed:     "connect failed",
		Disconnected:      "disconnected",
		SessionError:      "init session error",
		Applied:           "applied",
		Completed:         "completed",
		ApplyError:        "apply error",
		CustomDataSending: "custom data sending",
		CustomDataSent:    "custom data sent",
		CustomDataFailed:  "custom data failed",
	}
}

// withDefaults fills empty fields from DefaultMessages.
func (m Messages) withDefaults() Messages {
	def := DefaultMessages()
	if m.ScanFailed == "" {
		m.ScanFailed = def.ScanFailed
	}
	if m.Connected == "" {
		m.Connected = def.Connected
	}
	if m.ConnectFailed == "" {
		m.ConnectFailed = def.ConnectFailed
	}
	if m.Disconnected == "" {
		m.Disconnected = def.Disconnected
	}
	if m.SessionError == "" {
		m.SessionError = def.SessionError
	}
	if m.Applied == "" {
		m.Applied = def.Applied
	}
	if m.Completed == "" {
		m.Completed = def.Completed
	}
	if m.ApplyError == "" {
		m.ApplyError = def.ApplyError
	}
	if m.CustomDataSending == "" {
		m.CustomDataSending = def.CustomDataSending
	}
	if m.CustomDataSent == "" {
		m.CustomDataSent = def.CustomDataSent
	}
	if m.CustomDataFailed == "" {
		m.CustomDataFailed = def.CustomDataFailed
	}
	return m
}
