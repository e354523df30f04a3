// Package wifi defines the wireless network value types shared by the
// transport and provisioning layers.
package wifi

import (
	"errors"
	"strings"
)

// Wifi errors.
var (
	ErrUnknownAuthMode = errors.New("unknown auth mode")
)

// AuthMode identifies the authentication scheme of a wireless network.
// Values mirror the codes devices report in scan results.
type AuthMode uint8

const (
	// AuthUnknown - the device did not report a recognizable auth mode.
	AuthUnknown AuthMode = iota

	// AuthOpen - no authentication.
	AuthOpen

	// AuthWEP - legacy WEP.
	AuthWEP

	// AuthWPAPSK - WPA personal.
	AuthWPAPSK

	// AuthWPA2PSK - WPA2 personal.
	AuthWPA2PSK

	// AuthWPAWPA2PSK - mixed WPA/WPA2 personal.
	AuthWPAWPA2PSK

	// AuthWPA2Enterprise - WPA2 enterprise (802.1X).
	AuthWPA2Enterprise
)

// String returns the auth mode name.
func (m AuthMode) String() string {
	switch m {
	case AuthUnknown:
		return "UNKNOWN"
	case AuthOpen:
		return "OPEN"
	case AuthWEP:
		return "WEP"
	case AuthWPAPSK:
		return "WPA_PSK"
	case AuthWPA2PSK:
		return "WPA2_PSK"
	case AuthWPAWPA2PSK:
		return "WPA_WPA2_PSK"
	case AuthWPA2Enterprise:
		return "WPA2_ENTERPRISE"
	default:
		return "UNKNOWN"
	}
}

// ParseAuthMode parses an auth mode name as produced by String.
// Parsing is case-insensitive.
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UNKNOWN":
		return AuthUnknown, nil
	case "OPEN":
		return AuthOpen, nil
	case "WEP":
		return AuthWEP, nil
	case "WPA_PSK":
		return AuthWPAPSK, nil
	case "WPA2_PSK":
		return AuthWPA2PSK, nil
	case "WPA_WPA2_PSK":
		return AuthWPAWPA2PSK, nil
	case "WPA2_ENTERPRISE":
		return AuthWPA2Enterprise, nil
	default:
		return AuthUnknown, ErrUnknownAuthMode
	}
}

// RequiresSecret reports whether networks with this auth mode need a
// password to join. Unknown modes conservatively require one.
func (m AuthMode) RequiresSecret() bool {
	return m != AuthOpen
}

// Network is one wireless network visible to a device, reported wholesale
// by a scan pass. Values are immutable once produced.
type Network struct {
	// SSID is the network name.
	SSID string

	// Auth is the reported authentication scheme.
	Auth AuthMode

	// RSSI is the signal strength in dBm (negative; closer to zero is stronger).
	RSSI int

	// Channel is the radio channel, 0 if not reported.
	Channel uint8

	// BSSID is the access point hardware address, empty if not reported.
	BSSID string
}

// Credential couples a network with the secret needed to join it.
// Constructed by the caller at submission time and never persisted.
type Credential struct {
	Network

	// Password is the network secret. Empty for open networks.
	Password string
}

// Secret returns the password to transmit. Open networks always submit
// an empty secret even if a password was set by mistake.
func (c Credential) Secret() string {
	if c.Auth == AuthOpen {
		return ""
	}
	return c.Password
}
