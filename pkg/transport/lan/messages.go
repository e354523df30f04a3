package lan

import (
	"errors"
)

// Setup protocol message types.
const (
	// MsgHello opens the handshake with the controller's key material.
	MsgHello uint8 = 1

	// MsgHelloAck answers with the device's key material.
	MsgHelloAck uint8 = 2

	// MsgConfirm carries the controller's proof-of-possession MAC.
	MsgConfirm uint8 = 3

	// MsgConfirmAck carries the device's MAC and the handshake verdict.
	MsgConfirmAck uint8 = 4

	// MsgScanRequest asks the device to scan for wireless networks.
	MsgScanRequest uint8 = 10

	// MsgScanResult returns the visible networks or a scan error.
	MsgScanResult uint8 = 11

	// MsgCredential submits the selected network and its secret.
	MsgCredential uint8 = 12

	// MsgProvisionStatus reports credential application progress.
	// The device may send several of these for one credential.
	MsgProvisionStatus uint8 = 13

	// MsgCustomData carries an application-defined payload to the device.
	MsgCustomData uint8 = 14

	// MsgCustomDataAck acknowledges a custom data payload.
	MsgCustomDataAck uint8 = 15

	// MsgError reports a protocol-level error in either direction.
	MsgError uint8 = 255
)

// Setup protocol error codes.
const (
	ErrCodeOK              uint8 = 0
	ErrCodeVersionMismatch uint8 = 1
	ErrCodeInvalidKey      uint8 = 2
	ErrCodeProofMismatch   uint8 = 3
	ErrCodeScanFailed      uint8 = 4
	ErrCodeInternal        uint8 = 255
)

// Message errors.
var (
	ErrInvalidMessage = errors.New("invalid setup message")
)

// Hello is the controller's opening message. It travels unsealed.
// CBOR: { 1: msgType, 2: version, 3: publicKey, 4: nonce }
type Hello struct {
	MsgType   uint8  `cbor:"1,keyasint"`
	Version   string `cbor:"2,keyasint"` // "major.minor"
	PublicKey []byte `cbor:"3,keyasint"` // X25519, 32 bytes
	Nonce     []byte `cbor:"4,keyasint"` // 16 random bytes
}

// HelloAck is the device's reply. A non-zero ErrorCode aborts the
// handshake; the device closes after sending it.
// CBOR: { 1: msgType, 2: version, 3: publicKey, 4: nonce, 5: errorCode }
type HelloAck struct {
	MsgType   uint8  `cbor:"1,keyasint"`
	Version   string `cbor:"2,keyasint"`
	PublicKey []byte `cbor:"3,keyasint"`
	Nonce     []byte `cbor:"4,keyasint"`
	ErrorCode uint8  `cbor:"5,keyasint"`
}

// Confirm carries the controller's confirmation MAC. A device holding a
// different proof of possession cannot verify it.
// CBOR: { 1: msgType, 2: confirmation }
type Confirm struct {
	MsgType      uint8  `cbor:"1,keyasint"`
	Confirmation []byte `cbor:"2,keyasint"`
}

// ConfirmAck closes the handshake with the device's confirmation MAC.
// ErrorCode is ErrCodeProofMismatch when the controller's MAC did not
// verify.
// CBOR: { 1: msgType, 2: confirmation, 3: errorCode }
type ConfirmAck struct {
	MsgType      uint8  `cbor:"1,keyasint"`
	Confirmation []byte `cbor:"2,keyasint"`
	ErrorCode    uint8  `cbor:"3,keyasint"`
}

// ScanRequest asks the device to scan. Sealed.
// CBOR: { 1: msgType }
type ScanRequest struct {
	MsgType uint8 `cbor:"1,keyasint"`
}

// Network is the wire form of a visible wireless network.
// CBOR: { 1: ssid, 2: auth, 3: rssi, 4: channel, 5: bssid }
type Network struct {
	SSID    string `cbor:"1,keyasint"`
	Auth    uint8  `cbor:"2,keyasint"`
	RSSI    int16  `cbor:"3,keyasint"`
	Channel uint8  `cbor:"4,keyasint,omitempty"`
	BSSID   string `cbor:"5,keyasint,omitempty"`
}

// ScanResult returns the networks the device sees, or a scan error.
// Sealed.
// CBOR: { 1: msgType, 2: networks, 3: errorCode, 4: message }
type ScanResult struct {
	MsgType   uint8     `cbor:"1,keyasint"`
	Networks  []Network `cbor:"2,keyasint,omitempty"`
	ErrorCode uint8     `cbor:"3,keyasint"`
	Message   string    `cbor:"4,keyasint,omitempty"`
}

// Credential submits the selected network. Secret is empty for open
// networks. Sealed.
// CBOR: { 1: msgType, 2: ssid, 3: secret }
type Credential struct {
	MsgType uint8  `cbor:"1,keyasint"`
	SSID    string `cbor:"2,keyasint"`
	Secret  string `cbor:"3,keyasint"`
}

// ProvisionStatus reports credential application progress. Status
// values are the provisioning progress codes shared with consumers.
// Sealed.
// CBOR: { 1: msgType, 2: status, 3: message }
type ProvisionStatus struct {
	MsgType uint8  `cbor:"1,keyasint"`
	Status  uint8  `cbor:"2,keyasint"`
	Message string `cbor:"3,keyasint,omitempty"`
}

// CustomData carries an application-defined payload. Sealed.
// CBOR: { 1: msgType, 2: name, 3: payload }
type CustomData struct {
	MsgType uint8  `cbor:"1,keyasint"`
	Name    string `cbor:"2,keyasint"`
	Payload []byte `cbor:"3,keyasint,omitempty"`
}

// CustomDataAck acknowledges a custom data payload. Message content is
// meaningful to the application; consumers inspect it beyond the error
// code. Sealed.
// CBOR: { 1: msgType, 2: errorCode, 3: message }
type CustomDataAck struct {
	MsgType   uint8  `cbor:"1,keyasint"`
	ErrorCode uint8  `cbor:"2,keyasint"`
	Message   string `cbor:"3,keyasint,omitempty"`
}

// SetupError reports a protocol-level error.
// CBOR: { 1: msgType, 2: errorCode, 3: message }
type SetupError struct {
	MsgType   uint8  `cbor:"1,keyasint"`
	ErrorCode uint8  `cbor:"2,keyasint"`
	Message   string `cbor:"3,keyasint,omitempty"`
}
