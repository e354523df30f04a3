package lan

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/wisp-protocol/wisp-go/pkg/log"
)

// encMode is the CBOR encoder mode for setup messages.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for setup messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient decoding for forward compatibility: newer peers may add
	// fields this version does not know.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// EncodeMessage encodes a setup message to CBOR bytes.
func EncodeMessage(msg any) ([]byte, error) {
	return encMode.Marshal(msg)
}

// DecodeMessage decodes CBOR bytes to the matching setup message type.
func DecodeMessage(data []byte) (any, error) {
	// Decode just the message type, then decode the full struct.
	var header struct {
		MsgType uint8 `cbor:"1,keyasint"`
	}
	if err := decMode.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	var msg any
	switch header.MsgType {
	case MsgHello:
		msg = &Hello{}
	case MsgHelloAck:
		msg = &HelloAck{}
	case MsgConfirm:
		msg = &Confirm{}
	case MsgConfirmAck:
		msg = &ConfirmAck{}
	case MsgScanRequest:
		msg = &ScanRequest{}
	case MsgScanResult:
		msg = &ScanResult{}
	case MsgCredential:
		msg = &Credential{}
	case MsgProvisionStatus:
		msg = &ProvisionStatus{}
	case MsgCustomData:
		msg = &CustomData{}
	case MsgCustomDataAck:
		msg = &CustomDataAck{}
	case MsgError:
		msg = &SetupError{}
	default:
		return nil, fmt.Errorf("%w: unknown message type %d", ErrInvalidMessage, header.MsgType)
	}

	if err := decMode.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return msg, nil
}

// MessageKind returns the short name of a decoded message, as it
// appears in protocol capture files.
func MessageKind(msg any) string {
	switch msg.(type) {
	case *Hello:
		return "hello"
	case *HelloAck:
		return "hello-ack"
	case *Confirm:
		return "confirm"
	case *ConfirmAck:
		return "confirm-ack"
	case *ScanRequest:
		return "scan-request"
	case *ScanResult:
		return "scan-result"
	case *Credential:
		return "credential"
	case *ProvisionStatus:
		return "provision-status"
	case *CustomData:
		return "custom-data"
	case *CustomDataAck:
		return "custom-data-ack"
	case *SetupError:
		return "error"
	default:
		return "unknown"
	}
}

// messageRole classifies a message for protocol capture.
func messageRole(msg any) log.MessageType {
	switch msg.(type) {
	case *Hello, *Confirm, *ScanRequest, *Credential, *CustomData:
		return log.MessageTypeRequest
	case *HelloAck, *ConfirmAck, *ScanResult, *CustomDataAck:
		return log.MessageTypeResponse
	default:
		return log.MessageTypeNotification
	}
}
