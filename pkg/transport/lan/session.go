package lan

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/wisp-protocol/wisp-go/pkg/version"
)

// Handshake constants.
const (
	// KeySize is the size of each derived session key in bytes.
	KeySize = chacha20poly1305.KeySize

	// HelloNonceSize is the size of the random nonce in hello messages.
	HelloNonceSize = 16

	// ConfirmationSize is the size of the confirmation MAC in bytes.
	ConfirmationSize = sha256.Size
)

// keyInfo is the HKDF info label for session key derivation.
const keyInfo = "wisp-setup key schedule"

// Confirmation MAC labels. Each endpoint MACs with its own role label,
// so the two confirmations never collide.
var (
	labelController = []byte("controller")
	labelDevice     = []byte("device")
)

// Handshake errors.
var (
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidNonce      = errors.New("invalid hello nonce")
	ErrVersionMismatch   = errors.New("protocol version mismatch")
	ErrProofMismatch     = errors.New("proof of possession mismatch")
	ErrHandshakeRejected = errors.New("handshake rejected by peer")
)

// sessionKeys holds the keys derived from one handshake. Each direction
// seals with its own key; the confirm key authenticates the handshake
// itself and is never used for sealing.
type sessionKeys struct {
	controller []byte // seals controller-to-device frames
	device     []byte // seals device-to-controller frames
	confirm    []byte
}

// deriveKeys computes the session keys from the ECDH shared secret and
// the proof of possession. The proof is mixed into the HKDF input
// keying material, so endpoints holding different proofs derive
// unrelated keys and fail the confirm exchange.
func deriveKeys(shared []byte, proof string, controllerPub, devicePub, controllerNonce, deviceNonce []byte) (sessionKeys, error) {
	// Transcript hash binds both public keys and both nonces.
	h := sha256.New()
	h.Write(controllerPub)
	h.Write(devicePub)
	h.Write(controllerNonce)
	h.Write(deviceNonce)
	salt := h.Sum(nil)

	ikm := make([]byte, 0, len(shared)+len(proof))
	ikm = append(ikm, shared...)
	ikm = append(ikm, proof...)

	reader := hkdf.New(sha256.New, ikm, salt, []byte(keyInfo))

	keys := sessionKeys{
		controller: make([]byte, KeySize),
		device:     make([]byte, KeySize),
		confirm:    make([]byte, KeySize),
	}
	if _, err := io.ReadFull(reader, keys.controller); err != nil {
		return sessionKeys{}, fmt.Errorf("failed to derive controller key: %w", err)
	}
	if _, err := io.ReadFull(reader, keys.device); err != nil {
		return sessionKeys{}, fmt.Errorf("failed to derive device key: %w", err)
	}
	if _, err := io.ReadFull(reader, keys.confirm); err != nil {
		return sessionKeys{}, fmt.Errorf("failed to derive confirm key: %w", err)
	}
	return keys, nil
}

// confirmation computes the confirmation MAC for one role over the
// handshake public keys.
func confirmation(confirmKey, label, ownPub, peerPub []byte) []byte {
	mac := hmac.New(sha256.New, confirmKey)
	mac.Write(label)
	mac.Write(ownPub)
	mac.Write(peerPub)
	return mac.Sum(nil)
}

// verifyConfirmation checks a peer's confirmation MAC in constant time.
func verifyConfirmation(confirmKey, label, peerPub, ownPub, got []byte) bool {
	expected := confirmation(confirmKey, label, peerPub, ownPub)
	return hmac.Equal(got, expected)
}

// generateKeyPair creates an ephemeral X25519 key pair.
func generateKeyPair() (priv, pub []byte, err error) {
	priv = make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(priv); err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	pub, err = curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive public key: %w", err)
	}
	return priv, pub, nil
}

// newHelloNonce creates a random hello nonce.
func newHelloNonce() ([]byte, error) {
	nonce := make([]byte, HelloNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// cipherState seals or opens frames for one direction. Nonces are a
// monotonic counter; TCP ordering and the length-prefixed framing keep
// both ends in step, so the counter never needs to cross the wire.
type cipherState struct {
	aead cipher.AEAD

	mu      sync.Mutex
	counter uint64
}

func newCipherState(key []byte) (*cipherState, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &cipherState{aead: aead}, nil
}

// nextNonce returns the nonce for the next frame and advances the
// counter.
func (c *cipherState) nextNonce() []byte {
	c.mu.Lock()
	n := c.counter
	c.counter++
	c.mu.Unlock()

	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[4:], n)
	return nonce
}

// seal encrypts one frame payload.
func (c *cipherState) seal(plaintext []byte) []byte {
	return c.aead.Seal(nil, c.nextNonce(), plaintext, nil)
}

// open decrypts one frame payload.
func (c *cipherState) open(ciphertext []byte) ([]byte, error) {
	plaintext, err := c.aead.Open(nil, c.nextNonce(), ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed frame: %w", err)
	}
	return plaintext, nil
}

// secureChannel exchanges sealed setup messages over a framer.
type secureChannel struct {
	framer *Framer
	send   *cipherState
	recv   *cipherState

	// writeMu keeps seal order and wire order identical, so the
	// receiver's counter stays in step.
	writeMu sync.Mutex
}

// WriteMessage seals and sends one setup message. Safe for concurrent
// use.
func (s *secureChannel) WriteMessage(msg any) error {
	data, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.framer.WriteFrame(s.send.seal(data))
}

// ReadMessage receives and opens one setup message.
func (s *secureChannel) ReadMessage() (any, error) {
	frame, err := s.framer.ReadFrame()
	if err != nil {
		return nil, err
	}
	plaintext, err := s.recv.open(frame)
	if err != nil {
		return nil, err
	}
	return DecodeMessage(plaintext)
}

// writePlain sends one unsealed handshake message.
func writePlain(fr *Framer, msg any) error {
	data, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return fr.WriteFrame(data)
}

// readPlain receives one unsealed handshake message.
func readPlain(fr *Framer) (any, error) {
	frame, err := fr.ReadFrame()
	if err != nil {
		return nil, err
	}
	return DecodeMessage(frame)
}

// controllerHandshake runs the controller side of the hello/confirm
// exchange and returns the sealed channel on success.
func controllerHandshake(fr *Framer, proof string) (*secureChannel, error) {
	priv, pub, err := generateKeyPair()
	if err != nil {
		return nil, err
	}
	nonce, err := newHelloNonce()
	if err != nil {
		return nil, err
	}

	hello := &Hello{
		MsgType:   MsgHello,
		Version:   version.Current,
		PublicKey: pub,
		Nonce:     nonce,
	}
	if err := writePlain(fr, hello); err != nil {
		return nil, fmt.Errorf("failed to send hello: %w", err)
	}

	msg, err := readPlain(fr)
	if err != nil {
		return nil, fmt.Errorf("failed to read hello ack: %w", err)
	}
	ack, ok := msg.(*HelloAck)
	if !ok {
		if errMsg, ok := msg.(*SetupError); ok {
			return nil, fmt.Errorf("%w: %s (code %d)", ErrHandshakeRejected, errMsg.Message, errMsg.ErrorCode)
		}
		return nil, fmt.Errorf("%w: expected hello ack, got %s", ErrInvalidMessage, MessageKind(msg))
	}
	switch ack.ErrorCode {
	case ErrCodeOK:
	case ErrCodeVersionMismatch:
		return nil, fmt.Errorf("%w: device speaks %q", ErrVersionMismatch, ack.Version)
	default:
		return nil, fmt.Errorf("%w: code %d", ErrHandshakeRejected, ack.ErrorCode)
	}

	deviceVersion, err := version.Parse(ack.Version)
	if err != nil {
		return nil, fmt.Errorf("device sent invalid version: %w", err)
	}
	ours, _ := version.Parse(version.Current)
	if !ours.Compatible(deviceVersion) {
		return nil, fmt.Errorf("%w: device speaks %q", ErrVersionMismatch, ack.Version)
	}
	if len(ack.PublicKey) != curve25519.PointSize {
		return nil, ErrInvalidPublicKey
	}
	if len(ack.Nonce) != HelloNonceSize {
		return nil, ErrInvalidNonce
	}

	shared, err := curve25519.X25519(priv, ack.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	keys, err := deriveKeys(shared, proof, pub, ack.PublicKey, nonce, ack.Nonce)
	if err != nil {
		return nil, err
	}

	confirm := &Confirm{
		MsgType:      MsgConfirm,
		Confirmation: confirmation(keys.confirm, labelController, pub, ack.PublicKey),
	}
	if err := writePlain(fr, confirm); err != nil {
		return nil, fmt.Errorf("failed to send confirm: %w", err)
	}

	msg, err = readPlain(fr)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirm ack: %w", err)
	}
	confirmAck, ok := msg.(*ConfirmAck)
	if !ok {
		return nil, fmt.Errorf("%w: expected confirm ack, got %s", ErrInvalidMessage, MessageKind(msg))
	}
	if confirmAck.ErrorCode == ErrCodeProofMismatch {
		return nil, ErrProofMismatch
	}
	if confirmAck.ErrorCode != ErrCodeOK {
		return nil, fmt.Errorf("%w: code %d", ErrHandshakeRejected, confirmAck.ErrorCode)
	}
	if !verifyConfirmation(keys.confirm, labelDevice, ack.PublicKey, pub, confirmAck.Confirmation) {
		return nil, ErrProofMismatch
	}

	send, err := newCipherState(keys.controller)
	if err != nil {
		return nil, err
	}
	recv, err := newCipherState(keys.device)
	if err != nil {
		return nil, err
	}
	return &secureChannel{framer: fr, send: send, recv: recv}, nil
}

// deviceHandshake runs the device side of the hello/confirm exchange.
// Version and proof failures are reported to the controller before the
// error returns, so the peer learns why the session died.
func deviceHandshake(fr *Framer, proof string) (*secureChannel, error) {
	msg, err := readPlain(fr)
	if err != nil {
		return nil, fmt.Errorf("failed to read hello: %w", err)
	}
	hello, ok := msg.(*Hello)
	if !ok {
		return nil, fmt.Errorf("%w: expected hello, got %s", ErrInvalidMessage, MessageKind(msg))
	}

	controllerVersion, err := version.Parse(hello.Version)
	ours, _ := version.Parse(version.Current)
	if err != nil || !ours.Compatible(controllerVersion) {
		_ = writePlain(fr, &HelloAck{
			MsgType:   MsgHelloAck,
			Version:   version.Current,
			ErrorCode: ErrCodeVersionMismatch,
		})
		return nil, fmt.Errorf("%w: controller speaks %q", ErrVersionMismatch, hello.Version)
	}
	if len(hello.PublicKey) != curve25519.PointSize || len(hello.Nonce) != HelloNonceSize {
		_ = writePlain(fr, &HelloAck{
			MsgType:   MsgHelloAck,
			Version:   version.Current,
			ErrorCode: ErrCodeInvalidKey,
		})
		return nil, ErrInvalidPublicKey
	}

	priv, pub, err := generateKeyPair()
	if err != nil {
		return nil, err
	}
	nonce, err := newHelloNonce()
	if err != nil {
		return nil, err
	}

	ack := &HelloAck{
		MsgType:   MsgHelloAck,
		Version:   version.Current,
		PublicKey: pub,
		Nonce:     nonce,
		ErrorCode: ErrCodeOK,
	}
	if err := writePlain(fr, ack); err != nil {
		return nil, fmt.Errorf("failed to send hello ack: %w", err)
	}

	shared, err := curve25519.X25519(priv, hello.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	keys, err := deriveKeys(shared, proof, hello.PublicKey, pub, hello.Nonce, nonce)
	if err != nil {
		return nil, err
	}

	msg, err = readPlain(fr)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirm: %w", err)
	}
	confirm, ok := msg.(*Confirm)
	if !ok {
		return nil, fmt.Errorf("%w: expected confirm, got %s", ErrInvalidMessage, MessageKind(msg))
	}

	errorCode := ErrCodeOK
	if !verifyConfirmation(keys.confirm, labelController, hello.PublicKey, pub, confirm.Confirmation) {
		errorCode = ErrCodeProofMismatch
	}

	confirmAck := &ConfirmAck{
		MsgType:      MsgConfirmAck,
		Confirmation: confirmation(keys.confirm, labelDevice, pub, hello.PublicKey),
		ErrorCode:    errorCode,
	}
	if err := writePlain(fr, confirmAck); err != nil {
		return nil, fmt.Errorf("failed to send confirm ack: %w", err)
	}
	if errorCode != ErrCodeOK {
		return nil, ErrProofMismatch
	}

	// Directions mirror the controller: the device opens with the
	// controller key and seals with its own.
	send, err := newCipherState(keys.device)
	if err != nil {
		return nil, err
	}
	recv, err := newCipherState(keys.controller)
	if err != nil {
		return nil, err
	}
	return &secureChannel{framer: fr, send: send, recv: recv}, nil
}
