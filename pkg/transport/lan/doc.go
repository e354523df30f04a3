// Package lan implements the device setup transport over a local
// network.
//
// The transport handles:
//   - mDNS discovery of setup-mode devices
//   - Length-prefixed message framing over TCP
//   - A proof-of-possession handshake deriving per-direction keys
//   - ChaCha20-Poly1305 sealed CBOR messages
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      CBOR Messages             │
//	├────────────────────────────────┤
//	│  ChaCha20-Poly1305 Sealing     │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Handshake
//
// Sessions open with a four-message exchange:
//
//	controller → device: hello       (version, X25519 public key, nonce)
//	device → controller: hello ack   (version, X25519 public key, nonce)
//	controller → device: confirm     (confirmation MAC)
//	device → controller: confirm ack (confirmation MAC)
//
// Both ends mix the ECDH shared secret and the proof of possession into
// an HKDF-SHA256 key schedule salted with a transcript hash of both
// public keys and nonces. The confirm exchange proves both ends derived
// the same keys before any setup message flows, so an endpoint holding
// the wrong proof never sees a sealed frame.
//
// After the handshake every frame is sealed with ChaCha20-Poly1305
// under the sender's directional key. Nonces are a monotonic counter
// per direction and never cross the wire.
//
// # Discovery
//
// Devices in setup mode advertise the _wisp-setup._tcp service with
// TXT records carrying their identity, display name, protocol version,
// and whether a proof of possession is required.
package lan
