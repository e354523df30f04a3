// Package transport defines the capability surface a provisioning
// workflow drives and the event model it consumes.
//
// A Transport performs the actual radio and network I/O: discovering
// devices in setup mode, establishing the proof-of-possession-secured
// control channel, scanning for wireless networks through the device,
// and delivering credentials. The workflow in pkg/provision never
// blocks on a Transport call; every call is fire-and-forget and its
// error return only reports whether the request was accepted for
// dispatch. Outcomes arrive later as events.
//
// # Event Model
//
// Events flow on six named channels:
//
//	ChannelDiscovery    device discovery results and scan lifecycle
//	ChannelNetworkScan  wireless networks visible to the device
//	ChannelConnection   session lifecycle (connected/failed/disconnected)
//	ChannelProvisioning credential application progress codes
//	ChannelCustomData   application-defined data exchange outcomes
//	ChannelPermission   platform permission changes (not consumed by
//	                    the workflow; surfaced for embedding apps)
//
// Each channel carries one concrete payload type implementing Event.
// Payloads are tagged unions: the variant is decoded before any
// handler logic runs, so handlers switch on a tag (or a non-nil
// field), never on ad-hoc shape probes.
//
// # Delivery Discipline
//
// Implementations must deliver events serially: one handler invocation
// completes before the next begins, even across channels. Emitter
// provides that discipline (single dispatch goroutine, FIFO mailbox)
// and is the intended backbone for Transport implementations. Within
// one channel, delivery order matches emit order.
package transport
