package provision

import (
	"github.com/wisp-protocol/wisp-go/pkg/transport"
)

// connectionTracker guards connection attempts and remembers the device
// they target. The connecting flag is the workflow's only single-flight
// primitive: it opens when a connect request is issued and closes on the
// first connection event, whatever status that event carries.
//
// Not safe for concurrent use; the Workflow serializes access.
type connectionTracker struct {
	connecting bool
	device     transport.Device
	hasDevice  bool
}

// reset clears the guard and the recorded device.
func (t *connectionTracker) reset() {
	*t = connectionTracker{}
}

// begin opens the guard window. It reports false when an attempt is
// already in flight, in which case the caller must not issue a second
// transport call.
func (t *connectionTracker) begin() bool {
	if t.connecting {
		return false
	}
	t.connecting = true
	return true
}

// settle closes the guard window.
func (t *connectionTracker) settle() {
	t.connecting = false
}

// record remembers the device a connect request targets. The record
// survives a disconnected event; only clear removes it.
func (t *connectionTracker) record(dev transport.Device) {
	t.device = dev
	t.hasDevice = true
}

// clear forgets the recorded device.
func (t *connectionTracker) clear() {
	t.device = transport.Device{}
	t.hasDevice = false
}

// current returns the recorded device, if any.
func (t *connectionTracker) current() (transport.Device, bool) {
	return t.device, t.hasDevice
}
