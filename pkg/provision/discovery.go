package provision

import (
	"github.com/wisp-protocol/wisp-go/pkg/transport"
)

// discoveryTracker accumulates the devices reported by a discovery scan.
// Devices are kept in first-seen order and deduplicated by identity: the
// collection never holds two entries with the same identity, no matter
// how bulk lists and single announcements interleave.
//
// Not safe for concurrent use; the Workflow serializes access.
type discoveryTracker struct {
	devices  []transport.Device
	index    map[string]struct{}
	scanning bool
}

// reset clears the collection and the scanning flag.
func (t *discoveryTracker) reset() {
	t.devices = nil
	t.index = nil
	t.scanning = false
}

// add inserts a device unless its identity is already present.
// It reports whether the collection changed.
func (t *discoveryTracker) add(dev transport.Device) bool {
	if _, ok := t.index[dev.Identity]; ok {
		return false
	}
	if t.index == nil {
		t.index = make(map[string]struct{})
	}
	t.index[dev.Identity] = struct{}{}
	t.devices = append(t.devices, dev)
	return true
}

// replaceAll replaces the collection wholesale with devs, deduplicating
// by identity (first entry wins).
func (t *discoveryTracker) replaceAll(devs []transport.Device) {
	t.devices = nil
	t.index = nil
	for _, dev := range devs {
		t.add(dev)
	}
}

// list returns a copy of the collection in first-seen order.
func (t *discoveryTracker) list() []transport.Device {
	if len(t.devices) == 0 {
		return nil
	}
	out := make([]transport.Device, len(t.devices))
	copy(out, t.devices)
	return out
}
