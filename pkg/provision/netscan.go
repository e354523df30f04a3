package provision

import (
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// scanTracker holds the wireless networks reported by the connected
// device. Unlike device discovery, a network scan produces one bulk list
// per pass; each list replaces the previous one wholesale.
//
// Not safe for concurrent use; the Workflow serializes access.
type scanTracker struct {
	networks []wifi.Network
	scanning bool
}

// reset clears the results and the scanning flag.
func (t *scanTracker) reset() {
	t.networks = nil
	t.scanning = false
}

// setResults replaces the results with nets and ends the pass.
func (t *scanTracker) setResults(nets []wifi.Network) {
	t.networks = nil
	if len(nets) > 0 {
		t.networks = make([]wifi.Network, len(nets))
		copy(t.networks, nets)
	}
	t.scanning = false
}

// fail ends the pass without touching the previous results.
func (t *scanTracker) fail() {
	t.scanning = false
}

// list returns a copy of the most recent results.
func (t *scanTracker) list() []wifi.Network {
	if len(t.networks) == 0 {
		return nil
	}
	out := make([]wifi.Network, len(t.networks))
	copy(out, t.networks)
	return out
}
