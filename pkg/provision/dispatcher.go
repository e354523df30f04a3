package provision

import (
	"github.com/wisp-protocol/wisp-go/pkg/transport"
)

// channelHandlers carries one typed callback per consumed transport
// channel. The permission channel is not consumed here; it belongs to
// the platform permission collaborator.
type channelHandlers struct {
	discovery    func(transport.DiscoveryEvent)
	networkScan  func(transport.NetworkScanEvent)
	connection   func(transport.ConnectionEvent)
	provisioning func(transport.ProvisioningEvent)
	customData   func(transport.CustomDataEvent)
}

// eventDispatcher owns the workflow's transport subscriptions. It decodes
// each raw event into its channel's typed shape before any handler logic
// runs, and guarantees the five registrations are held exactly once: a
// second start releases the previous registrations first, and stop
// without a matching start is a no-op.
//
// Not safe for concurrent use; the Workflow serializes access.
type eventDispatcher struct {
	tr      transport.Transport
	cancels []func()
}

func newEventDispatcher(tr transport.Transport) *eventDispatcher {
	return &eventDispatcher{tr: tr}
}

// start registers one listener per channel. Any registrations from an
// earlier start are released first so no channel is delivered twice.
func (d *eventDispatcher) start(h channelHandlers) {
	d.stop()
	d.cancels = []func(){
		d.tr.Subscribe(transport.ChannelDiscovery, func(ev transport.Event) {
			if e, ok := ev.(transport.DiscoveryEvent); ok {
				h.discovery(e)
			}
		}),
		d.tr.Subscribe(transport.ChannelNetworkScan, func(ev transport.Event) {
			if e, ok := ev.(transport.NetworkScanEvent); ok {
				h.networkScan(e)
			}
		}),
		d.tr.Subscribe(transport.ChannelConnection, func(ev transport.Event) {
			if e, ok := ev.(transport.ConnectionEvent); ok {
				h.connection(e)
			}
		}),
		d.tr.Subscribe(transport.ChannelProvisioning, func(ev transport.Event) {
			if e, ok := ev.(transport.ProvisioningEvent); ok {
				h.provisioning(e)
			}
		}),
		d.tr.Subscribe(transport.ChannelCustomData, func(ev transport.Event) {
			if e, ok := ev.(transport.CustomDataEvent); ok {
				h.customData(e)
			}
		}),
	}
}

// stop releases all registrations. Safe to call repeatedly.
func (d *eventDispatcher) stop() {
	for _, cancel := range d.cancels {
		cancel()
	}
	d.cancels = nil
}
