package provision

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/wisp-protocol/wisp-go/pkg/transport"
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// Workflow drives one provisioning run against one device. It owns the
// workflow state exclusively: callers issue commands, the transport's
// events mutate state, and observers read it back through accessors,
// Snapshot, or registered event handlers.
//
// All methods are safe for concurrent use. Transport-crossing commands
// are issued outside the state lock, so a transport that emits events
// synchronously cannot deadlock the workflow.
type Workflow struct {
	mu sync.RWMutex

	tr     transport.Transport
	msgs   Messages
	logger *slog.Logger

	started    bool
	dispatcher *eventDispatcher

	discovery discoveryTracker
	netscan   scanTracker
	conn      connectionTracker
	steps     stepSet

	selected    wifi.Network
	hasSelected bool

	status string

	handlers []EventHandler
}

// NewWorkflow creates a workflow from config. The workflow consumes no
// transport events until Start is called.
func NewWorkflow(config Config) (*Workflow, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Workflow{
		tr:         config.Transport,
		msgs:       config.Messages.withDefaults(),
		logger:     config.Logger,
		dispatcher: newEventDispatcher(config.Transport),
	}, nil
}

// Start resets the workflow state and subscribes to the transport's
// event channels. It verifies the platform permits the transport's
// operations first; a denial fails the start and registers nothing.
// Returns ErrAlreadyStarted if the workflow is already running.
func (w *Workflow) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.discovery.reset()
	w.netscan.reset()
	w.conn.reset()
	w.steps.reset()
	w.selected = wifi.Network{}
	w.hasSelected = false
	w.status = ""
	w.mu.Unlock()

	if err := w.tr.CheckPermissions(); err != nil {
		return fmt.Errorf("checking permissions: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	w.dispatcher.start(channelHandlers{
		discovery:    w.handleDiscovery,
		networkScan:  w.handleNetworkScan,
		connection:   w.handleConnection,
		provisioning: w.handleProvisioning,
		customData:   w.handleCustomData,
	})
	w.started = true

	if w.logger != nil {
		w.logger.Debug("provisioning workflow started")
	}
	return nil
}

// Stop releases the workflow's transport subscriptions and clears the
// discovered device collection. It is safe to call on a workflow that
// was never started, and safe to call more than once; no listeners are
// registered or leaked on any path. Step and status state survive until
// the next Start so a finished run stays inspectable.
func (w *Workflow) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.dispatcher.stop()
	if !w.started {
		return
	}
	w.started = false
	w.discovery.reset()
	w.netscan.scanning = false
	w.conn.connecting = false

	if w.logger != nil {
		w.logger.Debug("provisioning workflow stopped")
	}
}

// OnEvent registers a handler for workflow change notifications.
// Handlers run synchronously on the goroutine that caused the change,
// in registration order; they must return quickly and must not block.
// A handler may call back into the workflow.
func (w *Workflow) OnEvent(handler EventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// StartDiscovery begins a scan for devices in setup mode whose name
// starts with prefix. A new pass clears the previous device collection.
// The returned error wraps ErrScanStart when the transport rejects the
// request; results and scan lifecycle arrive as events.
func (w *Workflow) StartDiscovery(prefix string) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	w.discovery.reset()
	w.mu.Unlock()

	if err := w.tr.StartDiscovery(prefix); err != nil {
		return fmt.Errorf("%w: %v", ErrScanStart, err)
	}

	w.mu.Lock()
	w.discovery.scanning = true
	w.mu.Unlock()
	return nil
}

// StopDiscovery ends an active device scan. Safe to call when no scan
// is running.
func (w *Workflow) StopDiscovery() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	w.discovery.scanning = false
	w.mu.Unlock()

	return w.tr.StopDiscovery()
}

// Devices returns the discovered devices in first-seen order.
func (w *Workflow) Devices() []transport.Device {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.discovery.list()
}

// Connect opens a secured session to device, presenting the proof of
// possession. Connection attempts are single-flight: while one is in
// flight, Connect returns nil immediately without a second transport
// call. An active discovery scan is stopped first. The outcome arrives
// as a connection event; the guard releases on the first such event,
// whatever its status.
func (w *Workflow) Connect(device transport.Device, proofOfPossession string) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	if !w.conn.begin() {
		w.mu.Unlock()
		return nil
	}
	w.discovery.scanning = false
	w.mu.Unlock()

	// Safe when no scan is running; the transport treats it as a no-op.
	w.tr.StopDiscovery()

	if err := w.tr.Connect(device.Identity, proofOfPossession); err != nil {
		// Nothing is in flight, so the guard window closes here.
		w.mu.Lock()
		w.conn.settle()
		w.mu.Unlock()
		return fmt.Errorf("connecting to %q: %w", device.Identity, err)
	}

	w.mu.Lock()
	w.conn.record(device)
	w.mu.Unlock()
	return nil
}

// ConnectViaNetwork opens a session to a device that is already
// reachable on the local network, without prior discovery. The same
// single-flight guard as Connect applies; no device is recorded until
// the transport reports one through events.
func (w *Workflow) ConnectViaNetwork(proofOfPossession string) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	if !w.conn.begin() {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	if err := w.tr.ConnectViaNetwork(proofOfPossession); err != nil {
		w.mu.Lock()
		w.conn.settle()
		w.mu.Unlock()
		return fmt.Errorf("connecting via network: %w", err)
	}
	return nil
}

// Disconnect tears down the session and forgets the recorded device.
// Safe to call with no session established.
func (w *Workflow) Disconnect() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	w.conn.clear()
	w.mu.Unlock()

	return w.tr.Disconnect()
}

// ConnectedDevice returns the device recorded by the last Connect and
// whether one is recorded. A disconnected event does not clear the
// record; only Disconnect does.
func (w *Workflow) ConnectedDevice() (transport.Device, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.conn.current()
}

// ScanNetworks asks the connected device to scan for wireless networks
// in range. Results arrive as a network scan event. The returned error
// wraps ErrScanStart when the transport rejects the request.
func (w *Workflow) ScanNetworks() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	w.mu.Unlock()

	if err := w.tr.StartNetworkScan(); err != nil {
		return fmt.Errorf("%w: %v", ErrScanStart, err)
	}

	w.mu.Lock()
	w.netscan.scanning = true
	w.mu.Unlock()
	return nil
}

// Networks returns the most recent network scan results.
func (w *Workflow) Networks() []wifi.Network {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.netscan.list()
}

// Submit sends cred to the connected device. The session step is marked
// in progress immediately, before any event arrives; progress from the
// device advances the step trackers from there. Open networks submit an
// empty secret, whatever password the credential carries.
func (w *Workflow) Submit(cred wifi.Credential) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	w.steps.session.InProgress = true
	w.selected = cred.Network
	w.hasSelected = true
	status := w.status
	w.mu.Unlock()

	w.emit(Event{Type: EventStepChanged, Step: StepSession, Status: status})

	if err := w.tr.SubmitCredential(cred.SSID, cred.Secret()); err != nil {
		return fmt.Errorf("submitting credential for %q: %w", cred.SSID, err)
	}
	return nil
}

// SendCustomData transmits an application-defined payload to the
// connected device. The outcome arrives as a custom data event; the
// device's acknowledgment text decides success, not the status code
// alone.
func (w *Workflow) SendCustomData(name string, payload []byte) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	w.mu.Unlock()

	if err := w.tr.SendCustomData(name, payload); err != nil {
		return fmt.Errorf("sending custom data %q: %w", name, err)
	}
	return nil
}

// Status returns the human-readable workflow status.
func (w *Workflow) Status() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// Step returns the progress of one provisioning step.
func (w *Workflow) Step(id StepID) StepProgress {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.steps.get(id)
}

// Snapshot returns a point-in-time copy of the workflow state.
func (w *Workflow) Snapshot() State {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return State{
		Started:            w.started,
		Discovering:        w.discovery.scanning,
		Scanning:           w.netscan.scanning,
		Connecting:         w.conn.connecting,
		Devices:            w.discovery.list(),
		Networks:           w.netscan.list(),
		ConnectedDevice:    w.conn.device,
		HasConnectedDevice: w.conn.hasDevice,
		SelectedNetwork:    w.selected,
		HasSelectedNetwork: w.hasSelected,
		Session:            w.steps.session,
		Apply:              w.steps.apply,
		Final:              w.steps.final,
		Status:             w.status,
	}
}

// handleDiscovery folds one discovery event into the device collection
// and the scan lifecycle.
func (w *Workflow) handleDiscovery(ev transport.DiscoveryEvent) {
	w.mu.Lock()
	var events []Event

	switch ev.Kind {
	case transport.DiscoveryDeviceList:
		w.discovery.replaceAll(ev.Devices)
		events = append(events, Event{Type: EventDevicesChanged, Status: w.status})

	case transport.DiscoveryDevice:
		if w.discovery.add(ev.Device) {
			events = append(events, Event{Type: EventDevicesChanged, Status: w.status})
		}

	case transport.DiscoveryScanStatus:
		switch ev.Scan.Status {
		case transport.ScanStarted:
			w.discovery.scanning = true

		case transport.ScanFailed:
			w.discovery.scanning = false
			w.status = w.msgs.ScanFailed
			events = append(events, Event{
				Type:    EventFailed,
				Kind:    FailureScan,
				Status:  w.status,
				Message: ev.Scan.Message,
			})

		default:
			// Completed, idle, or a code this workflow does not know:
			// the scan is over. Leave the status alone while a
			// connection attempt is in flight; its message is the more
			// relevant one.
			w.discovery.scanning = false
			if !w.conn.connecting && w.status != "" {
				w.status = ""
				events = append(events, Event{Type: EventStatusChanged})
			}
		}
	}

	w.mu.Unlock()
	w.emit(events...)
}

// handleNetworkScan folds one network scan event into the result list.
// Failure text from the transport is surfaced verbatim, never
// catalog-translated.
func (w *Workflow) handleNetworkScan(ev transport.NetworkScanEvent) {
	w.mu.Lock()
	var events []Event

	if ev.Failed {
		w.netscan.fail()
		w.status = ev.Message
		events = append(events, Event{
			Type:    EventFailed,
			Kind:    FailureScan,
			Status:  w.status,
			Message: ev.Message,
		})
	} else {
		w.netscan.setResults(ev.Networks)
		w.status = ""
		events = append(events, Event{Type: EventNetworksChanged})
	}

	w.mu.Unlock()
	w.emit(events...)
}

// handleConnection settles the single-flight guard and publishes the
// session lifecycle change. The guard closes on the first event
// whatever its status; unknown status codes change nothing else.
func (w *Workflow) handleConnection(ev transport.ConnectionEvent) {
	w.mu.Lock()
	w.conn.settle()

	var events []Event
	switch ev.Status {
	case transport.ConnConnected:
		w.status = w.msgs.Connected
		events = append(events, Event{Type: EventConnected, Device: w.conn.device, Status: w.status})

	case transport.ConnFailed:
		w.status = w.msgs.ConnectFailed
		events = append(events, Event{Type: EventFailed, Kind: FailureConnect, Status: w.status})

	case transport.ConnDisconnected:
		// The recorded device survives; only an explicit Disconnect
		// clears it.
		w.status = w.msgs.Disconnected
		events = append(events, Event{Type: EventDisconnected, Device: w.conn.device, Status: w.status})

	default:
		if w.logger != nil {
			w.logger.Debug("ignoring unknown connection status",
				"status", uint8(ev.Status))
		}
	}

	w.mu.Unlock()
	w.emit(events...)
}

// handleProvisioning folds one provisioning status code into the step
// trackers and derives the overall status. Unrecognized codes are
// logged and degrade to the apply failure bucket.
func (w *Workflow) handleProvisioning(ev transport.ProvisioningEvent) {
	if !knownProvStatus(ev.Status) && w.logger != nil {
		w.logger.Warn("unrecognized provisioning status, treating as apply failure",
			"status", uint8(ev.Status),
			"message", ev.Message)
	}

	w.mu.Lock()
	var events []Event

	switch w.steps.applyStatus(ev.Status, ev.Message, w.msgs) {
	case outcomeNone:

	case outcomeSessionFailed:
		w.status = w.msgs.SessionError
		events = append(events, Event{
			Type:    EventFailed,
			Kind:    FailureSessionInit,
			Step:    StepSession,
			Status:  w.status,
			Message: ev.Message,
		})

	case outcomeApplied:
		w.status = w.msgs.Applied
		events = append(events, Event{Type: EventStepChanged, Step: StepApply, Status: w.status})

	case outcomeCompleted:
		w.status = w.msgs.Completed
		events = append(events, Event{Type: EventCompleted, Step: StepFinal, Status: w.status})

	case outcomeApplyFailed:
		w.status = w.msgs.ApplyError
		events = append(events, Event{
			Type:    EventFailed,
			Kind:    FailureApply,
			Step:    StepApply,
			Status:  w.status,
			Message: ev.Message,
		})
	}

	w.mu.Unlock()
	w.emit(events...)
}

// handleCustomData publishes the outcome of a custom data exchange.
// A success status only counts when the device's text confirms it:
// the message must begin with "success", case-insensitively.
func (w *Workflow) handleCustomData(ev transport.CustomDataEvent) {
	w.mu.Lock()
	var events []Event

	switch {
	case ev.Status == transport.CustomDataSending:
		w.status = w.msgs.CustomDataSending
		events = append(events, Event{Type: EventStatusChanged, Status: w.status})

	case ev.Status == transport.CustomDataSuccess && hasSuccessPrefix(ev.Message):
		w.status = w.msgs.CustomDataSent
		events = append(events, Event{Type: EventStatusChanged, Status: w.status})

	default:
		w.status = w.msgs.CustomDataFailed
		events = append(events, Event{
			Type:    EventFailed,
			Kind:    FailureCustomData,
			Status:  w.status,
			Message: ev.Message,
		})
	}

	w.mu.Unlock()
	w.emit(events...)
}

// hasSuccessPrefix reports whether the device's acknowledgment text
// confirms a successful custom data exchange.
func hasSuccessPrefix(message string) bool {
	return len(message) >= len("success") &&
		strings.EqualFold(message[:len("success")], "success")
}

// emit delivers events to the registered handlers, outside the state
// lock so handlers may call back into the workflow.
func (w *Workflow) emit(events ...Event) {
	if len(events) == 0 {
		return
	}

	w.mu.RLock()
	handlers := make([]EventHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, ev := range events {
		for _, handler := range handlers {
			handler(ev)
		}
	}
}
