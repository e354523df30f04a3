package lan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wisp-protocol/wisp-go/pkg/log"
	"github.com/wisp-protocol/wisp-go/pkg/transport"
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// DefaultDeviceAddr is the address ConnectViaNetwork dials when no
// DeviceAddr is configured. It matches the soft-AP gateway address
// most setup-mode devices assign themselves.
const DefaultDeviceAddr = "192.168.4.1:7632"

// Client errors.
var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("client closed")

	// ErrUnknownDevice indicates the identity was never discovered.
	ErrUnknownDevice = errors.New("device not discovered")

	// ErrSessionActive indicates a session is already established or
	// being established.
	ErrSessionActive = errors.New("session already active")

	// ErrNoSession indicates no session is established.
	ErrNoSession = errors.New("no active session")
)

// ClientConfig configures a LAN setup client.
type ClientConfig struct {
	// Interface restricts discovery to one network interface.
	// Empty uses all multicast-capable interfaces.
	Interface string

	// DeviceAddr is the address ConnectViaNetwork dials. Defaults to
	// DefaultDeviceAddr.
	DeviceAddr string

	// StaticDevices seeds the device table for networks where
	// multicast DNS is filtered. Static devices surface through
	// discovery events like browsed ones.
	StaticDevices []transport.Device

	// DiscoveryTimeout ends a discovery scan after a fixed window and
	// reports it completed. Zero scans until stopped.
	DiscoveryTimeout time.Duration

	// ConnectTimeout bounds the TCP dial (default 10s).
	ConnectTimeout time.Duration

	// HandshakeTimeout bounds the hello/confirm exchange (default 10s).
	HandshakeTimeout time.Duration

	// MaxMessageSize is the maximum frame payload size (default 64 KB).
	MaxMessageSize uint32

	// Logger receives protocol capture events. Nil disables capture.
	Logger log.Logger

	// OpLogger receives operational log records. Nil disables them.
	OpLogger *slog.Logger
}

// DefaultClientConfig returns a client configuration with defaults
// suitable for most networks.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		DeviceAddr:       DefaultDeviceAddr,
		ConnectTimeout:   10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   DefaultMaxMessageSize,
	}
}

// browseState tracks one discovery scan so a later scan or stop can
// tell whether it is acting on the current one.
type browseState struct {
	cancel context.CancelFunc
}

// session is one established setup session.
type session struct {
	id         string
	conn       net.Conn
	ch         *secureChannel
	remoteAddr string

	// closed guards the single disconnected announcement.
	closed sync.Once
}

// Client is the controller side of the LAN setup transport. It browses
// for devices over mDNS, establishes proof-of-possession-secured TCP
// sessions, and surfaces everything as channel events.
type Client struct {
	config  ClientConfig
	emitter *transport.Emitter

	mu      sync.Mutex
	devices map[string]transport.Device
	browse  *browseState
	dialing bool
	sess    *session
	closedC bool
}

// NewClient creates a LAN setup client. Zero config fields take their
// defaults.
func NewClient(config ClientConfig) *Client {
	if config.DeviceAddr == "" {
		config.DeviceAddr = DefaultDeviceAddr
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	return &Client{
		config:  config,
		emitter: transport.NewEmitter(config.OpLogger),
		devices: make(map[string]transport.Device),
	}
}

// CheckPermissions verifies a usable network interface exists. Loopback
// counts: direct-address provisioning works without multicast.
func (c *Client) CheckPermissions() error {
	ifaces, err := net.Interfaces()
	if err != nil {
		c.emit(transport.PermissionEvent{Granted: false, Message: err.Error()})
		return fmt.Errorf("failed to enumerate interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&(net.FlagMulticast|net.FlagLoopback) == 0 {
			continue
		}
		if c.config.Interface != "" && iface.Name != c.config.Interface {
			continue
		}
		c.emit(transport.PermissionEvent{Granted: true})
		return nil
	}

	err = errors.New("no usable network interface")
	c.emit(transport.PermissionEvent{Granted: false, Message: err.Error()})
	return err
}

// StartDiscovery begins browsing for setup-mode devices whose name
// starts with prefix. A scan already in progress is replaced.
func (c *Client) StartDiscovery(prefix string) error {
	c.mu.Lock()
	if c.closedC {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.browse != nil {
		c.browse.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	state := &browseState{cancel: cancel}
	c.browse = state

	seeded := make([]transport.Device, 0, len(c.config.StaticDevices))
	for _, d := range c.config.StaticDevices {
		if prefix != "" && !strings.HasPrefix(d.Name, prefix) {
			continue
		}
		c.devices[d.Identity] = d
		seeded = append(seeded, d)
	}
	c.mu.Unlock()

	browser := NewBrowser(BrowserConfig{Interface: c.config.Interface})
	results, err := browser.Browse(ctx)
	if err != nil {
		cancel()
		c.clearBrowse(state)
		return fmt.Errorf("failed to start discovery: %w", err)
	}

	c.oplog().Debug("discovery started", "prefix", prefix)
	c.emit(transport.DiscoveryEvent{
		Kind: transport.DiscoveryScanStatus,
		Scan: transport.ScanStatusChange{Status: transport.ScanStarted},
	})
	for _, d := range seeded {
		c.emit(transport.DiscoveryEvent{Kind: transport.DiscoveryDevice, Device: d})
	}

	go c.browseLoop(ctx, state, results, prefix)
	return nil
}

// StopDiscovery ends the active discovery scan. Calling it with no
// scan in progress is harmless.
func (c *Client) StopDiscovery() error {
	c.mu.Lock()
	state := c.browse
	c.browse = nil
	c.mu.Unlock()

	if state == nil {
		return nil
	}
	state.cancel()

	c.oplog().Debug("discovery stopped")
	c.emit(transport.DiscoveryEvent{
		Kind: transport.DiscoveryScanStatus,
		Scan: transport.ScanStatusChange{Status: transport.ScanIdle},
	})
	return nil
}

// browseLoop consumes browse results until the scan ends.
func (c *Client) browseLoop(ctx context.Context, state *browseState, results <-chan *SetupService, prefix string) {
	var window <-chan time.Time
	if c.config.DiscoveryTimeout > 0 {
		timer := time.NewTimer(c.config.DiscoveryTimeout)
		defer timer.Stop()
		window = timer.C
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return
			}
			if prefix != "" && !strings.HasPrefix(svc.Name, prefix) {
				continue
			}
			device := transport.Device{
				Identity: svc.Identity,
				Name:     svc.Name,
				Addr:     svc.Addr(),
			}

			c.mu.Lock()
			if c.closedC {
				c.mu.Unlock()
				return
			}
			c.devices[device.Identity] = device
			c.mu.Unlock()

			c.oplog().Debug("device discovered",
				"identity", device.Identity,
				"name", device.Name,
				"addr", device.Addr)
			c.emit(transport.DiscoveryEvent{Kind: transport.DiscoveryDevice, Device: device})

		case <-window:
			// The discovery window elapsed without an explicit stop.
			if !c.clearBrowse(state) {
				return
			}
			state.cancel()
			c.emit(transport.DiscoveryEvent{
				Kind: transport.DiscoveryScanStatus,
				Scan: transport.ScanStatusChange{Status: transport.ScanCompleted},
			})
			return

		case <-ctx.Done():
			return
		}
	}
}

// clearBrowse detaches state if it is still the active scan. Returns
// false when a newer scan or a stop already took over.
func (c *Client) clearBrowse(state *browseState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browse != state {
		return false
	}
	c.browse = nil
	return true
}

// Connect dials a discovered device and runs the secured handshake.
// The outcome arrives on ChannelConnection.
func (c *Client) Connect(identity string, proofOfPossession string) error {
	c.mu.Lock()
	if c.closedC {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.sess != nil || c.dialing {
		c.mu.Unlock()
		return ErrSessionActive
	}
	device, ok := c.devices[identity]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownDevice, identity)
	}
	if device.Addr == "" {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q has no resolved address", ErrUnknownDevice, identity)
	}
	c.dialing = true
	c.mu.Unlock()

	go c.dial(device.Addr, proofOfPossession)
	return nil
}

// ConnectViaNetwork dials the configured device address directly,
// without prior discovery. Used when the controller has joined the
// device's own setup network.
func (c *Client) ConnectViaNetwork(proofOfPossession string) error {
	c.mu.Lock()
	if c.closedC {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.sess != nil || c.dialing {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.dialing = true
	c.mu.Unlock()

	go c.dial(c.config.DeviceAddr, proofOfPossession)
	return nil
}

// dial establishes one session and reports the outcome by event.
func (c *Client) dial(addr, proof string) {
	sessionID := uuid.New().String()
	c.oplog().Debug("connecting", "addr", addr, "session_id", sessionID)

	dialer := &net.Dialer{Timeout: c.config.ConnectTimeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		c.dialFailed(sessionID, addr, fmt.Errorf("dial failed: %w", err))
		return
	}

	framer := NewFramerWithMaxSize(conn, c.config.MaxMessageSize)
	framer.SetLogger(c.config.Logger, sessionID)

	conn.SetDeadline(time.Now().Add(c.config.HandshakeTimeout))
	channel, err := controllerHandshake(framer, proof)
	if err != nil {
		conn.Close()
		c.dialFailed(sessionID, addr, fmt.Errorf("handshake failed: %w", err))
		return
	}
	conn.SetDeadline(time.Time{})
	framer.MarkSealed()

	s := &session{
		id:         sessionID,
		conn:       conn,
		ch:         channel,
		remoteAddr: conn.RemoteAddr().String(),
	}

	c.mu.Lock()
	c.dialing = false
	if c.closedC {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.sess = s
	c.mu.Unlock()

	c.oplog().Info("session established", "addr", addr, "session_id", sessionID)
	c.logState(s, "", "CONNECTED", "")
	c.emit(transport.ConnectionEvent{Status: transport.ConnConnected})

	go c.readLoop(s)
}

// dialFailed clears the dial guard and announces the failure.
func (c *Client) dialFailed(sessionID, addr string, err error) {
	c.mu.Lock()
	c.dialing = false
	c.mu.Unlock()

	c.oplog().Warn("connect failed", "addr", addr, "err", err)
	c.logError(sessionID, "connect", err)
	c.emit(transport.ConnectionEvent{Status: transport.ConnFailed})
}

// Disconnect tears down the session. Calling it with no session
// established is harmless.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	s := c.sess
	c.sess = nil
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	// The read loop observes the close and announces the disconnect.
	s.conn.Close()
	return nil
}

// StartNetworkScan asks the device to scan for wireless networks.
func (c *Client) StartNetworkScan() error {
	s, err := c.currentSession()
	if err != nil {
		return err
	}
	return c.sendMessage(s, &ScanRequest{MsgType: MsgScanRequest})
}

// SubmitCredential sends the selected network and its secret.
func (c *Client) SubmitCredential(ssid string, secret string) error {
	s, err := c.currentSession()
	if err != nil {
		return err
	}
	return c.sendMessage(s, &Credential{MsgType: MsgCredential, SSID: ssid, Secret: secret})
}

// SendCustomData transmits an application-defined payload.
func (c *Client) SendCustomData(name string, payload []byte) error {
	s, err := c.currentSession()
	if err != nil {
		return err
	}

	c.emit(transport.CustomDataEvent{Status: transport.CustomDataSending})
	if err := c.sendMessage(s, &CustomData{MsgType: MsgCustomData, Name: name, Payload: payload}); err != nil {
		c.emit(transport.CustomDataEvent{Status: transport.CustomDataFailed, Message: err.Error()})
		return err
	}
	return nil
}

// Subscribe registers fn for events on ch.
func (c *Client) Subscribe(ch transport.Channel, fn transport.Handler) (cancel func()) {
	return c.emitter.Subscribe(ch, fn)
}

// Close stops discovery, tears down the session, and stops event
// delivery. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closedC {
		c.mu.Unlock()
		return nil
	}
	c.closedC = true
	browse := c.browse
	c.browse = nil
	s := c.sess
	c.sess = nil
	c.mu.Unlock()

	if browse != nil {
		browse.cancel()
	}
	if s != nil {
		s.conn.Close()
	}
	c.emitter.Close()
	return nil
}

// currentSession returns the active session or an error.
func (c *Client) currentSession() (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedC {
		return nil, ErrClientClosed
	}
	if c.sess == nil {
		return nil, ErrNoSession
	}
	return c.sess, nil
}

// sendMessage seals and sends one message on a session.
func (c *Client) sendMessage(s *session, msg any) error {
	c.logMessage(s, log.DirectionOut, msg)
	if err := s.ch.WriteMessage(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", MessageKind(msg), err)
	}
	return nil
}

// readLoop receives device messages until the session ends, then
// announces the disconnect exactly once.
func (c *Client) readLoop(s *session) {
	for {
		msg, err := s.ch.ReadMessage()
		if err != nil {
			break
		}
		c.logMessage(s, log.DirectionIn, msg)
		c.handleMessage(msg)
	}

	c.mu.Lock()
	if c.sess == s {
		c.sess = nil
	}
	c.mu.Unlock()
	s.conn.Close()

	s.closed.Do(func() {
		c.oplog().Info("session ended", "session_id", s.id)
		c.logState(s, "CONNECTED", "DISCONNECTED", "")
		c.emit(transport.ConnectionEvent{Status: transport.ConnDisconnected})
	})
}

// handleMessage converts one device message into channel events.
func (c *Client) handleMessage(msg any) {
	switch m := msg.(type) {
	case *ScanResult:
		if m.ErrorCode != ErrCodeOK {
			c.emit(transport.NetworkScanEvent{Failed: true, Message: m.Message})
			return
		}
		c.emit(transport.NetworkScanEvent{Networks: wireToNetworks(m.Networks)})

	case *ProvisionStatus:
		c.emit(transport.ProvisioningEvent{
			Status:  transport.ProvStatus(m.Status),
			Message: m.Message,
		})

	case *CustomDataAck:
		status := transport.CustomDataSuccess
		if m.ErrorCode != ErrCodeOK {
			status = transport.CustomDataFailed
		}
		c.emit(transport.CustomDataEvent{Status: status, Message: m.Message})

	case *SetupError:
		c.oplog().Warn("device reported error", "code", m.ErrorCode, "message", m.Message)

	default:
		c.oplog().Debug("ignoring unexpected message", "kind", MessageKind(msg))
	}
}

// emit captures the dispatch and hands the event to subscribers.
func (c *Client) emit(ev transport.Event) {
	c.logDispatch(ev)
	c.emitter.Emit(ev)
}

// oplog returns the operational logger, or a silent one.
func (c *Client) oplog() *slog.Logger {
	if c.config.OpLogger != nil {
		return c.config.OpLogger
	}
	return noopSlog
}

// logDispatch captures one channel event at the service layer.
func (c *Client) logDispatch(ev transport.Event) {
	if c.config.Logger == nil {
		return
	}

	c.mu.Lock()
	sessionID := ""
	if c.sess != nil {
		sessionID = c.sess.id
	}
	c.mu.Unlock()

	c.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Layer:     log.LayerService,
		Category:  log.CategoryDispatch,
		LocalRole: log.RoleController,
		Dispatch: &log.DispatchEvent{
			Channel: ev.Channel(),
			Detail:  dispatchDetail(ev),
		},
	})
}

// dispatchDetail summarizes a channel event payload for capture.
func dispatchDetail(ev transport.Event) string {
	switch e := ev.(type) {
	case transport.DiscoveryEvent:
		if e.Kind == transport.DiscoveryScanStatus {
			return e.Scan.Status.String()
		}
		return e.Kind.String()
	case transport.NetworkScanEvent:
		if e.Failed {
			return "FAILED"
		}
		return "RESULTS"
	case transport.ConnectionEvent:
		return e.Status.String()
	case transport.ProvisioningEvent:
		return e.Status.String()
	case transport.CustomDataEvent:
		return e.Status.String()
	case transport.PermissionEvent:
		if e.Granted {
			return "GRANTED"
		}
		return "DENIED"
	default:
		return ""
	}
}

// logMessage captures one decoded message at the wire layer.
func (c *Client) logMessage(s *session, dir log.Direction, msg any) {
	if c.config.Logger == nil {
		return
	}
	c.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Direction:  dir,
		Layer:      log.LayerWire,
		Category:   log.CategoryMessage,
		LocalRole:  log.RoleController,
		RemoteAddr: s.remoteAddr,
		Message: &log.MessageEvent{
			Type:   messageRole(msg),
			Kind:   MessageKind(msg),
			Sealed: true,
		},
	})
}

// logState captures a session lifecycle change.
func (c *Client) logState(s *session, oldState, newState, reason string) {
	if c.config.Logger == nil {
		return
	}
	c.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Layer:      log.LayerTransport,
		Category:   log.CategoryState,
		LocalRole:  log.RoleController,
		RemoteAddr: s.remoteAddr,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// logError captures a transport-layer error.
func (c *Client) logError(sessionID, context string, err error) {
	if c.config.Logger == nil {
		return
	}
	c.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Layer:     log.LayerTransport,
		Category:  log.CategoryError,
		LocalRole: log.RoleController,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: context,
		},
	})
}

// wireToNetworks converts wire networks to the consumer type.
func wireToNetworks(in []Network) []wifi.Network {
	out := make([]wifi.Network, len(in))
	for i, n := range in {
		out[i] = wifi.Network{
			SSID:    n.SSID,
			Auth:    wifi.AuthMode(n.Auth),
			RSSI:    int(n.RSSI),
			Channel: n.Channel,
			BSSID:   n.BSSID,
		}
	}
	return out
}

// networksToWire converts consumer networks to the wire type.
func networksToWire(in []wifi.Network) []Network {
	out := make([]Network, len(in))
	for i, n := range in {
		out[i] = Network{
			SSID:    n.SSID,
			Auth:    uint8(n.Auth),
			RSSI:    int16(n.RSSI),
			Channel: n.Channel,
			BSSID:   n.BSSID,
		}
	}
	return out
}

// noopSlog discards all records.
var noopSlog = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// Compile-time interface satisfaction check.
var _ transport.Transport = (*Client)(nil)
