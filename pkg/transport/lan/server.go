package lan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wisp-protocol/wisp-go/pkg/log"
	"github.com/wisp-protocol/wisp-go/pkg/transport"
	"github.com/wisp-protocol/wisp-go/pkg/version"
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// ServerConfig configures the device side of the setup transport.
type ServerConfig struct {
	// Identity is the stable device identity advertised to controllers.
	Identity string

	// Name is the human-facing device name. Empty falls back to Identity.
	Name string

	// ProofOfPossession is the setup secret controllers must prove
	// knowledge of during the handshake.
	ProofOfPossession string

	// Address to listen on (e.g. ":7632" or "127.0.0.1:0").
	// Defaults to ":7632".
	Address string

	// Interface restricts mDNS advertising to one interface.
	Interface string

	// Advertise registers the setup service over mDNS while running.
	Advertise bool

	// HandshakeTimeout bounds the hello/confirm exchange (default 10s).
	HandshakeTimeout time.Duration

	// MaxMessageSize is the maximum frame payload size (default 64 KB).
	MaxMessageSize uint32

	// Networks supplies scan results. Nil reports scans as failed.
	Networks func() ([]wifi.Network, error)

	// Provision applies a submitted credential and reports progress
	// through report. Nil runs the built-in success sequence.
	Provision func(ssid, secret string, report func(status transport.ProvStatus, message string))

	// CustomData handles an application payload and returns the reply
	// text. Nil acknowledges with "success".
	CustomData func(name string, payload []byte) (string, error)

	// Logger receives protocol capture events. Nil disables capture.
	Logger log.Logger

	// OpLogger receives operational log records. Nil disables them.
	OpLogger *slog.Logger
}

// Validate checks required fields.
func (c *ServerConfig) Validate() error {
	if c.Identity == "" {
		return errors.New("Identity is required")
	}
	if c.ProofOfPossession == "" {
		return errors.New("ProofOfPossession is required")
	}
	return nil
}

// Server is the device side of the LAN setup transport. It accepts
// controller connections, runs the proof-of-possession handshake, and
// answers setup requests over the sealed channel.
type Server struct {
	config     ServerConfig
	listener   net.Listener
	advertiser *Advertiser

	// Active sessions
	conns   map[*serverConn]struct{}
	connsMu sync.RWMutex

	// State
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a setup server.
func NewServer(config ServerConfig) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	return &Server{
		config: config,
		conns:  make(map[*serverConn]struct{}),
	}, nil
}

// Start begins listening and, when configured, advertising.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	if s.config.Advertise {
		advertiser := NewAdvertiser(AdvertiserConfig{Interface: s.config.Interface})
		info := &SetupInfo{
			Identity:      s.config.Identity,
			Name:          s.config.Name,
			Version:       version.Current,
			ProofRequired: true,
		}
		port := listener.Addr().(*net.TCPAddr).Port
		if err := advertiser.Advertise(info, port); err != nil {
			listener.Close()
			s.cancel()
			return fmt.Errorf("failed to advertise: %w", err)
		}
		s.advertiser = advertiser
	}

	s.running.Store(true)
	s.oplog().Info("setup server listening",
		"addr", listener.Addr().String(),
		"identity", s.config.Identity,
		"advertise", s.config.Advertise)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop stops advertising, closes the listener, and tears down all
// sessions. Safe to call more than once.
func (s *Server) Stop() error {
	if !s.running.Load() {
		return nil
	}

	s.running.Store(false)
	s.cancel()

	if s.advertiser != nil {
		s.advertiser.Stop()
	}
	if s.listener != nil {
		s.listener.Close()
	}

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// SessionCount returns the number of active sessions.
func (s *Server) SessionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() {
				s.oplog().Warn("accept failed", "err", err)
			}
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection runs the handshake and serves one session.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	sessionID := uuid.New().String()
	remoteAddr := conn.RemoteAddr().String()

	framer := NewFramerWithMaxSize(conn, s.config.MaxMessageSize)
	framer.SetLogger(s.config.Logger, sessionID)

	conn.SetDeadline(time.Now().Add(s.config.HandshakeTimeout))
	channel, err := deviceHandshake(framer, s.config.ProofOfPossession)
	if err != nil {
		conn.Close()
		s.oplog().Warn("handshake failed", "remote", remoteAddr, "err", err)
		s.logError(sessionID, remoteAddr, "handshake", err)
		return
	}
	conn.SetDeadline(time.Time{})
	framer.MarkSealed()

	sconn := &serverConn{
		server:     s,
		conn:       conn,
		ch:         channel,
		sessionID:  sessionID,
		remoteAddr: remoteAddr,
	}

	s.connsMu.Lock()
	s.conns[sconn] = struct{}{}
	s.connsMu.Unlock()

	s.oplog().Info("session established", "remote", remoteAddr, "session_id", sessionID)
	s.logState(sconn, "", "CONNECTED")

	sconn.readLoop()

	s.connsMu.Lock()
	delete(s.conns, sconn)
	s.connsMu.Unlock()
	sconn.close()

	s.oplog().Info("session ended", "remote", remoteAddr, "session_id", sessionID)
	s.logState(sconn, "CONNECTED", "DISCONNECTED")
}

// oplog returns the operational logger, or a silent one.
func (s *Server) oplog() *slog.Logger {
	if s.config.OpLogger != nil {
		return s.config.OpLogger
	}
	return noopSlog
}

// logState captures a session lifecycle change.
func (s *Server) logState(c *serverConn, oldState, newState string) {
	if s.config.Logger == nil {
		return
	}
	s.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  c.sessionID,
		Layer:      log.LayerTransport,
		Category:   log.CategoryState,
		LocalRole:  log.RoleDevice,
		RemoteAddr: c.remoteAddr,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: oldState,
			NewState: newState,
		},
	})
}

// logError captures a transport-layer error.
func (s *Server) logError(sessionID, remoteAddr, context string, err error) {
	if s.config.Logger == nil {
		return
	}
	s.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  sessionID,
		Layer:      log.LayerTransport,
		Category:   log.CategoryError,
		LocalRole:  log.RoleDevice,
		RemoteAddr: remoteAddr,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: context,
		},
	})
}

// serverConn is one controller session on the device side.
type serverConn struct {
	server     *Server
	conn       net.Conn
	ch         *secureChannel
	sessionID  string
	remoteAddr string

	closeOnce sync.Once
}

// close shuts the underlying connection down once.
func (c *serverConn) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// readLoop serves controller requests until the session ends.
func (c *serverConn) readLoop() {
	for {
		select {
		case <-c.server.ctx.Done():
			return
		default:
		}

		msg, err := c.ch.ReadMessage()
		if err != nil {
			return
		}
		c.logMessage(log.DirectionIn, msg)

		switch m := msg.(type) {
		case *ScanRequest:
			c.handleScanRequest()
		case *Credential:
			c.handleCredential(m)
		case *CustomData:
			c.handleCustomData(m)
		default:
			c.server.oplog().Warn("unexpected message", "kind", MessageKind(msg))
			c.notify(&SetupError{
				MsgType:   MsgError,
				ErrorCode: ErrCodeInternal,
				Message:   fmt.Sprintf("unexpected %s message", MessageKind(msg)),
			})
		}
	}
}

// handleScanRequest runs a network scan and reports the outcome.
func (c *serverConn) handleScanRequest() {
	scan := c.server.config.Networks
	if scan == nil {
		c.notify(&ScanResult{
			MsgType:   MsgScanResult,
			ErrorCode: ErrCodeScanFailed,
			Message:   "network scan not available",
		})
		return
	}

	networks, err := scan()
	if err != nil {
		c.notify(&ScanResult{
			MsgType:   MsgScanResult,
			ErrorCode: ErrCodeScanFailed,
			Message:   err.Error(),
		})
		return
	}

	c.notify(&ScanResult{MsgType: MsgScanResult, Networks: networksToWire(networks)})
}

// handleCredential applies a credential, streaming progress back.
func (c *serverConn) handleCredential(m *Credential) {
	report := func(status transport.ProvStatus, message string) {
		c.notify(&ProvisionStatus{
			MsgType: MsgProvisionStatus,
			Status:  uint8(status),
			Message: message,
		})
	}

	provision := c.server.config.Provision
	if provision == nil {
		provision = defaultProvision
	}
	provision(m.SSID, m.Secret, report)
}

// handleCustomData passes a payload to the handler and acknowledges.
func (c *serverConn) handleCustomData(m *CustomData) {
	handler := c.server.config.CustomData
	if handler == nil {
		handler = func(string, []byte) (string, error) { return "success", nil }
	}

	reply, err := handler(m.Name, m.Payload)
	if err != nil {
		c.notify(&CustomDataAck{
			MsgType:   MsgCustomDataAck,
			ErrorCode: ErrCodeInternal,
			Message:   err.Error(),
		})
		return
	}
	c.notify(&CustomDataAck{MsgType: MsgCustomDataAck, Message: reply})
}

// notify seals and sends one message to the controller.
func (c *serverConn) notify(msg any) error {
	c.logMessage(log.DirectionOut, msg)
	if err := c.ch.WriteMessage(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", MessageKind(msg), err)
	}
	return nil
}

// logMessage captures one decoded message at the wire layer.
func (c *serverConn) logMessage(dir log.Direction, msg any) {
	if c.server.config.Logger == nil {
		return
	}
	c.server.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  c.sessionID,
		Direction:  dir,
		Layer:      log.LayerWire,
		Category:   log.CategoryMessage,
		LocalRole:  log.RoleDevice,
		RemoteAddr: c.remoteAddr,
		Message: &log.MessageEvent{
			Type:   messageRole(msg),
			Kind:   MessageKind(msg),
			Sealed: true,
		},
	})
}

// defaultProvision is the built-in credential application sequence used
// when no Provision handler is configured. It reports the full success
// path.
func defaultProvision(ssid, secret string, report func(transport.ProvStatus, string)) {
	report(transport.StatusConfigSent, "")
	report(transport.StatusConfigApplied, "")
	report(transport.StatusCompleted, "joined "+ssid)
}
