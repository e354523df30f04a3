package lan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wisp-protocol/wisp-go/pkg/log"
	"github.com/wisp-protocol/wisp-go/pkg/transport"
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

const testProof = "482916"

// startTestServer starts a server on a loopback port.
func startTestServer(t *testing.T, config ServerConfig) *Server {
	t.Helper()

	if config.Identity == "" {
		config.Identity = "WISP-TEST"
	}
	if config.Name == "" {
		config.Name = "Test Device"
	}
	if config.ProofOfPossession == "" {
		config.ProofOfPossession = testProof
	}
	config.Address = "127.0.0.1:0"

	server, err := NewServer(config)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { server.Stop() })
	return server
}

// newTestClient creates a client whose device table can reach the
// server without multicast.
func newTestClient(t *testing.T, server *Server) *Client {
	t.Helper()

	client := NewClient(ClientConfig{
		StaticDevices: []transport.Device{{
			Identity: server.config.Identity,
			Name:     server.config.Name,
			Addr:     server.Addr().String(),
		}},
	})
	t.Cleanup(func() { client.Close() })
	return client
}

// subscribe registers a buffered collector on one channel.
func subscribe(t *testing.T, client *Client, ch transport.Channel) <-chan transport.Event {
	t.Helper()

	events := make(chan transport.Event, 32)
	client.Subscribe(ch, func(e transport.Event) { events <- e })
	return events
}

// waitEvent receives one event or fails the test.
func waitEvent(t *testing.T, events <-chan transport.Event) transport.Event {
	t.Helper()

	select {
	case e := <-events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

// connectClient drives Connect and waits for the session.
func connectClient(t *testing.T, client *Client, identity string, conn <-chan transport.Event) {
	t.Helper()

	if err := client.Connect(identity, testProof); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	e := waitEvent(t, conn).(transport.ConnectionEvent)
	if e.Status != transport.ConnConnected {
		t.Fatalf("connection status = %v, want CONNECTED", e.Status)
	}
}

func TestClientServerSetupFlow(t *testing.T) {
	networks := []wifi.Network{
		{SSID: "home", Auth: wifi.AuthWPA2PSK, RSSI: -48, Channel: 6, BSSID: "aa:bb:cc:dd:ee:ff"},
		{SSID: "guest", Auth: wifi.AuthOpen, RSSI: -71},
	}
	credentials := make(chan [2]string, 1)

	server := startTestServer(t, ServerConfig{
		Networks: func() ([]wifi.Network, error) { return networks, nil },
		Provision: func(ssid, secret string, report func(transport.ProvStatus, string)) {
			credentials <- [2]string{ssid, secret}
			report(transport.StatusConfigSent, "")
			report(transport.StatusConfigApplied, "")
			report(transport.StatusCompleted, "joined "+ssid)
		},
		CustomData: func(name string, payload []byte) (string, error) {
			return "success: " + name, nil
		},
	})
	client := newTestClient(t, server)

	discovery := subscribe(t, client, transport.ChannelDiscovery)
	conn := subscribe(t, client, transport.ChannelConnection)
	scans := subscribe(t, client, transport.ChannelNetworkScan)
	provisioning := subscribe(t, client, transport.ChannelProvisioning)
	custom := subscribe(t, client, transport.ChannelCustomData)

	// Discovery surfaces the seeded device after the scan starts.
	if err := client.StartDiscovery(""); err != nil {
		t.Fatalf("StartDiscovery failed: %v", err)
	}
	e := waitEvent(t, discovery).(transport.DiscoveryEvent)
	if e.Kind != transport.DiscoveryScanStatus || e.Scan.Status != transport.ScanStarted {
		t.Fatalf("first discovery event = %+v, want scan started", e)
	}
	e = waitEvent(t, discovery).(transport.DiscoveryEvent)
	if e.Kind != transport.DiscoveryDevice {
		t.Fatalf("second discovery event = %+v, want device", e)
	}
	if e.Device.Identity != "WISP-TEST" || e.Device.Addr != server.Addr().String() {
		t.Errorf("device = %+v", e.Device)
	}

	connectClient(t, client, "WISP-TEST", conn)

	// Network scan returns the device's list.
	if err := client.StartNetworkScan(); err != nil {
		t.Fatalf("StartNetworkScan failed: %v", err)
	}
	scan := waitEvent(t, scans).(transport.NetworkScanEvent)
	if scan.Failed {
		t.Fatalf("scan failed: %s", scan.Message)
	}
	if len(scan.Networks) != 2 {
		t.Fatalf("networks = %d, want 2", len(scan.Networks))
	}
	if scan.Networks[0].SSID != "home" || scan.Networks[0].Auth != wifi.AuthWPA2PSK || scan.Networks[0].RSSI != -48 {
		t.Errorf("first network = %+v", scan.Networks[0])
	}

	// Credential submission streams progress in order.
	if err := client.SubmitCredential("home", "hunter2"); err != nil {
		t.Fatalf("SubmitCredential failed: %v", err)
	}
	wantStatuses := []transport.ProvStatus{
		transport.StatusConfigSent,
		transport.StatusConfigApplied,
		transport.StatusCompleted,
	}
	for _, want := range wantStatuses {
		pe := waitEvent(t, provisioning).(transport.ProvisioningEvent)
		if pe.Status != want {
			t.Fatalf("provisioning status = %v, want %v", pe.Status, want)
		}
	}
	if got := <-credentials; got != [2]string{"home", "hunter2"} {
		t.Errorf("server received credential %v", got)
	}

	// Custom data exchange.
	if err := client.SendCustomData("register", []byte{1, 2, 3}); err != nil {
		t.Fatalf("SendCustomData failed: %v", err)
	}
	cd := waitEvent(t, custom).(transport.CustomDataEvent)
	if cd.Status != transport.CustomDataSending {
		t.Fatalf("custom data status = %v, want SENDING", cd.Status)
	}
	cd = waitEvent(t, custom).(transport.CustomDataEvent)
	if cd.Status != transport.CustomDataSuccess || cd.Message != "success: register" {
		t.Errorf("custom data ack = %+v", cd)
	}

	// Disconnect announces exactly once.
	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	ce := waitEvent(t, conn).(transport.ConnectionEvent)
	if ce.Status != transport.ConnDisconnected {
		t.Errorf("connection status = %v, want DISCONNECTED", ce.Status)
	}
}

func TestClientConnectWrongProof(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)
	conn := subscribe(t, client, transport.ChannelConnection)

	if err := client.Connect("WISP-TEST", "000000"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	e := waitEvent(t, conn).(transport.ConnectionEvent)
	if e.Status != transport.ConnFailed {
		t.Errorf("connection status = %v, want FAILED", e.Status)
	}
	if server.SessionCount() != 0 {
		t.Errorf("server sessions = %d, want 0", server.SessionCount())
	}
}

func TestClientConnectUnknownDevice(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)

	err := client.Connect("WISP-NOPE", testProof)
	if !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("expected ErrUnknownDevice, got %v", err)
	}
}

func TestClientSecondConnectRejected(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)
	conn := subscribe(t, client, transport.ChannelConnection)

	connectClient(t, client, "WISP-TEST", conn)

	err := client.Connect("WISP-TEST", testProof)
	if !errors.Is(err, ErrSessionActive) {
		t.Errorf("expected ErrSessionActive, got %v", err)
	}
}

func TestClientOperationsRequireSession(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)

	if err := client.StartNetworkScan(); !errors.Is(err, ErrNoSession) {
		t.Errorf("StartNetworkScan: expected ErrNoSession, got %v", err)
	}
	if err := client.SubmitCredential("home", "pw"); !errors.Is(err, ErrNoSession) {
		t.Errorf("SubmitCredential: expected ErrNoSession, got %v", err)
	}
	if err := client.SendCustomData("x", nil); !errors.Is(err, ErrNoSession) {
		t.Errorf("SendCustomData: expected ErrNoSession, got %v", err)
	}
}

func TestConnectViaNetwork(t *testing.T) {
	server := startTestServer(t, ServerConfig{})

	client := NewClient(ClientConfig{DeviceAddr: server.Addr().String()})
	t.Cleanup(func() { client.Close() })
	conn := subscribe(t, client, transport.ChannelConnection)

	if err := client.ConnectViaNetwork(testProof); err != nil {
		t.Fatalf("ConnectViaNetwork failed: %v", err)
	}
	e := waitEvent(t, conn).(transport.ConnectionEvent)
	if e.Status != transport.ConnConnected {
		t.Errorf("connection status = %v, want CONNECTED", e.Status)
	}
}

func TestServerScanFailureSurfacesMessage(t *testing.T) {
	server := startTestServer(t, ServerConfig{
		Networks: func() ([]wifi.Network, error) {
			return nil, errors.New("radio busy")
		},
	})
	client := newTestClient(t, server)
	conn := subscribe(t, client, transport.ChannelConnection)
	scans := subscribe(t, client, transport.ChannelNetworkScan)

	connectClient(t, client, "WISP-TEST", conn)

	if err := client.StartNetworkScan(); err != nil {
		t.Fatalf("StartNetworkScan failed: %v", err)
	}
	e := waitEvent(t, scans).(transport.NetworkScanEvent)
	if !e.Failed {
		t.Fatal("scan did not fail")
	}
	// The failure text travels verbatim.
	if e.Message != "radio busy" {
		t.Errorf("message = %q, want %q", e.Message, "radio busy")
	}
}

func TestServerDefaultHandlers(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)
	conn := subscribe(t, client, transport.ChannelConnection)
	provisioning := subscribe(t, client, transport.ChannelProvisioning)
	custom := subscribe(t, client, transport.ChannelCustomData)

	connectClient(t, client, "WISP-TEST", conn)

	// Built-in provisioning reports the full success path.
	if err := client.SubmitCredential("home", "pw"); err != nil {
		t.Fatalf("SubmitCredential failed: %v", err)
	}
	wantStatuses := []transport.ProvStatus{
		transport.StatusConfigSent,
		transport.StatusConfigApplied,
		transport.StatusCompleted,
	}
	for _, want := range wantStatuses {
		pe := waitEvent(t, provisioning).(transport.ProvisioningEvent)
		if pe.Status != want {
			t.Fatalf("provisioning status = %v, want %v", pe.Status, want)
		}
	}

	// Built-in custom data handler acknowledges with "success".
	if err := client.SendCustomData("anything", nil); err != nil {
		t.Fatalf("SendCustomData failed: %v", err)
	}
	if e := waitEvent(t, custom).(transport.CustomDataEvent); e.Status != transport.CustomDataSending {
		t.Fatalf("custom data status = %v, want SENDING", e.Status)
	}
	e := waitEvent(t, custom).(transport.CustomDataEvent)
	if e.Status != transport.CustomDataSuccess || e.Message != "success" {
		t.Errorf("custom data ack = %+v", e)
	}
}

func TestServerDisconnectReachesClient(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)
	conn := subscribe(t, client, transport.ChannelConnection)

	connectClient(t, client, "WISP-TEST", conn)

	// Stopping the server tears the session down from the far side.
	server.Stop()

	e := waitEvent(t, conn).(transport.ConnectionEvent)
	if e.Status != transport.ConnDisconnected {
		t.Errorf("connection status = %v, want DISCONNECTED", e.Status)
	}
}

func TestClientStopDiscoveryEmitsIdle(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)
	discovery := subscribe(t, client, transport.ChannelDiscovery)

	if err := client.StartDiscovery(""); err != nil {
		t.Fatalf("StartDiscovery failed: %v", err)
	}
	waitEvent(t, discovery) // scan started
	waitEvent(t, discovery) // seeded device

	if err := client.StopDiscovery(); err != nil {
		t.Fatalf("StopDiscovery failed: %v", err)
	}
	e := waitEvent(t, discovery).(transport.DiscoveryEvent)
	if e.Kind != transport.DiscoveryScanStatus || e.Scan.Status != transport.ScanIdle {
		t.Errorf("event after stop = %+v, want scan idle", e)
	}

	// Stopping again is harmless.
	if err := client.StopDiscovery(); err != nil {
		t.Errorf("second StopDiscovery failed: %v", err)
	}
}

func TestClientDiscoveryTimeoutCompletes(t *testing.T) {
	server := startTestServer(t, ServerConfig{})

	client := NewClient(ClientConfig{
		DiscoveryTimeout: 50 * time.Millisecond,
		StaticDevices: []transport.Device{{
			Identity: server.config.Identity,
			Name:     server.config.Name,
			Addr:     server.Addr().String(),
		}},
	})
	t.Cleanup(func() { client.Close() })
	discovery := subscribe(t, client, transport.ChannelDiscovery)

	if err := client.StartDiscovery(""); err != nil {
		t.Fatalf("StartDiscovery failed: %v", err)
	}
	waitEvent(t, discovery) // scan started
	waitEvent(t, discovery) // seeded device

	e := waitEvent(t, discovery).(transport.DiscoveryEvent)
	if e.Kind != transport.DiscoveryScanStatus || e.Scan.Status != transport.ScanCompleted {
		t.Errorf("event after window = %+v, want scan completed", e)
	}
}

func TestClientDiscoveryPrefixFilter(t *testing.T) {
	server := startTestServer(t, ServerConfig{})

	client := NewClient(ClientConfig{
		StaticDevices: []transport.Device{
			{Identity: "WISP-A", Name: "Lamp A", Addr: server.Addr().String()},
			{Identity: "WISP-B", Name: "Plug B", Addr: server.Addr().String()},
		},
	})
	t.Cleanup(func() { client.Close() })
	discovery := subscribe(t, client, transport.ChannelDiscovery)

	if err := client.StartDiscovery("Lamp"); err != nil {
		t.Fatalf("StartDiscovery failed: %v", err)
	}
	waitEvent(t, discovery) // scan started

	e := waitEvent(t, discovery).(transport.DiscoveryEvent)
	if e.Kind != transport.DiscoveryDevice || e.Device.Identity != "WISP-A" {
		t.Errorf("device = %+v, want WISP-A only", e)
	}

	select {
	case extra := <-discovery:
		if de, ok := extra.(transport.DiscoveryEvent); ok && de.Kind == transport.DiscoveryDevice {
			t.Errorf("unexpected extra device: %+v", de.Device)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		config ServerConfig
	}{
		{
			name:   "missing identity",
			config: ServerConfig{ProofOfPossession: testProof},
		},
		{
			name:   "missing proof",
			config: ServerConfig{Identity: "WISP-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewServer(tt.config); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestClientClosedRejectsOperations(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)

	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := client.StartDiscovery(""); !errors.Is(err, ErrClientClosed) {
		t.Errorf("StartDiscovery: expected ErrClientClosed, got %v", err)
	}
	if err := client.Connect("WISP-TEST", testProof); !errors.Is(err, ErrClientClosed) {
		t.Errorf("Connect: expected ErrClientClosed, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestCheckPermissions(t *testing.T) {
	server := startTestServer(t, ServerConfig{})
	client := newTestClient(t, server)
	permissions := subscribe(t, client, transport.ChannelPermission)

	if err := client.CheckPermissions(); err != nil {
		t.Fatalf("CheckPermissions failed: %v", err)
	}
	e := waitEvent(t, permissions).(transport.PermissionEvent)
	if !e.Granted {
		t.Errorf("permission event = %+v, want granted", e)
	}
}

func TestClientCapturesDispatches(t *testing.T) {
	server := startTestServer(t, ServerConfig{
		Networks: func() ([]wifi.Network, error) {
			return []wifi.Network{{SSID: "home", Auth: wifi.AuthWPA2PSK, RSSI: -48}}, nil
		},
	})

	capture := &capturingLogger{}
	client := NewClient(ClientConfig{
		Logger: capture,
		StaticDevices: []transport.Device{{
			Identity: server.config.Identity,
			Name:     server.config.Name,
			Addr:     server.Addr().String(),
		}},
	})
	t.Cleanup(func() { client.Close() })

	discovery := subscribe(t, client, transport.ChannelDiscovery)
	conn := subscribe(t, client, transport.ChannelConnection)
	scans := subscribe(t, client, transport.ChannelNetworkScan)

	if err := client.StartDiscovery(""); err != nil {
		t.Fatalf("StartDiscovery failed: %v", err)
	}
	waitEvent(t, discovery) // scan started
	waitEvent(t, discovery) // seeded device

	connectClient(t, client, "WISP-TEST", conn)

	if err := client.StartNetworkScan(); err != nil {
		t.Fatalf("StartNetworkScan failed: %v", err)
	}
	waitEvent(t, scans)

	// Every fan-out leaves a dispatch record alongside the wire capture.
	var dispatches []log.Event
	for _, e := range capture.Events() {
		if e.Category == log.CategoryDispatch {
			dispatches = append(dispatches, e)
		}
	}
	if len(dispatches) == 0 {
		t.Fatal("no dispatch events captured")
	}

	wantDetails := map[transport.Channel]string{
		transport.ChannelDiscovery:   "STARTED",
		transport.ChannelConnection:  "CONNECTED",
		transport.ChannelNetworkScan: "RESULTS",
	}
	for ch, want := range wantDetails {
		found := false
		for _, e := range dispatches {
			if e.Dispatch.Channel != ch || e.Dispatch.Detail != want {
				continue
			}
			found = true
			if e.Layer != log.LayerService {
				t.Errorf("%s dispatch layer = %v, want SERVICE", ch, e.Layer)
			}
		}
		if !found {
			t.Errorf("no %s dispatch with detail %q captured", ch, want)
		}
	}

	// Dispatches after the handshake carry the session id.
	for _, e := range dispatches {
		if e.Dispatch.Channel == transport.ChannelNetworkScan && e.SessionID == "" {
			t.Error("network scan dispatch missing session id")
		}
	}
}
