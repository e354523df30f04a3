// Package interactive provides the interactive command-line interface
// for the WISP controller.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/wisp-protocol/wisp-go/pkg/provision"
	"github.com/wisp-protocol/wisp-go/pkg/transport"
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// ControllerConfig provides configuration information to the interactive
// console. This interface allows the interactive layer to access
// controller settings without depending on the main package's config
// structure.
type ControllerConfig interface {
	// DevicePrefix returns the default device name prefix for discovery.
	DevicePrefix() string

	// ProofOfPossession returns the preset proof for connect commands,
	// empty if none is preset.
	ProofOfPossession() string
}

// Console handles interactive mode for wisp-controller.
type Console struct {
	wf     *provision.Workflow
	config ControllerConfig
	rl     *readline.Instance
}

// New creates a new interactive console handler.
func New(wf *provision.Workflow, cfg ControllerConfig) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "wisp> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{wf: wf, config: cfg, rl: rl}, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "discover", "d":
			c.cmdDiscover(args)

		case "stop":
			c.cmdStopDiscovery()

		case "list", "ls", "devices":
			c.cmdDevices()

		case "connect", "c":
			c.cmdConnect(args)

		case "direct":
			c.cmdDirect(args)

		case "scan":
			c.cmdScan()

		case "networks", "n":
			c.cmdNetworks()

		case "provision", "p":
			c.cmdProvision(args)

		case "custom":
			c.cmdCustom(args)

		case "status":
			c.cmdStatus()

		case "steps":
			c.cmdSteps()

		case "disconnect":
			c.cmdDisconnect()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
WISP Controller Commands:
  Discovery & Connection:
    discover [prefix]          - Discover devices in setup mode
    stop                       - Stop an active discovery scan
    list                       - List discovered devices
    connect <device> [proof]   - Connect to a device (number or identity)
    direct [proof]             - Connect to the configured device address
    disconnect                 - Close the current session

  Provisioning:
    scan                       - Ask the device to scan for networks
    networks                   - List the networks the device reported
    provision <network> [pass] - Submit a credential (number or SSID)
    custom <name> [payload]    - Send application data to the device

  General:
    status                     - Show workflow status
    steps                      - Show provisioning step progress
    help                       - Show this help
    quit                       - Exit controller`)
}

// cmdDiscover handles the discover command.
func (c *Console) cmdDiscover(args []string) {
	prefix := c.config.DevicePrefix()
	if len(args) > 0 {
		prefix = args[0]
	}

	if err := c.wf.StartDiscovery(prefix); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Discovery failed: %v\n", err)
		return
	}

	if prefix == "" {
		fmt.Fprintln(c.rl.Stdout(), "Discovering devices in setup mode...")
	} else {
		fmt.Fprintf(c.rl.Stdout(), "Discovering devices named %q...\n", prefix)
	}
}

// cmdStopDiscovery handles the stop command.
func (c *Console) cmdStopDiscovery() {
	if err := c.wf.StopDiscovery(); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Stop failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "Discovery stopped")
}

// cmdDevices handles the list command.
func (c *Console) cmdDevices() {
	devices := c.wf.Devices()
	if len(devices) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No devices discovered (try 'discover')")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nDiscovered Devices (%d):\n", len(devices))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for idx, d := range devices {
		name := d.Name
		if name == "" {
			name = d.Identity
		}
		fmt.Fprintf(c.rl.Stdout(), "  %d. %s\n", idx+1, name)
		fmt.Fprintf(c.rl.Stdout(), "     Identity: %s\n", d.Identity)
		if d.Addr != "" {
			fmt.Fprintf(c.rl.Stdout(), "     Address:  %s\n", d.Addr)
		}
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdConnect handles the connect command.
func (c *Console) cmdConnect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: connect <device> [proof]")
		fmt.Fprintln(c.rl.Stdout(), "  Use 'list' to see device numbers and identities")
		return
	}

	device, ok := resolveDevice(c.wf.Devices(), args[0])
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Device not found: %s\n", args[0])
		return
	}

	proof, ok := c.proofArg(args, 1)
	if !ok {
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "Connecting to %s...\n", device.Identity)
	if err := c.wf.Connect(device, proof); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Connect failed: %v\n", err)
	}
}

// cmdDirect handles the direct command.
func (c *Console) cmdDirect(args []string) {
	proof, ok := c.proofArg(args, 0)
	if !ok {
		return
	}

	fmt.Fprintln(c.rl.Stdout(), "Connecting to the configured device address...")
	if err := c.wf.ConnectViaNetwork(proof); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Connect failed: %v\n", err)
	}
}

// proofArg picks the proof of possession from the argument list, falling
// back to the preset one. Reports false when neither is available.
func (c *Console) proofArg(args []string, idx int) (string, bool) {
	if len(args) > idx {
		return args[idx], true
	}
	if preset := c.config.ProofOfPossession(); preset != "" {
		return preset, true
	}
	fmt.Fprintln(c.rl.Stdout(), "No proof of possession given and none preset (-pop)")
	return "", false
}

// cmdScan handles the scan command.
func (c *Console) cmdScan() {
	if err := c.wf.ScanNetworks(); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Scan failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "Asked the device to scan, results arrive as an event...")
}

// cmdNetworks handles the networks command.
func (c *Console) cmdNetworks() {
	networks := c.wf.Networks()
	if len(networks) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No scan results (try 'scan' while connected)")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nNetworks In Range (%d):\n", len(networks))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for idx, n := range networks {
		fmt.Fprintf(c.rl.Stdout(), "  %d. %-24s %4d dBm  %s\n", idx+1, n.SSID, n.RSSI, n.Auth)
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdProvision handles the provision command.
func (c *Console) cmdProvision(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: provision <network> [password]")
		fmt.Fprintln(c.rl.Stdout(), "  Use 'networks' to see network numbers and names")
		return
	}

	network, ok := resolveNetwork(c.wf.Networks(), args[0])
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Network not found: %s\n", args[0])
		return
	}

	password := strings.Join(args[1:], " ")
	if network.Auth.RequiresSecret() && password == "" {
		fmt.Fprintf(c.rl.Stdout(), "Network %q requires a password\n", network.SSID)
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "Submitting credential for %q...\n", network.SSID)
	if err := c.wf.Submit(wifi.Credential{Network: network, Password: password}); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Submit failed: %v\n", err)
	}
}

// cmdCustom handles the custom command.
func (c *Console) cmdCustom(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: custom <name> [payload]")
		fmt.Fprintln(c.rl.Stdout(), "  Example: custom register {\"user\":\"alex\"}")
		return
	}

	payload := []byte(strings.Join(args[1:], " "))
	if err := c.wf.SendCustomData(args[0], payload); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Send failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Sent %q (%d bytes)\n", args[0], len(payload))
}

// cmdStatus handles the status command.
func (c *Console) cmdStatus() {
	snap := c.wf.Snapshot()

	fmt.Fprintln(c.rl.Stdout(), "\nWorkflow Status")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	status := snap.Status
	if status == "" {
		status = "(idle)"
	}
	fmt.Fprintf(c.rl.Stdout(), "  Status:    %s\n", status)
	fmt.Fprintf(c.rl.Stdout(), "  Devices:   %d discovered\n", len(snap.Devices))
	fmt.Fprintf(c.rl.Stdout(), "  Networks:  %d in range\n", len(snap.Networks))

	switch {
	case snap.HasConnectedDevice:
		fmt.Fprintf(c.rl.Stdout(), "  Connected: %s\n", snap.ConnectedDevice.Identity)
	case snap.Connecting:
		fmt.Fprintln(c.rl.Stdout(), "  Connected: (connecting...)")
	default:
		fmt.Fprintln(c.rl.Stdout(), "  Connected: none")
	}

	if snap.HasSelectedNetwork {
		fmt.Fprintf(c.rl.Stdout(), "  Submitted: %s\n", snap.SelectedNetwork.SSID)
	}
	if snap.Discovering {
		fmt.Fprintln(c.rl.Stdout(), "  Discovery: active")
	}
	if snap.Scanning {
		fmt.Fprintln(c.rl.Stdout(), "  Scan:      active")
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdSteps handles the steps command.
func (c *Console) cmdSteps() {
	snap := c.wf.Snapshot()

	fmt.Fprintln(c.rl.Stdout(), "\nProvisioning Steps")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	c.printStep(provision.StepSession, snap.Session)
	c.printStep(provision.StepApply, snap.Apply)
	c.printStep(provision.StepFinal, snap.Final)
	fmt.Fprintln(c.rl.Stdout())
}

func (c *Console) printStep(id provision.StepID, p provision.StepProgress) {
	state := "pending"
	switch {
	case p.Failed:
		state = "FAILED"
	case p.Done:
		state = "done"
	case p.InProgress:
		state = "in progress"
	}

	if p.Message != "" {
		fmt.Fprintf(c.rl.Stdout(), "  %-8s %s (%s)\n", id, state, p.Message)
	} else {
		fmt.Fprintf(c.rl.Stdout(), "  %-8s %s\n", id, state)
	}
}

// cmdDisconnect handles the disconnect command.
func (c *Console) cmdDisconnect() {
	if err := c.wf.Disconnect(); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Disconnect failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "Disconnected")
}

// resolveDevice resolves a list number or identity to a discovered device.
func resolveDevice(devices []transport.Device, target string) (transport.Device, bool) {
	if idx, err := strconv.Atoi(target); err == nil {
		if idx >= 1 && idx <= len(devices) {
			return devices[idx-1], true
		}
		return transport.Device{}, false
	}

	// Try exact identity match first
	for _, d := range devices {
		if d.Identity == target {
			return d, true
		}
	}

	// Then partial match on identity or name
	for _, d := range devices {
		if strings.Contains(d.Identity, target) || strings.Contains(d.Name, target) {
			return d, true
		}
	}

	return transport.Device{}, false
}

// resolveNetwork resolves a list number or SSID to a scanned network.
func resolveNetwork(networks []wifi.Network, target string) (wifi.Network, bool) {
	if idx, err := strconv.Atoi(target); err == nil {
		if idx >= 1 && idx <= len(networks) {
			return networks[idx-1], true
		}
		return wifi.Network{}, false
	}

	for _, n := range networks {
		if n.SSID == target {
			return n, true
		}
	}

	for _, n := range networks {
		if strings.EqualFold(n.SSID, target) {
			return n, true
		}
	}

	return wifi.Network{}, false
}
