// Package provision implements the controller-side workflow that steers a
// wireless device from discovery to a configured network connection.
//
// The Workflow consumes the asynchronous event stream of a
// transport.Transport and folds it into one consistent, observable state:
// the discovered device list, the network scan results, the connection
// lifecycle, three provisioning step trackers, and a human-readable status
// line. Callers issue commands (StartDiscovery, Connect, Submit, ...);
// completion and failure are observed through state, not return values,
// because every transport call is fire-and-forget.
//
// # Workflow Phases
//
// A full provisioning run moves through five phases:
//   - Discovery: scan for devices in setup mode, deduplicated by identity
//   - Connection: open a secured session to one device (single-flight)
//   - Network selection: ask the device to scan for wireless networks
//   - Submission: send the selected SSID and secret to the device
//   - Session negotiation: track INIT/CONFIG/APPLY progress to completion
//
// Submission onward is tracked by three StepProgress values: the session
// step (credential exchange), the apply step (device joins the network),
// and the final step (device confirms). Provisioning status codes map onto
// these steps; codes the workflow does not recognize degrade to the apply
// failure bucket instead of being dropped, so a stale controller still
// shows a terminal state against a newer device.
//
// Example usage:
//
//	wf, err := provision.NewWorkflow(provision.Config{Transport: tr})
//	if err != nil {
//		return err
//	}
//	if err := wf.Start(); err != nil {
//		return err
//	}
//	defer wf.Stop()
//
//	wf.OnEvent(func(ev provision.Event) {
//		fmt.Println(ev.Type, ev.Status)
//	})
//	wf.StartDiscovery("WISP-")
//	// ... select a device from wf.Devices(), then:
//	wf.Connect(device, "123456")
//	wf.ScanNetworks()
//	// ... select a network from wf.Networks(), then:
//	wf.Submit(wifi.Credential{Network: network, Password: "hunter2"})
//
// # Timeouts
//
// The workflow has no timeout or retry policy. If the transport never
// emits a terminal event, the corresponding step stays in progress
// indefinitely. Deadlines belong to the embedding application, which can
// watch Snapshot and abandon a run by calling Stop.
package provision
