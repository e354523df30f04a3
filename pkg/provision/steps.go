package provision

import (
	"github.com/wisp-protocol/wisp-go/pkg/transport"
)

// provisionOutcome is the bucket a provisioning status code lands in.
// The seven wire codes collapse to four effects plus "no change"; any
// unrecognized code degrades to the apply failure bucket so a newer
// device still drives this workflow to a terminal state.
type provisionOutcome uint8

const (
	// outcomeNone - nothing changed (CONFIG_SENT).
	outcomeNone provisionOutcome = iota

	// outcomeSessionFailed - the session could not start (INIT_FAILED, CONFIG_FAILED).
	outcomeSessionFailed

	// outcomeApplied - the device accepted the config and is joining (CONFIG_APPLIED).
	outcomeApplied

	// outcomeCompleted - provisioning succeeded (COMPLETED).
	outcomeCompleted

	// outcomeApplyFailed - the device could not join (APPLY_FAILED, PROV_FAILED, unknown).
	outcomeApplyFailed
)

// stepSet holds the three provisioning step trackers. All mutation goes
// through applyStatus or the workflow's submission pre-state; Start
// resets the set for a new run.
type stepSet struct {
	session StepProgress
	apply   StepProgress
	final   StepProgress
}

func (ss *stepSet) reset() {
	*ss = stepSet{}
}

// get returns the tracker for id. Unknown ids return a zero value.
func (ss *stepSet) get(id StepID) StepProgress {
	switch id {
	case StepSession:
		return ss.session
	case StepApply:
		return ss.apply
	case StepFinal:
		return ss.final
	default:
		return StepProgress{}
	}
}

// applyStatus folds one provisioning status code into the step trackers
// and reports which bucket it landed in. message is the detail text the
// event carried; msgs supplies the catalog text for the step messages.
//
// A step that reaches a terminal state stops being in progress, but its
// other fields are left alone: a later event may legitimately mark an
// already-done step as failed.
func (ss *stepSet) applyStatus(status transport.ProvStatus, message string, msgs Messages) provisionOutcome {
	switch status {
	case transport.StatusInitFailed, transport.StatusConfigFailed:
		ss.session.Done = true
		ss.session.InProgress = false
		ss.session.Failed = true
		ss.session.Message = message
		ss.apply.Done = true
		ss.apply.Failed = true
		ss.apply.Message = msgs.SessionError
		return outcomeSessionFailed

	case transport.StatusConfigSent:
		// The session step was already marked in progress when the
		// credential was submitted.
		return outcomeNone

	case transport.StatusConfigApplied:
		ss.session.Done = true
		ss.session.InProgress = false
		ss.apply.InProgress = true
		return outcomeApplied

	case transport.StatusCompleted:
		ss.apply.Done = true
		ss.apply.InProgress = false
		ss.final.Done = true
		ss.final.Message = msgs.Completed
		return outcomeCompleted

	default:
		// APPLY_FAILED, PROV_FAILED and every code this workflow does
		// not recognize land here: a terminal apply failure.
		ss.apply.Done = true
		ss.apply.InProgress = false
		ss.apply.Failed = true
		ss.apply.Message = message
		ss.final.Done = true
		ss.final.Failed = true
		ss.final.Message = msgs.ApplyError
		return outcomeApplyFailed
	}
}

// knownProvStatus reports whether status is one of the seven wire codes.
// Codes outside the range still map to a bucket, but the workflow logs
// them so new firmware behavior is visible instead of silently folded.
func knownProvStatus(status transport.ProvStatus) bool {
	return status <= transport.StatusProvFailed
}
