// Package bridge exposes the simulation core over a JSON/HTTP transport so
// a language-independent agent can call configure/reset/step/close, using
// the gorilla/mux + encoding/json server pattern, generalized from
// per-client run ids to per-episode simulation-run ids.
package bridge

import "github.com/cloudsim-rl/cloudsim-core/sim"

// ConfigureRequest carries the YAML-shaped settings overlay for one run.
type ConfigureRequest struct {
	Settings sim.SimulationSettings `json:"settings"`
}

// ConfigureResponse returns the run id a client must pass to subsequent
// reset/step/close calls.
type ConfigureResponse struct {
	RunID string `json:"run_id"`
}

// ResetRequest carries the 64-bit seed for one episode.
type ResetRequest struct {
	Seed int64 `json:"seed"`
}

// StepRequest carries one decoded Action. ActionType follows the 0..3
// encoding; the other fields are interpreted according to ActionType.
type StepRequest struct {
	ActionType   int   `json:"action_type"`
	TargetVmID   int64 `json:"target_vm_id"`
	TargetHostID int64 `json:"target_host_id"`
	VmTypeIndex  int   `json:"vm_type_index"`
}

// DecodeAction converts a StepRequest into a sim.Action sum-type value.
func (r StepRequest) DecodeAction() sim.Action {
	switch r.ActionType {
	case 1:
		return sim.AssignAction{TargetVmID: r.TargetVmID}
	case 2:
		return sim.CreateVmAction{TargetHostID: r.TargetHostID, VmTypeIndex: r.VmTypeIndex}
	case 3:
		return sim.DestroyAction{RunningIndex: int(r.TargetVmID)}
	default:
		return sim.NoopAction{}
	}
}

// StepResponse is the JSON shape of ObservationState/reward/terminated/
// truncated/Info returned from one step call.
type StepResponse struct {
	Observation sim.ObservationState `json:"observation"`
	Reward      float64              `json:"reward"`
	Terminated  bool                  `json:"terminated"`
	Truncated   bool                  `json:"truncated"`
	Info        sim.Info              `json:"info"`
}

// ResetResponse is the JSON shape returned from reset.
type ResetResponse struct {
	Observation sim.ObservationState `json:"observation"`
	Info        sim.Info              `json:"info"`
}

// ErrorResponse is the JSON body written alongside a non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
