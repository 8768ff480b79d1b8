package models

// Volume actions accepted by POST /volume.
const (
	VolumeActionGet  = "get"
	VolumeActionSet  = "set"
	VolumeActionMute = "mute"
)

// StatusResponse acknowledges a fire-and-forget instruction such as shutdown or sleep.
type StatusResponse struct {
	Status       string `json:"status"`                  // e.g. "shutdown_scheduled", "sleep_requested"
	DelaySeconds int    `json:"delay_seconds,omitempty"` // Grace period before the action takes effect
}

// VolumeRequest is the body of POST /volume.
type VolumeRequest struct {
	Action string   `json:"action"`          // One of get, set, mute
	Level  *float64 `json:"level,omitempty"` // Target level in [0,1]; required for set
}

// VolumeResponse reports the mixer state after any volume action.
type VolumeResponse struct {
	Level int  `json:"level"` // Master volume, 0-100
	Muted bool `json:"muted"` // Whether output is muted
}

// ErrorResponse is the uniform failure envelope returned by the agent.
type ErrorResponse struct {
	Error string `json:"error"`
}
