package models

// PingResponse is the agent's liveness reply.
type PingResponse struct {
	Status   string `json:"status"`             // Always "online" when the agent answers
	Platform string `json:"platform"`           // Host OS tag (runtime.GOOS)
	Hostname string `json:"hostname,omitempty"` // Host name of the target machine
	Version  string `json:"version,omitempty"`  // Agent build version (semver)
}
