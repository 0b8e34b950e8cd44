package types

// InstallState is the monitored VM lifecycle as reported by the hypervisor.
type InstallState string

const (
	StateProvisioning InstallState = "provisioning" // domain not launched yet
	StateRunning      InstallState = "running"
	StatePaused       InstallState = "paused"   // not terminal: monitor resumes it
	StateShutOff      InstallState = "shut off" // the only success terminal state
	StateCrashed      InstallState = "crashed"
	StateNotFound     InstallState = "not found"
	StateUnknown      InstallState = "unknown" // anything else — keep polling
)
