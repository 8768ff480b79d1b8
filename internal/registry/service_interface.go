package registry

// Service is the interface for every long-running component the binaries start.
type Service interface {
	Start() error
	Stop() error
}
