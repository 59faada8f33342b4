package echoserver

// Config holds configuration for the echo server.
type Config struct {
	// Port is the port on which the echo server listens.
	Port int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port: 9999,
	}
}
