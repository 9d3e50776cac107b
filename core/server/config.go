package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// BodyLimit is the maximum accepted request body size in bytes.
	// Agent submissions arrive compressed; this bounds the wire size only.
	BodyLimit int `mapstructure:"body_limit" default:"16777216"`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}
