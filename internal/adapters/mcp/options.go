package mcp

import "github.com/okian/hoopmatch/pkg/logger"

// Option configures the tool server.
type Option func(*Server)

// WithLogger sets the logger used for tool calls.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the implementation version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}
