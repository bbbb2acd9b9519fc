package web

import "context"

// Server is what the app needs from the preview server.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// NoopServer is used when the preview server is disabled.
type NoopServer struct{}

func (n *NoopServer) Start(ctx context.Context) error { return nil }
func (n *NoopServer) Stop() error                     { return nil }

var (
	_ Server = (*HTTPServer)(nil)
	_ Server = (*NoopServer)(nil)
)
