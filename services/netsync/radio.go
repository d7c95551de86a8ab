package netsync

import "context"

// MaxBody bounds a fetched response; larger bodies are truncated.
const MaxBody = 4096

// Radio is the wireless stack. Join and Leave bracket every sync cycle; Get
// is only valid between a successful WaitReady and Leave.
type Radio interface {
	Join(ctx context.Context, ssid, password string) error
	// WaitReady blocks until the link is up and an address is configured.
	WaitReady(ctx context.Context) error
	Get(ctx context.Context, url string) ([]byte, error)
	Leave() error
}

// Scanner is implemented by radios that can list nearby networks.
type Scanner interface {
	Scan(ctx context.Context) ([]string, error)
}
