//go:build !(badger2040 || badger2040_w)

package platform

import (
	"context"
	"net/http"
	"sync"
	"time"

	"badgecode-go/errcode"
)

// HTTPRadio stands in for the wireless stack on hosts that are already
// online: Join and Leave only track state and Get uses net/http.
type HTTPRadio struct {
	Client *http.Client
	// Networks is returned by Scan.
	Networks []string

	mu     sync.Mutex
	joined bool
}

func NewHTTPRadio(timeout time.Duration) *HTTPRadio {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRadio{Client: &http.Client{Timeout: timeout}}
}

func (r *HTTPRadio) Join(ctx context.Context, ssid, _ string) error {
	if ssid == "" {
		return errcode.New(errcode.InvalidParams, "radio.join", "empty ssid")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.joined = true
	r.mu.Unlock()
	return nil
}

func (r *HTTPRadio) WaitReady(ctx context.Context) error {
	r.mu.Lock()
	joined := r.joined
	r.mu.Unlock()
	if !joined {
		return errcode.New(errcode.LinkNotReady, "radio.ready", "not joined")
	}
	return ctx.Err()
}

// Get fetches url and returns at most netsync.MaxBody bytes of the body.
func (r *HTTPRadio) Get(ctx context.Context, url string) ([]byte, error) {
	return fetch(ctx, r.Client, url)
}

func (r *HTTPRadio) Leave() error {
	r.mu.Lock()
	r.joined = false
	r.mu.Unlock()
	return nil
}

func (r *HTTPRadio) Scan(ctx context.Context) ([]string, error) {
	return r.Networks, ctx.Err()
}
