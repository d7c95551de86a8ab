//go:build (badger2040 || badger2040_w) && (ninafw || comboat_fw)

package platform

import (
	"context"
	"net/http"
	"time"

	"tinygo.org/x/drivers/netdev"
	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"

	"badgecode-go/errcode"
	"badgecode-go/services/netsync"
)

// linkRadio drives a network co-processor through netlink/netdev. Net I/O
// goes through TinyGo's net package once netdev is registered by Probe.
type linkRadio struct {
	link   netlink.Netlinker
	dev    netdev.Netdever
	client *http.Client
}

func openRadio() netsync.Radio {
	link, dev := probe.Probe()
	return &linkRadio{link: link, dev: dev, client: &http.Client{Timeout: 10 * time.Second}}
}

// Join makes one attempt; the orchestrator owns the retry policy.
func (r *linkRadio) Join(_ context.Context, ssid, password string) error {
	err := r.link.NetConnect(&netlink.ConnectParams{
		Ssid:           ssid,
		Passphrase:     password,
		Retries:        1,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		return errcode.Wrap(errcode.JoinFailed, "radio.join", err)
	}
	return nil
}

// WaitReady polls for a DHCP address.
func (r *linkRadio) WaitReady(ctx context.Context) error {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for {
		if a, err := r.dev.Addr(); err == nil && a.IsValid() && !a.IsUnspecified() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (r *linkRadio) Get(ctx context.Context, url string) ([]byte, error) {
	return fetch(ctx, r.client, url)
}

func (r *linkRadio) Leave() error {
	r.link.NetDisconnect()
	return nil
}
