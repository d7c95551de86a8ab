package platform

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"badgecode-go/errcode"
	"badgecode-go/services/netsync"
)

// fetch GETs url and returns at most netsync.MaxBody bytes of the body.
func fetch(ctx context.Context, c *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "radio.get", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, errcode.Wrap(errcode.FetchFailed, "radio.get", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errcode.New(errcode.FetchFailed, "radio.get", "status "+strconv.Itoa(resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, netsync.MaxBody))
	if err != nil {
		return nil, errcode.Wrap(errcode.FetchFailed, "radio.get", err)
	}
	return body, nil
}
