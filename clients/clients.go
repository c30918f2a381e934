package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HTTP struct{ c *http.Client }

func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTP{c: &http.Client{Timeout: timeout}}
}

// do sends req and decodes a 2xx JSON body into out. name prefixes every error.
func (h *HTTP) do(req *http.Request, name string, out any) error {
	resp, err := h.c.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Service: name, Status: resp.Status, Code: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", name, err)
	}
	return nil
}

func (h *HTTP) postJSON(ctx context.Context, url, name string, header http.Header, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s encode: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, name, out)
}

func (h *HTTP) getJSON(ctx context.Context, url, name string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	return h.do(req, name, out)
}

// StatusError is a non-2xx reply from a remote service.
type StatusError struct {
	Service string
	Status  string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Service, e.Status, e.Body)
}

// Temporary reports whether retrying the same request could succeed.
func (e *StatusError) Temporary() bool { return temporaryStatus(e.Code) }

func temporaryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
