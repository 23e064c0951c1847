// Package client talks to the external TURN-APP microservices (usuarios,
// turnos, horarios) over REST. Each client adapts the upstream payloads into
// the canonical domain types exactly once, at this boundary, so nothing else
// in the service branches on upstream field shapes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenProvider supplies the bearer token attached to every outbound request.
type TokenProvider interface {
	Token() string
}

// RemoteError carries a backend's own error payload through unaltered. The
// handlers surface Message verbatim instead of reinterpreting it.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

type remoteErrorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type baseClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
}

func newBaseClient(baseURL string, timeout time.Duration, tokens TokenProvider) baseClient {
	return baseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

func (c *baseClient) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeRemoteError(res)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeRemoteError(res *http.Response) error {
	payload := remoteErrorPayload{}
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err := json.Unmarshal(raw, &payload); err != nil || (payload.Message == "" && payload.Error == "") {
		return &RemoteError{StatusCode: res.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	return &RemoteError{StatusCode: res.StatusCode, Message: msg}
}

// upstreamTimeLayout is how the Java services serialize LocalDateTime: no zone
// suffix. Parsed as a local wall-clock time.
const upstreamTimeLayout = "2006-01-02T15:04:05"

func parseUpstreamTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(upstreamTimeLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}
