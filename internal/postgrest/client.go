package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

type client struct {
	base    *url.URL
	apiKey  string
	http    *http.Client
	timeout time.Duration
}

// do sends one request and decodes a 2xx JSON body into out (if non-nil).
func (c *client) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.base
	u.Path = u.Path + RESTPrefix + table
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", table, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, table, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set(HeaderPrefer, PreferRepresentation)
	}
	if c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", types.ErrRemoteUnavailable, method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb ErrorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if len(raw) > 0 {
			if json.Unmarshal(raw, &eb) != nil {
				eb.Message = string(raw)
			}
		}
		return fmt.Errorf("%s %s: %w", method, table, ErrorFor(resp.StatusCode, eb))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: read %s: %w", types.ErrRemoteUnavailable, table, err)
		}
		return fmt.Errorf("%w: decode %s: %w", types.ErrMalformed, table, err)
	}
	return nil
}

// single decodes a representation array and requires at least one row.
func single[T any](rows []T, table, id string) (T, error) {
	if len(rows) == 0 {
		var zero T
		if id == "" {
			return zero, fmt.Errorf("%w: %s returned no rows", types.ErrMalformed, table)
		}
		return zero, fmt.Errorf("%w: %s %s", types.ErrNotFound, table, id)
	}
	return rows[0], nil
}
