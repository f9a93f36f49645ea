package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iliyamo/classroom-client/internal/metrics"
	"github.com/iliyamo/classroom-client/internal/model"
)

// Refresh exchanges the stored refresh token for a new access token and
// persists it.  Unlike the automatic refresh on 401, a failure here leaves
// the stored tokens alone.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	return c.refreshShared(ctx)
}

// refreshShared collapses concurrent refreshes into one in-flight call.
// The shared call runs detached from any single caller's context and is
// bounded by the http.Client timeout; each caller stops waiting when its
// own context ends.
func (c *Client) refreshShared(ctx context.Context) (string, error) {
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Shared {
			c.log.Debug("joined in-flight token refresh")
		}
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// refresh sends the refresh token both as the bearer credential and in the
// JSON body, since deployments of the API read it from either place.  The
// call bypasses the interception pipeline.
func (c *Client) refresh(ctx context.Context) (string, error) {
	refreshToken, err := c.store.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("apiclient: read refresh token: %w", err)
	}
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	payload, err := json.Marshal(model.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}
	u := c.resolve(c.refreshPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("apiclient: build refresh request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("apiclient: refresh: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("apiclient: refresh: read body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		return "", newAPIError(res.StatusCode, body)
	}

	var out model.RefreshResponse
	if err := json.Unmarshal(body, &out); err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("%w: refresh: %v", ErrInvalidResponse, err)
	}
	if err := checkContract(&out); err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	if err := c.store.SetAccessToken(ctx, out.AccessToken); err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("apiclient: persist access token: %w", err)
	}

	metrics.RefreshTotal.WithLabelValues("success").Inc()
	c.log.Info("access token refreshed")
	return out.AccessToken, nil
}

// expire tears the session down after a failed automatic refresh and
// returns the error handed to the caller.  A caller whose own context
// ended gave up waiting; that is not a rejected session.
func (c *Client) expire(ctx context.Context, cause error) error {
	if ctx.Err() != nil {
		return cause
	}

	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		c.log.Error("clearing tokens after failed refresh", "error", err)
	}
	metrics.SessionExpiredTotal.Inc()
	c.log.Warn("session expired, refresh rejected", "error", cause)

	c.hooksMu.RLock()
	hooks := append([]SessionExpiredFunc(nil), c.hooks...)
	c.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(ctx, cause)
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}
