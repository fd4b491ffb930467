// Package legacy talks to the legacy sighting tracking service. Every new
// sighting is mirrored there on a best-effort basis, and the service's own
// sighting and species lists can be proxied through.
package legacy

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

	"github.com/wildwatch/sightings/internal/conf"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/httpclient"
	"github.com/wildwatch/sightings/internal/logger"
)

// maxResponseSize caps how much of an upstream response is read.
const maxResponseSize = 1 << 20

// ErrLegacyMirror matches every *MirrorError via errors.Is.
var ErrLegacyMirror = errors.NewStd("legacy sighting service request failed")

// Record is the payload mirrored to the legacy service. Identifiers and
// location are never forwarded.
type Record struct {
	Species     string    `json:"species"`
	Description *string   `json:"description"`
	DateTime    time.Time `json:"dateTime"`
	Count       int64     `json:"count"`
}

// MirrorError describes a failed legacy call. StatusCode is zero when no
// response arrived. Body holds the upstream payload, decoded as JSON when
// possible.
type MirrorError struct {
	Op         string
	URL        string
	StatusCode int
	Body       any
	Err        error
}

func (e *MirrorError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("legacy %s: upstream responded with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("legacy %s: %v", e.Op, e.Err)
}

// Unwrap returns the transport or decoding cause, if any.
func (e *MirrorError) Unwrap() error { return e.Err }

// Is reports whether target is ErrLegacyMirror.
func (e *MirrorError) Is(target error) bool { return target == ErrLegacyMirror }

// Client calls the legacy service.
type Client struct {
	http          *httpclient.Client
	baseURI       string
	sightingsPath string
	speciesPath   string
	timeout       time.Duration
	logger        logger.Logger
}

// New creates a Client from settings. hc is shared with the rest of the
// service; log may be nil.
func New(settings *conf.LegacySettings, hc *httpclient.Client, log logger.Logger) (*Client, error) {
	if settings == nil {
		return nil, errors.Newf("legacy settings are nil").
			Component("legacy").
			Category(errors.CategoryConfiguration).
			Build()
	}
	u, err := url.Parse(settings.URI)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.Newf("invalid legacy service URI %q", settings.URI).
			Component("legacy").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if hc == nil {
		hc = httpclient.New(nil)
	}
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}

	return &Client{
		http:          hc,
		baseURI:       strings.TrimRight(settings.URI, "/"),
		sightingsPath: settings.SightingsPath,
		speciesPath:   settings.SpeciesPath,
		timeout:       settings.Timeout,
		logger:        log.Module("legacy"),
	}, nil
}

// Timeout is the per-call deadline applied to every request.
func (c *Client) Timeout() time.Duration { return c.timeout }

// CreateSighting posts rec to the legacy sightings endpoint and returns the
// response body. Failures of any kind come back as *MirrorError.
func (c *Client) CreateSighting(ctx context.Context, rec *Record) (json.RawMessage, error) {
	endpoint := c.baseURI + c.sightingsPath
	return c.call(ctx, "create_sighting", endpoint, func(ctx context.Context) (*http.Response, error) {
		return c.http.Post(ctx, endpoint, "application/json", rec)
	})
}

// FetchSightings returns the legacy service's sighting list unchanged.
func (c *Client) FetchSightings(ctx context.Context) (json.RawMessage, error) {
	endpoint := c.baseURI + c.sightingsPath
	return c.call(ctx, "fetch_sightings", endpoint, func(ctx context.Context) (*http.Response, error) {
		return c.http.Get(ctx, endpoint)
	})
}

// FetchSpecies returns the legacy service's species list unchanged.
func (c *Client) FetchSpecies(ctx context.Context) (json.RawMessage, error) {
	endpoint := c.baseURI + c.speciesPath
	return c.call(ctx, "fetch_species", endpoint, func(ctx context.Context) (*http.Response, error) {
		return c.http.Get(ctx, endpoint)
	})
}

func (c *Client) call(ctx context.Context, op, endpoint string, send func(context.Context) (*http.Response, error)) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := send(ctx)
	if err != nil {
		mErr := &MirrorError{Op: op, URL: endpoint, Err: c.transportError(err, op, endpoint, time.Since(start))}
		c.logger.Warn("legacy service request failed",
			logger.String("operation", op),
			logger.String("url", endpoint),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return nil, mErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		mErr := &MirrorError{Op: op, URL: endpoint, StatusCode: resp.StatusCode}
		var se *httpclient.StatusError
		if err := httpclient.DecodeJSON(resp, nil); errors.As(err, &se) {
			mErr.Body = se.Body
			mErr.Err = se
		} else {
			mErr.Err = err
		}
		c.logger.Warn("legacy service rejected request",
			logger.String("operation", op),
			logger.String("url", endpoint),
			logger.Int("status_code", resp.StatusCode),
			logger.Duration("elapsed", time.Since(start)))
		return nil, mErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &MirrorError{Op: op, URL: endpoint, StatusCode: resp.StatusCode,
			Err: c.transportError(err, op, endpoint, time.Since(start))}
	}

	c.logger.Debug("legacy service request succeeded",
		logger.String("operation", op),
		logger.Int("status_code", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)))

	return asRawJSON(raw), nil
}

// transportError categorizes a failure that produced no usable response.
func (c *Client) transportError(err error, op, endpoint string, elapsed time.Duration) error {
	category := errors.CategoryNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		category = errors.CategoryTimeout
	}
	return errors.New(err).
		Component("legacy").
		Category(category).
		Context("operation", op).
		Context("url", endpoint).
		Context("timeout_ms", c.timeout.Milliseconds()).
		Context("duration_ms", elapsed.Milliseconds()).
		Build()
}

// asRawJSON passes JSON through untouched. An empty body becomes null and
// anything else is wrapped as a JSON string.
func asRawJSON(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return json.RawMessage("null")
	case json.Valid(trimmed):
		return json.RawMessage(trimmed)
	default:
		quoted, _ := json.Marshal(string(trimmed))
		return quoted
	}
}
