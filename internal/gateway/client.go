package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "verigate/internal/platform/errors"
	"verigate/internal/platform/logger"
)

const (
	baseURLDefault = "https://gatewayapi.telegram.org"
	defaultTimeout = 10 * time.Second
	defaultUA      = "verigate"

	// maxBodyBytes caps how much of a response we read; real envelopes are tiny
	maxBodyBytes = 1 << 20
)

// Options configures the Client
type Options struct {
	// Token is the gateway access token, required
	Token string

	// BaseURL overrides the production endpoint, mostly for tests
	BaseURL string

	// Timeout applies per request when HTTPClient is not supplied
	Timeout time.Duration

	// UserAgent overrides the default User-Agent header
	UserAgent string

	// HTTPClient lets the caller supply a transport
	// when set, Timeout is ignored and the caller owns the client's lifecycle
	HTTPClient *http.Client

	// Logger overrides the default component logger
	Logger *logger.Logger
}

// Client calls the verification gateway API
// safe for concurrent use
type Client struct {
	http     *http.Client
	ownsHTTP bool
	opts     Options
	log      logger.Logger
	now      func() time.Time
}

// New creates a Client with sane defaults
// the access token is the only hard requirement
func New(o Options) (*Client, error) {
	if o.Token == "" {
		return nil, perr.InvalidArgf("access token is required")
	}
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	log := o.Logger
	if log == nil {
		log = logger.Named("gateway")
	}
	c := &Client{
		http: o.HTTPClient,
		opts: o,
		log:  *log,
		now:  time.Now,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: o.Timeout}
		c.ownsHTTP = true
	}
	return c, nil
}

// Close releases idle connections when the Client owns its transport
func (c *Client) Close() {
	if c.ownsHTTP {
		c.http.CloseIdleConnections()
	}
}

// SendVerificationMessage delivers a verification code to the given phone number
func (c *Client) SendVerificationMessage(ctx context.Context, req SendVerificationMessage) (*RequestStatus, error) {
	return c.doStatus(ctx, req)
}

// CheckSendAbility checks whether the number can receive a verification message
func (c *Client) CheckSendAbility(ctx context.Context, req CheckSendAbility) (*RequestStatus, error) {
	return c.doStatus(ctx, req)
}

// CheckVerificationStatus fetches the status of an earlier request and
// optionally submits a user-entered code for judgement
func (c *Client) CheckVerificationStatus(ctx context.Context, req CheckVerificationStatus) (*RequestStatus, error) {
	return c.doStatus(ctx, req)
}

// RevokeVerificationMessage requests revocation of a sent message
// true means the revocation was accepted for processing
func (c *Client) RevokeVerificationMessage(ctx context.Context, req RevokeVerificationMessage) (bool, error) {
	var accepted bool
	if err := c.do(ctx, req, &accepted); err != nil {
		return false, err
	}
	return accepted, nil
}

func (c *Client) doStatus(ctx context.Context, req request) (*RequestStatus, error) {
	var rs RequestStatus
	if err := c.do(ctx, req, &rs); err != nil {
		return nil, err
	}
	if err := rs.checkComplete(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// envelope is the wire frame every response arrives in
type envelope struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
}

// do validates params, posts the method, and decodes the result into out
func (c *Client) do(ctx context.Context, req request, out any) error {
	method := req.method()
	if err := req.validateParams(); err != nil {
		return perr.WithOp(err, method)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "%s: encode params failed", method)
	}

	url := c.opts.BaseURL + "/" + method
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "%s: build request failed", method)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", c.opts.UserAgent)
	hreq.Header.Set("Authorization", "Bearer "+c.opts.Token)

	start := c.now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		if ctx.Err() != nil {
			return perr.Wrapf(ctx.Err(), perr.ErrorCodeTransport, "%s: request canceled", method)
		}
		return perr.Wrapf(err, perr.ErrorCodeTransport, "%s: request failed", method)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransport, "%s: read response failed", method)
	}

	c.log.Debug().
		Str("method", method).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("latency", c.now().Sub(start)).
		Msg("gateway http response")

	var env envelope
	if jerr := json.Unmarshal(raw, &env); jerr != nil {
		return c.classifyUnparseable(method, resp, raw)
	}

	if !env.OK {
		if env.Error == "" {
			return perr.Decodef("%s: response not ok but carries no error code", method)
		}
		return perr.WithOp(newRemoteError(env.Error), method)
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDecode, "%s: decode result failed", method)
	}
	return nil
}

// classifyUnparseable maps a response whose body is not a valid envelope
// the status line is all we have to go on
func (c *Client) classifyUnparseable(method string, resp *http.Response, raw []byte) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return perr.Unauthorizedf("%s: access token rejected (status %d)", method, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		re := &RemoteError{Code: remoteFloodWaitPrefix + "0"}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			re.Code = remoteFloodWaitPrefix + strconv.Itoa(secs)
			re.RetryAfter = time.Duration(secs) * time.Second
		}
		return perr.WithOp(perr.Wrap(re, perr.ErrorCodeRemote, re.Error()), method)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return perr.Decodef("%s: malformed response body (%d bytes)", method, len(raw))
	default:
		return perr.HTTPf("%s: unexpected status %d", method, resp.StatusCode)
	}
}
