package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"opswatch/internal/httpclient"
)

// ErrNotList is returned when a method that should yield an array returns
// some other JSON shape.
var ErrNotList = errors.New("zabbix: result is not a list")

// ErrLogin wraps every failure to establish a session.
var ErrLogin = errors.New("zabbix login failed")

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("zabbix rpc %d: %s %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("zabbix rpc %d: %s", e.Code, e.Message)
}

// IsAuthError reports whether the server rejected the session token.
func (e *RPCError) IsAuthError() bool {
	text := strings.ToLower(e.Message + " " + e.Data)
	for _, marker := range []string{"re-login", "not authorised", "not authorized", "session terminated"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Observer receives one call per upstream request.
type Observer interface {
	ObserveUpstream(backend, operation string, err error, elapsed time.Duration)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	Auth    string `json:"auth,omitempty"`
	ID      int64  `json:"id"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Client talks to the Zabbix JSON-RPC API.
type Client struct {
	http     *httpclient.Client
	user     string
	password string
	session  *Session
	observer Observer
	logger   *slog.Logger
	nextID   atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithObserver reports every RPC call to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPOptions forwards options to the underlying HTTP client.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(c *Client) { c.http = httpclient.New(c.http.BaseURL(), opts...) }
}

// New creates a client for the api_jsonrpc.php endpoint at url.
func New(url, user, password string, opts ...Option) *Client {
	c := &Client{
		http:     httpclient.New(url),
		user:     user,
		password: password,
		logger:   slog.Default(),
	}
	c.session = NewSession(c.Login)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session exposes the token cache, mostly for diagnostics.
func (c *Client) Session() *Session {
	return c.session
}

// Login calls user.login and returns the token. It does not touch the cache.
func (c *Client) Login(ctx context.Context) (string, error) {
	raw, err := c.call(ctx, "user.login", map[string]string{
		"username": c.user,
		"password": c.password,
	}, "")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLogin, err)
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil || token == "" {
		return "", fmt.Errorf("%w: unexpected result %s", ErrLogin, truncate(raw))
	}
	c.logger.Debug("zabbix session established")
	return token, nil
}

// APIVersion calls apiinfo.version, which needs no authentication.
func (c *Client) APIVersion(ctx context.Context) (string, error) {
	raw, err := c.call(ctx, "apiinfo.version", []any{}, "")
	if err != nil {
		return "", err
	}
	var version string
	if err := json.Unmarshal(raw, &version); err != nil {
		return "", fmt.Errorf("apiinfo.version: unexpected result %s", truncate(raw))
	}
	return version, nil
}

// Hosts lists all hosts with their embedded interfaces.
func (c *Client) Hosts(ctx context.Context) ([]Host, error) {
	raw, err := c.authedCall(ctx, "host.get", map[string]any{
		"output":           []string{"hostid", "host", "status", "available"},
		"selectInterfaces": []string{"ip", "available"},
	})
	if err != nil {
		return nil, err
	}
	var hosts []Host
	if err := decodeList(raw, &hosts); err != nil {
		return nil, fmt.Errorf("host.get: %w", err)
	}
	return hosts, nil
}

// HostInterfaces lists the interfaces of one host.
func (c *Client) HostInterfaces(ctx context.Context, hostID string) ([]Interface, error) {
	raw, err := c.authedCall(ctx, "hostinterface.get", map[string]any{
		"output":  []string{"ip", "available"},
		"hostids": hostID,
	})
	if err != nil {
		return nil, err
	}
	var ifaces []Interface
	if err := decodeList(raw, &ifaces); err != nil {
		return nil, fmt.Errorf("hostinterface.get: %w", err)
	}
	return ifaces, nil
}

// Items lists the time-series items of one host with their last values.
func (c *Client) Items(ctx context.Context, hostID string) ([]Item, error) {
	raw, err := c.authedCall(ctx, "item.get", map[string]any{
		"hostids": hostID,
		"output":  []string{"name", "key_", "lastvalue", "lastclock"},
	})
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := decodeList(raw, &items); err != nil {
		return nil, fmt.Errorf("item.get: %w", err)
	}
	return items, nil
}

// Triggers lists the triggers currently in problem state.
func (c *Client) Triggers(ctx context.Context) ([]Trigger, error) {
	raw, err := c.authedCall(ctx, "trigger.get", map[string]any{
		"output":            []string{"triggerid", "description", "priority", "lastchange", "value"},
		"selectHosts":       []string{"host"},
		"filter":            map[string]any{"value": 1},
		"only_true":         true,
		"expandDescription": true,
	})
	if err != nil {
		return nil, err
	}
	var triggers []Trigger
	if err := decodeList(raw, &triggers); err != nil {
		return nil, fmt.Errorf("trigger.get: %w", err)
	}
	return triggers, nil
}

// authedCall runs method with the session token. When the server rejects
// the token, the session is re-established and the call retried once.
func (c *Client) authedCall(ctx context.Context, method string, params any) (json.RawMessage, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := c.call(ctx, method, params, token)

	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.IsAuthError() {
		c.logger.Info("zabbix session rejected, logging in again", "method", method)
		c.session.Invalidate(token)
		if token, err = c.session.Token(ctx); err != nil {
			return nil, err
		}
		raw, err = c.call(ctx, method, params, token)
	}
	return raw, err
}

func (c *Client) call(ctx context.Context, method string, params any, auth string) (raw json.RawMessage, err error) {
	start := time.Now()
	if c.observer != nil {
		defer func() { c.observer.ObserveUpstream("zabbix", method, err, time.Since(start)) }()
	}

	body, err := c.http.PostJSON(ctx, "", request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		Auth:    auth,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

func decodeList(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return ErrNotList
	}
	return json.Unmarshal(trimmed, dst)
}

func truncate(raw []byte) string {
	if len(raw) > 128 {
		return string(raw[:128]) + "..."
	}
	return string(raw)
}
