package checkers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/probe"
)

// recordSeparator terminates every SignalR JSON hub protocol message.
const recordSeparator = "\x1e"

const signalRHandshake = `{"protocol":"json","version":1}` + recordSeparator

// DefaultHandshakeTimeout bounds the websocket upgrade.
const DefaultHandshakeTimeout = 10 * time.Second

// SignalR negotiates with an ASP.NET Core SignalR hub and completes the hub
// protocol handshake over a websocket.
type SignalR struct {
	name   string
	hubURL string
	client *http.Client
	dialer *websocket.Dialer
}

// NewSignalR creates a SignalR checker for hubURL (http or https).
func NewSignalR(name, hubURL string, client *http.Client) *SignalR {
	if client == nil {
		client = &http.Client{}
	}
	return &SignalR{
		name:   name,
		hubURL: strings.TrimSpace(hubURL),
		client: client,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
	}
}

// Name returns the check name.
func (c *SignalR) Name() string {
	return c.name
}

type negotiateResponse struct {
	ConnectionID        string `json:"connectionId"`
	ConnectionToken     string `json:"connectionToken"`
	URL                 string `json:"url"`
	AccessToken         string `json:"accessToken"`
	Error               string `json:"error"`
	AvailableTransports []struct {
		Transport string `json:"transport"`
	} `json:"availableTransports"`
}

func (n negotiateResponse) offersWebSockets() bool {
	for _, t := range n.AvailableTransports {
		if strings.EqualFold(t.Transport, "WebSockets") {
			return true
		}
	}
	return false
}

// Check negotiates, follows one redirect to a SignalR service, then opens a
// websocket and exchanges the JSON protocol handshake. A hub that does not
// offer websockets is Healthy once negotiation succeeds.
func (c *SignalR) Check(ctx context.Context) health.Result {
	hub, err := url.Parse(c.hubURL)
	if err != nil || hub.Host == "" {
		return health.Unhealthy("invalid hub url", fmt.Errorf("%w: %q", probe.ErrInvalidURL, c.hubURL))
	}

	neg, err := c.negotiate(ctx, hub, "")
	if err != nil {
		return health.Failure("negotiate", err)
	}

	token := ""
	if neg.URL != "" {
		redirect, err := url.Parse(neg.URL)
		if err != nil {
			return health.Unhealthy("invalid redirect url", err)
		}
		hub, token = redirect, neg.AccessToken
		if neg, err = c.negotiate(ctx, hub, token); err != nil {
			return health.Failure("negotiate", err)
		}
	}

	details := map[string]any{"connectionId": neg.ConnectionID}
	if !neg.offersWebSockets() {
		details["transport"] = "negotiate"
		return health.Healthy("SignalR hub negotiated.").WithDetails(details)
	}

	if err := c.handshake(ctx, hub, neg, token); err != nil {
		return health.Failure("handshake", err).WithDetails(details)
	}
	details["transport"] = "WebSockets"
	return health.Healthy("SignalR hub is reachable.").WithDetails(details)
}

func (c *SignalR) negotiate(ctx context.Context, hub *url.URL, token string) (negotiateResponse, error) {
	u := *hub
	u.Path = strings.TrimRight(u.Path, "/") + "/negotiate"
	q := u.Query()
	q.Set("negotiateVersion", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return negotiateResponse{}, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return negotiateResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return negotiateResponse{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var neg negotiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&neg); err != nil {
		return negotiateResponse{}, fmt.Errorf("decode negotiate response: %w", err)
	}
	if neg.Error != "" {
		return negotiateResponse{}, fmt.Errorf("%w: %s", ErrHandshakeRejected, neg.Error)
	}
	return neg, nil
}

func (c *SignalR) handshake(ctx context.Context, hub *url.URL, neg negotiateResponse, token string) error {
	u := *hub
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	id := neg.ConnectionToken
	if id == "" {
		id = neg.ConnectionID
	}
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(signalRHandshake)); err != nil {
		return err
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return err
	}

	var reply struct {
		Error string `json:"error"`
	}
	first, _, _ := strings.Cut(string(msg), recordSeparator)
	if err := json.Unmarshal([]byte(first), &reply); err != nil {
		return fmt.Errorf("decode handshake response: %w", err)
	}
	if reply.Error != "" {
		return fmt.Errorf("%w: %s", ErrHandshakeRejected, reply.Error)
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}
