package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// DefaultPath is the server's websocket endpoint.
const DefaultPath = "/poker5"

// AuthCookie is the cookie carrying the session token.
const AuthCookie = "auth_token"

const readLimit = 1 << 20

// WebSocketOptions configures DialWebSocket.
type WebSocketOptions struct {
	ServerURL string
	Path      string
	AuthToken string
}

// WebSocketChannel is a Channel over a single websocket connection.
type WebSocketChannel struct {
	conn     *websocket.Conn
	endpoint string
	logger   *logrus.Logger
}

// EndpointURL builds the websocket URL for a server base URL. Secure bases
// (https, wss) map to wss, everything else to ws.
func EndpointURL(base, path string) (string, error) {
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", base, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q has no host", base)
	}
	if path == "" {
		path = DefaultPath
	}
	u.Path = "/" + strings.TrimLeft(path, "/")
	return u.String(), nil
}

// DialWebSocket opens the websocket connection.
func DialWebSocket(ctx context.Context, opts WebSocketOptions, logger *logrus.Logger) (*WebSocketChannel, error) {
	endpoint, err := EndpointURL(opts.ServerURL, opts.Path)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if opts.AuthToken != "" {
		header.Set("Cookie", (&http.Cookie{Name: AuthCookie, Value: opts.AuthToken}).String())
	}

	c, _, err := websocket.Dial(ctx, endpoint, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}
	c.SetReadLimit(readLimit)

	LogConnect(logger, "websocket", endpoint)
	return &WebSocketChannel{conn: c, endpoint: endpoint, logger: logger}, nil
}

// Endpoint returns the dialed URL.
func (w *WebSocketChannel) Endpoint() string {
	return w.endpoint
}

// Receive blocks for the next text frame. Binary frames are skipped.
func (w *WebSocketChannel) Receive(ctx context.Context) ([]byte, error) {
	for {
		msgType, data, err := w.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil, ErrClosed
			}
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			return nil, fmt.Errorf("websocket read: %w", err)
		}
		if msgType != websocket.MessageText {
			w.logger.Warnf("Ignoring non-text websocket frame (type %d)", msgType)
			continue
		}
		return data, nil
	}
}

// Send writes one text frame.
func (w *WebSocketChannel) Send(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := w.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (w *WebSocketChannel) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "client leaving")
}
