package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ConnectTimeout bounds dialing the engine server.
const ConnectTimeout = 10 * time.Second

// ErrUnsupportedScheme is returned by Dial for addresses it cannot reach.
var ErrUnsupportedScheme = errors.New("unsupported address scheme")

// Transport exchanges packets with the engine server. ReadPacket blocks
// until a packet arrives and must return an error once Close is called.
type Transport interface {
	ReadPacket() (string, error)
	WritePacket(packet string) error
	Close() error
}

// Dial connects to the engine server. Addresses are "host:port" or
// "tcp://host:port" for the line protocol, or "ws://", "wss://", "http://"
// and "https://" URLs for a WebSocket that carries one packet per text
// message.
func Dial(ctx context.Context, address string) (Transport, error) {
	if !strings.Contains(address, "://") {
		address = "tcp://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("invalid server address: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	switch u.Scheme {
	case "tcp":
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
		return NewLineTransport(conn), nil
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return NewWebSocketTransport(conn), nil
}

// LineTransport speaks newline-terminated packets over a stream.
type LineTransport struct {
	conn io.ReadWriteCloser
	r    *bufio.Reader
	w    *bufio.Writer
}

// NewLineTransport wraps a stream connection.
func NewLineTransport(conn io.ReadWriteCloser) *LineTransport {
	return &LineTransport{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}
}

func (t *LineTransport) ReadPacket() (string, error) {
	line, err := t.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *LineTransport) WritePacket(packet string) error {
	if _, err := t.w.WriteString(packet + "\n"); err != nil {
		return err
	}
	return t.w.Flush()
}

func (t *LineTransport) Close() error {
	return t.conn.Close()
}

// WebSocketTransport carries one packet per text message.
type WebSocketTransport struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// NewWebSocketTransport wraps an established WebSocket connection.
func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	return &WebSocketTransport{conn: conn}
}

func (t *WebSocketTransport) ReadPacket() (string, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return "", io.EOF
		}
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (t *WebSocketTransport) WritePacket(packet string) error {
	return t.conn.WriteMessage(websocket.TextMessage, []byte(packet))
}

func (t *WebSocketTransport) Close() error {
	t.closeOnce.Do(func() {
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
