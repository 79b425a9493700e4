package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/drbiga/lsuadhd-companion/internal/session"
)

const (
	feedDialRetries   = 3
	feedDialRetryWait = time.Second
	feedPongTimeout   = 60 * time.Second
	feedPingInterval  = 30 * time.Second
	feedWriteTimeout  = 10 * time.Second
)

// ProgressFeed manages the lifecycle push channel: a WebSocket stream
// of authoritative (stage, remaining time) updates for one participant.
type ProgressFeed struct {
	wsBase string
	token  string

	mu      sync.Mutex
	conn    *websocket.Conn
	pingCtx context.CancelFunc
}

// NewProgressFeed creates a feed client. wsBase is the WebSocket base
// URL (e.g. "ws://localhost:8000").
func NewProgressFeed(wsBase, token string) *ProgressFeed {
	return &ProgressFeed{wsBase: wsBase, token: token}
}

// --- Bubble Tea messages ---

// FeedConnectedMsg is sent when the push channel opens.
type FeedConnectedMsg struct{}

// FeedDownMsg is sent when the channel drops or cannot be opened. The
// receiver must treat local state as potentially stale: purge the
// snapshot cache and re-derive state from the server.
type FeedDownMsg struct{ Err error }

// ProgressMsg delivers one authoritative progress update.
type ProgressMsg struct{ Progress session.Progress }

// Connected reports whether a channel is currently open.
func (f *ProgressFeed) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn != nil
}

// Subscribe returns a command that opens the push channel for the
// participant. Calling it while a channel is already open is a no-op,
// so a double subscribe can never produce duplicate channels.
func (f *ProgressFeed) Subscribe(ctx context.Context, participant string) tea.Cmd {
	if f.Connected() {
		return nil
	}
	target := fmt.Sprintf("%s/session_execution/student/%s/session/observer?token=%s",
		f.wsBase, url.PathEscape(participant), url.QueryEscape(f.token))

	return func() tea.Msg {
		var lastErr error
		for attempt := 0; attempt < feedDialRetries; attempt++ {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			conn, _, err := websocket.DefaultDialer.Dial(target, nil)
			if err != nil {
				lastErr = err
				log.Warn().Err(err).Int("attempt", attempt+1).Msg("progress feed dial failed")
				time.Sleep(feedDialRetryWait)
				continue
			}

			f.mu.Lock()
			if f.conn != nil {
				// Lost the race with another subscribe; keep the first.
				f.mu.Unlock()
				conn.Close()
				return FeedConnectedMsg{}
			}
			if f.pingCtx != nil {
				f.pingCtx()
			}
			pingCtx, pingCancel := context.WithCancel(ctx)
			f.conn = conn
			f.pingCtx = pingCancel
			f.mu.Unlock()

			go f.pingLoop(pingCtx, conn)
			return FeedConnectedMsg{}
		}
		return FeedDownMsg{Err: lastErr}
	}
}

// ReadLoop returns a command that reads updates until the channel
// drops. Start it after FeedConnectedMsg and again after every
// ProgressMsg.
func (f *ProgressFeed) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		f.mu.Lock()
		conn := f.conn
		f.mu.Unlock()
		if conn == nil {
			return FeedDownMsg{Err: fmt.Errorf("not subscribed")}
		}

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(feedPongTimeout))
			return nil
		})
		conn.SetReadDeadline(time.Now().Add(feedPongTimeout))

		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			_, data, err := conn.ReadMessage()
			if err != nil {
				f.mu.Lock()
				if f.conn == conn {
					f.conn = nil
				}
				f.mu.Unlock()
				conn.Close()
				return FeedDownMsg{Err: err}
			}

			var p session.Progress
			if err := json.Unmarshal(data, &p); err != nil {
				// Malformed push message: discard, keep reading.
				log.Warn().Err(err).Msg("discarding malformed progress message")
				continue
			}
			return ProgressMsg{Progress: p}
		}
	}
}

// Close tears down the channel. Safe to call when not subscribed.
func (f *ProgressFeed) Close() {
	f.mu.Lock()
	conn := f.conn
	f.conn = nil
	if f.pingCtx != nil {
		f.pingCtx()
		f.pingCtx = nil
	}
	f.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (f *ProgressFeed) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.mu.Lock()
			cc := f.conn
			f.mu.Unlock()
			if cc != conn {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
