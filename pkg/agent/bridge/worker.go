package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	turnTimeout    = 45 * time.Second
)

// Worker holds one websocket connection to the voice gateway and multiplexes
// the calls running on it. It redials with exponential backoff until the
// context is cancelled.
type Worker struct {
	url     string
	factory *CallFactory
	logger  *slog.Logger

	writeMu sync.Mutex
	conn    *websocket.Conn

	callsMu sync.Mutex
	calls   map[string]*Call
}

func NewWorker(url string, factory *CallFactory, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		url:     url,
		factory: factory,
		logger:  logger,
		calls:   make(map[string]*Call),
	}
}

// Run connects and serves until ctx is cancelled. The error is ctx.Err() on
// clean shutdown.
func (w *Worker) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
		if err != nil {
			w.logger.Warn("gateway dial failed", "url", w.url, "backoff", backoff, "error", err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = initialBackoff
		w.logger.Info("connected to voice gateway", "url", w.url)

		w.setConn(conn)
		err = w.readLoop(ctx, conn)
		w.setConn(nil)
		conn.Close()
		w.endAllCalls(ctx)
		if errors.Is(err, context.Canceled) {
			return err
		}
		w.logger.Warn("gateway connection lost", "error", err)
	}
}

func (w *Worker) setConn(conn *websocket.Conn) {
	w.writeMu.Lock()
	w.conn = conn
	w.writeMu.Unlock()
}

func (w *Worker) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// Unblock ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		env, err := decodeEnvelope(data)
		if err != nil {
			w.logger.Warn("bad envelope from gateway", "error", err)
			continue
		}
		w.handle(ctx, env)
	}
}

func (w *Worker) handle(ctx context.Context, env Envelope) {
	switch env.Type {
	case TypeSessionStart:
		w.startCall(ctx, env)
	case TypeTranscript:
		if env.Final {
			w.handleTranscript(ctx, env)
		}
	case TypeSessionEnd:
		w.endCall(ctx, env.RoomID)
	default:
		w.logger.Warn("unknown envelope type", "type", env.Type, "room_id", env.RoomID)
	}
}

func (w *Worker) startCall(ctx context.Context, env Envelope) {
	call, err := w.factory.Start(ctx, env.RoomID, env.CallerNumber)
	if err != nil {
		w.logger.Error("call start failed", "room_id", env.RoomID, "error", err)
		return
	}
	w.callsMu.Lock()
	if prev, ok := w.calls[env.RoomID]; ok {
		// A duplicate session_start supersedes the stale call.
		w.callsMu.Unlock()
		prev.End(ctx, w.factory.Turner)
		w.callsMu.Lock()
	}
	w.calls[env.RoomID] = call
	w.callsMu.Unlock()

	w.logger.Info("call started", "room_id", env.RoomID, "call_id", call.CallID(),
		"caller_number", env.CallerNumber)
	w.speak(env.RoomID, call.Greet(ctx))
}

func (w *Worker) handleTranscript(ctx context.Context, env Envelope) {
	call := w.lookup(env.RoomID)
	if call == nil {
		w.logger.Warn("transcript for unknown call", "room_id", env.RoomID)
		return
	}

	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()
	reply, err := call.HandleTranscript(turnCtx, w.factory.Turner, env.Text)
	if err != nil {
		w.logger.Error("turn failed", "room_id", env.RoomID, "call_id", call.CallID(), "error", err)
		w.speak(env.RoomID, "Désolée, un incident technique m'empêche de vous répondre. Je vous transfère à un conseiller.")
		return
	}
	if reply != "" {
		w.speak(env.RoomID, reply)
	}
}

func (w *Worker) endCall(ctx context.Context, roomID string) {
	w.callsMu.Lock()
	call, ok := w.calls[roomID]
	delete(w.calls, roomID)
	w.callsMu.Unlock()
	if !ok {
		return
	}
	w.logger.Info("call ended", "room_id", roomID, "call_id", call.CallID())
	call.End(ctx, w.factory.Turner)
}

// endAllCalls finalizes everything still in flight when the connection drops,
// so journal rows do not stay open forever.
func (w *Worker) endAllCalls(ctx context.Context) {
	w.callsMu.Lock()
	calls := w.calls
	w.calls = make(map[string]*Call)
	w.callsMu.Unlock()
	for roomID, call := range calls {
		w.logger.Info("finalizing interrupted call", "room_id", roomID, "call_id", call.CallID())
		call.End(ctx, w.factory.Turner)
	}
}

func (w *Worker) lookup(roomID string) *Call {
	w.callsMu.Lock()
	defer w.callsMu.Unlock()
	return w.calls[roomID]
}

func (w *Worker) speak(roomID, text string) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if w.conn == nil {
		return
	}
	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := w.conn.WriteJSON(speakEnvelope(roomID, text)); err != nil {
		w.logger.Warn("speak write failed", "room_id", roomID, "error", err)
	}
}
