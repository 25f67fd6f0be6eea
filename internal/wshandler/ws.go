package wshandler

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofiber/contrib/websocket"

	"github.com/towops/towops/internal/dispatch"
	"github.com/towops/towops/pkg/model"
)

const queueSize = 32

type WebMessage struct {
	Typ            string                      `json:"type"`
	ID             string                      `json:"id"`
	Timestamp      float64                     `json:"timestamp"`
	Call           *model.WebCall              `json:"call,omitempty"`
	Unit           *model.WebUnit              `json:"unit,omitempty"`
	Assignment     *model.WebAssignment        `json:"assignment,omitempty"`
	Recommendation *dispatch.WebRecommendation `json:"recommendation,omitempty"`
}

func ToWebMessage(ev dispatch.Event) *WebMessage {
	m := &WebMessage{
		Typ:       string(ev.Kind),
		ID:        ev.ID,
		Timestamp: model.Epoch(ev.Time),
	}

	if ev.Call != nil {
		m.Call = ev.Call.DTO()
	}

	if ev.Unit != nil {
		m.Unit = ev.Unit.DTO()
	}

	if ev.Assignment != nil {
		m.Assignment = ev.Assignment.DTO()
	}

	if ev.Recommendation != nil {
		m.Recommendation = ev.Recommendation.DTO()
	}

	return m
}

type conn interface {
	WriteJSON(v any) error
	ReadMessage() (int, []byte, error)
	SetCloseHandler(h func(code int, text string) error)
	Close() error
}

// JSONWsHandler pushes dispatch events to one websocket client.
type JSONWsHandler struct {
	log    *slog.Logger
	name   string
	ws     conn
	ch     chan *WebMessage
	active int32
}

func NewHandler(log *slog.Logger, name string, ws *websocket.Conn) *JSONWsHandler {
	return newHandler(log, name, ws)
}

func newHandler(log *slog.Logger, name string, ws conn) *JSONWsHandler {
	return &JSONWsHandler{
		log:    log.With("client", name),
		name:   name,
		ws:     ws,
		ch:     make(chan *WebMessage, queueSize),
		active: 1,
	}
}

func (w *JSONWsHandler) Name() string {
	return w.name
}

func (w *JSONWsHandler) IsActive() bool {
	return w != nil && atomic.LoadInt32(&w.active) == 1
}

func (w *JSONWsHandler) stop() {
	if atomic.CompareAndSwapInt32(&w.active, 1, 0) {
		close(w.ch)
		w.ws.Close()
	}
}

func (w *JSONWsHandler) writer() {
	for item := range w.ch {
		if !w.IsActive() {
			return
		}

		if err := w.ws.WriteJSON(item); err != nil {
			w.log.Warn("write error", slog.Any("error", err))
			w.stop()

			return
		}
	}
}

func (w *JSONWsHandler) reader() {
	defer w.stop()

	for {
		if _, _, err := w.ws.ReadMessage(); err != nil {
			w.log.Debug("read finished", slog.Any("error", err))

			return
		}
	}
}

// Send queues an event, dropping it when the client is slow. It returns false once the client is gone.
func (w *JSONWsHandler) Send(ev dispatch.Event) (ok bool) {
	if !w.IsActive() {
		return false
	}

	// stop may close the channel between the check and the send
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case w.ch <- ToWebMessage(ev):
	default:
		w.log.Debug("queue full, event dropped", slog.String("type", string(ev.Kind)))
	}

	return true
}

func (w *JSONWsHandler) closehandler(code int, text string) error {
	w.log.Info(fmt.Sprintf("closed with code %d, msg %s", code, text))
	w.stop()

	return nil
}

// Listen subscribes the client to st events and blocks until the connection closes.
func (w *JSONWsHandler) Listen(st *dispatch.State) {
	w.log.Debug("ws start")
	w.ws.SetCloseHandler(w.closehandler)

	st.Events().Subscribe(w.name, w.Send)

	go w.writer()
	w.reader()

	st.Events().Unsubscribe(w.name)
	w.log.Debug("ws stop")
}
