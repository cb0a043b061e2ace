package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/devpubio/devpub/core/logger"
	"github.com/devpubio/devpub/core/topic"
)

// streamTopic upgrades the request to a WebSocket and binds it to a freshly
// opened topic handle. The socket is the byte-stream face of the handle: read
// mode relays published spans to the client, write mode publishes each binary
// message whole.
func (h *Handler) streamTopic(w http.ResponseWriter, r *http.Request) {
	tp, err := h.reg.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	var kind topic.Kind
	switch r.URL.Query().Get("mode") {
	case "read":
		kind = topic.Reader
	case "write":
		kind = topic.Writer
	default:
		writeError(w, topic.ErrAccessDenied)
		return
	}

	handle, err := tp.Open(kind)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("nonblock") == "1" {
		handle.SetNonblocking(true)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		_ = handle.Close()
		return
	}

	log := h.logger.With(
		logger.Topic(tp.Name()),
		logger.Handle(handle.ID().String()),
		logger.Kind(kind.String()))
	log.Info("stream opened")

	defer func() {
		_ = conn.Close()
		_ = handle.Close()
		log.Info("stream closed")
	}()

	switch kind {
	case topic.Reader:
		hangup := r.URL.Query().Get("hup") == "1"
		h.runReadStream(r.Context(), conn, handle, hangup, log)
	case topic.Writer:
		h.runWriteStream(r.Context(), conn, handle, log)
	}
}

// runReadStream relays topic data to the socket. A side goroutine drains
// incoming control frames so client closes cancel the blocking read. With
// hangup set, the stream also ends once the topic is drained and the last
// writer has departed, the stream analogue of a hangup condition.
func (h *Handler) runReadStream(ctx context.Context, conn *websocket.Conn, handle *topic.Handle, hangup bool, log *slog.Logger) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var hupped atomic.Bool
	if hangup {
		tp := handle.Topic()
		go func() {
			defer cancel()
			for {
				// Grab the signal channel before checking so a wakeup
				// between check and wait is not lost.
				ch := tp.Readable()
				readable, _ := handle.Poll()
				if !readable && tp.WriterCount() == 0 {
					hupped.Store(true)
					return
				}
				select {
				case <-ch:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// A capacity-sized buffer drains every contiguous span in one read,
	// which keeps the broadcast gate balanced for this subscriber.
	buf := make([]byte, handle.Topic().Capacity())
	for {
		// The watcher only catches departures while this loop is parked;
		// a writer that left while data was still pending is noticed here
		// once the stream drains.
		if hangup {
			if readable, _ := handle.Poll(); !readable && handle.Topic().WriterCount() == 0 {
				h.closeWith(conn, websocket.CloseGoingAway, "last writer departed")
				return
			}
		}

		n, err := handle.Read(ctx, buf)
		switch {
		case errors.Is(err, topic.ErrInterrupted):
			if hupped.Load() {
				h.closeWith(conn, websocket.CloseGoingAway, "last writer departed")
			}
			return
		case errors.Is(err, topic.ErrWouldBlock):
			h.closeWith(conn, websocket.CloseTryAgainLater, "no data available")
			return
		case errors.Is(err, topic.ErrClosed):
			h.closeWith(conn, websocket.CloseGoingAway, "topic closed")
			return
		case err != nil:
			log.Error("stream read failed", logger.Error(err))
			return
		}

		if err := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); err != nil {
			return
		}
	}
}

// runWriteStream publishes each binary message from the socket, looping on
// short writes so a message lands whole even when it splits at the wrap.
// Messages arrive through a pump goroutine so a disconnect cancels a write
// suspended on a full topic.
func (h *Handler) runWriteStream(ctx context.Context, conn *websocket.Conn, handle *topic.Handle, log *slog.Logger) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan []byte)
	go func() {
		defer cancel()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			select {
			case msgs <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var data []byte
		select {
		case data = <-msgs:
		case <-ctx.Done():
			return // client went away
		}

		for len(data) > 0 {
			n, err := handle.Write(ctx, data)
			switch {
			case errors.Is(err, topic.ErrInterrupted):
				return
			case errors.Is(err, topic.ErrWouldBlock):
				h.closeWith(conn, websocket.CloseTryAgainLater, "no space available")
				return
			case errors.Is(err, topic.ErrClosed):
				h.closeWith(conn, websocket.CloseGoingAway, "topic closed")
				return
			case err != nil:
				log.Warn("rejected payload", logger.Error(err))
				h.closeWith(conn, websocket.CloseInvalidFramePayloadData, err.Error())
				return
			}
			data = data[n:]
		}
	}
}

// closeWith sends a close control frame with the given code before the
// deferred hard close.
func (h *Handler) closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteMessage(websocket.CloseMessage, msg)
}
