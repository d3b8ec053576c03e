package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/dgnsrekt/volvot/internal/metrics"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// parseFeedFilter reads the optional ?feeds=name1,name2 query parameter.
// A nil result accepts every feed.
func parseFeedFilter(r *http.Request) map[string]bool {
	q := r.URL.Query().Get("feeds")
	if q == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, f := range strings.Split(q, ",") {
		if f = strings.TrimSpace(f); f != "" {
			filter[f] = true
		}
	}
	return filter
}

func accepts(filter map[string]bool, evt Event) bool {
	return filter == nil || filter[evt.Feed]
}

// SSEHandler streams relay events as server-sent events. snapshot, when
// set, is sent first so a new client can render without waiting for the
// next change.
func SSEHandler(broker *Broker, snapshot Snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		filter := parseFeedFilter(r)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)
		metrics.StreamOpened()
		defer metrics.StreamClosed()

		if snapshot != nil {
			for _, evt := range snapshot() {
				if accepts(filter, evt) {
					fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Feed, evt.Payload)
				}
			}
			flusher.Flush()
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if !accepts(filter, evt) {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Feed, evt.Payload)
				flusher.Flush()
			}
		}
	}
}

// WSHandler streams relay events over a WebSocket as JSON text frames of
// the form {"feed":..., "payload":...}. Client data frames are discarded;
// control frames are answered under the same write lock as events.
func WSHandler(broker *Broker, snapshot Snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := parseFeedFilter(r)

		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)
		metrics.StreamOpened()
		defer metrics.StreamClosed()

		var writeMu sync.Mutex
		control := wsutil.ControlFrameHandler(conn, ws.StateServerSide)
		lockedControl := func(hdr ws.Header, r io.Reader) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			return control(hdr, r)
		}

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			rd := &wsutil.Reader{
				Source:         conn,
				State:          ws.StateServerSide,
				CheckUTF8:      true,
				OnIntermediate: lockedControl,
			}
			for {
				hdr, err := rd.NextFrame()
				if err != nil {
					return
				}
				if hdr.OpCode.IsControl() {
					if err := lockedControl(hdr, rd); err != nil {
						return
					}
					continue
				}
				if err := rd.Discard(); err != nil {
					return
				}
			}
		}()

		send := func(evt Event) error {
			data, err := json.Marshal(evt)
			if err != nil {
				return err
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			return wsutil.WriteServerText(conn, data)
		}

		if snapshot != nil {
			for _, evt := range snapshot() {
				if !accepts(filter, evt) {
					continue
				}
				if err := send(evt); err != nil {
					return
				}
			}
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case <-closed:
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if !accepts(filter, evt) {
					continue
				}
				if err := send(evt); err != nil {
					slog.Debug("websocket write failed", "subscriber", id, "error", err)
					return
				}
			}
		}
	}
}
