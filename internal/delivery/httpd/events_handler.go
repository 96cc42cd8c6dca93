package httpd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/pkg/utils"
)

const (
	eventBuffer       = 32
	heartbeatInterval = 25 * time.Second
)

// StreamEvents relays change events as Server-Sent Events. Students only see
// events about their own records. Slow clients drop events instead of
// blocking publishers.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	actor := currentActor(r)
	log := LoggerFromContext(r.Context())

	ch := make(chan models.ChangeEvent, eventBuffer)
	unsubscribe := h.subscriber.Subscribe(func(event models.ChangeEvent) {
		if !canViewStudent(actor, event.StudentID) {
			return
		}
		select {
		case ch <- event:
		default:
			log.Warn().Str("actor_id", actor.ID).Msg("Event stream buffer full, dropping event")
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event := <-ch:
			data, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Msg("Failed to encode change event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.RoutingKey(), data)
			flusher.Flush()
		}
	}
}
