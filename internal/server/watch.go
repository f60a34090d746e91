package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/wdtable/internal/service"
)

const (
	watchInterval     = 250 * time.Millisecond
	watchWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWatchJob streams a job over a WebSocket: its JSON state whenever it
// changes, then a normal close once the job is done.
func (s *Server) handleWatchJob(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.GetJob(r.PathValue("id"))
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		s.logger.Warn("websocket upgrade failed", "job_id", job.ID, "error", err)
		return
	}
	defer conn.Close()

	// Drain client frames so close and ping are handled
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var last *service.Job
	for {
		snap := job.Snapshot()
		if last == nil || jobChanged(last, snap) {
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				s.logger.Debug("watch client gone", "job_id", job.ID, "error", err)
				return
			}
			last = snap
		}

		if snap.Status == service.JobStatusCompleted || snap.Status == service.JobStatusFailed {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(snap.Status))
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(watchWriteTimeout))
			return
		}

		select {
		case <-ticker.C:
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func jobChanged(a, b *service.Job) bool {
	return a.Status != b.Status || a.Progress != b.Progress || a.Error != b.Error
}
