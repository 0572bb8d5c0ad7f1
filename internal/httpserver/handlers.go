package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"journalclub/internal/apperr"
	"journalclub/internal/model"
	"journalclub/internal/pipeline"
)

type errResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errResponse{Error: msg})
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func handleHealthz(start time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(start).Seconds(),
		})
	}
}

type replyRequest struct {
	Body       string `json:"body"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}

// handleReply applies a digest reply. Rejections come back as data in the
// outcome, not as HTTP errors; only a broken request or a broken engine
// is an error status.
func handleReply(engine *pipeline.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Body) == "" {
			writeErr(w, http.StatusBadRequest, "body must not be empty")
			return
		}

		out, err := engine.Reply(r.Context(), req.Body, req.SnapshotID)
		if err != nil {
			var contention *apperr.LockContentionError
			switch {
			case errors.Is(err, pipeline.ErrUnknownSnapshot):
				writeErr(w, http.StatusBadRequest, err.Error())
			case errors.As(err, &contention):
				writeErr(w, http.StatusServiceUnavailable, "engine is busy, retry shortly")
			default:
				writeErr(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type queueResponse struct {
	Tier    model.Tier     `json:"tier"`
	Count   int            `json:"count"`
	Records []model.Record `json:"records"`
}

func handleQueue(engine *pipeline.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		tier, err := parseTier(q.Get("tier"))
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		limit := 0
		if s := q.Get("limit"); s != "" {
			limit, err = strconv.Atoi(s)
			if err != nil || limit < 0 {
				writeErr(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
		}
		unread := q.Get("unread") == "1" || strings.EqualFold(q.Get("unread"), "true")

		recs, err := engine.Queue(tier, limit, unread)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if recs == nil {
			recs = []model.Record{}
		}
		writeJSON(w, http.StatusOK, queueResponse{Tier: tier, Count: len(recs), Records: recs})
	}
}

func handleStats(engine *pipeline.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := engine.Stats()
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// parseTier accepts both the reply letter and the full tier name.
func parseTier(s string) (model.Tier, error) {
	if strings.TrimSpace(s) == "" {
		return model.TierNone, fmt.Errorf("tier parameter is required (F, A, M, S or full name)")
	}
	return model.ParseTier(s)
}
