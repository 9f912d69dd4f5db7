package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"netguard-ids/internal/detector"
	"netguard-ids/internal/model"
	"netguard-ids/internal/monitor"
	"netguard-ids/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	engine   *monitor.Engine
	store    *storage.Storage
	det      *detector.Detector // nil in simulated mode
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandlers(engine *monitor.Engine, store *storage.Storage, det *detector.Detector, logger *logrus.Logger) *Handlers {
	return &Handlers{
		engine: engine,
		store:  store,
		det:    det,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The dashboard is served same-origin; allow all for
				// local development setups.
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// GetStats serves the dashboard polling endpoint. The response always
// carries non-negative integer counters.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Stats())
}

func (h *Handlers) StartMonitoring(w http.ResponseWriter, r *http.Request) {
	if h.engine.Start() {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "started",
			"message": "Protection enabled",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "already_running",
		"message": "Protection is already enabled",
	})
}

func (h *Handlers) StopMonitoring(w http.ResponseWriter, r *http.Request) {
	h.engine.Stop()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "stopped",
		"message": "Protection disabled",
	})
}

func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"sensitivity": h.engine.Sensitivity(),
	}
	if h.det != nil {
		resp["confidence_threshold"] = h.det.Threshold()
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateConfig accepts sensitivity and confidence threshold either as query
// parameters (?sensitivity=N&threshold=X, the original dashboard's style) or
// as a JSON body.
func (h *Handlers) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var sensitivity *int
	var threshold *float64

	query := r.URL.Query()
	if raw := query.Get("sensitivity"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "sensitivity must be an integer")
			return
		}
		sensitivity = &value
	}
	if raw := query.Get("threshold"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "threshold must be a number")
			return
		}
		threshold = &value
	}

	if sensitivity == nil && threshold == nil {
		var body struct {
			Sensitivity         *int     `json:"sensitivity"`
			ConfidenceThreshold *float64 `json:"confidence_threshold"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
			(body.Sensitivity == nil && body.ConfidenceThreshold == nil) {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		sensitivity = body.Sensitivity
		threshold = body.ConfidenceThreshold
	}

	resp := map[string]interface{}{"status": "updated"}
	if sensitivity != nil {
		resp["sensitivity"] = h.engine.SetSensitivity(*sensitivity)
	}
	if threshold != nil {
		if h.det == nil {
			writeError(w, http.StatusBadRequest, "confidence threshold requires a loaded model")
			return
		}
		h.det.SetThreshold(*threshold)
		resp["confidence_threshold"] = h.det.Threshold()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	severity := r.URL.Query().Get("severity")
	label := r.URL.Query().Get("label")
	search := r.URL.Query().Get("search")

	alerts := h.store.GetAlerts(limit, severity, label, search)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": alerts,
		"total": len(alerts),
	})
}

func (h *Handlers) GetAlert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	alert := h.store.GetAlertByID(id)
	if alert == nil {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

// StreamAlerts pushes alerts over a websocket as they are recorded.
func (h *Handlers) StreamAlerts(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sub := &storage.Subscriber{
		ID:      uuid.NewString(),
		Channel: make(chan model.Alert, 100),
		Filter: storage.Filter{
			Severity: r.URL.Query().Get("severity"),
			Label:    r.URL.Query().Get("label"),
		},
		LastSeen: time.Now(),
	}

	h.store.Subscribe(sub)
	defer h.store.Unsubscribe(sub)

	done := make(chan struct{})

	// Send ping to keep connection alive
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Read messages to detect client disconnect (and service pongs)
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case alert, ok := <-sub.Channel:
			if !ok {
				return
			}
			if err := conn.WriteJSON(alert); err != nil {
				h.logger.Debugf("WebSocket write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
