package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/example/ride-service/internal/models"
	"github.com/example/ride-service/internal/rides"
)

type createRideRequest struct {
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	ServiceType     string  `json:"service_type"`
	RequestedDate   string  `json:"requested_date"`
	RequestedTime   string  `json:"requested_time"`
	HoursNeeded     int     `json:"hours_needed"`
	StartTime       string  `json:"start_time"`
	EstimatedTotal  float64 `json:"estimated_total"`
	Notes           string  `json:"notes"`
}

func (s *Server) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	var req createRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ride, sms, err := s.Rides.Create(r.Context(), rides.CreateCommand{
		Name:            req.Name,
		Phone:           req.Phone,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		ServiceType:     models.ServiceType(req.ServiceType),
		RequestedDate:   req.RequestedDate,
		RequestedTime:   req.RequestedTime,
		HoursNeeded:     req.HoursNeeded,
		StartTime:       req.StartTime,
		EstimatedTotal:  req.EstimatedTotal,
		Notes:           req.Notes,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "ride": ride, "smsStatus": sms})
}

type quoteRequest struct {
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PickupLocation == "" || req.DropoffLocation == "" {
		writeError(w, http.StatusBadRequest, "pickup_location and dropoff_location are required")
		return
	}
	q := s.Resolver.Resolve(r.Context(), req.PickupLocation, req.DropoffLocation)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"isEstimated": q.Estimated,
		"route": map[string]any{
			"distance": map[string]any{"miles": q.Miles, "text": q.DistanceText},
			"duration": map[string]any{"minutes": q.Minutes, "text": q.DurationText},
		},
		"pricing": map[string]any{
			"suggestedPrice": q.Pricing.SuggestedPrice,
			"exactPrice":     q.Pricing.ExactPrice,
			"calculation":    q.Pricing.Calculation,
			"tripType":       q.Pricing.TripType,
		},
	})
}

type transitionRequest struct {
	Status          string   `json:"status"`
	QuotePrice      *float64 `json:"quotePrice"`
	PickupEta       *int     `json:"pickupEta"`
	RideDuration    *int     `json:"rideDuration"`
	DistanceMiles   *float64 `json:"distanceMiles"`
	DurationMinutes *float64 `json:"durationMinutes"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ride id")
		return
	}
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var payload rides.Payload = rides.SimplePayload{}
	if models.Status(req.Status) == models.StatusQuoted {
		qp := rides.QuotedPayload{
			PickupEta:       req.PickupEta,
			RideDuration:    req.RideDuration,
			DistanceMiles:   req.DistanceMiles,
			DurationMinutes: req.DurationMinutes,
		}
		if req.QuotePrice != nil {
			qp.Price = *req.QuotePrice
		}
		payload = qp
	}

	ride, sms, err := s.Rides.Transition(r.Context(), id, models.Status(req.Status), payload, s.adminIdentity(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "ride": ride, "smsStatus": sms})
}

func (s *Server) handleListRides(w http.ResponseWriter, r *http.Request) {
	status := models.Status(r.URL.Query().Get("status"))
	list, err := s.Rides.List(r.Context(), status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "rides": list})
}

func (s *Server) handleGetRide(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	ride, err := s.Rides.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "ride": ride})
}

func (s *Server) handleDeleteRide(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := s.Rides.PermanentDelete(r.Context(), id, s.adminIdentity(r)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

var upgrader = websocket.Upgrader{
	// the dashboard is served from the same origin in production; the
	// admin token already gates this endpoint
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.adminToken != "" && r.URL.Query().Get("token") != s.adminToken {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "upgrade failed")
		return
	}
	sessionID := newID()
	s.WSReg.Add(sessionID, conn)
	// reads are only used to detect disconnect
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.WSReg.Remove(sessionID)
				return
			}
		}
	}()
}

func (s *Server) adminIdentity(r *http.Request) string {
	if v := r.Header.Get("X-Admin-User"); v != "" {
		return v
	}
	return "admin"
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rides.ErrNotFound):
		writeError(w, http.StatusNotFound, "ride not found")
	case errors.Is(err, rides.ErrInvalidStatus),
		errors.Is(err, rides.ErrInvalidQuote),
		errors.Is(err, rides.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
