package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rastreioBack/internal/tracking/repo"
	"rastreioBack/internal/tracking/simulate"
	"rastreioBack/internal/tracking/status"
)

// CreateDelivery registers a delivery and, unless it opted out, schedules its
// simulated tracking history.
func (s *Server) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.DestinationCity) == "" || strings.TrimSpace(req.DestinationState) == "" {
		writeError(w, http.StatusBadRequest, "destination_city and destination_state are required")
		return
	}

	code := strings.TrimSpace(req.TrackingCode)
	if code == "" {
		code = simulate.NewTrackingCode()
	}
	autoSimulate := true
	if req.AutoSimulate != nil {
		autoSimulate = *req.AutoSimulate
	}

	d := repo.Delivery{
		TrackingCode:     code,
		RecipientName:    strings.TrimSpace(req.RecipientName),
		DestinationCity:  strings.TrimSpace(req.DestinationCity),
		DestinationState: strings.ToUpper(strings.TrimSpace(req.DestinationState)),
		DestinationLat:   nullableFloat(req.DestinationLat),
		DestinationLng:   nullableFloat(req.DestinationLng),
		Status:           string(status.Pending),
		AutoSimulate:     autoSimulate,
	}

	id, err := s.deliveries.Create(r.Context(), d)
	if err != nil {
		s.logger.Errorf("create delivery: %v", err)
		writeError(w, http.StatusInternalServerError, "could not create delivery")
		return
	}

	created, err := s.deliveries.Get(r.Context(), id)
	if err != nil {
		s.logger.Errorf("load created delivery %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load delivery")
		return
	}

	updates, err := s.sim.ScheduleNewDelivery(r.Context(), created)
	if err != nil {
		// The delivery exists; a scheduling hiccup must not fail creation.
		s.logger.Errorf("schedule delivery %d: %v", id, err)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"delivery":       toDeliveryResponse(created),
		"events_created": len(updates),
	})
}

// GetDelivery returns a delivery with its full history, pending included.
func (s *Server) GetDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid delivery id")
		return
	}

	d, err := s.deliveries.Get(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "delivery not found")
		return
	}
	if err != nil {
		s.logger.Errorf("get delivery %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load delivery")
		return
	}

	entries, err := s.history.ListByDelivery(r.Context(), id, false)
	if err != nil {
		s.logger.Errorf("get delivery %d history: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"delivery": toDeliveryResponse(d),
		"history":  toHistoryResponse(entries),
	})
}

// Track is the public endpoint: it looks a delivery up by tracking code and
// returns only the applied part of its history.
func (s *Server) Track(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get(":code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "tracking code required")
		return
	}

	d, err := s.deliveries.GetByTrackingCode(r.Context(), code)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "tracking code not found")
		return
	}
	if err != nil {
		s.logger.Errorf("track %s: %v", code, err)
		writeError(w, http.StatusInternalServerError, "could not load delivery")
		return
	}

	entries, err := s.history.ListByDelivery(r.Context(), d.ID, true)
	if err != nil {
		s.logger.Errorf("track %s history: %v", code, err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"delivery": toDeliveryResponse(d),
		"history":  toHistoryResponse(entries),
	})
}
