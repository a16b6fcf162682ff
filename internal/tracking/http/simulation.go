package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rastreioBack/internal/tracking/repo"
	"rastreioBack/internal/tracking/simulate"
	"rastreioBack/internal/tracking/status"
)

// AdvanceDelivery applies the next pending update immediately.
func (s *Server) AdvanceDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid delivery id")
		return
	}

	result, err := s.sim.AdvanceNow(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "delivery not found")
		return
	}
	if err != nil {
		s.logger.Errorf("advance delivery %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not advance delivery")
		return
	}

	resp := map[string]interface{}{
		"already_terminal": result.AlreadyTerminal,
		"nothing_pending":  result.NothingPending,
		"remaining":        result.Remaining,
	}
	if result.Applied != nil {
		resp["applied"] = toHistoryResponse([]repo.HistoryEntry{*result.Applied})[0]
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetDeliveryStatus is the manual override endpoint.
func (s *Server) SetDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid delivery id")
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	target := status.Status(req.Status)
	if !status.Valid(target) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	if err := s.sim.SetStatus(r.Context(), id, target, req.Description); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "delivery not found")
			return
		}
		s.logger.Errorf("set status for delivery %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not set status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// Regenerate rebuilds pending history for the requested deliveries.
func (s *Server) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !req.AllActive && len(req.DeliveryIDs) == 0 {
		writeError(w, http.StatusBadRequest, "delivery_ids or all_active required")
		return
	}

	report, err := s.sim.RegenerateHistory(r.Context(), req.DeliveryIDs, req.AllActive)
	if err != nil {
		s.logger.Errorf("regenerate history: %v", err)
		writeError(w, http.StatusInternalServerError, "regeneration aborted")
		return
	}

	failures := make([]map[string]interface{}, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, map[string]interface{}{
			"delivery_id": f.DeliveryID,
			"error":       f.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"regenerated":    report.Regenerated,
		"skipped":        report.Skipped,
		"events_created": report.EventsCreated,
		"discarded":      report.Discarded,
		"failures":       failures,
	})
}

// GetSettings returns the active simulation settings.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	stored, err := s.settings.Get(r.Context())
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "settings not initialized")
		return
	}
	if err != nil {
		s.logger.Errorf("get settings: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsPayload{
		OriginCity:      stored.OriginCity,
		OriginState:     stored.OriginState,
		MinDeliveryDays: stored.MinDeliveryDays,
		MaxDeliveryDays: stored.MaxDeliveryDays,
		UpdateStartHour: stored.UpdateStartHour,
		UpdateEndHour:   stored.UpdateEndHour,
	})
}

// SaveSettings stores the simulation settings row. Invalid values are
// clamped, and the clamp warnings are echoed back to the caller.
func (s *Server) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	params, warnings := simulate.Params{
		OriginCity:      req.OriginCity,
		OriginState:     req.OriginState,
		MinDeliveryDays: req.MinDeliveryDays,
		MaxDeliveryDays: req.MaxDeliveryDays,
		UpdateStartHour: req.UpdateStartHour,
		UpdateEndHour:   req.UpdateEndHour,
	}.Sanitize()

	if err := s.settings.Save(r.Context(), repo.Settings{
		OriginCity:      params.OriginCity,
		OriginState:     params.OriginState,
		MinDeliveryDays: params.MinDeliveryDays,
		MaxDeliveryDays: params.MaxDeliveryDays,
		UpdateStartHour: params.UpdateStartHour,
		UpdateEndHour:   params.UpdateEndHour,
	}); err != nil {
		s.logger.Errorf("save settings: %v", err)
		writeError(w, http.StatusInternalServerError, "could not save settings")
		return
	}

	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"settings": settingsPayload{
			OriginCity:      params.OriginCity,
			OriginState:     params.OriginState,
			MinDeliveryDays: params.MinDeliveryDays,
			MaxDeliveryDays: params.MaxDeliveryDays,
			UpdateStartHour: params.UpdateStartHour,
			UpdateEndHour:   params.UpdateEndHour,
		},
		"warnings": warnings,
	})
}
