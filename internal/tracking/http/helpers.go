package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// parseIDParam reads a pat-style :id route parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	val := strings.TrimSpace(r.URL.Query().Get(":" + name))
	return strconv.ParseInt(val, 10, 64)
}

func nullableFloat(src *float64) sql.NullFloat64 {
	if src == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *src, Valid: true}
}

func nullToPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}
