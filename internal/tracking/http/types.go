package http

import (
	"time"

	"rastreioBack/internal/tracking/repo"
)

type createDeliveryRequest struct {
	RecipientName    string   `json:"recipient_name"`
	DestinationCity  string   `json:"destination_city"`
	DestinationState string   `json:"destination_state"`
	DestinationLat   *float64 `json:"destination_lat,omitempty"`
	DestinationLng   *float64 `json:"destination_lng,omitempty"`
	TrackingCode     string   `json:"tracking_code,omitempty"`
	AutoSimulate     *bool    `json:"auto_simulate,omitempty"`
}

type deliveryResponse struct {
	ID               int64     `json:"id"`
	TrackingCode     string    `json:"tracking_code"`
	RecipientName    string    `json:"recipient_name"`
	DestinationCity  string    `json:"destination_city"`
	DestinationState string    `json:"destination_state"`
	Status           string    `json:"status"`
	Progress         float64   `json:"progress"`
	CurrentLocation  *string   `json:"current_location,omitempty"`
	AutoSimulate     bool      `json:"auto_simulate"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type historyEntryResponse struct {
	ScheduledFor time.Time  `json:"scheduled_for"`
	EventType    string     `json:"event_type"`
	NewStatus    *string    `json:"new_status,omitempty"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	Lat          float64    `json:"lat"`
	Lng          float64    `json:"lng"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	Progress     float64    `json:"progress"`
	AppliedAt    *time.Time `json:"applied_at,omitempty"`
}

type setStatusRequest struct {
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

type regenerateRequest struct {
	DeliveryIDs []int64 `json:"delivery_ids,omitempty"`
	AllActive   bool    `json:"all_active,omitempty"`
}

type settingsPayload struct {
	OriginCity      string `json:"origin_city"`
	OriginState     string `json:"origin_state"`
	MinDeliveryDays int    `json:"min_delivery_days"`
	MaxDeliveryDays int    `json:"max_delivery_days"`
	UpdateStartHour int    `json:"update_start_hour"`
	UpdateEndHour   int    `json:"update_end_hour"`
}

func toDeliveryResponse(d repo.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:               d.ID,
		TrackingCode:     d.TrackingCode,
		RecipientName:    d.RecipientName,
		DestinationCity:  d.DestinationCity,
		DestinationState: d.DestinationState,
		Status:           d.Status,
		Progress:         d.Progress,
		CurrentLocation:  nullToPtr(d.CurrentLocation),
		AutoSimulate:     d.AutoSimulate,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func toHistoryResponse(entries []repo.HistoryEntry) []historyEntryResponse {
	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryResponse{
			ScheduledFor: e.ScheduledFor,
			EventType:    e.EventType,
			NewStatus:    nullToPtr(e.NewStatus),
			City:         e.City,
			State:        e.State,
			Lat:          e.Lat,
			Lng:          e.Lng,
			Location:     e.LocationLabel,
			Description:  e.Description,
			Progress:     e.Progress,
			AppliedAt:    nullTimeToPtr(e.AppliedAt),
		})
	}
	return out
}
