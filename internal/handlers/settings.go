package handlers

import (
	"encoding/json"
	"net/http"

	"vitalsin/internal/store"
)

type SettingsHandler struct {
	settings *store.Settings
}

func NewSettingsHandler(settings *store.Settings) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	st, err := h.settings.Settings(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not fetch settings", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// Update changes only the fields provided. Toggling a source preference takes
// effect on the next sync; nothing in flight is re-routed.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	var body struct {
		MockDataEnabled *bool   `json:"mock_data_enabled"`
		FitnessEnabled  *bool   `json:"fitness_enabled"`
		DeviceConnected *bool   `json:"device_connected"`
		Platform        *string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Platform != nil {
		switch *body.Platform {
		case "ios", "android", "other":
		default:
			http.Error(w, "invalid platform", http.StatusBadRequest)
			return
		}
	}

	st, err := h.settings.Settings(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not fetch settings", http.StatusInternalServerError)
		return
	}
	st.UserID = userID
	if body.MockDataEnabled != nil {
		st.MockDataEnabled = *body.MockDataEnabled
	}
	if body.FitnessEnabled != nil {
		st.FitnessEnabled = *body.FitnessEnabled
	}
	if body.DeviceConnected != nil {
		st.DeviceConnected = *body.DeviceConnected
	}
	if body.Platform != nil {
		st.Platform = *body.Platform
	}

	if err := h.settings.Save(r.Context(), st); err != nil {
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}
