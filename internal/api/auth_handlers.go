package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/storefront/internal/geocode"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/remote"
)

// AuthHandlers expose the session bridge over HTTP.
type AuthHandlers struct {
	bridge *identity.Bridge
}

func NewAuthHandlers(bridge *identity.Bridge) *AuthHandlers {
	return &AuthHandlers{bridge: bridge}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User            *identity.User `json:"user"`
	IsAuthenticated bool           `json:"is_authenticated"`
}

// Register handles signup. Duplicate emails and provider validation failures
// come back as a plain failure, matching the bridge's soft contract.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !h.bridge.Signup(r.Context(), req.Email, req.Password, req.Name) {
		respondJSONError(w, "signup failed", http.StatusBadRequest)
		return
	}

	user, _ := h.bridge.CurrentUser()
	respondJSON(w, http.StatusCreated, sessionResponse{User: user, IsAuthenticated: true})
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !h.bridge.Login(r.Context(), req.Email, req.Password) {
		respondJSONError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	user, _ := h.bridge.CurrentUser()
	respondJSON(w, http.StatusOK, sessionResponse{User: user, IsAuthenticated: true})
}

// Logout invalidates the remote session; a remote failure propagates.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.bridge.Logout(r.Context()); err != nil {
		respondJSONError(w, "logout failed", http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{IsAuthenticated: false})
}

func (h *AuthHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	user, ok := h.bridge.CurrentUser()
	respondJSON(w, http.StatusOK, sessionResponse{User: user, IsAuthenticated: ok})
}

type profileUpdateRequest struct {
	Name             *string         `json:"name,omitempty"`
	Address          *string         `json:"address,omitempty"`
	Phone            *string         `json:"phone,omitempty"`
	DeliveryLocation *geocode.LatLng `json:"delivery_location,omitempty"`
}

func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	upd := remote.ProfileUpdate{
		Name:             req.Name,
		Address:          req.Address,
		Phone:            req.Phone,
		DeliveryLocation: req.DeliveryLocation,
	}
	if err := h.bridge.UpdateProfile(r.Context(), upd); err != nil {
		if errors.Is(err, identity.ErrNotAuthenticated) {
			respondJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		respondJSONError(w, "profile update failed", http.StatusBadGateway)
		return
	}

	user, _ := h.bridge.CurrentUser()
	respondJSON(w, http.StatusOK, sessionResponse{User: user, IsAuthenticated: true})
}
