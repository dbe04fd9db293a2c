package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if details := h.decodeAndValidate(r, &req); details != nil {
		h.respondWithError(w, http.StatusBadRequest, codeValidation, "Validation failed", details)
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.respondWithServiceError(w, r, err, "")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, newUserResponse(user))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if details := h.decodeAndValidate(r, &req); details != nil {
		h.respondWithError(w, http.StatusBadRequest, codeValidation, "Validation failed", details)
		return
	}

	pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			h.respondWithError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid credentials", nil)
			return
		}
		h.respondWithServiceError(w, r, err, "")
		return
	}

	h.respondWithJSON(w, http.StatusOK, newTokenResponse(pair))
}

// refresh expects the refresh token in the Authorization header.
func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, codeUnauthorized, "Missing or invalid authorization header", nil)
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			h.respondWithError(w, http.StatusUnauthorized, codeUnauthorized, "Token has been revoked", nil)
			return
		}
		h.respondWithServiceError(w, r, err, "")
		return
	}

	h.respondWithJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "User")
		return
	}

	h.respondWithJSON(w, http.StatusOK, newUserResponse(user))
}

func newTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken, TokenType: "bearer"}
}
