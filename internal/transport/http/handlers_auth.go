package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "crosspay/pkg/domain-errors"
)

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "client_id and client_secret are required"))
		return
	}

	roles, err := h.tokens.Authenticate(req.ClientID, req.ClientSecret)
	if err != nil {
		h.logger.Warn("token request rejected", "client_id", req.ClientID)
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(req.ClientID, roles)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "Bearer"})
}
