package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/nijercart/storefront/internal/backendfn"
)

// SubscriberImporter is the slice of the backend-functions client the
// handler needs.
type SubscriberImporter interface {
	ImportSubscribers(ctx context.Context, subscribers []map[string]string) (*backendfn.Response, error)
}

type NewsletterHandler struct {
	backend SubscriberImporter
	timeout time.Duration
}

func NewNewsletterHandler(backend SubscriberImporter, timeout time.Duration) *NewsletterHandler {
	return &NewsletterHandler{
		backend: backend,
		timeout: timeout,
	}
}

type SubscribeRequestDTO struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Subscribe forwards one subscriber to the hosted import function. The
// function owning the list handles dedup, so a repeat subscribe is fine.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SubscribeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_email", "email must be a valid address")
		return
	}

	resp, err := h.backend.ImportSubscribers(ctx, []map[string]string{
		{"email": req.Email, "name": strings.TrimSpace(req.Name)},
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			respondError(w, http.StatusServiceUnavailable, "backend_unavailable", "newsletter backend is temporarily unavailable")
			return
		}
		respondError(w, http.StatusBadGateway, "backend_failed", "failed to subscribe")
		return
	}
	if !resp.Success {
		respondError(w, http.StatusUnprocessableEntity, "subscribe_rejected", resp.Error)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "subscribed"})
}
