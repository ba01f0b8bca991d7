package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/hookrelay/pkg/dispatch"
	"github.com/dmitrymomot/hookrelay/pkg/logger"
	"github.com/dmitrymomot/hookrelay/pkg/store"
	"github.com/dmitrymomot/hookrelay/pkg/webhook"
)

type createSubscriptionRequest struct {
	Target      string `json:"target"`
	CallbackURL string `json:"callback_url"`
	Secret      string `json:"secret,omitempty"`
}

type createPublicationRequest struct {
	Target string `json:"target"`
}

type publishResponse struct {
	EventID  string `json:"event_id"`
	Target   string `json:"target"`
	Enqueued int    `json:"enqueued"`
}

func (s *Service) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidRequest(w, "malformed request body")
		return
	}
	req.Target = strings.TrimSpace(req.Target)
	if req.Target == "" {
		writeInvalidRequest(w, "target is required")
		return
	}
	if err := webhook.ValidateCallbackURL(req.CallbackURL); err != nil {
		writeInvalidRequest(w, "callback_url is not a valid http(s) URL")
		return
	}

	sub := store.Subscription{
		Target:      req.Target,
		CallbackURL: req.CallbackURL,
		Secret:      req.Secret,
	}

	// Existing registrations are answered with the stored record rather
	// than an error so registration stays idempotent for subscribers.
	existing, err := s.subscriptions.Exists(r.Context(), sub)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "subscription lookup failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	id, err := s.subscriptions.Add(r.Context(), sub)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "subscription insert failed",
			logger.Target(req.Target), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	sub.ID = id

	s.logger.InfoContext(r.Context(), "subscription registered",
		logger.SubscriptionID(id),
		logger.Target(sub.Target),
		logger.CallbackURL(sub.CallbackURL))
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Service) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs := make([]store.Subscription, 0)
	for sub, err := range s.subscriptions.GetAll(r.Context()) {
		if err != nil {
			s.logger.ErrorContext(r.Context(), "subscription scan failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "storage failure")
			return
		}
		subs = append(subs, sub)
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Service) createPublication(w http.ResponseWriter, r *http.Request) {
	var req createPublicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidRequest(w, "malformed request body")
		return
	}
	req.Target = strings.TrimSpace(req.Target)
	if req.Target == "" {
		writeInvalidRequest(w, "target is required")
		return
	}

	pub := store.Publication{Target: req.Target}

	existing, err := s.publications.Exists(r.Context(), pub)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "publication lookup failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	id, err := s.publications.Add(r.Context(), pub)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "publication insert failed",
			logger.Target(req.Target), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	pub.ID = id

	s.logger.InfoContext(r.Context(), "publication registered", logger.Target(pub.Target))
	writeJSON(w, http.StatusCreated, pub)
}

func (s *Service) listPublications(w http.ResponseWriter, r *http.Request) {
	pubs := make([]store.Publication, 0)
	for pub, err := range s.publications.GetAll(r.Context()) {
		if err != nil {
			s.logger.ErrorContext(r.Context(), "publication scan failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "storage failure")
			return
		}
		pubs = append(pubs, pub)
	}
	writeJSON(w, http.StatusOK, pubs)
}

// publish records an event for a target and enqueues one delivery envelope
// per matching subscription. The response is 202 once everything is queued;
// deliveries proceed asynchronously on the engine.
func (s *Service) publish(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(chi.URLParam(r, "target"))
	if target == "" {
		writeInvalidRequest(w, "target is required")
		return
	}

	known, err := s.publications.Exists(r.Context(), store.Publication{Target: target})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "publication lookup failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if known == nil {
		writeError(w, http.StatusNotFound, ErrUnknownTarget.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeInvalidRequest(w, "unreadable request body")
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeInvalidRequest(w, "request body must be valid JSON")
		return
	}

	event := webhook.Event{
		ID:        uuid.New(),
		Target:    target,
		Data:      json.RawMessage(body),
		CreatedAt: time.Now().UTC(),
	}

	enqueued := 0
	for sub, err := range s.subscriptions.GetAll(r.Context()) {
		if err != nil {
			s.logger.ErrorContext(r.Context(), "subscription scan failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "storage failure")
			return
		}
		if sub.Target != target {
			continue
		}

		taskOpts := []webhook.DeliveryTaskOption{webhook.WithDeliveryLogger(s.logger)}
		if sub.Secret != "" {
			taskOpts = append(taskOpts, webhook.WithDeliverySecret(sub.Secret))
		}
		if s.deliveryTimeout > 0 {
			taskOpts = append(taskOpts, webhook.WithDeliveryTimeout(s.deliveryTimeout))
		}

		task, err := webhook.NewDeliveryTask(s.sender, event, sub.CallbackURL, taskOpts...)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "delivery task creation failed",
				logger.SubscriptionID(sub.ID), logger.Error(err))
			continue
		}

		env, err := dispatch.NewEnvelope(task,
			dispatch.WithMaxAttempts(s.maxAttempts),
			dispatch.WithRetryDelay(s.retryDelay),
		)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "envelope creation failed",
				logger.SubscriptionID(sub.ID), logger.Error(err))
			continue
		}

		s.engine.Enqueue(env)
		enqueued++
	}

	s.logger.InfoContext(r.Context(), "event published",
		logger.EventID(event.ID),
		logger.Target(target),
		slog.Int("enqueued", enqueued))

	writeJSON(w, http.StatusAccepted, publishResponse{
		EventID:  event.ID.String(),
		Target:   target,
		Enqueued: enqueued,
	})
}
