package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"massage-board-backend/internal/model"
	"massage-board-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint          string   `json:"endpoint" binding:"required"`
	P256DH            string   `json:"p256dh" binding:"required"`
	Auth              string   `json:"auth" binding:"required"`
	SubscribedWorkers []string `json:"subscribed_workers"`
}

// PutSubscription handles the creation or replacement of a subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.PutSubscription(c.Request.Context(), subscription, req.SubscribedWorkers); err != nil {
		internalError(c, "Error saving subscription", err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		internalError(c, "Error deleting subscription", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads a query value without URL decoding. Push endpoints are
// compared byte for byte with what the browser registered.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription handles the retrieval of a subscription.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		badRequest(c, "endpoint is required", nil)
		return
	}

	subscription, err := h.store.GetSubscription(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "subscription not found")
		} else {
			internalError(c, "Error fetching subscription", err)
		}
		return
	}

	workers := make([]string, len(subscription.Workers))
	for i, w := range subscription.Workers {
		workers[i] = w.Worker
	}

	c.JSON(http.StatusOK, gin.H{"subscribed_workers": workers})
}

// GetVAPIDPublicKey returns the key a browser subscribes with, together with the
// worker columns it can follow.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Push notifications are disabled"})
		return
	}

	workers, err := h.store.ListWorkers(c.Request.Context())
	if err != nil {
		internalError(c, "Error fetching workers", err)
		return
	}
	names := make([]string, len(workers))
	for i, w := range workers {
		names[i] = w.Name
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey, "workers": names})
}
