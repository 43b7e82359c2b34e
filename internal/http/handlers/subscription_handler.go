// Push subscription HTTP handler.
//
// POST /push/subscriptions records the Web Push subscription descriptor the
// client obtained from its service worker.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alevras/go-match-backend/internal/services"
)

// RegisterSubscriptionRequest mirrors the browser PushSubscription JSON.
type RegisterSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// RegisterSubscription handles POST /push/subscriptions.
func (h *Handlers) RegisterSubscription(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "X-User-ID header required")
		return
	}

	var req RegisterSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.Subs.Register(c.Request.Context(), userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserRequired), errors.Is(err, services.ErrSubscriptionInvalid):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "registering subscription failed")
		}
		return
	}
	c.JSON(http.StatusCreated, sub)
}
