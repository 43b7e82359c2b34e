// Match HTTP handlers.
//
// POST /matches records one outbound candidate message per receiver and
// returns the synchronous matched/not-matched outcome. Wire field names
// follow the client contract (camelCase).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alevras/go-match-backend/internal/services"
)

// RecordAndDetectRequest is the JSON payload of a send attempt.
type RecordAndDetectRequest struct {
	SenderID    string   `json:"senderId" binding:"required"`
	ReceiverIDs []string `json:"receiverIds" binding:"required,min=1"`
	Message     string   `json:"message" binding:"required"`
}

// RecordAndDetect handles POST /matches. The sender always receives a
// definitive matched/not-matched result; notification delivery is invisible
// to this contract.
func (h *Handlers) RecordAndDetect(c *gin.Context) {
	var req RecordAndDetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "senderId, receiverIds and message are required")
		return
	}

	res, err := h.Matches.RecordAndDetect(c.Request.Context(), req.SenderID, req.ReceiverIDs, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSenderRequired),
			errors.Is(err, services.ErrReceiversRequired),
			errors.Is(err, services.ErrMessageRequired),
			errors.Is(err, services.ErrSenderNotFound):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "recording message failed")
		}
		return
	}

	ok(c, res)
}
