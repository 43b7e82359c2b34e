// Chat HTTP handlers.
//
// This file exposes the chat read and write endpoints:
//   - GET  /chats                 (assembled chat list for the requesting user)
//   - POST /chats/:id/messages    (append a chat message, broadcast newMessage)
//   - GET  /chats/:id/messages    (paginated chat history, newest first)
//
// The requesting user is carried in the X-User-ID header.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/services"
	"github.com/alevras/go-match-backend/internal/utils"
)

// PostChatMessageRequest is the JSON payload for sending a chat message.
type PostChatMessageRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// ChatMessagesResponse contains one page of chat messages and pagination
// metadata.
type ChatMessagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// clampPagination parses page/page_size query parameters with defaults and
// caps.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// ListChats handles GET /chats: the assembled summary list of every matched
// partner, ordered by latest message.
func (h *Handlers) ListChats(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "X-User-ID header required")
		return
	}

	summaries, err := h.ChatList.Assemble(c.Request.Context(), userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "assembling chat list failed")
		return
	}
	ok(c, summaries)
}

// PostChatMessage handles POST /chats/:id/messages.
func (h *Handlers) PostChatMessage(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "X-User-ID header required")
		return
	}

	var req PostChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	msg, err := h.Chats.PostMessage(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChatNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrChatForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		case errors.Is(err, services.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "sending message failed")
		}
		return
	}
	ok(c, msg)
}

// ListChatMessages handles GET /chats/:id/messages.
func (h *Handlers) ListChatMessages(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "X-User-ID header required")
		return
	}

	page, pageSize := clampPagination(c)
	msgs, total, err := h.Chats.ListMessages(c.Request.Context(), c.Param("id"), userID, page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChatNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrChatForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "listing messages failed")
		}
		return
	}

	ok(c, ChatMessagesResponse{
		Messages: msgs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
