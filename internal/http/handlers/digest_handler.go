// Digest HTTP handlers.
//
// Two GET endpoints triggered by an external scheduler at fixed local times.
// No request body, no auth (known gap: the endpoints are assumed to sit
// behind the scheduler's network boundary). The response is the structured
// run report; the job itself never propagates an error, so the HTTP status
// is 200 even for runs that report a failure inside.
package handlers

import (
	"github.com/gin-gonic/gin"
)

// RunPersonalDigest handles GET /digests/personal.
func (h *Handlers) RunPersonalDigest(c *gin.Context) {
	ok(c, h.Digest.RunPersonal(c.Request.Context()))
}

// RunGlobalDigest handles GET /digests/global.
func (h *Handlers) RunGlobalDigest(c *gin.Context) {
	ok(c, h.Digest.RunGlobal(c.Request.Context()))
}
