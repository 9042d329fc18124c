package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"notes-backend/application/services"
	"notes-backend/pkg/common"
)

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	resolver *services.TagResolver
	logger   *zap.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(resolver *services.TagResolver, logger *zap.Logger) *TagHandler {
	return &TagHandler{resolver: resolver, logger: logger}
}

// ListTags handles GET /api/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.resolver.All(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondList(w, http.StatusOK, tags, len(tags))
}
