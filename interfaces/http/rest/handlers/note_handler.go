package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/application/queries"
	"notes-backend/application/services"
	"notes-backend/pkg/common"
	pkgerrors "notes-backend/pkg/errors"
	"notes-backend/pkg/utils"
)

// maxAttachmentBytes bounds multipart attachment uploads (10 MiB).
const maxAttachmentBytes = 10 << 20

const maxBodyBytes = 1 << 20

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	service *services.NoteService
	logger  *zap.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(service *services.NoteService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{service: service, logger: logger}
}

// CreateNoteRequest represents the request body for creating a note
type CreateNoteRequest struct {
	Title    string   `json:"title" validate:"required,max=100"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"omitempty,max=50"`
	Color    string   `json:"color" validate:"omitempty,hexcolor"`
	IsPinned bool     `json:"isPinned"`
	Tags     []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateNoteRequest represents the request body for updating a note
type UpdateNoteRequest struct {
	Title    *string   `json:"title" validate:"omitempty,max=100"`
	Content  *string   `json:"content"`
	Category *string   `json:"category" validate:"omitempty,max=50"`
	Color    *string   `json:"color" validate:"omitempty,hexcolor"`
	IsPinned *bool     `json:"isPinned"`
	Tags     *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// CreateNote handles POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.service.Create(r.Context(), common.IdentityOrNil(r.Context()), services.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Color:    req.Color,
		IsPinned: req.IsPinned,
		Tags:     req.Tags,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}

// ListNotes handles GET /api/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	results, err := h.service.List(r.Context(), common.IdentityOrNil(r.Context()), opts)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondList(w, http.StatusOK, results, len(results))
}

// GetNote handles GET /api/notes/{noteID}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context(), common.IdentityOrNil(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateNote handles PUT /api/notes/{noteID}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.service.Update(r.Context(), common.IdentityOrNil(r.Context()), chi.URLParam(r, "noteID"), services.UpdateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Color:    req.Color,
		IsPinned: req.IsPinned,
		Tags:     req.Tags,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// SoftDeleteNote handles DELETE /api/notes/{noteID}
func (h *NoteHandler) SoftDeleteNote(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SoftDelete(r.Context(), common.IdentityOrNil(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ToggleArchive handles PATCH /api/notes/{noteID}/archive
func (h *NoteHandler) ToggleArchive(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ToggleArchive(r.Context(), common.IdentityOrNil(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// RestoreNote handles PATCH /api/notes/{noteID}/restore
func (h *NoteHandler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Restore(r.Context(), common.IdentityOrNil(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// PermanentDeleteNote handles DELETE /api/notes/{noteID}/permanent
func (h *NoteHandler) PermanentDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.service.PermanentDelete(r.Context(), common.IdentityOrNil(r.Context()), chi.URLParam(r, "noteID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Note permanently deleted"})
}

// AddAttachment handles POST /api/notes/{noteID}/attachments
func (h *NoteHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes+1))
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewInternalError("failed to read upload").WithCause(err))
		return
	}
	if len(data) > maxAttachmentBytes {
		common.RespondAppError(w, pkgerrors.NewValidationError("attachment exceeds the size limit"))
		return
	}

	attachment, err := h.service.AddAttachment(
		r.Context(),
		common.IdentityOrNil(r.Context()),
		chi.URLParam(r, "noteID"),
		data,
		ports.BlobMetadata{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		},
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, attachment)
}

// RemoveAttachment handles DELETE /api/notes/{noteID}/attachments/{attachmentID}
func (h *NoteHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveAttachment(
		r.Context(),
		common.IdentityOrNil(r.Context()),
		chi.URLParam(r, "noteID"),
		chi.URLParam(r, "attachmentID"),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Attachment removed"})
}

// ExportNote handles GET /api/notes/{noteID}/export/pdf. The PDF is
// buffered so a render failure can still produce a JSON error instead
// of a half-written download.
func (h *NoteHandler) ExportNote(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	title, err := h.service.Export(r.Context(), common.IdentityOrNil(r.Context()), chi.URLParam(r, "noteID"), &buf)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(title)+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func parseListOptions(r *http.Request) (queries.ListOptions, error) {
	q := r.URL.Query()

	opts := queries.ListOptions{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Tag:      q.Get("tag"),
		Archived: q.Get("isArchived") == "true",
		Trashed:  q.Get("isDeleted") == "true",
		SortBy:   q.Get("sortBy"),
	}

	if raw := q.Get("isPinned"); raw != "" {
		pinned, err := strconv.ParseBool(raw)
		if err != nil {
			return queries.ListOptions{}, pkgerrors.NewValidationError("isPinned must be a boolean")
		}
		opts.IsPinned = &pinned
	}

	if raw := q.Get("dateFrom"); raw != "" {
		from, err := utils.ParseRFC3339(raw)
		if err != nil {
			return queries.ListOptions{}, pkgerrors.NewValidationError("dateFrom must be an RFC 3339 timestamp")
		}
		opts.DateFrom = &from
	}
	if raw := q.Get("dateTo"); raw != "" {
		to, err := utils.ParseRFC3339(raw)
		if err != nil {
			return queries.ListOptions{}, pkgerrors.NewValidationError("dateTo must be an RFC 3339 timestamp")
		}
		opts.DateTo = &to
	}

	return opts, nil
}

// exportFilename produces a safe download name from the note title by
// replacing every non-alphanumeric rune with an underscore
func exportFilename(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, title)
	if strings.Trim(cleaned, "_") == "" {
		cleaned = "note_" + time.Now().Format("20060102")
	}
	return cleaned
}
