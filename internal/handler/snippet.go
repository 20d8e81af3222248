package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pastebin/internal/auth"
	"github.com/sakif/pastebin/internal/model"
	"github.com/sakif/pastebin/internal/service"
)

// SnippetHandler translates the snippet HTTP surface into service calls.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

// NewSnippetHandler creates a SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// snippetResponse is the wire shape of a snippet. Owner serializes as null
// for anonymous snippets, matching what API clients expect from an optional
// reference.
type snippetResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Language    string  `json:"language"`
	Style       string  `json:"style"`
	LineNumbers bool    `json:"line_numbers"`
	EmbedTitle  bool    `json:"embed_title"`
	Private     bool    `json:"private"`
	Created     string  `json:"created"`
	Updated     string  `json:"updated"`
	Owner       *string `json:"owner"`
}

func toResponse(s *model.Snippet) snippetResponse {
	resp := snippetResponse{
		ID:          s.ID,
		Title:       s.Title,
		Content:     s.Content,
		Language:    s.Language,
		Style:       s.Style,
		LineNumbers: s.LineNumbers,
		EmbedTitle:  s.EmbedTitle,
		Private:     s.Private,
		Created:     s.Created.Format(timeLayout),
		Updated:     s.Updated.Format(timeLayout),
	}
	if s.OwnerID != "" {
		owner := s.OwnerID
		resp.Owner = &owner
	}
	return resp
}

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// pageResponse is the envelope for paginated listings. Next and Previous are
// relative URLs carrying the cursor, null at either end of the traversal.
type pageResponse struct {
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []snippetResponse `json:"results"`
}

// HandleList serves GET /: the snippets visible to the actor.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	page, err := h.snippets.List(r.Context(), actor, r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, err)
		return
	}

	writePage(w, r, page)
}

// HandleListByUser serves GET /user/{user_id}: snippets owned by that user,
// intersected with the actor's visibility scope.
func (h *SnippetHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	userID := chi.URLParam(r, "user_id")

	page, err := h.snippets.ListByUser(r.Context(), actor, userID, r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, err)
		return
	}

	writePage(w, r, page)
}

// HandleCreate serves POST /.
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeInput(w, r, h.logger)
	if !ok {
		return
	}

	actor := auth.ActorFromContext(r.Context())
	snippet, err := h.snippets.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(snippet))
}

// HandleGet serves GET /{id}.
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	snippet, err := h.snippets.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(snippet))
}

// HandleUpdate serves PUT /{id}: a full update, content required.
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// HandlePatch serves PATCH /{id}: a partial update.
func (h *SnippetHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *SnippetHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	input, ok := decodeInput(w, r, h.logger)
	if !ok {
		return
	}

	actor := auth.ActorFromContext(r.Context())
	snippet, err := h.snippets.Update(r.Context(), actor, chi.URLParam(r, "id"), input, partial)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(snippet))
}

// HandleDelete serves DELETE /{id}.
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	if err := h.snippets.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleHighlight serves GET /{id}/highlight as text/html. The mere presence
// of the "full" query parameter, with any value or none, selects the
// standalone document rendering.
func (h *SnippetHandler) HandleHighlight(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	full := r.URL.Query().Has("full")

	html, err := h.snippets.Highlight(r.Context(), actor, chi.URLParam(r, "id"), full)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		h.logger.Error("failed to write highlight response", slog.String("error", err.Error()))
	}
}

// decodeInput parses the request body into a SnippetInput. Unknown fields,
// including attempts to write id, owner or timestamps, are simply ignored,
// like any serializer with a fixed set of writable fields.
func decodeInput(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (service.SnippetInput, bool) {
	var input service.SnippetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return input, false
	}
	return input, true
}

// writePage serializes a listing: a pagination envelope when pagination is
// configured, a bare array otherwise.
func writePage(w http.ResponseWriter, r *http.Request, page *service.Page) {
	results := make([]snippetResponse, 0, len(page.Items))
	for i := range page.Items {
		results = append(results, toResponse(&page.Items[i]))
	}

	if !page.Paginated {
		writeJSON(w, http.StatusOK, results)
		return
	}

	resp := pageResponse{Results: results}
	if page.Next != "" {
		u := r.URL.Path + "?cursor=" + page.Next
		resp.Next = &u
	}
	if page.Previous != "" {
		u := r.URL.Path + "?cursor=" + page.Previous
		resp.Previous = &u
	}
	writeJSON(w, http.StatusOK, resp)
}
