package handler

import (
	"log/slog"
	"net/http"

	"github.com/ayakodama/wishboard/internal/service"
)

// CommentHandler serves the /api/comments routes.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleList returns an entry's comments, oldest first.
//
// HTTP: GET /api/comments?entryId=
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListForEntry(r.Context(), r.URL.Query().Get("entryId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	EntryID  string `json:"entryId"`
	UserName string `json:"userName"`
	Content  string `json:"content"`
}

// HandleCreate adds a comment, lazily creating its author.
//
// HTTP: POST /api/comments
// BODY: {"entryId":"...","userName":"Alex","content":"hi"}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Add(r.Context(), req.EntryID, req.UserName, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, comment)
}

// HandleDelete removes a comment; only the author may (403 otherwise).
//
// HTTP: DELETE /api/comments?id=&userName=
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.comments.Delete(r.Context(), q.Get("id"), q.Get("userName")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
