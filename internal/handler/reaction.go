package handler

import (
	"log/slog"
	"net/http"

	"github.com/ayakodama/wishboard/internal/service"
)

// ReactionHandler serves the /api/reactions routes. Reactions are
// identified by their (entryId, userName, emoji) tuple, never by id, so
// the DELETE route takes the tuple as query parameters.
type ReactionHandler struct {
	reactions *service.ReactionService
	logger    *slog.Logger
}

func NewReactionHandler(reactions *service.ReactionService, logger *slog.Logger) *ReactionHandler {
	return &ReactionHandler{reactions: reactions, logger: logger}
}

type createReactionRequest struct {
	EntryID  string `json:"entryId"`
	UserName string `json:"userName"`
	Emoji    string `json:"emoji"`
}

// HandleCreate adds an emoji reaction. Reacting again with the same emoji
// on the same entry is 409.
//
// HTTP: POST /api/reactions
// BODY: {"entryId":"...","userName":"Alex","emoji":"❤️"}
func (h *ReactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reaction, err := h.reactions.React(r.Context(), req.EntryID, req.UserName, req.Emoji)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, reaction)
}

// HandleDelete removes the exact reaction tuple.
//
// HTTP: DELETE /api/reactions?entryId=&userName=&emoji=
func (h *ReactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := h.reactions.Unreact(r.Context(), q.Get("entryId"), q.Get("userName"), q.Get("emoji"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
