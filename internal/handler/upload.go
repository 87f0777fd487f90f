package handler

import (
	"log/slog"
	"net/http"

	"github.com/ayakodama/wishboard/internal/apperror"
	"github.com/ayakodama/wishboard/internal/blob"
)

// maxUploadBytes caps photo uploads at 10 MB. ParseMultipartForm spools
// anything over its memory budget to a temp file, so the cap is about
// abuse, not memory.
const maxUploadBytes = 10 << 20

// UploadHandler serves POST /api/upload: multipart field "file" in,
// {url, pathname} out.
type UploadHandler struct {
	uploader blob.Uploader
	logger   *slog.Logger
}

func NewUploadHandler(uploader blob.Uploader, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, logger: logger}
}

// HandleUpload stores the file and returns its public URL. There is no
// retry: on failure the client is told once and posts without a photo.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperror.ValidationFailed("file", "could not parse multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "no file provided"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj, err := h.uploader.Upload(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("upload failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	h.logger.Info("photo uploaded",
		slog.String("pathname", obj.Pathname),
		slog.Int64("bytes", header.Size),
	)
	writeData(w, http.StatusOK, obj)
}
