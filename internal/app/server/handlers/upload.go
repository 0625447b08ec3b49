package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tanushree1025/DESIGN-THEETA/internal/config"
	"github.com/tanushree1025/DESIGN-THEETA/pkg/middleware"
)

// UploadHandler stores chat attachments on local disk. Audio files land in a
// voice subdirectory; the returned URL is what clients put in a file or audio
// chat message.
type UploadHandler struct {
	dir      string
	maxBytes int64
}

func NewUploadHandler(cfg *config.Config) (*UploadHandler, error) {
	voiceDir := filepath.Join(cfg.Upload.Dir, "voice")
	if err := os.MkdirAll(voiceDir, 0o755); err != nil {
		return nil, err
	}
	return &UploadHandler{
		dir:      cfg.Upload.Dir,
		maxBytes: cfg.Upload.MaxBytes,
	}, nil
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "No file uploaded"})
		return
	}
	defer file.Close()

	subdir := ""
	if strings.HasPrefix(header.Header.Get("Content-Type"), "audio") {
		subdir = "voice"
	}
	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(header.Filename))
	dstPath := filepath.Join(h.dir, subdir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		middleware.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "upload handler - create failed", "path", dstPath, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "Upload failed"})
		return
	}
	defer dst.Close()
	if _, err := dst.ReadFrom(file); err != nil {
		middleware.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "upload handler - write failed", "path", dstPath, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "Upload failed"})
		return
	}

	fileURL := "/uploads/" + name
	if subdir != "" {
		fileURL = "/uploads/voice/" + name
	}
	writeJSON(w, http.StatusOK, map[string]string{"fileUrl": fileURL})
}
