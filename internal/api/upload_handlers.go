package api

import (
	"errors"
	"log/slog"
	"net/http"

	"flixxit-service/internal/media"
)

// multipartMemory сколько multipart держать в памяти, остальное уходит во временные файлы
const multipartMemory = 32 << 20

type uploadResponse struct {
	Message  string `json:"message"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadTest GET /api/upload/test
func (h *HTTPHandler) UploadTest(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, messageResponse{Message: "Upload router is working"})
}

// UploadImage POST /api/upload/image (поле формы image)
func (h *HTTPHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, media.KindImage, "image", "File uploaded successfully", "Only image files are allowed!")
}

// UploadVideo POST /api/upload/video (поле формы video)
func (h *HTTPHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, media.KindVideo, "video", "Video uploaded successfully", "Only video files are allowed!")
}

func (h *HTTPHandler) upload(w http.ResponseWriter, r *http.Request, kind media.Kind, field, okMessage, typeMessage string) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		h.logger.WarnContext(ctx, "Failed to parse multipart form", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	result, err := h.uploader.Upload(ctx, kind, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	switch {
	case err == nil:
	case errors.Is(err, media.ErrUnsupportedType):
		h.respondError(w, r, http.StatusBadRequest, typeMessage)
		return
	case errors.Is(err, media.ErrNotConfigured):
		h.respondError(w, r, http.StatusInternalServerError, "Upload configuration failed")
		return
	default:
		h.logger.ErrorContext(ctx, "Upload failed", slog.String("kind", string(kind)), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Upload failed")
		return
	}

	h.respondJSON(w, r, http.StatusOK, uploadResponse{Message: okMessage, URL: result.URL, Filename: result.Filename})
}
