package books

import (
	"net/http"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"github.com/5w1tchy/shelfbot/internal/api/httpx"
	"github.com/5w1tchy/shelfbot/internal/storage/s3"
	"github.com/5w1tchy/shelfbot/internal/validate"
	"go.uber.org/zap"
)

type coverRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp"`
}

type coverResponse struct {
	s3.Upload
	ExpiresIn int `json:"expiresIn"`
}

// coverUpload issues a presigned PUT and points the book at the new key.
// The previous uploaded cover, if any, is removed.
func (h *Handler) coverUpload(w http.ResponseWriter, r *http.Request) {
	if h.covers == nil {
		apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "", "cover storage is not configured")
		return
	}
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	var body coverRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "", err.Error())
		return
	}
	body.ContentType = strings.ToLower(strings.TrimSpace(body.ContentType))
	if err := validate.Struct(body); err != nil {
		apperr.Write(w, r, apperr.FromValidation(err))
		return
	}

	up, err := h.covers.PresignUpload(r.Context(), book.ID, body.ContentType)
	if err != nil {
		h.log.Error("presign upload failed", zap.String("id", book.ID), zap.Error(err))
		apperr.WriteStatus(w, r, http.StatusBadGateway, "", "could not prepare upload")
		return
	}

	old := book.CoverURL
	book.CoverURL = up.Key
	if err := h.store.Update(r.Context(), book.ID, book); apperr.HandleStoreError(w, r, h.log, err) {
		return
	}
	h.dropCover(r.Context(), old)
	httpx.Created(w, coverResponse{Upload: up, ExpiresIn: int(up.ExpiresIn.Seconds())})
}

// coverRedirect sends the client to the image: a presigned GET for uploaded
// covers, the stored URL for external ones.
func (h *Handler) coverRedirect(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	switch {
	case book.CoverURL == "":
		apperr.WriteStatus(w, r, http.StatusNotFound, "", "book has no cover")
	case s3.IsCoverKey(book.CoverURL):
		if h.covers == nil {
			apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "", "cover storage is not configured")
			return
		}
		url, err := h.covers.PresignDownload(r.Context(), book.CoverURL)
		if err != nil {
			h.log.Error("presign download failed", zap.String("id", book.ID), zap.Error(err))
			apperr.WriteStatus(w, r, http.StatusBadGateway, "", "could not fetch cover")
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	default:
		http.Redirect(w, r, book.CoverURL, http.StatusFound)
	}
}
