package objects

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/s3loader/service/internal/credentials"
	"github.com/s3loader/service/internal/middleware"
	"github.com/s3loader/service/internal/response"
	"github.com/s3loader/service/internal/storage"
)

// Handler holds HTTP handlers for bucket and object endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new objects Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type bucketsBody struct {
	Buckets []storage.Bucket `json:"buckets"`
}

// ListBuckets godoc
//
//	@Summary		List buckets
//	@Description	Enumerates the buckets visible to the effective credentials.
//	@Tags			buckets
//	@Produce		json
//	@Param			X-AWS-Access-Key	header		string	false	"Access key override"
//	@Param			X-AWS-Secret-Key	header		string	false	"Secret key override"
//	@Success		200					{object}	bucketsBody
//	@Failure		400					{object}	response.ErrorBody
//	@Failure		401					{object}	response.ErrorBody
//	@Failure		500					{object}	response.ErrorBody
//	@Router			/buckets [get]
func (h *Handler) ListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.ListBuckets(r.Context(), middleware.GetCredentials(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, credentials.ErrMissingCredentials):
			response.BadRequest(w, err.Error())
		case storage.IsAuth(err):
			response.Unauthorized(w, "AWS authentication failed: "+backendMessage(err))
		default:
			response.InternalError(w, "Failed to list buckets: "+err.Error())
		}
		return
	}
	response.OK(w, bucketsBody{Buckets: buckets})
}

// ListObjects godoc
//
//	@Summary		List objects
//	@Description	Folder-style listing one level below prefix. Backend errors yield an empty listing.
//	@Tags			buckets
//	@Produce		json
//	@Param			bucket				path		string	true	"Bucket name"
//	@Param			prefix				query		string	false	"Key prefix, e.g. docs/"
//	@Param			X-AWS-Access-Key	header		string	false	"Access key override"
//	@Param			X-AWS-Secret-Key	header		string	false	"Secret key override"
//	@Success		200					{object}	storage.ObjectListing
//	@Failure		400					{object}	response.ErrorBody
//	@Router			/buckets/{bucket}/objects [get]
func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.ListObjects(r.Context(), middleware.GetCredentials(r.Context()),
		chi.URLParam(r, "bucket"), r.URL.Query().Get("prefix"))
	if err != nil {
		h.clientError(w, r, err)
		return
	}
	response.OK(w, listing)
}

// Download godoc
//
//	@Summary		Download an object
//	@Description	Streams the object bytes with its stored content type as an attachment.
//	@Tags			objects
//	@Produce		octet-stream
//	@Param			bucket				path		string	true	"Bucket name"
//	@Param			key					path		string	true	"Object key (may contain slashes)"
//	@Param			X-AWS-Access-Key	header		string	false	"Access key override"
//	@Param			X-AWS-Secret-Key	header		string	false	"Secret key override"
//	@Success		200					{file}		binary
//	@Failure		400					{object}	response.ErrorBody
//	@Failure		404					{object}	response.ErrorBody
//	@Router			/download/{bucket}/{key} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	dl, err := h.svc.Download(r.Context(), middleware.GetCredentials(r.Context()),
		chi.URLParam(r, "bucket"), chi.URLParam(r, "*"))
	if err != nil {
		if errors.Is(err, credentials.ErrMissingCredentials) {
			response.BadRequest(w, err.Error())
			return
		}
		response.NotFound(w, "File not found: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", dl.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Data)
}

// Delete godoc
//
//	@Summary		Delete objects
//	@Description	Deletes each key independently. Always 200 once the batch runs; inspect "failed".
//	@Tags			objects
//	@Accept			json
//	@Produce		json
//	@Param			bucket				path		string		true	"Bucket name"
//	@Param			keys				body		[]string	true	"Object keys"
//	@Param			X-AWS-Access-Key	header		string		false	"Access key override"
//	@Param			X-AWS-Secret-Key	header		string		false	"Secret key override"
//	@Success		200					{object}	DeleteResult
//	@Failure		400					{object}	response.ErrorBody
//	@Router			/delete/{bucket} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var keys []string
	if err := json.NewDecoder(r.Body).Decode(&keys); err != nil {
		response.BadRequest(w, "request body must be a JSON array of keys")
		return
	}

	res, err := h.svc.Delete(r.Context(), middleware.GetCredentials(r.Context()), chi.URLParam(r, "bucket"), keys)
	if err != nil {
		h.clientError(w, r, err)
		return
	}
	response.OK(w, res)
}

// clientError maps credential problems to 400 and anything else to 500.
func (h *Handler) clientError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, credentials.ErrMissingCredentials) {
		response.BadRequest(w, err.Error())
		return
	}
	log.WithField("request_id", middleware.GetRequestID(r.Context())).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	response.InternalError(w, err.Error())
}

func backendMessage(err error) string {
	var se *storage.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
