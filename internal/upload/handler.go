package upload

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/s3loader/service/internal/config"
	"github.com/s3loader/service/internal/middleware"
	"github.com/s3loader/service/internal/response"
)

// Multipart bodies may exceed the file size by their framing; anything past
// this slack is cut off before it is buffered.
const (
	multipartOverhead = 1 << 20
	maxMemory         = 32 << 20
)

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	svc *Service
	cfg *config.Config
}

// NewHandler creates a new upload Handler.
func NewHandler(svc *Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// ConfigView is the read-only reflection of the active upload policy.
type ConfigView struct {
	MaxFileSize      int64    `json:"max_file_size"      example:"5368709120"`
	MaxFileSizeMB    float64  `json:"max_file_size_mb"   example:"5120"`
	AllowedMimeTypes []string `json:"allowed_mime_types"`
	AWSRegion        string   `json:"aws_region"         example:"us-east-1"`
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Validate a file and store it under {upload_path}/{filename} (or uploads/{filename}). Transient backend errors are retried with exponential backoff.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file				formData	file	true	"File to upload"
//	@Param			bucket_name			query		string	false	"Target bucket (defaults to S3_BUCKET_NAME)"
//	@Param			upload_path			query		string	false	"Key prefix"
//	@Param			X-AWS-Access-Key	header		string	false	"Access key override"
//	@Param			X-AWS-Secret-Key	header		string	false	"Secret key override"
//	@Success		200					{object}	Result
//	@Failure		400					{object}	response.ErrorBody
//	@Failure		500					{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	override := middleware.GetCredentials(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			// form fields are lost with the body; only the query can name a bucket
			h.fail(w, h.svc.RejectOversized(override, r.URL.Query().Get("bucket_name"), r.ContentLength, requestID), requestID)
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	result, err := h.svc.Upload(r.Context(), Request{
		Payload:     file,
		Size:        header.Size,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Bucket:      r.FormValue("bucket_name"),
		UploadPath:  r.FormValue("upload_path"),
	}, override, requestID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}

	response.OK(w, result)
}

// fail maps an upload error to its HTTP status.
func (h *Handler) fail(w http.ResponseWriter, err error, requestID string) {
	var rejected *RejectedError
	var failed *FailedError
	switch {
	case errors.As(err, &rejected):
		response.BadRequest(w, rejected.Reason)
	case errors.As(err, &failed):
		response.InternalError(w, failed.Outcome.Error)
	default:
		log.WithField("request_id", requestID).Errorf("upload: %v", err)
		response.InternalError(w, "Upload failed")
	}
}

// Config godoc
//
//	@Summary		Upload policy
//	@Description	Returns the active size limit, allowed content types and region.
//	@Tags			upload
//	@Produce		json
//	@Success		200	{object}	ConfigView
//	@Router			/config [get]
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	response.OK(w, ConfigView{
		MaxFileSize:      h.cfg.MaxFileSize,
		MaxFileSizeMB:    h.cfg.MaxFileSizeMB(),
		AllowedMimeTypes: h.cfg.AllowedMimeTypes,
		AWSRegion:        h.cfg.AWSRegion,
	})
}
