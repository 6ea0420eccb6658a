package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"edu-resources/internal/config"
	domain "edu-resources/internal/domain/resource"
	"edu-resources/internal/infrastructure/metrics"
	"edu-resources/internal/interfaces/httpserver/requests"
	"edu-resources/internal/interfaces/httpserver/responses"
	"edu-resources/internal/utils/platformerrors"
)

// multipartSlack is the allowance for form fields and part headers on top of
// the file size ceiling.
const multipartSlack = 1 << 20

// UploadHandler exposes the upload endpoint.
type UploadHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewUploadHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "upload-handler").Logger(),
	}
}

// Upload godoc
// @Summary      Upload a resource
// @Description  Accepts a multipart form with file, type, title and description, stores the file once and registers it.
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        file         formData  file    true   "Resource file"
// @Param        type         formData  string  true   "video, ppt or ai"
// @Param        title        formData  string  true   "Resource title"
// @Param        description  formData  string  false  "Resource description"
// @Success      200  {object}  responses.ResourceResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /api/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	limit := h.service.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)

	req, release, err := requests.ParseUpload(c)
	defer release()
	if err != nil {
		if errors.Is(err, requests.ErrBodyTooLarge) {
			metrics.RecordUpload(req.Type, "rejected", 0)
			responses.HandleError(c, domain.TooLargeError(ctx, limit), domain.MsgUploadFailed)
			return
		}
		h.log.Error().Err(err).Msg("failed to read upload form")
		metrics.RecordUpload(req.Type, "failed", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, domain.MsgUploadFailed, "d4e2f8a1-6b3c-4d9e-8f1a-2b3c4d5e6f70")
		return
	}

	res, err := h.service.Upload(ctx, req)
	if err != nil {
		status := "failed"
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
			status = "rejected"
			h.log.Warn().Err(err).Str("type", req.Type).Msg("upload rejected")
		} else {
			h.log.Error().Err(err).Str("type", req.Type).Msg("upload failed")
		}
		metrics.RecordUpload(req.Type, status, 0)
		responses.HandleError(c, err, domain.MsgUploadFailed)
		return
	}

	metrics.RecordUpload(string(res.Type), "success", res.SizeBytes)
	c.JSON(http.StatusOK, responses.BuildResourceResponse(res))
}

// Health godoc
// @Summary      Upload service health
// @Tags         upload
// @Produce      json
// @Success      200  {object}  responses.UploadHealthResponse
// @Router       /api/upload [get]
func (h *UploadHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, responses.UploadHealthResponse{
		Status:  "ok",
		Message: "文件上传服务正常",
	})
}
