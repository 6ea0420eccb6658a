package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "edu-resources/internal/domain/resource"
	"edu-resources/internal/interfaces/httpserver/requests"
	"edu-resources/internal/interfaces/httpserver/responses"
	"edu-resources/internal/utils/platformerrors"
)

// ResourceHandler exposes the registry endpoints.
type ResourceHandler struct {
	service *domain.Service
	log     zerolog.Logger
}

func NewResourceHandler(service *domain.Service, log zerolog.Logger) *ResourceHandler {
	return &ResourceHandler{
		service: service,
		log:     log.With().Str("component", "resource-handler").Logger(),
	}
}

// List godoc
// @Summary      List resources
// @Description  Newest first. Filter by type and a case-insensitive search over title and description.
// @Tags         resources
// @Produce      json
// @Param        type    query     string  false  "video, ppt or ai"
// @Param        q       query     string  false  "Search text"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Success      200  {object}  responses.ResourceListResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /api/resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	var req requests.ListResourcesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, domain.MsgInvalidFilter, "e5f3a9b2-7c4d-4e0f-9a2b-3c4d5e6f7a81")
		return
	}

	items, total, err := h.service.List(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.log.Error().Err(err).Msg("list resources failed")
		responses.HandleError(c, err, "获取资源列表失败")
		return
	}
	c.JSON(http.StatusOK, responses.BuildResourceListResponse(items, total))
}

// Get godoc
// @Summary      Get a resource
// @Tags         resources
// @Produce      json
// @Param        id   path      string  true  "Resource ID"
// @Success      200  {object}  responses.ResourceResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /api/resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "获取资源失败")
		return
	}
	c.JSON(http.StatusOK, responses.BuildResourceResponse(res))
}

// Delete godoc
// @Summary      Delete a resource
// @Tags         resources
// @Produce      json
// @Param        id   path      string  true  "Resource ID"
// @Success      200  {object}  responses.DeleteResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /api/resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "删除资源失败")
		return
	}
	c.JSON(http.StatusOK, responses.DeleteResponse{Success: true, ID: id})
}

// Download godoc
// @Summary      Download resource bytes
// @Description  Streams stored bytes with the recorded MIME type. Link resources redirect to their URL.
// @Tags         resources
// @Produce      octet-stream
// @Param        id   path      string  true  "Resource ID"
// @Success      200  "binary data"
// @Success      302  "redirect to external link"
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /api/resources/{id}/download [get]
func (h *ResourceHandler) Download(c *gin.Context) {
	res, reader, err := h.service.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("download failed")
		responses.HandleError(c, err, "下载资源失败")
		return
	}
	if reader == nil {
		c.Redirect(http.StatusFound, res.AccessURL)
		return
	}
	defer reader.Close()

	contentType := res.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if res.OriginalFileName != "" {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.OriginalFileName}))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.log.Error().Err(err).Str("id", res.ID).Msg("stream error")
	}
}

// RegisterLink godoc
// @Summary      Register an external link
// @Description  Records an externally hosted resource without storing bytes.
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        request  body      requests.RegisterLinkRequest  true  "Link resource"
// @Success      200  {object}  responses.ResourceResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /api/resources/link [post]
func (h *ResourceHandler) RegisterLink(c *gin.Context) {
	var req requests.RegisterLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, domain.MsgInvalidURL, "f6a4b0c3-8d5e-4f1a-8b3c-4d5e6f7a8b92")
		return
	}

	res, err := h.service.RegisterLink(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.log.Warn().Err(err).Msg("register link failed")
		responses.HandleError(c, err, "登记链接失败")
		return
	}
	c.JSON(http.StatusOK, responses.BuildResourceResponse(res))
}

// importBodyLimit caps the size of an import request body.
const importBodyLimit = 10 << 20

// Export godoc
// @Summary      Export the registry
// @Description  Every registered resource as a JSON array, newest first. The output is accepted by the import endpoint.
// @Tags         resources
// @Produce      json
// @Success      200  {array}   responses.Resource
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /api/resources/export [get]
func (h *ResourceHandler) Export(c *gin.Context) {
	items, err := h.service.Export(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("export resources failed")
		responses.HandleError(c, err, "导出资源失败")
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "resources.json"}))
	c.IndentedJSON(http.StatusOK, responses.BuildResources(items))
}

// Import godoc
// @Summary      Import registry records
// @Description  Merges a JSON array produced by the export endpoint. Records with an existing id are skipped.
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        request  body      []requests.ImportRecord  true  "Exported records"
// @Success      200  {object}  responses.ImportResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /api/resources/import [post]
func (h *ResourceHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()
	records, err := requests.ParseImport(c, importBodyLimit)
	if err != nil {
		switch {
		case errors.Is(err, requests.ErrBodyTooLarge):
			responses.HandleError(c, domain.TooLargeError(ctx, importBodyLimit), domain.MsgImportFormat)
		case errors.Is(err, requests.ErrImportFormat):
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, domain.MsgImportFormat, "a7c5e1f3-9b2d-4e6a-8c0f-3d4e5f6a7b8c")
		default:
			h.log.Warn().Err(err).Msg("read import body failed")
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, domain.MsgUnreadable, "b8d6f2a4-0c3e-4f7b-9d1a-4e5f6a7b8c9d")
		}
		return
	}

	result, err := h.service.Import(ctx, records)
	if err != nil {
		h.log.Warn().Err(err).Msg("import resources failed")
		responses.HandleError(c, err, "导入失败，请重试")
		return
	}
	c.JSON(http.StatusOK, responses.ImportResponse{Success: true, Data: result})
}

// Stats godoc
// @Summary      Registry usage
// @Description  Resource count and stored bytes per type, with the active storage backend and upload ceiling.
// @Tags         resources
// @Produce      json
// @Success      200  {object}  responses.UsageResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /api/resources/stats [get]
func (h *ResourceHandler) Stats(c *gin.Context) {
	usage, err := h.service.Usage(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("resource usage failed")
		responses.HandleError(c, err, "获取存储信息失败")
		return
	}
	c.JSON(http.StatusOK, responses.BuildUsageResponse(usage))
}
