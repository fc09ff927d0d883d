package upload

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mintgate/mediavault/internal/server/handlers/api"
	"github.com/mintgate/mediavault/internal/server/uploads"
)

// FileUpload stores a whole file in one request.
func (h *UploadHandler) FileUpload(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req FileUploadRequest
	if err := ctx.ShouldBind(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid file: %w", err))
		return
	}
	if file.Size <= 0 {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid file: size is 0"))
		return
	}

	fd, err := file.Open()
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid file: %w", err))
		return
	}
	defer fd.Close()

	data, err := io.ReadAll(fd)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("failed to read file: %w", err))
		return
	}

	result, err := h.ingest.Ingest(ctx.Request.Context(), &uploads.IngestParams{
		Data:     data,
		FileName: file.Filename,
		Encrypt:  req.Encrypt,
	})
	if err != nil {
		h.abortIngestError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, result)
}

// MetadataUpload stores a JSON metadata document as content. The document
// bytes are stored as given, never encrypted, so gateways can serve them
// directly.
func (h *UploadHandler) MetadataUpload(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req MetadataUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	result, err := h.ingest.Ingest(ctx.Request.Context(), &uploads.IngestParams{
		Data:     req.Metadata,
		FileName: req.Name,
	})
	if err != nil {
		h.abortIngestError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, result)
}
