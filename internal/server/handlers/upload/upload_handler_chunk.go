package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mintgate/mediavault/internal/server/handlers/api"
	"github.com/mintgate/mediavault/internal/server/uploads"
)

// ChunkUpload accepts one chunk of a chunked upload. Chunks may arrive in any
// order; the submission that completes the set answers with the terminal
// ingest result instead of a progress report.
func (h *UploadHandler) ChunkUpload(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req ChunkUploadRequest
	if err := ctx.ShouldBind(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	file, err := ctx.FormFile("chunk")
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid chunk: %w", err))
		return
	}
	if file.Size <= 0 {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid chunk: size is 0"))
		return
	}

	fd, err := file.Open()
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid chunk: %w", err))
		return
	}
	defer fd.Close()

	payload, err := io.ReadAll(fd)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("failed to read chunk: %w", err))
		return
	}

	result, err := h.assembler.Submit(ctx.Request.Context(), &uploads.SubmitChunkParams{
		UploadID:    req.UploadID,
		FileName:    req.FileName,
		Encrypt:     req.Encrypt,
		ChunkIndex:  *req.ChunkIndex,
		TotalChunks: req.TotalChunks,
		Payload:     payload,
	})
	if err != nil {
		h.abortIngestError(ctx, err)
		return
	}

	if result.Ingest != nil {
		ctx.PureJSON(http.StatusOK, result.Ingest)
		return
	}

	ctx.PureJSON(http.StatusOK, &ChunkProgressResponse{
		UploadID: req.UploadID,
		Received: result.Received,
		Total:    result.Total,
	})
}

// ChunkStatus reports which chunks of a pending upload have arrived.
func (h *UploadHandler) ChunkStatus(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req ChunkStatusQuery
	if err := ctx.ShouldBindQuery(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	view, ok := h.assembler.Status(req.UploadID)
	if !ok {
		api.AbortWithError(ctx, http.StatusNotFound, api.CodeUploadNotFound,
			fmt.Errorf("no pending upload %s", req.UploadID))
		return
	}

	ctx.PureJSON(http.StatusOK, &ChunkStatusResponse{
		UploadID:    req.UploadID,
		FileName:    view.FileName,
		Encrypt:     view.Encrypt,
		TotalChunks: view.TotalChunks,
		Received:    view.Received,
		Indices:     view.Indices,
	})
}

// ChunkCancel discards a pending chunked upload. Cancelling an unknown or
// already-finished upload succeeds.
func (h *UploadHandler) ChunkCancel(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req ChunkStatusQuery
	if err := ctx.ShouldBindQuery(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	h.assembler.Cancel(req.UploadID)
	ctx.PureJSON(http.StatusOK, gin.H{"cancelled": req.UploadID})
}

func (h *UploadHandler) abortIngestError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, uploads.ErrCryptNotConfigured):
		api.AbortWithError(ctx, http.StatusServiceUnavailable, api.CodeCryptNotConfigured, err)
	case errors.Is(err, uploads.ErrChunkIndexOutOfRange):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
	default:
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeUploadPutFailed, err)
	}
}
