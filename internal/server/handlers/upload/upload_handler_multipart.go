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

// MultipartInit opens a multipart upload for a large file.
func (h *UploadHandler) MultipartInit(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req MultipartInitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	result, err := h.multipart.Initiate(ctx.Request.Context(), &uploads.InitiateParams{
		FileName:   req.FileName,
		TotalParts: req.TotalParts,
	})
	if err != nil {
		h.abortMultipartError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, result)
}

// MultipartPart accepts one part of a multipart upload. Retrying a part the
// server already recorded answers with the recorded etag.
func (h *UploadHandler) MultipartPart(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req MultipartPartRequest
	if err := ctx.ShouldBind(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	file, err := ctx.FormFile("part")
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid part: %w", err))
		return
	}
	if file.Size <= 0 {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid part: size is 0"))
		return
	}

	fd, err := file.Open()
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("invalid part: %w", err))
		return
	}
	defer fd.Close()

	payload, err := io.ReadAll(fd)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("failed to read part: %w", err))
		return
	}

	result, err := h.multipart.UploadPart(ctx.Request.Context(), &uploads.UploadPartParams{
		UploadID:   req.UploadID,
		PartNumber: req.PartNumber,
		Payload:    payload,
	})
	if err != nil {
		h.abortMultipartError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, result)
}

// MultipartComplete finalizes a multipart upload once all parts are in.
func (h *UploadHandler) MultipartComplete(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req MultipartUploadIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	result, err := h.multipart.Complete(ctx.Request.Context(), req.UploadID)
	if err != nil {
		h.abortMultipartError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, result)
}

// MultipartAbort cancels a multipart upload and discards its parts.
func (h *UploadHandler) MultipartAbort(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req MultipartUploadIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	if err := h.multipart.Abort(ctx.Request.Context(), req.UploadID); err != nil {
		h.abortMultipartError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, gin.H{"aborted": req.UploadID})
}

// MultipartStatus reports recorded parts so clients can resume.
func (h *UploadHandler) MultipartStatus(ctx *gin.Context) {
	if !h.storeReady(ctx) {
		return
	}

	var req MultipartStatusQuery
	if err := ctx.ShouldBindQuery(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	status, err := h.multipart.Status(req.UploadID)
	if err != nil {
		h.abortMultipartError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, status)
}

func (h *UploadHandler) abortMultipartError(ctx *gin.Context, err error) {
	var statusErr *uploads.StatusError
	var incompleteErr *uploads.IncompleteError

	switch {
	case errors.Is(err, uploads.ErrUploadNotFound):
		api.AbortWithError(ctx, http.StatusNotFound, api.CodeUploadNotFound, err)
	case errors.Is(err, uploads.ErrPartOutOfRange):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
	case errors.As(err, &statusErr):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeUploadWrongStatus, err)
	case errors.As(err, &incompleteErr):
		ctx.Abort()
		ctx.Error(err)
		ctx.PureJSON(http.StatusBadRequest, &IncompleteResponse{
			Code:         api.CodeUploadIncomplete,
			Message:      err.Error(),
			PresentParts: incompleteErr.Present,
			TotalParts:   incompleteErr.TotalParts,
		})
	default:
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeUploadPutFailed, err)
	}
}
