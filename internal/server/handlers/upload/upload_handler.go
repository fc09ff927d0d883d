package upload

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mintgate/mediavault/internal/server/handlers/api"
	"github.com/mintgate/mediavault/internal/server/uploads"
)

type UploadHandler struct {
	assembler *uploads.Assembler
	multipart *uploads.MultipartService
	ingest    *uploads.Ingestor
}

// New builds the handler. All three services are nil when the object store is
// not configured; every route then answers 503 instead of panicking.
func New(assembler *uploads.Assembler, multipart *uploads.MultipartService, ingest *uploads.Ingestor) *UploadHandler {
	return &UploadHandler{
		assembler: assembler,
		multipart: multipart,
		ingest:    ingest,
	}
}

func (h *UploadHandler) storeReady(ctx *gin.Context) bool {
	if h.ingest == nil {
		api.AbortWithError(ctx, http.StatusServiceUnavailable, api.CodeStoreNotConfigured,
			fmt.Errorf("object store is not configured"))
		return false
	}
	return true
}
