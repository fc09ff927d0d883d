package upload

import "encoding/json"

type ChunkUploadRequest struct {
	UploadID string `form:"uploadId" binding:"required"`
	// pointer so that index 0 still satisfies the required binding
	ChunkIndex  *int   `form:"chunkIndex" binding:"required"`
	TotalChunks int    `form:"totalChunks" binding:"required,min=1"`
	FileName    string `form:"fileName" binding:"required"`
	Encrypt     bool   `form:"encrypt"`
}

type ChunkProgressResponse struct {
	UploadID string `json:"uploadId"`
	Received int    `json:"received"`
	Total    int    `json:"total"`
}

type ChunkStatusQuery struct {
	UploadID string `form:"uploadId" binding:"required"`
}

type ChunkStatusResponse struct {
	UploadID    string `json:"uploadId"`
	FileName    string `json:"fileName"`
	Encrypt     bool   `json:"encrypt"`
	TotalChunks int    `json:"totalChunks"`
	Received    int    `json:"received"`
	Indices     []int  `json:"indices"`
}

type FileUploadRequest struct {
	Encrypt bool `form:"encrypt"`
}

type MetadataUploadRequest struct {
	Name     string          `json:"name"`
	Metadata json.RawMessage `json:"metadata" binding:"required"`
}

type MultipartInitRequest struct {
	FileName   string `json:"fileName" binding:"required"`
	TotalParts int    `json:"totalParts" binding:"required,min=1"`
}

type MultipartPartRequest struct {
	UploadID   string `form:"uploadId" binding:"required"`
	PartNumber int    `form:"partNumber" binding:"required,min=1"`
}

type MultipartUploadIDRequest struct {
	UploadID string `json:"uploadId" binding:"required"`
}

type MultipartStatusQuery struct {
	UploadID string `form:"uploadId" binding:"required"`
}

type IncompleteResponse struct {
	Code         string `json:"code"`
	Message      string `json:"error"`
	PresentParts []int  `json:"presentParts"`
	TotalParts   int    `json:"totalParts"`
}
