package uploads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/mintgate/mediavault/internal/server/crypt"
	"github.com/mintgate/mediavault/internal/server/store"
)

var (
	ErrCryptNotConfigured = errors.New("encryption requested but master secret not configured")
)

type IngestParams struct {
	Data     []byte
	FileName string
	Encrypt  bool
}

type IngestResult struct {
	CID        string      `json:"cid"`
	URL        string      `json:"url"`
	Size       int64       `json:"size"`
	Encryption *crypt.Meta `json:"encryption,omitempty"`
	PreviewCID string      `json:"previewCid,omitempty"`
	PreviewURL string      `json:"previewUrl,omitempty"`
}

// Ingestor is the shared sink of every upload path: optional encryption,
// content-addressed store put, then best-effort preview extraction for
// time-based media.
type Ingestor struct {
	store  *store.StoreService
	crypt  *crypt.CryptService // nil when no master secret is configured
	config *Config
}

func NewIngestor(storeSvc *store.StoreService, cryptSvc *crypt.CryptService, config *Config) *Ingestor {
	return &Ingestor{
		store:  storeSvc,
		crypt:  cryptSvc,
		config: config,
	}
}

func (ing *Ingestor) Ingest(ctx context.Context, params *IngestParams) (*IngestResult, error) {
	stored := params.Data

	var meta *crypt.Meta
	if params.Encrypt {
		if ing.crypt == nil {
			return nil, ErrCryptNotConfigured
		}
		var err error
		stored, meta, err = ing.crypt.Encrypt(params.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt content: %w", err)
		}
	}

	content, err := ing.store.PutContent(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to put content: %w", err)
	}

	result := &IngestResult{
		CID:        content.CID,
		URL:        ing.store.GatewayURL(content.CID),
		Size:       content.Size,
		Encryption: meta,
	}

	// preview always derives from the plaintext; it is stored unencrypted,
	// content-addressed like everything else
	kind := DetectKind(params.Data)
	if preview, ok := StrategyFor(kind, ing.config.PreviewMaxBytes).Extract(params.Data); ok {
		pc, err := ing.store.PutContent(ctx, preview)
		if err != nil {
			// the content itself is stored; a missing teaser is not a
			// request failure
			slog.Warn("preview upload failed", "cid", content.CID, "kind", kind.String(), "error", err)
		} else {
			result.PreviewCID = pc.CID
			result.PreviewURL = ing.store.GatewayURL(pc.CID)
		}
	}

	slog.Info("content ingested",
		"cid", content.CID,
		"file", params.FileName,
		"kind", kind.String(),
		"size", humanize.Bytes(uint64(content.Size)),
		"encrypted", params.Encrypt,
		"preview", result.PreviewCID != "",
	)

	return result, nil
}
