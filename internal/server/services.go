package server

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/mintgate/mediavault/internal/server/auth"
	"github.com/mintgate/mediavault/internal/server/crypt"
	"github.com/mintgate/mediavault/internal/server/store"
	"github.com/mintgate/mediavault/internal/server/uploads"
)

type Services struct {
	Auth     *auth.AuthService
	Store    *store.StoreService // nil when store credentials are absent
	Crypt    *crypt.CryptService // nil when no master secret is configured
	Sessions uploads.SessionStore
	Reaper   *uploads.Reaper

	// nil alongside Store
	Ingest    *uploads.Ingestor
	Assembler *uploads.Assembler
	Multipart *uploads.MultipartService
}

// NewServices wires the service graph. A missing store or crypt configuration
// degrades the server instead of failing it: the affected endpoints answer
// with a configuration error.
func NewServices(config *Config, db *sqlx.DB) (*Services, error) {
	authSvc := auth.NewAuthService(&config.Auth)

	var cryptSvc *crypt.CryptService
	if config.Crypt.Configured() {
		var err error
		cryptSvc, err = crypt.NewCryptService(&config.Crypt)
		if err != nil {
			return nil, err
		}
	} else {
		slog.Warn("no master secret configured, encrypted uploads disabled")
	}

	sessions := uploads.NewMemorySessionStore()
	reaper := uploads.NewReaper(sessions, &config.Uploads)

	svcs := &Services{
		Auth:     authSvc,
		Crypt:    cryptSvc,
		Sessions: sessions,
		Reaper:   reaper,
	}

	if !config.Store.Configured() {
		slog.Warn("object store not configured, ingestion endpoints disabled")
		return svcs, nil
	}

	storeSvc, err := store.NewStoreService(&config.Store, db)
	if err != nil {
		return nil, err
	}

	multipartSvc, err := uploads.NewMultipartService(storeSvc, db, &config.Uploads)
	if err != nil {
		return nil, err
	}

	svcs.Store = storeSvc
	svcs.Ingest = uploads.NewIngestor(storeSvc, cryptSvc, &config.Uploads)
	svcs.Assembler = uploads.NewAssembler(sessions, svcs.Ingest)
	svcs.Multipart = multipartSvc
	return svcs, nil
}
