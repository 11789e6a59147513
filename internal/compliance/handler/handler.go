package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"meridian/internal/compliance"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/httputil"
	"meridian/pkg/requestcontext"
)

// Service defines the interface for compliance map operations.
type Service interface {
	Get(ctx context.Context, jurisdiction id.Jurisdiction) (*compliance.ComplianceMap, error)
	CreateMapping(ctx context.Context, params compliance.CreateMappingParams) (*compliance.ComplianceMap, error)
	Verify(ctx context.Context, jurisdiction id.Jurisdiction) (bool, error)
	List(ctx context.Context) ([]*compliance.ComplianceMap, error)
}

// Handler wires compliance endpoints to the compliance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a compliance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/maps", h.HandleCreateMapping)
	r.Get("/compliance/maps", h.HandleList)
	r.Get("/compliance/maps/{jurisdiction}", h.HandleGet)
	r.Get("/compliance/maps/{jurisdiction}/verify", h.HandleVerify)
}

// HandleCreateMapping handles POST /compliance/maps requests.
func (h *Handler) HandleCreateMapping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateMappingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.CreateMapping(ctx, compliance.CreateMappingParams{
		Jurisdiction:       req.ParsedJurisdiction(),
		LegalFramework:     req.LegalFramework,
		Requirements:       req.Requirements,
		EncryptionRequired: req.EncryptionRequired,
		RetentionDays:      req.RetentionDays,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "compliance map creation failed",
			"request_id", requestID,
			"jurisdiction", req.Jurisdiction,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromMap(m))
}

// HandleGet handles GET /compliance/maps/{jurisdiction} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jurisdiction, err := id.ParseJurisdiction(chi.URLParam(r, "jurisdiction"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "jurisdiction must be a 2-8 letter uppercase code"))
		return
	}

	m, err := h.service.Get(ctx, jurisdiction)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromMap(m))
}

// HandleVerify handles GET /compliance/maps/{jurisdiction}/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jurisdiction, err := id.ParseJurisdiction(chi.URLParam(r, "jurisdiction"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "jurisdiction must be a 2-8 letter uppercase code"))
		return
	}

	mapped, err := h.service.Verify(ctx, jurisdiction)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{
		Jurisdiction: jurisdiction.String(),
		Mapped:       mapped,
	})
}

// HandleList handles GET /compliance/maps requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	maps, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromMaps(maps))
}
