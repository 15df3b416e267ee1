package report

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"verigate/internal/integrity"
	perr "verigate/internal/platform/errors"
	"verigate/internal/platform/logger"
	phttp "verigate/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	// HeaderTimestamp carries the unix seconds the sender signed over
	HeaderTimestamp = "X-Request-Timestamp"
	// HeaderSignature carries the lowercase hex HMAC of timestamp and body
	HeaderSignature = "X-Request-Signature"

	// maxReportBytes caps report bodies, real reports are well under 1 KiB
	maxReportBytes = 64 << 10
)

// Repo is the storage surface the handler needs
// nil means reports are verified and logged but not persisted
type Repo interface {
	Upsert(ctx context.Context, rep *DeliveryReport) error
	Get(ctx context.Context, requestID string) (*Row, error)
}

// Handler verifies, decodes, and stores incoming delivery reports
type Handler struct {
	verifier *integrity.Verifier
	repo     Repo
	log      logger.Logger
}

// NewHandler builds a Handler
// repo may be nil to run in verify-and-log mode
func NewHandler(v *integrity.Verifier, repo Repo) *Handler {
	return &Handler{
		verifier: v,
		repo:     repo,
		log:      *logger.Named("report"),
	}
}

// Mount registers the report routes on the mux
func (h *Handler) Mount(mux *chi.Mux) {
	mux.Post("/report", h.Receive)
	mux.Get("/reports/{request_id}", h.Lookup)
}

// Receive handles a pushed delivery report
// nothing in the body is trusted until the signature checks out
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	// ingest id ties log lines for this report together across components
	ctx := logger.WithReport(r.Context(), uuid.NewString())
	r = r.WithContext(ctx)
	log := h.log.With().Str("report_id", logger.ReportID(ctx)).Logger()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxReportBytes))
	if err != nil {
		phttp.RespondError(w, r, perr.Wrapf(err, perr.ErrorCodeTransport, "read report body failed"))
		return
	}

	ts, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		phttp.RespondError(w, r, perr.Integrityf("missing or malformed %s header", HeaderTimestamp))
		return
	}

	if err := h.verifier.Verify(ts, r.Header.Get(HeaderSignature), body); err != nil {
		log.Warn().Err(err).Msg("report rejected")
		phttp.RespondError(w, r, err)
		return
	}

	rep, err := Decode(body)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	ev := log.Info().Str("request_id", rep.RequestID)
	if rep.DeliveryStatus != nil {
		ev = ev.Str("delivery_status", string(rep.DeliveryStatus.Status))
	}
	if rep.VerificationStatus != nil {
		ev = ev.Str("verification_status", string(rep.VerificationStatus.Status))
	}
	ev.Msg("delivery report received")

	if h.repo != nil {
		if err := h.repo.Upsert(r.Context(), rep); err != nil {
			phttp.RespondError(w, r, perr.Wrapf(err, perr.ErrorCodeUnknown, "store report failed"))
			return
		}
	}

	phttp.RespondOK(w, r, map[string]string{"request_id": rep.RequestID})
}

// Lookup returns the stored state for a request id
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		phttp.RespondError(w, r, perr.Newf(perr.ErrorCodeUnknown, "report storage not configured"))
		return
	}
	requestID := chi.URLParam(r, "request_id")
	if requestID == "" {
		phttp.RespondError(w, r, perr.InvalidArgf("request_id is required"))
		return
	}
	row, err := h.repo.Get(r.Context(), requestID)
	if err != nil {
		phttp.RespondError(w, r, perr.Wrapf(err, perr.ErrorCodeUnknown, "load report failed"))
		return
	}
	if row == nil {
		phttp.JSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}
	phttp.RespondOK(w, r, row)
}
