package report

import (
	"context"
	"errors"
	"time"

	"verigate/internal/platform/store"

	"github.com/jackc/pgx/v5"
)

// Row is a stored delivery report, one row per request id
// repeated reports for the same request overwrite the previous state
type Row struct {
	RequestID           string
	PhoneNumber         string
	Payload             string
	DeliveryStatus      string
	DeliveryUpdatedAt   int64
	VerificationStatus  string
	VerificationUpdated int64
	CodeEntered         string
	ReceivedAt          time.Time
}

// PGRepo persists delivery reports in postgres
type PGRepo struct {
	q store.RowQuerier
}

// NewPGRepo wires the repo to a sql seam
func NewPGRepo(q store.RowQuerier) *PGRepo { return &PGRepo{q: q} }

const upsertSQL = `
	INSERT INTO delivery_reports (
		request_id, phone_number, payload,
		delivery_status, delivery_updated_at,
		verification_status, verification_updated_at,
		code_entered, received_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	ON CONFLICT (request_id) DO UPDATE SET
		phone_number            = EXCLUDED.phone_number,
		payload                 = EXCLUDED.payload,
		delivery_status         = EXCLUDED.delivery_status,
		delivery_updated_at     = EXCLUDED.delivery_updated_at,
		verification_status     = EXCLUDED.verification_status,
		verification_updated_at = EXCLUDED.verification_updated_at,
		code_entered            = EXCLUDED.code_entered,
		received_at             = now()
`

// Upsert records the latest known state for the report's request id
func (r *PGRepo) Upsert(ctx context.Context, rep *DeliveryReport) error {
	var (
		dStatus string
		dAt     int64
		vStatus string
		vAt     int64
		code    string
	)
	if rep.DeliveryStatus != nil {
		dStatus = string(rep.DeliveryStatus.Status)
		dAt = rep.DeliveryStatus.UpdatedAt
	}
	if rep.VerificationStatus != nil {
		vStatus = string(rep.VerificationStatus.Status)
		vAt = rep.VerificationStatus.UpdatedAt
		code = rep.VerificationStatus.CodeEntered
	}
	_, err := r.q.Exec(ctx, upsertSQL,
		rep.RequestID, rep.PhoneNumber, rep.Payload,
		dStatus, dAt, vStatus, vAt, code,
	)
	return err
}

const getSQL = `
	SELECT request_id, phone_number, payload,
	       delivery_status, delivery_updated_at,
	       verification_status, verification_updated_at,
	       code_entered, received_at
	FROM delivery_reports
	WHERE request_id = $1
`

// Get returns the stored state for a request id, or (nil, nil) when absent
func (r *PGRepo) Get(ctx context.Context, requestID string) (*Row, error) {
	var row Row
	err := r.q.QueryRow(ctx, getSQL, requestID).Scan(
		&row.RequestID, &row.PhoneNumber, &row.Payload,
		&row.DeliveryStatus, &row.DeliveryUpdatedAt,
		&row.VerificationStatus, &row.VerificationUpdated,
		&row.CodeEntered, &row.ReceivedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SchemaSQL creates the backing table, applied by ops tooling or tests
const SchemaSQL = `
	CREATE TABLE IF NOT EXISTS delivery_reports (
		request_id              TEXT PRIMARY KEY,
		phone_number            TEXT NOT NULL,
		payload                 TEXT NOT NULL DEFAULT '',
		delivery_status         TEXT NOT NULL DEFAULT '',
		delivery_updated_at     BIGINT NOT NULL DEFAULT 0,
		verification_status     TEXT NOT NULL DEFAULT '',
		verification_updated_at BIGINT NOT NULL DEFAULT 0,
		code_entered            TEXT NOT NULL DEFAULT '',
		received_at             TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`
