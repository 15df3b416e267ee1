package gateway

import (
	perr "verigate/internal/platform/errors"
	"verigate/internal/platform/validate"
)

// Limits enforced locally before any bytes leave the process.
// They mirror the remote contract so obviously bad requests never spend quota
const (
	// MinCodeLength and MaxCodeLength bound both code_length and a caller-supplied code
	MinCodeLength = 4
	MaxCodeLength = 8

	// MaxPayloadBytes bounds the opaque payload echoed back in delivery reports
	MaxPayloadBytes = 128

	// MinTTL and MaxTTL bound message time-to-live in seconds
	MinTTL = 60
	MaxTTL = 86400
)

// SendVerificationMessage requests delivery of a verification code to a phone number.
// Exactly one of Code or CodeLength should drive code generation: a caller-supplied
// Code wins and CodeLength is ignored by the remote side
type SendVerificationMessage struct {
	PhoneNumber    string `json:"phone_number" validate:"required,phone_e164"`
	RequestID      string `json:"request_id,omitempty"`
	SenderUsername string `json:"sender_username,omitempty"`
	Code           string `json:"code,omitempty" validate:"omitempty,number,min=4,max=8"`
	CodeLength     int    `json:"code_length,omitempty" validate:"omitempty,min=4,max=8"`
	CallbackURL    string `json:"callback_url,omitempty" validate:"omitempty,url,startswith=https://"`
	Payload        string `json:"payload,omitempty"`
	TTL            int    `json:"ttl,omitempty" validate:"omitempty,min=60,max=86400"`
}

func (m SendVerificationMessage) method() string { return "sendVerificationMessage" }

func (m SendVerificationMessage) validateParams() error {
	if err := validate.Struct(m); err != nil {
		return err
	}
	if m.Code == "" && m.CodeLength == 0 {
		return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "either code or code_length is required"), "code")
	}
	if len(m.Payload) > MaxPayloadBytes {
		return perr.WithField(
			perr.Newf(perr.ErrorCodeValidation, "payload must be at most %d bytes", MaxPayloadBytes),
			"payload",
		)
	}
	return nil
}

// CheckSendAbility asks whether a verification message can be sent to the number.
// On success the returned request id can be passed as SendVerificationMessage.RequestID
// to send at the cheaper pre-checked rate
type CheckSendAbility struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone_e164"`
}

func (m CheckSendAbility) method() string { return "checkSendAbility" }

func (m CheckSendAbility) validateParams() error { return validate.Struct(m) }

// CheckVerificationStatus fetches the current status of a prior request.
// Supplying Code asks the remote side to judge it; the verdict arrives in
// RequestStatus.VerificationStatus
type CheckVerificationStatus struct {
	RequestID string `json:"request_id" validate:"required"`
	Code      string `json:"code,omitempty" validate:"omitempty,number,min=4,max=8"`
}

func (m CheckVerificationStatus) method() string { return "checkVerificationStatus" }

func (m CheckVerificationStatus) validateParams() error { return validate.Struct(m) }

// RevokeVerificationMessage asks the gateway to revoke a sent message.
// Acceptance only means the revocation was queued, not that it succeeded
type RevokeVerificationMessage struct {
	RequestID string `json:"request_id" validate:"required"`
}

func (m RevokeVerificationMessage) method() string { return "revokeVerificationMessage" }

func (m RevokeVerificationMessage) validateParams() error { return validate.Struct(m) }

// request is the contract every API method value satisfies
type request interface {
	method() string
	validateParams() error
}
