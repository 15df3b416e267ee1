// Package gateway provides a client for the messaging-verification gateway API:
// typed request dispatch, response classification, and result shapes
package gateway

// DeliveryStatusKind is the current delivery state of a verification message
type DeliveryStatusKind string

const (
	// DeliverySent means the message has been sent to the recipient's device(s)
	DeliverySent DeliveryStatusKind = "sent"
	// DeliveryRead means the message has been read by the recipient
	DeliveryRead DeliveryStatusKind = "read"
	// DeliveryRevoked means the message has been revoked
	DeliveryRevoked DeliveryStatusKind = "revoked"
)

// VerificationStatusKind is the current state of the verification process
type VerificationStatusKind string

const (
	// CodeValid means the code entered by the user is correct
	CodeValid VerificationStatusKind = "code_valid"
	// CodeInvalid means the code entered by the user is incorrect
	CodeInvalid VerificationStatusKind = "code_invalid"
	// CodeMaxAttemptsExceeded means the maximum number of attempts to enter the code has been exceeded
	CodeMaxAttemptsExceeded VerificationStatusKind = "code_max_attempts_exceeded"
	// CodeExpired means the code has expired and can no longer be used
	CodeExpired VerificationStatusKind = "expired"
)

// DeliveryStatus reports the delivery state of a message and when it changed
type DeliveryStatus struct {
	Status    DeliveryStatusKind `json:"status"`
	UpdatedAt int64              `json:"updated_at"`
}

// VerificationStatus reports the state of the verification process
type VerificationStatus struct {
	Status      VerificationStatusKind `json:"status"`
	UpdatedAt   int64                  `json:"updated_at"`
	CodeEntered string                 `json:"code_entered,omitempty"`
}

// RequestStatus is the result shape shared by send, ability, and check calls.
// The gateway is the sole source of truth for this state; the request id it
// assigns is the only valid key for later check/revoke calls
type RequestStatus struct {
	RequestID          string              `json:"request_id"`
	PhoneNumber        string              `json:"phone_number"`
	RequestCost        float64             `json:"request_cost"`
	RemainingBalance   *float64            `json:"remaining_balance,omitempty"`
	DeliveryStatus     *DeliveryStatus     `json:"delivery_status,omitempty"`
	VerificationStatus *VerificationStatus `json:"verification_status,omitempty"`
	Payload            string              `json:"payload,omitempty"`
}

// checkComplete rejects payloads missing contractually required fields so a
// schema drift surfaces as a decode failure instead of zero values
func (rs *RequestStatus) checkComplete() error {
	if rs.RequestID == "" {
		return errMissingField("request_id")
	}
	if rs.PhoneNumber == "" {
		return errMissingField("phone_number")
	}
	return nil
}
