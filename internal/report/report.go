// Package report receives and stores signed delivery reports pushed by the
// gateway to the configured callback URL
package report

import (
	"encoding/json"

	"verigate/internal/gateway"
	perr "verigate/internal/platform/errors"
)

// DeliveryReport is the body the gateway posts after a delivery state change.
// It reuses the status shapes of the query API so both paths agree on enums
type DeliveryReport struct {
	RequestID          string                      `json:"request_id"`
	PhoneNumber        string                      `json:"phone_number"`
	Payload            string                      `json:"payload,omitempty"`
	DeliveryStatus     *gateway.DeliveryStatus     `json:"delivery_status,omitempty"`
	VerificationStatus *gateway.VerificationStatus `json:"verification_status,omitempty"`
}

// Decode parses a verified report body
// it fails closed on anything missing the request id that keys all storage
func Decode(body []byte) (*DeliveryReport, error) {
	var rep DeliveryReport
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "report decode failed")
	}
	if rep.RequestID == "" {
		return nil, perr.WithField(perr.Decodef("report missing request_id"), "request_id")
	}
	if rep.DeliveryStatus == nil && rep.VerificationStatus == nil {
		return nil, perr.Decodef("report carries neither delivery nor verification status")
	}
	return &rep, nil
}
