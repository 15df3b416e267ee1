package gateway

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	perr "verigate/internal/platform/errors"
)

// Error codes the remote service is known to return in the envelope's error field.
// The set is open; unrecognized codes still surface as RemoteError
const (
	RemoteAccessTokenInvalid     = "ACCESS_TOKEN_INVALID"
	RemoteAccessTokenRequired    = "ACCESS_TOKEN_REQUIRED"
	RemoteBalanceNotEnough       = "BALANCE_NOT_ENOUGH"
	RemoteCallbackURLInvalid     = "CALLBACK_URL_INVALID"
	RemoteCodeLengthInvalid      = "CODE_LENGTH_INVALID"
	RemoteCodeLengthRequired     = "CODE_LENGTH_REQUIRED"
	RemotePayloadInvalid         = "PAYLOAD_INVALID"
	RemotePhoneNumberInvalid     = "PHONE_NUMBER_INVALID"
	RemotePhoneNumberNotFound    = "PHONE_NUMBER_NOT_FOUND"
	RemoteRequestIDInvalid       = "REQUEST_ID_INVALID"
	RemoteRequestIDRequired      = "REQUEST_ID_REQUIRED"
	RemoteSenderUsernameInvalid  = "SENDER_USERNAME_INVALID"
	RemoteSenderNotOwned         = "SENDER_NOT_OWNED"
	RemoteMessageAlreadyRevoked  = "MESSAGE_ALREADY_REVOKED"
	RemoteMessageNotFound        = "MESSAGE_NOT_FOUND"
	RemoteTTLInvalid             = "TTL_INVALID"
	RemoteUnknownMethod          = "UNKNOWN_METHOD"
	remoteFloodWaitPrefix        = "FLOOD_WAIT_"
)

// RemoteError is a structured rejection reported by the gateway itself,
// as opposed to transport or protocol failures on the way there
type RemoteError struct {
	// Code is the machine readable error string from the envelope
	Code string

	// Description is optional free text, empty for most codes
	Description string

	// RetryAfter is nonzero only for throttling rejections and says how long
	// the caller must wait before retrying
	RetryAfter time.Duration
}

func (e *RemoteError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("gateway rejected request: %s (retry after %s)", e.Code, e.RetryAfter)
	}
	if e.Description != "" {
		return fmt.Sprintf("gateway rejected request: %s: %s", e.Code, e.Description)
	}
	return "gateway rejected request: " + e.Code
}

// Throttled reports whether the rejection is a rate limit with a wait hint
func (e *RemoteError) Throttled() bool { return e.RetryAfter > 0 }

// newRemoteError parses an envelope error string into a RemoteError wrapped
// with the remote taxonomy code. FLOOD_WAIT_%d carries its wait in the code itself
func newRemoteError(code string) error {
	re := &RemoteError{Code: code}
	if rest, ok := strings.CutPrefix(code, remoteFloodWaitPrefix); ok {
		if secs, err := strconv.Atoi(rest); err == nil && secs >= 0 {
			re.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return perr.Wrap(re, perr.ErrorCodeRemote, re.Error())
}

// RemoteErrorFrom unwraps a client error back to its RemoteError, if any
func RemoteErrorFrom(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func errMissingField(name string) error {
	return perr.WithField(perr.Decodef("response missing required field %q", name), name)
}
