// Package integrity authenticates delivery report requests.
// A report is trusted only if its HMAC signature matches a key derived from
// the access token and its timestamp falls inside the acceptance window
package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"

	perr "verigate/internal/platform/errors"
)

const (
	// DefaultMaxSkew is how far in the past a report timestamp may lie
	DefaultMaxSkew = 5 * time.Minute

	// DefaultFutureTolerance absorbs small clock drift ahead of local time
	DefaultFutureTolerance = 10 * time.Second
)

// Options tunes the acceptance window
// zero values take the defaults above
type Options struct {
	MaxSkew         time.Duration
	FutureTolerance time.Duration

	// Now overrides the clock, for tests
	Now func() time.Time
}

// Verifier checks report signatures for a single access token
// safe for concurrent use
type Verifier struct {
	key             []byte
	maxSkew         time.Duration
	futureTolerance time.Duration
	now             func() time.Time
}

// New derives the verification key from the access token
func New(accessToken string, opts Options) (*Verifier, error) {
	if accessToken == "" {
		return nil, perr.InvalidArgf("access token is required")
	}
	if opts.MaxSkew <= 0 {
		opts.MaxSkew = DefaultMaxSkew
	}
	if opts.FutureTolerance <= 0 {
		opts.FutureTolerance = DefaultFutureTolerance
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	key := sha256.Sum256([]byte(accessToken))
	return &Verifier{
		key:             key[:],
		maxSkew:         opts.MaxSkew,
		futureTolerance: opts.FutureTolerance,
		now:             opts.Now,
	}, nil
}

// Verify checks the signature over the exact raw body and the timestamp window.
// timestamp is unix seconds as presented by the sender, signature is lowercase
// hex. Any failure means the report must be discarded
func (v *Verifier) Verify(timestamp int64, signature string, body []byte) error {
	now := v.now().Unix()
	if age := now - timestamp; age > int64(v.maxSkew/time.Second) {
		return perr.Integrityf("report timestamp too old (%ds past window)", age-int64(v.maxSkew/time.Second))
	}
	if ahead := timestamp - now; ahead > int64(v.futureTolerance/time.Second) {
		return perr.Integrityf("report timestamp %ds in the future", ahead)
	}

	got, err := hex.DecodeString(signature)
	if err != nil || len(got) != sha256.Size {
		return perr.Integrityf("malformed signature")
	}

	want := v.sign(timestamp, body)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return perr.Integrityf("signature mismatch")
	}
	return nil
}

// Sign produces the lowercase hex signature for a timestamp and body.
// Exported for tests and local tooling that fabricate reports
func (v *Verifier) Sign(timestamp int64, body []byte) string {
	return hex.EncodeToString(v.sign(timestamp, body))
}

func (v *Verifier) sign(timestamp int64, body []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte{'\n'})
	mac.Write(body)
	return mac.Sum(nil)
}
