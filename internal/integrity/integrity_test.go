package integrity

import (
	"strings"
	"testing"
	"time"

	perr "verigate/internal/platform/errors"
)

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0) }
}

func mustVerifier(t *testing.T, opts Options) *Verifier {
	t.Helper()
	v, err := New("test-access-token", opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func TestVerifyRoundTrip(t *testing.T) {
	const ts = int64(1756200000)
	v := mustVerifier(t, Options{Now: fixedClock(ts)})
	body := []byte(`{"request_id":"req-1","delivery_status":{"status":"read","updated_at":1756199990}}`)

	sig := v.Sign(ts, body)
	if sig != strings.ToLower(sig) {
		t.Fatalf("signature not lowercase hex: %q", sig)
	}
	if err := v.Verify(ts, sig, body); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	const ts = int64(1756200000)
	v := mustVerifier(t, Options{Now: fixedClock(ts)})
	body := []byte(`{"request_id":"req-1"}`)
	sig := v.Sign(ts, body)

	tampered := []byte(`{"request_id":"req-2"}`)
	if err := v.Verify(ts, sig, tampered); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("err = %v, want integrity failure", err)
	}
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	const ts = int64(1756200000)
	signer := mustVerifier(t, Options{Now: fixedClock(ts)})
	body := []byte(`{"request_id":"req-1"}`)
	sig := signer.Sign(ts, body)

	other, err := New("different-token", Options{Now: fixedClock(ts)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := other.Verify(ts, sig, body); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("err = %v, want integrity failure", err)
	}
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	const ts = int64(1756200000)
	v := mustVerifier(t, Options{Now: fixedClock(ts + 301)})
	body := []byte(`{"request_id":"req-1"}`)

	// signature is genuine but the timestamp is outside the window
	if err := v.Verify(ts, v.Sign(ts, body), body); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("err = %v, want integrity failure", err)
	}
}

func TestVerifyAcceptsWithinWindow(t *testing.T) {
	const ts = int64(1756200000)
	v := mustVerifier(t, Options{Now: fixedClock(ts + 299)})
	body := []byte(`{"request_id":"req-1"}`)
	if err := v.Verify(ts, v.Sign(ts, body), body); err != nil {
		t.Fatalf("Verify inside window: %v", err)
	}
}

func TestVerifyFutureTolerance(t *testing.T) {
	const now = int64(1756200000)
	v := mustVerifier(t, Options{Now: fixedClock(now)})
	body := []byte(`{"request_id":"req-1"}`)

	if err := v.Verify(now+9, v.Sign(now+9, body), body); err != nil {
		t.Fatalf("small clock drift should pass: %v", err)
	}
	if err := v.Verify(now+11, v.Sign(now+11, body), body); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("err = %v, want integrity failure beyond tolerance", err)
	}
}

func TestVerifyCustomWindow(t *testing.T) {
	const ts = int64(1756200000)
	v := mustVerifier(t, Options{MaxSkew: 30 * time.Second, Now: fixedClock(ts + 31)})
	body := []byte(`{"request_id":"req-1"}`)
	if err := v.Verify(ts, v.Sign(ts, body), body); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("err = %v, want integrity failure with tightened window", err)
	}
}

func TestVerifyMalformedSignature(t *testing.T) {
	const ts = int64(1756200000)
	v := mustVerifier(t, Options{Now: fixedClock(ts)})
	body := []byte(`{}`)

	for _, sig := range []string{"", "zz", "deadbeef", strings.Repeat("0", 63)} {
		if err := v.Verify(ts, sig, body); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
			t.Fatalf("sig %q: err = %v, want integrity failure", sig, err)
		}
	}
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New("", Options{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}
