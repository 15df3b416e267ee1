package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "verigate/internal/platform/errors"
	pnet "verigate/internal/platform/net"
)

func TestRequestID_AssignsAndMirrors(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = pnet.RequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/report", nil))

	if seen == "" {
		t.Fatal("no request id on context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("header id %q != ctx id %q", got, seen)
	}
}

func TestRequestID_KeepsInbound(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := pnet.RequestID(r.Context()); got != "inbound-7" {
			t.Fatalf("ctx id = %q", got)
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "inbound-7")
	h.ServeHTTP(httptest.NewRecorder(), req)
}

func TestAccessLog_PassesThrough(t *testing.T) {
	h := AccessLog(AccessLogOptions{Slow: time.Second})(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("ok"))
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusAccepted || rec.Body.String() != "ok" {
		t.Fatalf("passthrough broken: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRecoverJSON(t *testing.T) {
	h := RecoverJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var wire pnet.Wire
	if err := json.Unmarshal(rec.Body.Bytes(), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire.Code != perr.ErrorCodePanic {
		t.Fatalf("wire code = %v", wire.Code)
	}
}
