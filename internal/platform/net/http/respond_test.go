package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "verigate/internal/platform/errors"
	pnet "verigate/internal/platform/net"
)

func TestRespondOK(t *testing.T) {
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	req = req.WithContext(pnet.WithRequestID(req.Context(), "req-9"))
	rec := httptest.NewRecorder()

	RespondOK(rec, req, map[string]string{"hello": "world"})

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content-type = %q", ct)
	}
	var wire pnet.Wire
	if err := json.Unmarshal(rec.Body.Bytes(), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire.StatusCode != stdhttp.StatusOK || wire.RequestID != "req-9" {
		t.Fatalf("wire = %+v", wire)
	}
}

func TestRespondError(t *testing.T) {
	req := httptest.NewRequest(stdhttp.MethodPost, "/report", nil)
	rec := httptest.NewRecorder()

	RespondError(rec, req, perr.Integrityf("signature mismatch"))

	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var wire pnet.Wire
	if err := json.Unmarshal(rec.Body.Bytes(), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire.Code != perr.ErrorCodeIntegrity || wire.Error == "" {
		t.Fatalf("wire = %+v", wire)
	}
}
