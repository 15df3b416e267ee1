package validate

import (
	"strings"
	"testing"

	perr "verigate/internal/platform/errors"
)

type sample struct {
	Phone string `json:"phone_number" validate:"required,phone_e164"`
	Code  string `json:"code" validate:"omitempty,number,min=4,max=8"`
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(sample{Phone: "+12025550123", Code: "123456"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// optional code may be absent
	if err := Struct(sample{Phone: "+447911123456"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_PhoneE164(t *testing.T) {
	bad := []string{"", "12025550123", "+0123456789", "+1", "+1202555O123", "+1 202 555 0123"}
	for _, p := range bad {
		err := Struct(sample{Phone: p})
		if err == nil {
			t.Fatalf("phone %q: expected error", p)
		}
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("phone %q: code = %v, want Validation", p, perr.CodeOf(err))
		}
	}
}

func TestStruct_FieldUsesJSONTag(t *testing.T) {
	err := Struct(sample{Phone: "nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	e, ok := perr.As(err)
	if !ok {
		t.Fatalf("not a project error: %v", err)
	}
	if e.Field() != "phone_number" {
		t.Fatalf("field = %q, want phone_number", e.Field())
	}
	if !strings.Contains(e.Error(), "E.164") {
		t.Fatalf("message = %q, want E.164 hint", e.Error())
	}
}

func TestStruct_ShortMinMaxMessages(t *testing.T) {
	err := Struct(sample{Phone: "+12025550123", Code: "123"})
	if err == nil {
		t.Fatal("expected error for short code")
	}
	if !strings.Contains(err.Error(), "at least") {
		t.Fatalf("message = %q, want short min message", err.Error())
	}

	err = Struct(sample{Phone: "+12025550123", Code: "123456789"})
	if err == nil {
		t.Fatal("expected error for long code")
	}
	if !strings.Contains(err.Error(), "at most") {
		t.Fatalf("message = %q, want short max message", err.Error())
	}
}
