// Package validate provides struct validation for outbound method parameters
// and inbound report payloads, mapping failures to project errors
package validate

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "verigate/internal/platform/errors"
	"verigate/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// UT aliases ut.Translator
type UT = ut.Translator

// Svc holds a singleton validator and translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *Svc

	// E.164: leading +, up to 15 digits, no leading zero
	e164Re = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)
)

// Init initializes the singleton validator with english translations and json tag names
func Init() *Svc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		// short messages for min and max
		registerShortMin(v, trans)
		registerShortMax(v, trans)

		// phone numbers in E.164 form
		registerE164(v, trans)

		vSvc = &Svc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Get returns the validator singleton, initializing on first use
func Get() *Svc {
	if vSvc == nil {
		return Init()
	}
	return vSvc
}

// Struct validates v and maps the first failure to a Validation error with
// the offending field attached
func Struct(v any) error {
	if err := Get().Validator.Struct(v); err != nil {
		if inv, ok := err.(*validator.InvalidValidationError); ok {
			logger.Get().Error().Err(inv).Msg("validator internal error")
			return perr.Newf(perr.ErrorCodeValidation, "validation error")
		}
		field, msg := FieldAndMessage(err)
		return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
	}
	return nil
}

// FieldAndMessage returns the first field and translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return "", inv.Error()
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

// custom translations with short messages

func registerShortMin(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("min", trans,
		func(ut ut.Translator) error {
			return ut.Add("min", "{0} must be at least {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("min", fe.Field(), fe.Param())
			return msg
		},
	)
}

func registerShortMax(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("max", trans,
		func(ut ut.Translator) error {
			return ut.Add("max", "{0} must be at most {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("max", fe.Field(), fe.Param())
			return msg
		},
	)
}

func registerE164(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("phone_e164", func(fl validator.FieldLevel) bool {
		return e164Re.MatchString(fl.Field().String())
	})
	_ = v.RegisterTranslation("phone_e164", trans,
		func(ut ut.Translator) error {
			return ut.Add("phone_e164", "{0} must be a phone number in E.164 format", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("phone_e164", fe.Field())
			return msg
		},
	)
}
