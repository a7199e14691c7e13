package submission

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/pkg/enums"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

// Request carries the contact step form. Website is the honeypot field and
// must stay empty.
type Request struct {
	Name           string `json:"name" validate:"required,max=120"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Phone          string `json:"phone" validate:"max=32"`
	PreferredDate  string `json:"preferred_date" validate:"max=64"`
	PreferredTime  string `json:"preferred_time" validate:"max=64"`
	Message        string `json:"message" validate:"max=2000"`
	RecaptchaToken string `json:"recaptcha_token"`
	Website        string `json:"website"`
}

// Honeypot reports whether the hidden field was filled in.
func (r Request) Honeypot() bool {
	return strings.TrimSpace(r.Website) != ""
}

func (r Request) trimmed() Request {
	return Request{
		Name:           strings.TrimSpace(r.Name),
		Email:          strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:          strings.TrimSpace(r.Phone),
		PreferredDate:  strings.TrimSpace(r.PreferredDate),
		PreferredTime:  strings.TrimSpace(r.PreferredTime),
		Message:        strings.TrimSpace(r.Message),
		RecaptchaToken: strings.TrimSpace(r.RecaptchaToken),
	}
}

// Validator re-checks a finalized selection and the contact form.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return &Validator{validate: v}
}

// Validate returns the normalized request. The honeypot value is never carried
// over. Selection gates come back as GATE_VIOLATION, field problems as
// VALIDATION_ERROR with per-field details.
func (v *Validator) Validate(line catalog.ServiceLine, sel *selection.Selection, req Request) (Request, error) {
	if sel == nil {
		return Request{}, pkgerrors.New(pkgerrors.CodeGateViolation, "no booking in progress")
	}
	if sel.Step != enums.BookingStepContact {
		return Request{}, pkgerrors.New(pkgerrors.CodeGateViolation, "complete the booking steps before submitting").
			WithDetails(map[string]any{"step": sel.Step.String()})
	}
	if !sel.CanCompleteBooking() {
		return Request{}, pkgerrors.New(pkgerrors.CodeGateViolation, "select a package or add-on before submitting").
			WithDetails(map[string]any{"step": sel.Step.String(), "fields": map[string]string{"selection": "required"}})
	}

	out := req.trimmed()
	fields := map[string]string{}
	if err := v.validate.Struct(out); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
		}
		for _, fe := range errs {
			fields[fe.Field()] = validationMessage(fe)
		}
	}
	if out.Phone != "" {
		if phone, err := NormalizePhone(out.Phone); err != nil {
			fields["phone"] = "must be a valid 10 digit phone number"
		} else {
			out.Phone = phone
		}
	}
	if line.RequiresAddress && strings.TrimSpace(sel.Property.Applied.Address) == "" {
		fields["address"] = "is required"
	}
	if len(fields) > 0 {
		return Request{}, pkgerrors.FieldErrors("validation failed", fields)
	}
	return out, nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}
