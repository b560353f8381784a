package registration

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
	"github.com/slammedialab/vercel-siteid/pkg/email"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

var fieldLabels = map[string]string{
	"email":     "Email",
	"firstName": "First name",
	"lastName":  "Last name",
	"phone":     "Phone",
	"siteId":    "Site ID",
	"titleRole": "Title/role",
	"password":  "Password",
}

// normalize trims every field, folds the email and canonicalizes the phone,
// then applies the struct rules. Nothing remote has happened yet.
func normalize(req Request) (Request, error) {
	out := Request{
		Email:      email.Normalize(req.Email),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Phone:      strings.TrimSpace(req.Phone),
		SiteID:     strings.TrimSpace(req.SiteID),
		TitleRole:  strings.TrimSpace(req.TitleRole),
		Password:   req.Password,
		UpdateOnly: req.UpdateOnly,
	}

	if err := validate.Struct(out); err != nil {
		return out, translate(err)
	}

	phone, err := NormalizePhone(out.Phone)
	if err != nil {
		return out, err
	}
	out.Phone = phone
	return out, nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeValidation, "Request is invalid")
	}
	fe := verrs[0]
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = label + " is required"
	case "email":
		msg = label + " is invalid"
	case "max":
		msg = label + " is too long"
	default:
		msg = label + " is invalid"
	}
	return dErrors.NewField(dErrors.CodeValidation, fe.Field(), msg)
}
