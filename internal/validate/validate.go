// Package validate holds the form rules checked before any backend call.
package validate

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/models/dto"
)

// MinPasswordLength applies to login, signup and password changes.
const MinPasswordLength = 6

// CardNumberLength is the exact length accepted at checkout.
const CardNumberLength = 16

// ErrNothingToUpdate is returned for a profile form with no changes.
var ErrNothingToUpdate = errors.New("nothing to update")

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

func (f FieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Login checks the login form.
func Login(req dto.LoginRequest) error {
	errs := FieldErrors{}
	email(errs, req.Email)
	password(errs, "password", req.Password)
	return errs.err()
}

// Signup checks the registration form. The referrer is optional.
func Signup(req dto.SignupRequest) error {
	errs := FieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Full name is required"
	}
	email(errs, req.Email)
	password(errs, "password", req.Password)
	return errs.err()
}

// Profile checks an edit against the stored profile and returns the payload
// to send. A password change needs the current password, a strong new one and
// a matching confirmation.
func Profile(req dto.UpdateProfileRequest, current models.User) (dto.UpdateUserPayload, error) {
	profileChanged := req.Name != current.Name || req.Email != current.Email
	passwordChanged := strings.TrimSpace(req.CurrentPassword) != "" ||
		strings.TrimSpace(req.Password) != "" ||
		strings.TrimSpace(req.ConfirmPassword) != ""

	if !profileChanged && !passwordChanged {
		return dto.UpdateUserPayload{}, ErrNothingToUpdate
	}

	errs := FieldErrors{}
	if profileChanged {
		if strings.TrimSpace(req.Name) == "" {
			errs["name"] = "Full name is required"
		}
		email(errs, req.Email)
	}
	if passwordChanged {
		if strings.TrimSpace(req.CurrentPassword) == "" {
			errs["currentPassword"] = "Current password is required"
		}
		password(errs, "password", req.Password)
		if req.Password != req.ConfirmPassword {
			errs["confirmPassword"] = "Passwords do not match"
		}
	}
	if err := errs.err(); err != nil {
		return dto.UpdateUserPayload{}, err
	}

	payload := dto.UpdateUserPayload{Name: req.Name, Email: req.Email}
	if passwordChanged {
		payload.CurrentPassword = req.CurrentPassword
		payload.Password = req.Password
	}
	return payload, nil
}

// Checkout checks the billing block, the cart and the card number.
func Checkout(req dto.CheckoutRequest) error {
	errs := FieldErrors{}
	required := []struct{ field, value, label string }{
		{"billing.name", req.Billing.Name, "Name"},
		{"billing.address", req.Billing.Address, "Address"},
		{"billing.city", req.Billing.City, "Town / City"},
		{"billing.postcode", req.Billing.Postcode, "Postcode / Zip"},
		{"billing.phone", req.Billing.Phone, "Phone"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.label + " is required"
		}
	}
	if strings.TrimSpace(req.Billing.Email) == "" {
		errs["billing.email"] = "Email is required"
	} else if !emailPattern.MatchString(req.Billing.Email) {
		errs["billing.email"] = "Email is invalid"
	}

	if len(req.Items) == 0 {
		errs["items"] = "Cart is empty"
	}
	for _, line := range req.Items {
		if strings.TrimSpace(line.ProductID) == "" || line.Quantity <= 0 {
			errs["items"] = "Every item needs a product and a positive quantity"
			break
		}
	}

	if !CardNumber(req.CardNumber) {
		errs["cardNumber"] = "Card number must be 16 digits"
	}
	return errs.err()
}

// CardNumber reports whether n has exactly CardNumberLength digits.
func CardNumber(n string) bool {
	if len(n) != CardNumberLength {
		return false
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func email(errs FieldErrors, value string) {
	switch {
	case value == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(value):
		errs["email"] = "Email is invalid"
	}
}

func password(errs FieldErrors, field, value string) {
	switch {
	case value == "":
		errs[field] = "Password is required"
	case len(value) < MinPasswordLength:
		errs[field] = "Password must be at least 6 characters"
	}
}
