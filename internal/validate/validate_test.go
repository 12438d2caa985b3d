package validate

import (
	"errors"
	"testing"

	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/models/dto"
)

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	return fe
}

func TestLogin(t *testing.T) {
	if err := Login(dto.LoginRequest{Email: "joy@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("valid login: %v", err)
	}

	cases := []struct {
		name  string
		req   dto.LoginRequest
		field string
		msg   string
	}{
		{"missing email", dto.LoginRequest{Password: "secret1"}, "email", "Email is required"},
		{"bad email", dto.LoginRequest{Email: "joy@example", Password: "secret1"}, "email", "Email is invalid"},
		{"missing password", dto.LoginRequest{Email: "joy@example.com"}, "password", "Password is required"},
		{"short password", dto.LoginRequest{Email: "joy@example.com", Password: "12345"}, "password", "Password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fe := fieldErrors(t, Login(tc.req))
			if fe[tc.field] != tc.msg {
				t.Fatalf("%s = %q, want %q", tc.field, fe[tc.field], tc.msg)
			}
		})
	}
}

func TestSignup(t *testing.T) {
	if err := Signup(dto.SignupRequest{Name: "Joy", Email: "joy@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("valid signup: %v", err)
	}
	fe := fieldErrors(t, Signup(dto.SignupRequest{Name: "  ", Email: "nope", Password: "abc"}))
	if len(fe) != 3 {
		t.Fatalf("errors = %v", fe)
	}
	if fe["name"] != "Full name is required" {
		t.Errorf("name = %q", fe["name"])
	}
}

func TestProfile(t *testing.T) {
	current := models.User{ID: "u1", Name: "Joy", Email: "joy@example.com"}

	t.Run("no changes", func(t *testing.T) {
		_, err := Profile(dto.UpdateProfileRequest{Name: "Joy", Email: "joy@example.com"}, current)
		if !errors.Is(err, ErrNothingToUpdate) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("name only", func(t *testing.T) {
		payload, err := Profile(dto.UpdateProfileRequest{Name: "Joy S", Email: "joy@example.com"}, current)
		if err != nil {
			t.Fatalf("Profile: %v", err)
		}
		if payload.Name != "Joy S" || payload.Password != "" || payload.CurrentPassword != "" {
			t.Fatalf("payload = %+v", payload)
		}
	})

	t.Run("password change", func(t *testing.T) {
		payload, err := Profile(dto.UpdateProfileRequest{
			Name: "Joy", Email: "joy@example.com",
			CurrentPassword: "oldpass", Password: "newpass1", ConfirmPassword: "newpass1",
		}, current)
		if err != nil {
			t.Fatalf("Profile: %v", err)
		}
		if payload.CurrentPassword != "oldpass" || payload.Password != "newpass1" {
			t.Fatalf("payload = %+v", payload)
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		_, err := Profile(dto.UpdateProfileRequest{
			Name: "Joy", Email: "joy@example.com",
			CurrentPassword: "oldpass", Password: "newpass1", ConfirmPassword: "newpass2",
		}, current)
		if fe := fieldErrors(t, err); fe["confirmPassword"] == "" {
			t.Fatalf("errors = %v", fe)
		}
	})

	t.Run("missing current password", func(t *testing.T) {
		_, err := Profile(dto.UpdateProfileRequest{
			Name: "Joy", Email: "joy@example.com",
			Password: "newpass1", ConfirmPassword: "newpass1",
		}, current)
		if fe := fieldErrors(t, err); fe["currentPassword"] == "" {
			t.Fatalf("errors = %v", fe)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := Profile(dto.UpdateProfileRequest{
			Name: "Joy", Email: "joy@example.com",
			CurrentPassword: "oldpass", Password: "abc", ConfirmPassword: "abc",
		}, current)
		if fe := fieldErrors(t, err); fe["password"] == "" {
			t.Fatalf("errors = %v", fe)
		}
	})
}

func TestCheckout(t *testing.T) {
	valid := dto.CheckoutRequest{
		Billing: models.Billing{
			Name: "Joy", Address: "1 Main St", City: "Dhaka", Postcode: "1200",
			Email: "joy@example.com", Phone: "01766556565",
		},
		Items:      []dto.CartLine{{ProductID: "1", Quantity: 2}},
		CardNumber: "4242424242424242",
	}
	if err := Checkout(valid); err != nil {
		t.Fatalf("valid checkout: %v", err)
	}

	short := valid
	short.CardNumber = "424242424242424"
	if fe := fieldErrors(t, Checkout(short)); fe["cardNumber"] == "" {
		t.Fatalf("errors = %v", fe)
	}

	empty := valid
	empty.Items = nil
	if fe := fieldErrors(t, Checkout(empty)); fe["items"] != "Cart is empty" {
		t.Fatalf("errors = %v", fe)
	}

	zero := valid
	zero.Items = []dto.CartLine{{ProductID: "1"}}
	if fe := fieldErrors(t, Checkout(zero)); fe["items"] == "" {
		t.Fatalf("errors = %v", fe)
	}

	if fe := fieldErrors(t, Checkout(dto.CheckoutRequest{})); len(fe) != 8 {
		t.Fatalf("blank form errors = %v", fe)
	}
}

func TestCardNumber(t *testing.T) {
	cases := map[string]bool{
		"4242424242424242":  true,
		"4242 4242 4242 42": false,
		"42424242424242424": false,
		"424242424242424a":  false,
		"":                  false,
	}
	for in, want := range cases {
		if got := CardNumber(in); got != want {
			t.Errorf("CardNumber(%q) = %v", in, got)
		}
	}
}

func TestFieldErrorsMessageIsStable(t *testing.T) {
	fe := FieldErrors{"password": "b", "email": "a"}
	if fe.Error() != "email: a; password: b" {
		t.Fatalf("Error() = %q", fe.Error())
	}
}
