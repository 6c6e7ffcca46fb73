package validate

import (
	"strings"
	"testing"
)

func validSignup() SignupInput {
	return SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Gender:    "female",
		Password:  `Secret1!pass`,
		Confirm:   `Secret1!pass`,
	}
}

func TestPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"valid", `Secret1!pass`, ""},
		{"all symbol classes", `aB3(),.?":{}|<>`, ""},
		{"missing lowercase", `SECRET1!PASS`, msgPasswordLowercase},
		{"missing uppercase", `secret1!pass`, msgPasswordUppercase},
		{"missing digit", `Secretx!pass`, msgPasswordDigit},
		{"missing symbol", `Secret1xpass`, msgPasswordSymbol},
		{"unlisted symbol does not count", `Secret1pass-`, msgPasswordSymbol},
		{"empty reports lowercase first", ``, msgPasswordLowercase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PasswordPolicy(tt.password); got != tt.want {
				t.Errorf("PasswordPolicy(%q) = %q, want %q", tt.password, got, tt.want)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"valid", `Secret1!pass`, ""},
		{"seven characters", `Ab1!xyz`, "Must be at least 8 characters."},
		{"exactly eight", `Ab1!xyzw`, ""},
		{"too long", `Ab1!` + strings.Repeat("x", 125), "Must be at most 128 characters."},
		{"length checked before policy", `ab1`, "Must be at least 8 characters."},
		{"policy applies past length", `secret1!pass`, msgPasswordUppercase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Password(tt.password); got != tt.want {
				t.Errorf("Password(%q) = %q, want %q", tt.password, got, tt.want)
			}
		})
	}
}

func TestValidator_Signup(t *testing.T) {
	v := New()

	if errs := v.Signup(validSignup()); errs != nil {
		t.Fatalf("valid input rejected: %v", errs)
	}
}

func TestValidator_SignupFieldErrors(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		mutate func(*SignupInput)
		field  string
	}{
		{"missing first name", func(in *SignupInput) { in.FirstName = "" }, "first_name"},
		{"missing last name", func(in *SignupInput) { in.LastName = "" }, "last_name"},
		{"short username", func(in *SignupInput) { in.Username = "ab" }, "username"},
		{"bad email", func(in *SignupInput) { in.Email = "not-an-email" }, "email"},
		{"bad gender", func(in *SignupInput) { in.Gender = "unknown" }, "gender"},
		{"weak password", func(in *SignupInput) { in.Password = "longenoughpass"; in.Confirm = "longenoughpass" }, "password"},
		{"short password", func(in *SignupInput) { in.Password = "Ab1!"; in.Confirm = "Ab1!" }, "password"},
		{"confirm mismatch", func(in *SignupInput) { in.Confirm = `Different1!` }, "confirm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validSignup()
			tt.mutate(&input)

			errs := v.Signup(input)
			if errs == nil {
				t.Fatal("expected validation errors")
			}
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("expected error for field %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidator_SignupAggregatesAcrossFields(t *testing.T) {
	v := New()

	input := validSignup()
	input.FirstName = ""
	input.Email = "nope"
	input.Password = "weakpassword"
	input.Confirm = "weakpassword"

	errs := v.Signup(input)
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	for _, field := range []string{"first_name", "email", "password"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error for %q, got %v", field, errs)
		}
	}
}

func TestValidator_UpdateProfile(t *testing.T) {
	v := New()

	if errs := v.UpdateProfile(UpdateProfileInput{}); errs != nil {
		t.Errorf("empty update rejected: %v", errs)
	}

	name := "Grace"
	if errs := v.UpdateProfile(UpdateProfileInput{FirstName: &name}); errs != nil {
		t.Errorf("valid update rejected: %v", errs)
	}

	bad := "x"
	errs := v.UpdateProfile(UpdateProfileInput{Username: &bad})
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	if _, ok := errs["username"]; !ok {
		t.Errorf("expected error for username, got %v", errs)
	}
}
