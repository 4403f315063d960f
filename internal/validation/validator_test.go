package validation

import "testing"

func TestPasswordStrong(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Aa1!aaaa", true},
		{"Str0ng#Password", true},
		{"Aa1!a", false},          // too short
		{"aa1!aaaa", false},       // no upper
		{"AA1!AAAA", false},       // no lower
		{"Aa!aaaaa", false},       // no digit
		{"Aa1aaaaa", false},       // no special
		{"", false},
	}
	for _, c := range cases {
		if got := PasswordStrong(c.password); got != c.want {
			t.Fatalf("PasswordStrong(%q) = %v, want %v", c.password, got, c.want)
		}
	}
}

func TestDigits6Tag(t *testing.T) {
	v := New()
	type payload struct {
		Code string `validate:"required,digits6"`
	}

	if err := v.Struct(payload{Code: "123456"}); err != nil {
		t.Fatalf("expected 123456 to validate: %v", err)
	}
	for _, bad := range []string{"12345", "1234567", "12a456", ""} {
		if err := v.Struct(payload{Code: bad}); err == nil {
			t.Fatalf("expected %q to fail validation", bad)
		}
	}
}

func TestPasswordTag(t *testing.T) {
	v := New()
	type payload struct {
		Password string `validate:"required,password"`
	}

	if err := v.Struct(payload{Password: "Sterk3!wachtwoord"}); err != nil {
		t.Fatalf("expected strong password to validate: %v", err)
	}
	if err := v.Struct(payload{Password: "weakpass"}); err == nil {
		t.Fatalf("expected weak password to fail validation")
	}
}
