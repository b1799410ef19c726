package service

import "testing"

func TestValidPhone(t *testing.T) {
	cases := map[string]bool{
		"+1 555 123 4567":  true,
		"(020) 7946-0958":  true,
		"555.010.2030":     true,
		"1234567":          true,
		"123456":           false,
		"call me":          false,
		"+1 555 CALL NOW":  false,
		"1234567890123456": false,
	}
	for phone, want := range cases {
		if got := validPhone(phone); got != want {
			t.Errorf("validPhone(%q) = %v, want %v", phone, got, want)
		}
	}
}

func TestFieldPathDropsStructName(t *testing.T) {
	if got := fieldPath("OrderInput.items[2].menuItemId"); got != "items[2].menuItemId" {
		t.Fatalf("fieldPath = %q", got)
	}
	if got := fieldPath("name"); got != "name" {
		t.Fatalf("fieldPath = %q", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Path: "name", Message: "Name is required"},
		{Path: "email", Message: "Please enter a valid email address"},
	}}
	want := "validation failed: name: Name is required; email: Please enter a valid email address"
	if err.Error() != want {
		t.Fatalf("Error() = %q", err.Error())
	}
}
