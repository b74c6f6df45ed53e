package swp

import (
	"testing"
)

func Test_FormValue_Duplicate_Key_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for duplicate active form value key")
		}
	}()

	registry := NewFormValueRegistry()
	registry.Add(&FormValue{Key: "email"})
	registry.Add(&FormValue{Key: "email"})
}

func Test_FormValue_Inactive_Never_Collides(t *testing.T) {
	registry := NewFormValueRegistry()
	registry.Add(&FormValue{})
	registry.Add(&FormValue{})
	registry.Add(&FormValue{Key: "email"})

	if count := len(registry.All()); count != 3 {
		t.Errorf("invalid registration count. actual: %d expected: %d", count, 3)
	}
	if count := len(registry.Active()); count != 1 {
		t.Errorf("invalid active count. actual: %d expected: %d", count, 1)
	}
}

func Test_FormValue_Changed(t *testing.T) {
	durable := "stored@example.com"
	value := &FormValue{
		Key:     "email",
		Durable: func() string { return durable },
	}

	if value.Changed() {
		t.Errorf("a value never submitted cannot be changed")
	}

	value.Submit("stored@example.com", true)
	if value.Changed() {
		t.Errorf("a submission equal to the durable value is not a change")
	}

	value.Submit("new@example.com", true)
	if !value.Changed() {
		t.Errorf("a differing submission must report changed")
	}
}

func Test_FormValue_Parse_Reports_Validity(t *testing.T) {
	var parsed string
	value := &FormValue{
		Key: "age",
		Parse: func(raw string, found bool) bool {
			parsed = raw
			return raw != "x"
		},
	}

	value.Submit("42", true)
	if !value.Valid() || parsed != "42" {
		t.Errorf("valid representation rejected. parsed: %q", parsed)
	}

	value.Submit("x", true)
	if value.Valid() {
		t.Errorf("invalid representation accepted")
	}
}

func Test_Builder_SubmitFormValues(t *testing.T) {
	b := NewTreeBuilder(nil)

	var email string
	b.AddFormValue(&FormValue{
		Key: "email",
		Parse: func(raw string, found bool) bool {
			email = raw
			return true
		},
	})
	var missingFound = true
	b.AddFormValue(&FormValue{
		Key: "other",
		Parse: func(raw string, found bool) bool {
			missingFound = found
			return true
		},
	})

	b.SubmitFormValues(map[string]string{"email": "user@example.com"})

	if email != "user@example.com" {
		t.Errorf("invalid parsed value. actual: %q expected: %q", email, "user@example.com")
	}
	if missingFound {
		t.Errorf("absent keys must report found=false")
	}
}
