package swp

import (
	"errors"
	"testing"
)

func Test_DataModification_Skips_When_Unchanged(t *testing.T) {
	values := NewFormValueRegistry()
	states := NewStateRegistry()

	dm := &DataModification{Id: "save"}
	value := &FormValue{
		Key:           "email",
		Durable:       func() string { return "a@example.com" },
		Modifications: []*DataModification{dm},
	}
	values.Add(value)
	value.Submit("a@example.com", true)

	ran := false
	dm.AddMethod(func() error {
		ran = true
		return nil
	})

	v := NewValidator()
	if err := dm.Execute(v, NonTransactional{}, false, values, states); err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Errorf("unchanged modification must not run its methods")
	}

	value.Submit("b@example.com", true)
	if err := dm.Execute(v, NonTransactional{}, false, values, states); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Errorf("changed modification must run its methods")
	}
}

func Test_DataModification_Force_Ignores_Change_Detection(t *testing.T) {
	values := NewFormValueRegistry()
	states := NewStateRegistry()

	dm := &DataModification{Id: "refresh"}
	ran := false
	dm.AddMethod(func() error {
		ran = true
		return nil
	})

	v := NewValidator()
	if err := dm.Execute(v, NonTransactional{}, true, values, states); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Errorf("forced modification must run without any change")
	}
}

func Test_DataModification_Errors_Stop_Methods(t *testing.T) {
	values := NewFormValueRegistry()
	states := NewStateRegistry()

	dm := &DataModification{Id: "save"}
	dm.AddValidation("email", func(v *Validator) {
		v.NoteError(dm.Validations[0], "invalid email")
	})
	ran := false
	dm.AddMethod(func() error {
		ran = true
		return nil
	})

	v := NewValidator()
	if err := dm.Execute(v, NonTransactional{}, true, values, states); err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Errorf("methods must not run after a noted validation error")
	}
	if !v.HasErrors() {
		t.Errorf("validator must report the noted error")
	}
	if keys := v.ErrorKeys(); len(keys) != 1 || keys[0] != "email" {
		t.Errorf("invalid error keys. actual: %v expected: %v", keys, []string{"email"})
	}
}

func Test_DataModification_DoNotCommit(t *testing.T) {
	values := NewFormValueRegistry()
	states := NewStateRegistry()

	dm := &DataModification{Id: "touch"}
	second := false
	dm.AddMethod(func() error { return ErrDoNotCommit })
	dm.AddMethod(func() error {
		second = true
		return nil
	})

	v := NewValidator()
	if err := dm.Execute(v, NonTransactional{}, true, values, states); err != nil {
		t.Fatal(err)
	}
	if !second {
		t.Errorf("ErrDoNotCommit skips only the returning method")
	}
}

func Test_DataModification_State_Change_Detection(t *testing.T) {
	values := NewFormValueRegistry()
	states := NewStateRegistry()

	dm := &DataModification{Id: "limit"}
	item := &StateItem{Key: "s1", Default: float64(50), Modifications: []*DataModification{dm}}
	states.Add(item, nil)

	if dm.Changed(values, states) {
		t.Errorf("an item at its default is not a change")
	}

	item.Set(float64(500))
	if !dm.Changed(values, states) {
		t.Errorf("an item away from its default is a change")
	}
}

func Test_AsDataModificationError(t *testing.T) {
	dmErr := NewDataModificationError("please fix the form")
	if AsDataModificationError(dmErr) == nil {
		t.Errorf("a direct DataModificationError must unwrap")
	}
	if AsDataModificationError(errors.New("disk failure")) != nil {
		t.Errorf("an unrelated error must not unwrap")
	}
}

func Test_PostBackRegistry_Cycle_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for circular validation references")
		}
	}()

	registry := NewPostBackRegistry()
	a := NewFullPostBack("a")
	b := NewFullPostBack("b")
	a.ValidationDm = b.Modification
	b.ValidationDm = a.Modification
	registry.Add(a)
	registry.Add(b)
	registry.Finalize()
}

func Test_PostBackRegistry_Unregistered_ValidationDm_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for an unregistered validation dm")
		}
	}()

	registry := NewPostBackRegistry()
	orphan := NewFullPostBack("orphan")
	a := NewFullPostBack("a")
	a.ValidationDm = orphan.Modification
	registry.Add(a)
	registry.Finalize()
}

func Test_PostBackRegistry_Same_Instance_Reregistered(t *testing.T) {
	registry := NewPostBackRegistry()
	pb := NewFullPostBack("save")
	registry.Add(pb)
	registry.Add(pb)

	if count := len(registry.All()); count != 1 {
		t.Errorf("re-registering the same instance is a no-op. actual: %d expected: %d", count, 1)
	}
}

func Test_PostBackRegistry_Different_Instance_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for colliding post-back ids")
		}
	}()

	registry := NewPostBackRegistry()
	registry.Add(NewFullPostBack("save"))
	registry.Add(NewFullPostBack("save"))
}
