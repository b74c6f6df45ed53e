package swp

import (
	"testing"

	"github.com/tdewolff/test"
)

func Test_CheckMarkup(t *testing.T) {
	valid := []string{
		`<b>bold</b>`,
		`<div><span>a</span><span>b</span></div>`,
		`plain text only`,
		`<br><hr><input type="text">`,
		`<ul><li>one</li><li>two</li></ul>`,
	}
	for _, markup := range valid {
		test.T(t, CheckMarkup(markup), nil, markup)
	}

	invalid := []string{
		`<div><span>a</div></span>`,
		`<div>unclosed`,
		`closed twice</div>`,
	}
	for _, markup := range invalid {
		if CheckMarkup(markup) == nil {
			t.Errorf("malformed markup accepted: %q", markup)
		}
	}
}

func Test_CheckScript(t *testing.T) {
	test.T(t, CheckScript(`window.location = '/details/' + this.dataset.id;`), nil)
	test.T(t, CheckScript(`doSomething(1, "two", { three: true })`), nil)

	if CheckScript("let 2x = ;@") == nil {
		t.Errorf("invalid script accepted")
	}
}

func Test_Markup_Component_Panics_On_Malformed(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for malformed markup block")
		}
	}()

	b := NewTreeBuilder(nil)
	b.Build(Markup(`<div><b>broken</div>`))
}
