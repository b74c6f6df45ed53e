package tbl

import (
	"github.com/syntax-framework/spage/swp"
)

// ActivationBehavior what happens when a row or cell is clicked: navigate
// to a url, issue a post-back, or run a custom script. Scripts are lexed up
// front; a broken script is a modeling error.
type ActivationBehavior struct {
	Url      string
	PostBack *swp.PostBack
	Script   string
}

// NewUrlActivation clickable row/cell navigating to url
func NewUrlActivation(url string) *ActivationBehavior {
	return &ActivationBehavior{Url: url}
}

// NewPostBackActivation clickable row/cell issuing a post-back
func NewPostBackActivation(postBack *swp.PostBack) *ActivationBehavior {
	return &ActivationBehavior{PostBack: postBack}
}

// NewScriptActivation clickable row/cell running a custom script
func NewScriptActivation(script string) *ActivationBehavior {
	if err := swp.CheckScript(script); err != nil {
		panic(err)
	}
	return &ActivationBehavior{Script: script}
}

// apply decorates the element attributes. The client runtime picks the
// data attributes up; tabindex and the class make the element reachable
// and styleable.
func (a *ActivationBehavior) apply(attrs *swp.Attributes) {
	attrs.AddClass("table-activatable")
	attrs.Set("tabindex", "0")
	switch {
	case a.Url != "":
		attrs.Set("data-activation-url", a.Url)
	case a.PostBack != nil:
		attrs.Set("data-activation-post-back", a.PostBack.Id)
	case a.Script != "":
		attrs.Set("onclick", a.Script)
	}
}
