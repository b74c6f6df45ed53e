package swp

import (
	"strings"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/syntax-framework/spage/cmn"
)

var errorFocusExpression = cmn.Err(
	"autofocus.expression",
	"An autofocus condition expression failed to compile.", "Expression: %s", "Caused by: %s",
)

var errorFocusNoTarget = cmn.Err(
	"autofocus.notarget",
	"Active autofocus regions exist but none of them contain a focusable element. "+
		"The autofocus condition is wired to content that can never render.", "FocusKey: %s",
)

// FocusCondition decides whether an autofocus region is active for the
// request's focus key. Either a plain key list or an expression over the
// environment {focus string, errors bool}.
type FocusCondition struct {
	// Keys the region is active when the focus key is one of these.
	// An empty list with no Expression matches the empty focus key.
	Keys []string

	// Expression optional predicate, e.g. `focus == "email" and not errors`
	Expression string

	program *vm.Program
}

// Active evaluates the condition for one request
func (c *FocusCondition) Active(focusKey string, hasErrors bool) bool {
	if c.Expression != "" {
		if c.program == nil {
			program, err := expr.Compile(strings.TrimSpace(c.Expression))
			if err != nil {
				panic(errorFocusExpression(c.Expression, err.Error()))
			}
			c.program = program
		}
		result, err := expr.Run(c.program, map[string]interface{}{
			"focus":  focusKey,
			"errors": hasErrors,
		})
		if err != nil {
			panic(errorFocusExpression(c.Expression, err.Error()))
		}
		return result != nil && result != false && result != 0 && result != ""
	}

	if len(c.Keys) == 0 {
		return focusKey == ""
	}
	for _, key := range c.Keys {
		if key == focusKey {
			return true
		}
	}
	return false
}

// ResolveAutofocus walks the finalized tree and marks the first node inside
// an active autofocus region that is focusable under the current mode. In
// normal mode every focus-marked element qualifies; in error-focus mode only
// elements tied to validations that actually noted errors (or accepting
// general errors) qualify.
//
// It is a fatal error when active regions exist but none contain a
// focusable element and no modification errors occurred.
func ResolveAutofocus(tree *Node, focusKey string, v *Validator) {
	hasErrors := v != nil && v.HasErrors()

	activeRegions := 0
	var winner *Node

	var walk func(n *Node, inActiveRegion bool)
	walk = func(n *Node, inActiveRegion bool) {
		if winner != nil {
			return
		}
		active := inActiveRegion
		if n.Identity != nil && len(n.Identity.Autofocus) > 0 {
			for _, condition := range n.Identity.Autofocus {
				if condition.Active(focusKey, hasErrors) {
					active = true
					activeRegions++
					break
				}
			}
		}
		if active && n.Focus != nil && focusable(n, v, hasErrors) {
			winner = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, active)
		}
	}
	walk(tree, false)

	if winner != nil {
		if winner.Attributes == nil {
			winner.Attributes = NewAttributes()
		}
		winner.Attributes.Set("autofocus", "autofocus")
		return
	}

	if activeRegions > 0 && !hasErrors {
		panic(errorFocusNoTarget(focusKey))
	}
}

func focusable(n *Node, v *Validator, errorMode bool) bool {
	if !errorMode {
		return true
	}
	if n.Focus.GeneralErrors && len(v.GeneralErrors()) > 0 {
		return true
	}
	for _, validation := range n.Focus.Validations {
		if v.HasErrorsFor(validation) {
			return true
		}
	}
	return false
}
