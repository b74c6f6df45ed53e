package swp

// Resource the URL-resolution and authorization collaborator. Concrete
// resources (routed pages, downloads) live outside this package.
type Resource interface {
	// GetUrl the canonical url of the resource
	GetUrl() string

	// UserCanAccessResource authorization check for the current user
	UserCanAccessResource() bool

	// AlternativeMode non-nil when the resource is in an alternative mode,
	// e.g. disabled with a user-facing message
	AlternativeMode() *AlternativeResourceMode
}

// AlternativeResourceMode a resource rendered in a degraded mode
type AlternativeResourceMode struct {
	Disabled bool
	Message  string
}

// Page one server-rendered stateful page. The component tree is rebuilt
// from Build on every request; nothing of the tree survives across requests.
type Page interface {
	Resource

	// Build the root component of the page
	Build(b *TreeBuilder) Component

	// Recreate the page re-created from the newest parameter values; the
	// default post-modification destination
	Recreate() Page

	// RecreateWithDefaults the current resource re-cloned with its
	// parameter defaults restored; the destination when modification
	// errors exist
	RecreateWithDefaults() Page
}

// PageBase a partial Resource implementation for the common case: public
// page, never disabled. Embed it and override what differs.
type PageBase struct {
	Url string
}

func (p *PageBase) GetUrl() string {
	return p.Url
}

func (p *PageBase) UserCanAccessResource() bool {
	return true
}

func (p *PageBase) AlternativeMode() *AlternativeResourceMode {
	return nil
}

// PageViewDataModifier pages with data modifications that run once per view,
// outside the main transaction-per-submission flow (periodic "update last
// seen time" side effects). After they execute, the page object is
// re-created because authorization and disabled state may have changed.
type PageViewDataModifier interface {
	PageViewDataModifications() []*DataModification
}

// SameUrl two resources count as the same destination when their urls match;
// navigating to the same destination is an in-process transfer, not a
// redirect, to avoid redirect loops and preserve already-computed state.
func SameUrl(a, b Resource) bool {
	if a == nil || b == nil {
		return false
	}
	return a.GetUrl() == b.GetUrl()
}
