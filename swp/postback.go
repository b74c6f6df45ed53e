package swp

import (
	"github.com/syntax-framework/spage/cmn"
)

var errorPostBackIdCollision = cmn.Err(
	"postback.idcollision",
	"Two different post-back instances registered the same id on a single page.", "Id: %s",
)

var errorPostBackValidationDmUnregistered = cmn.Err(
	"postback.validationdm",
	"The validation data modification of a post-back is itself a post-back but is not registered on the page.",
	"PostBack: %s", "ValidationDm: %s",
)

// ActionResult what a post-back action reports after its modification ran
type ActionResult struct {
	// Redirect an explicit destination resource, nil to re-create the
	// current resource from the newest parameter values
	Redirect Resource

	// FocusKey activates the autofocus regions whose conditions match
	FocusKey string

	// SecondaryResponse a side response (file download, export) to send on
	// the next request instead of a page
	SecondaryResponse *SecondaryResponse
}

// SecondaryResponse an out-of-band response produced by an action
type SecondaryResponse struct {
	ContentType string
	Body        []byte
}

// A PostBack identifies one named server-side action: the implicit data
// update, a full action, or an intermediate (partial) action.
type PostBack struct {
	// Id stable string id, unique per page
	Id string

	// Intermediate partial update post-back; on success only the declared
	// update regions may change
	Intermediate bool

	// ForceFullPagePostBack an intermediate post-back that must respond with
	// a full page anyway
	ForceFullPagePostBack bool

	// ForceExecution run the modification even when no value changed
	ForceExecution bool

	// UpdateRegionSets the set tokens this post-back is a trigger of; used
	// only when Intermediate
	UpdateRegionSets StringSet

	// ValidationDm the data modification whose validations cover this
	// post-back. Defaults to the post-back's own modification. When the
	// referenced modification belongs to another post-back, that post-back
	// must be registered on the same page.
	ValidationDm *DataModification

	// Modification the post-back's own unit of work
	Modification *DataModification

	// Action reports the result after the modification ran without errors
	Action func() *ActionResult

	// deps resolved by PostBackRegistry.Finalize
	deps []cmn.GNode
}

// NewFullPostBack a standard action post-back; always causes navigation
func NewFullPostBack(id string) *PostBack {
	return &PostBack{
		Id:           id,
		Modification: &DataModification{Id: id},
	}
}

// NewIntermediatePostBack a partial update post-back bound to region sets
func NewIntermediatePostBack(id string, sets ...*RegionSet) *PostBack {
	tokens := StringSet{}
	for _, set := range sets {
		tokens[set.Key] = true
	}
	return &PostBack{
		Id:               id,
		Intermediate:     true,
		ForceExecution:   true,
		UpdateRegionSets: tokens,
		Modification:     &DataModification{Id: id},
	}
}

// validationDm the effective validation modification
func (p *PostBack) validationDm() *DataModification {
	if p.ValidationDm != nil {
		return p.ValidationDm
	}
	return p.Modification
}

// GetKey cmn.GNode, the post-back's id
func (p *PostBack) GetKey() string {
	return p.Id
}

// GetDependencies cmn.GNode, the post-backs owning the validation dms this
// one references
func (p *PostBack) GetDependencies() []cmn.GNode {
	return p.deps
}

var _ cmn.GNode = (*PostBack)(nil)

// PostBackRegistry the keyed post-back registry of one tree build
type PostBackRegistry struct {
	order []*PostBack
	byId  map[string]*PostBack

	// DataUpdate the implicit data update modification; runs before any
	// full post-back
	DataUpdate *DataModification
}

func NewPostBackRegistry() *PostBackRegistry {
	return &PostBackRegistry{
		byId:       map[string]*PostBack{},
		DataUpdate: &DataModification{},
	}
}

// Add registers a post-back. Re-registering the same instance is a no-op;
// a different instance under an existing id is a modeling error.
func (r *PostBackRegistry) Add(postBack *PostBack) {
	if existing, exists := r.byId[postBack.Id]; exists {
		if existing != postBack {
			panic(errorPostBackIdCollision(postBack.Id))
		}
		return
	}
	r.byId[postBack.Id] = postBack
	r.order = append(r.order, postBack)
}

// Get a post-back by id
func (r *PostBackRegistry) Get(id string) *PostBack {
	return r.byId[id]
}

// All every registered post-back, in registration order
func (r *PostBackRegistry) All() []*PostBack {
	return r.order
}

// Modifications every modification reachable from this registry: the data
// update plus each post-back's own
func (r *PostBackRegistry) Modifications() map[*DataModification]bool {
	all := map[*DataModification]bool{r.DataUpdate: true}
	for _, postBack := range r.order {
		if postBack.Modification != nil {
			all[postBack.Modification] = true
		}
	}
	return all
}

// Finalize checks the cross references once the tree build is complete:
// every validation dm that is itself a post-back must be registered here,
// and the references must form a DAG.
func (r *PostBackRegistry) Finalize() {
	owners := map[*DataModification]*PostBack{}
	for _, postBack := range r.order {
		if postBack.Modification != nil {
			owners[postBack.Modification] = postBack
		}
	}

	for _, postBack := range r.order {
		postBack.deps = nil
		dm := postBack.validationDm()
		if dm == postBack.Modification || dm == r.DataUpdate {
			continue
		}
		owner := owners[dm]
		if owner == nil {
			panic(errorPostBackValidationDmUnregistered(postBack.Id, dm.Id))
		}
		postBack.deps = append(postBack.deps, owner)
	}

	nodes := make([]cmn.GNode, len(r.order))
	for i, postBack := range r.order {
		nodes[i] = postBack
	}
	if _, err := cmn.GraphResolveDependencies(nodes); err != nil {
		panic(err)
	}
}
