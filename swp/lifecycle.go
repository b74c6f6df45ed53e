package swp

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/syntax-framework/spage/cmn"
	"github.com/syntax-framework/spage/session"
	"github.com/syntax-framework/spage/trans"
	"go.uber.org/zap"
)

var errorStaticRegionDrift = cmn.Err(
	"lifecycle.drift",
	"Possible developer mistake. The static region of the page changed across an intermediate post-back, "+
		"or a component state item or form value carries an invalid post-back value. "+
		"The server-rendered tree diverged from what the client last saw outside of an authorized update region.",
	"Stored: %s", "Rebuilt: %s",
)

var errorSecondaryOpNotSupported = cmn.Err(
	"lifecycle.secondaryop",
	"SecondaryOperation ModifyDataAndPerformAction is reserved and not supported.",
)

// SecondaryOperation scheduled by an intermediate post-back to run on the
// next request, so a partial update does not re-run the whole page's
// validations while still re-validating the changed region.
type SecondaryOperation int

const (
	NoOperation SecondaryOperation = iota
	Validate
	ValidateChangesOnly
	// ModifyDataAndPerformAction reserved, never scheduled
	ModifyDataAndPerformAction
)

// RequestState the continuation data of one session slot. Serialized into
// the session store across the redirect of a post-back, and into the
// baseline of an intermediate post-back.
type RequestState struct {
	StaticFingerprint string              `json:"staticFingerprint,omitempty"`
	RegionSets        []string            `json:"regionSets,omitempty"`
	RegionArguments   map[string]string   `json:"regionArguments,omitempty"`
	Secondary         SecondaryOperation  `json:"secondary,omitempty"`
	FailingDm         *string             `json:"failingDm,omitempty"`
	FocusKey          string              `json:"focusKey,omitempty"`
	GeneralErrors     []string            `json:"generalErrors,omitempty"`
	ErrorsByKey       map[string][]string `json:"errorsByKey,omitempty"`
	ComponentState    cmn.JSON            `json:"componentState,omitempty"`
	ScrollPositionX   int                 `json:"scrollPositionX,omitempty"`
	ScrollPositionY   int                 `json:"scrollPositionY,omitempty"`

	SecondaryContentType string `json:"secondaryContentType,omitempty"`
	SecondaryBody        []byte `json:"secondaryBody,omitempty"`
}

func (s *RequestState) activeSets() StringSet {
	sets := StringSet{}
	for _, token := range s.RegionSets {
		sets[token] = true
	}
	return sets
}

// App the page lifecycle controller. One instance serves many pages; all
// per-request state lives in the TreeBuilder and the session slot.
type App struct {
	Log        *zap.Logger
	Sessions   session.Store
	Translator *trans.Translator
	Tx         TransactionExecutor
}

func NewApp(log *zap.Logger, sessions session.Store, translator *trans.Translator) *App {
	if log == nil {
		log = zap.NewNop()
	}
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	if translator == nil {
		translator = trans.New()
	}
	return &App{Log: log, Sessions: sessions, Translator: translator, Tx: NonTransactional{}}
}

const sessionCookie = "spage-session"

// Handler serves one page: GET/HEAD renders the view, POST executes the
// submitted post-back. The whole request runs on one goroutine to
// completion; the session slot is locked for the duration.
func (a *App) Handler(page Page) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionId := a.sessionId(w, r)
		release := a.Sessions.Lock(sessionId)
		defer release()

		log := a.Log.With(
			zap.String("requestId", uuid.NewString()),
			zap.String("url", page.GetUrl()),
		)

		state := a.loadState(sessionId, log)

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			a.serveView(w, r, log, sessionId, page, state)
		case http.MethodPost:
			a.servePostBack(w, r, log, sessionId, page, state)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func (a *App) sessionId(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true})
	return id
}

func (a *App) loadState(sessionId string, log *zap.Logger) *RequestState {
	data, err := a.Sessions.Load(sessionId)
	if err != nil {
		log.Warn("session slot load failed, starting fresh", zap.Error(err))
		return &RequestState{}
	}
	if data == nil {
		return &RequestState{}
	}
	state := &RequestState{}
	if err = json.Unmarshal(data, state); err != nil {
		log.Warn("session slot is corrupt, starting fresh", zap.Error(err))
		return &RequestState{}
	}
	return state
}

func (a *App) saveState(sessionId string, state *RequestState, log *zap.Logger) {
	data, err := json.Marshal(state)
	if err != nil {
		panic(err)
	}
	if err = a.Sessions.Save(sessionId, data); err != nil {
		log.Warn("session slot save failed", zap.Error(err))
	}
}

func (a *App) tx() TransactionExecutor {
	if a.Tx == nil {
		return NonTransactional{}
	}
	return a.Tx
}

// serveView the GET/HEAD path: page-view modifications, tree build, drift
// check, pending secondary operation, render.
func (a *App) serveView(
	w http.ResponseWriter, r *http.Request, log *zap.Logger, sessionId string, page Page, state *RequestState,
) {
	// a stashed secondary response takes the whole request
	if state.SecondaryBody != nil {
		response := &SecondaryResponse{ContentType: state.SecondaryContentType, Body: state.SecondaryBody}
		state.SecondaryBody = nil
		state.SecondaryContentType = ""
		a.saveState(sessionId, state, log)
		_ = NewResponseWriter(w, nil).WriteSecondary(response)
		return
	}

	// page-view data modifications run outside the transaction-per-submission
	// flow; data changed, so the page object is re-created and authorization
	// and disabled state are checked again
	if modifier, ok := page.(PageViewDataModifier); ok {
		if dms := modifier.PageViewDataModifications(); len(dms) > 0 {
			v := NewValidator()
			for _, dm := range dms {
				if err := dm.Execute(v, a.tx(), true, NewFormValueRegistry(), NewStateRegistry()); err != nil {
					if AsDataModificationError(err) == nil {
						panic(err)
					}
					log.Warn("page view data modification failed", zap.Error(err))
				}
			}
			page = page.Recreate()
		}
	}

	if !page.UserCanAccessResource() {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if mode := page.AlternativeMode(); mode != nil && mode.Disabled {
		_ = NewResponseWriter(w, nil).WritePage(http.StatusOK,
			`<p class="resource-disabled">`+HtmlEscape(mode.Message)+`</p>`)
		return
	}

	a.renderView(w, log, sessionId, page, state, http.StatusOK)
}

// buildTree one tree build with the stored error state seeded, so controls
// can render their in-page messages while they build.
func (a *App) buildTree(page Page, snapshot *cmn.JSON, state *RequestState) (*TreeBuilder, *Node) {
	b := NewTreeBuilder(snapshot)
	b.GeneralErrors = state.GeneralErrors
	b.ErrorsByKey = state.ErrorsByKey
	timer := b.Context.Timing.Metric("tree", "Tree build").Start()
	tree := b.Build(page.Build(b))
	timer.Stop()
	return b, tree
}

// checkDrift the consistency guard after an intermediate post-back: the
// freshly rebuilt static region must match the stored baseline byte for
// byte, and no state item or form value may carry an invalid value.
func (a *App) checkDrift(tree *Node, b *TreeBuilder, state *RequestState) {
	for _, item := range b.States.All() {
		if item.Invalid() {
			panic(errorStaticRegionDrift(state.StaticFingerprint, "state item "+item.Key+" is invalid"))
		}
	}
	for _, value := range b.FormValues.Active() {
		if !value.Valid() {
			panic(errorStaticRegionDrift(state.StaticFingerprint, "form value "+value.Key+" is invalid"))
		}
	}
	contents := CollectStaticRegion(tree, b, state.activeSets())
	contents.ErrorKeys = errorKeys(state)
	contents.PendingIds = pendingIds(state)
	if rebuilt := contents.Fingerprint(); rebuilt != state.StaticFingerprint {
		panic(errorStaticRegionDrift(state.StaticFingerprint, rebuilt))
	}
}

// renderView builds the tree and renders a full response; also the tail of
// every in-process transfer.
func (a *App) renderView(
	w http.ResponseWriter, log *zap.Logger, sessionId string, page Page, state *RequestState, status int,
) {
	var snapshot *cmn.JSON
	if state.ComponentState != nil {
		snapshot = &state.ComponentState
	}
	b, tree := a.buildTree(page, snapshot, state)

	v := NewValidator()
	for _, message := range state.GeneralErrors {
		v.NoteGeneralError(message)
	}

	if state.StaticFingerprint != "" {
		timer := b.Context.Timing.Metric("drift", "Drift detection").Start()
		a.checkDrift(tree, b, state)
		timer.Stop()
	}

	// a pending secondary operation re-executes just the validation phase of
	// the target modification, then navigates or falls through to render
	if state.Secondary != NoOperation {
		timer := b.Context.Timing.Metric("validate", "Secondary validation").Start()
		noOp := a.runSecondary(b, v, state)
		timer.Stop()

		// the continuation is consumed; this render re-establishes a full,
		// baseline-free page
		state.Secondary = NoOperation
		state.StaticFingerprint = ""
		state.RegionSets = nil
		state.RegionArguments = nil

		if v.HasErrors() {
			if noted := v.ErrorsByKey(); len(noted) > 0 || len(v.GeneralErrors()) > len(state.GeneralErrors) {
				// the secondary validation noted new errors after the build;
				// rebuild with them seeded so controls render them
				state.GeneralErrors = v.GeneralErrors()
				state.ErrorsByKey = mergeErrorTables(state.ErrorsByKey, noted)
				b, tree = a.buildTree(page, snapshot, state)
			}
		} else {
			state.FailingDm = nil
			if !noOp {
				destination := page.Recreate()
				if !SameUrl(destination, page) {
					a.clearContinuation(state)
					a.saveState(sessionId, state, log)
					NewResponseWriter(w, b.Context.Timing).WriteRedirect(destination.GetUrl())
					return
				}
			}
		}
	}

	ResolveAutofocus(tree, state.FocusKey, v)

	// general modification errors render in a notification block at the top
	// of the page; keyed errors are the owning control's to display
	if general := v.GeneralErrors(); len(general) > 0 {
		notice := &Node{Type: ElementNode, Data: "div", Attributes: NewAttributes()}
		notice.Attributes.AddClass("modification-errors")
		for _, message := range general {
			p := &Node{Type: ElementNode, Data: "p", Attributes: NewAttributes()}
			p.AppendChild(&Node{Type: TextNode, Data: message})
			notice.AppendChild(p)
		}
		tree.InsertBefore(notice, tree.FirstChild)
	}

	timer := b.Context.Timing.Metric("render", "Render").Start()
	active := b.PostBacks.Modifications()
	payload := &Payload{
		ComponentState:  b.States.Snapshot(),
		FormValueHash:   DurableHash(b.FormValues, b.States, active),
		FailingDm:       state.FailingDm,
		ScrollPositionX: state.ScrollPositionX,
		ScrollPositionY: state.ScrollPositionY,
	}
	tree.AppendChild(HiddenField(payload)(b))

	markup, err := tree.Render()
	timer.Stop()
	if err != nil {
		panic(err)
	}

	state.ComponentState = b.States.Snapshot()
	a.saveState(sessionId, state, log)

	if err = NewResponseWriter(w, b.Context.Timing).WritePage(status, markup); err != nil {
		log.Warn("response write failed", zap.Error(err))
	}
}

// runSecondary executes the scheduled secondary operation. Returns true when
// the operation was a no-op (nothing changed under ValidateChangesOnly).
func (a *App) runSecondary(b *TreeBuilder, v *Validator, state *RequestState) (noOp bool) {
	if state.Secondary == ModifyDataAndPerformAction {
		panic(errorSecondaryOpNotSupported())
	}

	dm := a.findDm(b, state.FailingDm)
	if dm == nil {
		v.NoteGeneralError(a.Translator.Get(trans.KeyUnknownPostBack))
		return false
	}
	if state.Secondary == ValidateChangesOnly && !dm.Changed(b.FormValues, b.States) {
		return true
	}
	dm.Validate(v)
	return false
}

// findDm resolves a failing-dm reference: nil means none, empty string means
// the implicit data update, anything else the post-back's own modification.
func (a *App) findDm(b *TreeBuilder, id *string) *DataModification {
	if id == nil {
		return nil
	}
	if *id == "" {
		return b.PostBacks.DataUpdate
	}
	if postBack := b.PostBacks.Get(*id); postBack != nil {
		return postBack.Modification
	}
	return nil
}

func (a *App) clearContinuation(state *RequestState) {
	state.StaticFingerprint = ""
	state.RegionSets = nil
	state.RegionArguments = nil
	state.Secondary = NoOperation
	state.FailingDm = nil
	state.FocusKey = ""
	state.GeneralErrors = nil
	state.ErrorsByKey = nil
}

func mergeErrorTables(stored map[string][]string, noted map[string][]string) map[string][]string {
	if len(noted) == 0 {
		return stored
	}
	merged := map[string][]string{}
	for key, messages := range stored {
		merged[key] = messages
	}
	for key, messages := range noted {
		merged[key] = append(merged[key], messages...)
	}
	return merged
}

func errorKeys(state *RequestState) []string {
	var keys []string
	for key := range state.ErrorsByKey {
		keys = append(keys, key)
	}
	return keys
}

func pendingIds(state *RequestState) []string {
	if state.Secondary == NoOperation || state.FailingDm == nil {
		return nil
	}
	return []string{*state.FailingDm}
}

// servePostBack the POST path
func (a *App) servePostBack(
	w http.ResponseWriter, r *http.Request, log *zap.Logger, sessionId string, page Page, state *RequestState,
) {
	// a resource disabled between render and submission: back to the view,
	// which shows the message instead of the form
	if mode := page.AlternativeMode(); mode != nil && mode.Disabled {
		a.clearContinuation(state)
		a.saveState(sessionId, state, log)
		NewResponseWriter(w, nil).WriteRedirect(page.GetUrl())
		return
	}

	if err := r.ParseForm(); err != nil {
		a.recoverable(w, log, sessionId, page, state, trans.KeyPleaseRetry, http.StatusBadRequest)
		return
	}
	payload, err := ParsePayload(r.PostForm.Get(HiddenFieldName))
	if err != nil {
		log.Warn("malformed hidden field payload", zap.Error(err))
		a.recoverable(w, log, sessionId, page, state, trans.KeyPleaseRetry, http.StatusBadRequest)
		return
	}
	state.ScrollPositionX = payload.ScrollPositionX
	state.ScrollPositionY = payload.ScrollPositionY

	raw := map[string]string{}
	for key, values := range r.PostForm {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}

	b, tree := a.buildTree(page, &payload.ComponentState, state)
	b.SubmitFormValues(raw)

	// consistency guard: a submission following an intermediate post-back
	// must still see the static region the client last received
	if state.StaticFingerprint != "" {
		timer := b.Context.Timing.Metric("drift", "Drift detection").Start()
		a.checkDrift(tree, b, state)
		timer.Stop()
	}

	// tamper and staleness checks before anything executes
	if unknown := b.States.UnknownKeys(&payload.ComponentState); len(unknown) > 0 {
		log.Warn("client submitted unknown component state keys", zap.Strings("keys", unknown))
		for _, key := range unknown {
			delete(state.ComponentState, key)
		}
		a.recoverable(w, log, sessionId, page, state, trans.KeyAnotherUserModified, http.StatusOK)
		return
	}
	for _, value := range b.FormValues.Active() {
		if !value.Valid() {
			log.Warn("form value failed its typed validator", zap.String("key", value.Key))
			a.recoverable(w, log, sessionId, page, state, trans.KeyAnotherUserModified, http.StatusOK)
			return
		}
	}

	postBack := b.PostBacks.Get(payload.PostBack)
	if postBack == nil {
		log.Warn("unknown post-back id", zap.String("id", payload.PostBack))
		a.recoverable(w, log, sessionId, page, state, trans.KeyUnknownPostBack, http.StatusOK)
		return
	}

	// the hash must cover the same modification set the render hashed over
	if hash := DurableHash(b.FormValues, b.States, b.PostBacks.Modifications()); hash != payload.FormValueHash {
		log.Warn("durable value hash mismatch", zap.String("submitted", payload.FormValueHash))
		state.StaticFingerprint = ""
		a.recoverable(w, log, sessionId, page, state, trans.KeyAnotherUserModified, http.StatusOK)
		return
	}

	// capture pre-modification region state; replayed after execution
	arguments, getters := CaptureRegions(tree, postBack.UpdateRegionSets)
	staticContents := CollectStaticRegion(tree, b, postBack.UpdateRegionSets)

	v := NewValidator()
	timer := b.Context.Timing.Metric("modify", "Modifications").Start()
	err = a.execute(b, v, postBack)
	timer.Stop()
	if err != nil {
		dmErr := AsDataModificationError(err)
		if dmErr == nil {
			panic(err)
		}
		log.Warn("data modification failed", zap.Error(dmErr))
		state.StaticFingerprint = ""
		for _, message := range dmErr.Messages {
			v.NoteGeneralError(message)
		}
	}

	var result *ActionResult
	if !v.HasErrors() && postBack.Action != nil {
		result = postBack.Action()
	}

	if v.HasErrors() {
		a.respondWithErrors(w, log, sessionId, page, state, postBack, v)
		return
	}

	if postBack.Intermediate && !postBack.ForceFullPagePostBack {
		a.respondIntermediate(w, log, sessionId, page, state, b, postBack, staticContents, arguments, getters, result)
		return
	}

	a.navigate(w, log, sessionId, page, state, result)
}

// execute runs the data update (full post-backs only) then the action
// post-back, in order, each with change detection. Every validation across
// the active modifications runs first; the methods of both run inside one
// transaction, committed only when no validation noted an error.
func (a *App) execute(b *TreeBuilder, v *Validator, postBack *PostBack) error {
	var active []*DataModification
	if !postBack.Intermediate {
		if update := b.PostBacks.DataUpdate; update.Changed(b.FormValues, b.States) {
			active = append(active, update)
		}
	}
	if own := postBack.Modification; postBack.ForceExecution || own.Changed(b.FormValues, b.States) {
		active = append(active, own)
	}

	for _, dm := range active {
		dm.Validate(v)
	}
	if v.HasErrors() || len(active) == 0 {
		return nil
	}

	return a.tx().ExecuteInTransaction(func() error {
		for _, dm := range active {
			if err := dm.RunMethods(); err != nil {
				return err
			}
		}
		return nil
	})
}

// respondWithErrors stores the error state and routes back through the
// normal render path: the destination is the current resource re-cloned
// with defaults restored, reached by in-process transfer.
func (a *App) respondWithErrors(
	w http.ResponseWriter, log *zap.Logger, sessionId string, page Page, state *RequestState,
	postBack *PostBack, v *Validator,
) {
	failing := postBack.Id
	state.FailingDm = &failing
	state.GeneralErrors = v.GeneralErrors()
	state.ErrorsByKey = v.ErrorsByKey()
	state.Secondary = NoOperation
	state.StaticFingerprint = ""

	destination := page.RecreateWithDefaults()
	if SameUrl(destination, page) {
		a.renderView(w, log, sessionId, destination, state, http.StatusOK)
		return
	}
	a.saveState(sessionId, state, log)
	NewResponseWriter(w, nil).WriteRedirect(destination.GetUrl())
}

// respondIntermediate serializes the new static-region baseline, schedules
// the secondary operation and replies with only the replaced regions.
func (a *App) respondIntermediate(
	w http.ResponseWriter, log *zap.Logger, sessionId string, page Page, state *RequestState,
	b *TreeBuilder, postBack *PostBack, staticContents *StaticRegionContents,
	arguments map[string]string, getters map[string]func(string) []Component, result *ActionResult,
) {
	target := postBack.validationDm().Id
	state.FailingDm = &target
	if postBack.ValidationDm != nil {
		state.Secondary = Validate
	} else {
		state.Secondary = ValidateChangesOnly
	}
	if result != nil {
		state.FocusKey = result.FocusKey
	}
	state.GeneralErrors = nil
	state.ErrorsByKey = nil
	state.RegionSets = nil
	for token := range postBack.UpdateRegionSets {
		state.RegionSets = append(state.RegionSets, token)
	}
	state.RegionArguments = arguments

	// the durable getters already see the post-modification values; the
	// contents were collected before so the node set is the pre-modification
	// static region
	staticContents.PendingIds = pendingIds(state)
	state.StaticFingerprint = staticContents.Fingerprint()

	var regions []RegionUpdate
	for key, getter := range getters {
		argument := arguments[key]
		region := &Node{Type: FlowNode}
		for _, component := range getter(argument) {
			if built := component(b); built != nil {
				region.AppendChild(built)
			}
		}
		markup, err := region.Render()
		if err != nil {
			panic(err)
		}
		regions = append(regions, RegionUpdate{Key: key, Argument: argument, Markup: markup})
	}

	snapshot := b.States.Snapshot()
	payload := &Payload{
		ComponentState: snapshot,
		FormValueHash:  DurableHash(b.FormValues, b.States, b.PostBacks.Modifications()),
		FailingDm:      state.FailingDm,
	}
	state.ComponentState = snapshot
	a.saveState(sessionId, state, log)

	partial := &PartialResponse{Regions: regions, HiddenField: payload.Encode(), FocusKey: state.FocusKey}
	if err := NewResponseWriter(w, b.Context.Timing).WritePartial(partial); err != nil {
		log.Warn("partial response write failed", zap.Error(err))
	}
}

// navigate decides transfer versus redirect after a successful full
// post-back.
func (a *App) navigate(
	w http.ResponseWriter, log *zap.Logger, sessionId string, page Page, state *RequestState, result *ActionResult,
) {
	a.clearContinuation(state)

	var destination Resource
	if result != nil && result.Redirect != nil {
		destination = result.Redirect
	} else {
		destination = page.Recreate()
	}
	if result != nil {
		state.FocusKey = result.FocusKey
		if result.SecondaryResponse != nil {
			state.SecondaryContentType = result.SecondaryResponse.ContentType
			state.SecondaryBody = result.SecondaryResponse.Body
		}
	}

	if destinationPage, ok := destination.(Page); ok && SameUrl(destination, page) {
		// same destination: in-process transfer, not a redirect, so the
		// already-computed side effect state survives
		state.ComponentState = nil
		a.renderView(w, log, sessionId, destinationPage, state, http.StatusOK)
		return
	}

	state.ComponentState = nil
	a.saveState(sessionId, state, log)
	NewResponseWriter(w, nil).WriteRedirect(destination.GetUrl())
}

// recoverable converts a tamper, staleness or malformed submission into a
// stored general error and a safe re-render of a freshly re-created page.
func (a *App) recoverable(
	w http.ResponseWriter, log *zap.Logger, sessionId string, page Page, state *RequestState,
	messageKey string, status int,
) {
	// strip continuation so a subsequent redirect or transfer does not trip
	// the drift detector on the very state that caused the problem
	a.clearContinuation(state)
	if status == http.StatusBadRequest {
		// malformed payload: reset to a fresh request state entirely
		*state = RequestState{}
	}
	state.GeneralErrors = []string{a.Translator.Get(messageKey)}
	a.renderView(w, log, sessionId, page.RecreateWithDefaults(), state, status)
}
