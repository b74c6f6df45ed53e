package swp

import (
	"errors"
	"sort"

	"github.com/syntax-framework/spage/cmn"
)

// ErrDoNotCommit a modification method may return this to abort its own
// side effect silently, without surfacing an error to the user. Used for
// best-effort bookkeeping like last-seen-time updates.
var ErrDoNotCommit = errors.New("swp: do not commit")

// DataModificationError a recoverable, user-facing error. The lifecycle
// controller converts it into in-page messages and a safe re-render; it
// never crashes the request.
type DataModificationError struct {
	Messages []string
}

func (e *DataModificationError) Error() string {
	if len(e.Messages) == 0 {
		return "data modification error"
	}
	return e.Messages[0]
}

// NewDataModificationError a recoverable error carrying user messages
func NewDataModificationError(messages ...string) *DataModificationError {
	return &DataModificationError{Messages: messages}
}

// AsDataModificationError unwraps err down to a DataModificationError, or
// nil if err is not one. Anything else propagates as fatal.
func AsDataModificationError(err error) *DataModificationError {
	var dmErr *DataModificationError
	if errors.As(err, &dmErr) {
		return dmErr
	}
	return nil
}

// Validation one registered validation callback. The Key is the display key
// the error table is indexed by; controls tie their in-page error display to
// it, and the error-focus walk only considers elements whose validations
// actually noted errors.
type Validation struct {
	Key      string
	Validate func(v *Validator)
}

// Validator collects the errors noted while validations run
type Validator struct {
	byValidation map[*Validation][]string
	keys         *cmn.IndexedSet
	general      []string
}

func NewValidator() *Validator {
	return &Validator{
		byValidation: map[*Validation][]string{},
		keys:         &cmn.IndexedSet{},
	}
}

// NoteError records an error against the given validation's display key
func (v *Validator) NoteError(validation *Validation, message string) {
	v.byValidation[validation] = append(v.byValidation[validation], message)
	v.keys.Add(validation.Key)
}

// NoteGeneralError records an error not tied to any particular control
func (v *Validator) NoteGeneralError(message string) {
	v.general = append(v.general, message)
}

// HasErrors true when any validation (or general) error was noted
func (v *Validator) HasErrors() bool {
	return len(v.byValidation) > 0 || len(v.general) > 0
}

// HasErrorsFor true when the given validation noted at least one error
func (v *Validator) HasErrorsFor(validation *Validation) bool {
	return len(v.byValidation[validation]) > 0
}

// GeneralErrors the errors not tied to any control
func (v *Validator) GeneralErrors() []string {
	return v.general
}

// ErrorsByKey the error table, indexed by display key
func (v *Validator) ErrorsByKey() map[string][]string {
	table := map[string][]string{}
	for validation, messages := range v.byValidation {
		table[validation.Key] = append(table[validation.Key], messages...)
	}
	return table
}

// ErrorKeys the display keys that noted errors, sorted. The sorted set is
// part of the static region fingerprint, so the order must be deterministic.
func (v *Validator) ErrorKeys() []string {
	var keys []string
	for _, key := range v.keys.ToArray() {
		keys = append(keys, key.(string))
	}
	sort.Strings(keys)
	return keys
}

// TransactionExecutor the database collaborator. Modification methods run
// inside a transaction committed only after every validation across every
// active modification succeeded; a returned error aborts it.
type TransactionExecutor interface {
	ExecuteInTransaction(fn func() error) error
}

// NonTransactional the default executor, for pages without a database
type NonTransactional struct{}

func (NonTransactional) ExecuteInTransaction(fn func() error) error {
	err := fn()
	if errors.Is(err, ErrDoNotCommit) {
		return nil
	}
	return err
}

// DataModification an ordered unit of work: validations first, then, only if
// zero errors were noted, the modification methods.
//
// The implicit data update has an empty Id and runs before any full
// post-back; action post-backs carry their own modification.
type DataModification struct {
	// Id empty for the implicit data update
	Id string

	// Validations run in registration order
	Validations []*Validation

	// Methods run in registration order, inside the transaction, only when
	// no validation noted an error. A method returning ErrDoNotCommit
	// silently skips its own commit.
	Methods []func() error
}

// AddValidation registers a validation callback under a display key
func (dm *DataModification) AddValidation(key string, validate func(v *Validator)) *Validation {
	validation := &Validation{Key: key, Validate: validate}
	dm.Validations = append(dm.Validations, validation)
	return validation
}

// AddMethod registers a modification method
func (dm *DataModification) AddMethod(method func() error) {
	dm.Methods = append(dm.Methods, method)
}

// Validate runs only the validation phase
func (dm *DataModification) Validate(v *Validator) {
	for _, validation := range dm.Validations {
		if validation.Validate != nil {
			validation.Validate(v)
		}
	}
}

// Changed true when any participating form value or state item differs from
// its durable value
func (dm *DataModification) Changed(values *FormValueRegistry, states *StateRegistry) bool {
	self := map[*DataModification]bool{dm: true}
	for _, value := range values.Active() {
		if value.ParticipatesIn(self) && value.Changed() {
			return true
		}
	}
	for _, item := range states.All() {
		if item.ParticipatesIn(self) {
			// a submitted snapshot value differing from the default counts
			// as a change for the item limit and friends
			if item.DurableValue() != durableDefault(item) {
				return true
			}
		}
	}
	return false
}

func durableDefault(item *StateItem) string {
	probe := StateItem{value: item.Default}
	return probe.DurableValue()
}

// RunMethods runs the modification methods in registration order. A method
// returning ErrDoNotCommit silently skips its own commit.
func (dm *DataModification) RunMethods() error {
	for _, method := range dm.Methods {
		if err := method(); err != nil {
			if errors.Is(err, ErrDoNotCommit) {
				continue
			}
			return err
		}
	}
	return nil
}

// Execute runs the full modification: change detection (skipped when force),
// validations, then methods inside tx. Recoverable failures come back as a
// DataModificationError; anything else is fatal and propagates.
//
// When several modifications are active in one request the lifecycle does
// not use Execute; it runs every validation phase first and all methods
// inside a single transaction.
func (dm *DataModification) Execute(
	v *Validator, tx TransactionExecutor, force bool, values *FormValueRegistry, states *StateRegistry,
) error {
	if !force && !dm.Changed(values, states) {
		return nil
	}

	dm.Validate(v)
	if v.HasErrors() {
		return nil
	}

	return tx.ExecuteInTransaction(dm.RunMethods)
}
