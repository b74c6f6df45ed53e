package swp

import (
	"github.com/syntax-framework/spage/cmn"
)

var errorPayloadMalformed = cmn.Err(
	"payload.malformed",
	"The hidden field payload is missing or malformed.", "Caused by: %s",
)

// HiddenFieldName the form field the payload travels in
const HiddenFieldName = "__spage"

// Payload the hidden field submission protocol. Full responses re-emit the
// whole payload; partial responses must re-establish the same invariants
// for the next round trip.
type Payload struct {
	// ComponentState map from generated element id to opaque JSON value
	ComponentState cmn.JSON

	// FormValueHash hex MD5 over all active form value and state item
	// durable representations
	FormValueHash string

	// FailingDm id of the data modification that failed validation on the
	// previous intermediate post-back; empty string means the implicit data
	// update; nil means none.
	FailingDm *string

	// PostBack string id of the post-back to execute
	PostBack string

	// ScrollPositionX / ScrollPositionY restored after navigation
	ScrollPositionX int
	ScrollPositionY int
}

// ParsePayload decodes the hidden field. Malformed payloads are recoverable,
// the lifecycle resets to a fresh request state and asks the user to retry.
func ParsePayload(data string) (*Payload, error) {
	if data == "" {
		return nil, errorPayloadMalformed("empty hidden field")
	}
	obj, err := cmn.JSONParse([]byte(data))
	if err != nil {
		return nil, errorPayloadMalformed(err.Error())
	}
	if !obj.Has("postBack") || !obj.Has("formValueHash") {
		return nil, errorPayloadMalformed("missing postBack or formValueHash")
	}

	payload := &Payload{
		FormValueHash:   obj.String("formValueHash"),
		PostBack:        obj.String("postBack"),
		ScrollPositionX: int(obj.Number("scrollPositionX")),
		ScrollPositionY: int(obj.Number("scrollPositionY")),
	}
	if state := obj.Object("componentState"); state != nil {
		payload.ComponentState = state.Get()
	} else {
		payload.ComponentState = cmn.JSON{}
	}
	if obj.Has("failingDm") {
		failing := obj.String("failingDm")
		payload.FailingDm = &failing
	}
	return payload, nil
}

// Encode the payload as it is written into the hidden field
func (p *Payload) Encode() string {
	obj := cmn.JSON{
		"componentState": p.ComponentState.Get(),
		"formValueHash":  p.FormValueHash,
		"postBack":       p.PostBack,
	}
	if p.FailingDm != nil {
		obj["failingDm"] = *p.FailingDm
	}
	if p.ScrollPositionX != 0 {
		obj["scrollPositionX"] = p.ScrollPositionX
	}
	if p.ScrollPositionY != 0 {
		obj["scrollPositionY"] = p.ScrollPositionY
	}
	data, err := obj.Encode()
	if err != nil {
		// the payload is built from JSON-safe values only
		panic(err)
	}
	return string(data)
}

// HiddenField the component carrying the payload on a full response
func HiddenField(payload *Payload) Component {
	return Element("input", &ElementOptions{Attributes: map[string]string{
		"type":  "hidden",
		"name":  HiddenFieldName,
		"value": payload.Encode(),
	}})
}
