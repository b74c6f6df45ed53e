package swp

import (
	"encoding/json"
	"net/http"

	"github.com/syntax-framework/spage/cmn"
)

// RegionUpdate the wire shape of one replaced region in a partial response.
// The client swaps the DOM subtree addressed by Key with Markup and leaves
// the rest of the page untouched. The live package pushes the same shape
// over a websocket.
type RegionUpdate struct {
	Key      string `json:"key"`
	Argument string `json:"argument"`
	Markup   string `json:"markup"`
}

// PartialResponse the body of a successful intermediate post-back
type PartialResponse struct {
	Regions     []RegionUpdate `json:"regions"`
	HiddenField string         `json:"hiddenField"`
	FocusKey    string         `json:"focusKey,omitempty"`
}

// ResponseWriter the response-writing collaborator boundary: status,
// headers and bytes, nothing else.
type ResponseWriter struct {
	w      http.ResponseWriter
	timing *cmn.ServerTiming
}

func NewResponseWriter(w http.ResponseWriter, timing *cmn.ServerTiming) *ResponseWriter {
	return &ResponseWriter{w: w, timing: timing}
}

func (r *ResponseWriter) writeTiming() {
	if r.timing != nil {
		if value := r.timing.String(); value != "" {
			r.w.Header().Set("Server-Timing", value)
		}
	}
}

// WritePage a full html response
func (r *ResponseWriter) WritePage(status int, markup string) error {
	r.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	r.w.Header().Set("X-Robots-Tag", "noarchive")
	r.writeTiming()
	r.w.WriteHeader(status)
	_, err := r.w.Write([]byte(markup))
	return err
}

// WritePartial the static-plus-regions payload of an intermediate post-back
func (r *ResponseWriter) WritePartial(partial *PartialResponse) error {
	r.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	r.writeTiming()
	r.w.WriteHeader(http.StatusOK)
	data, err := json.Marshal(partial)
	if err != nil {
		return err
	}
	_, err = r.w.Write(data)
	return err
}

// WriteRedirect a 303 to the destination resource
func (r *ResponseWriter) WriteRedirect(url string) {
	r.w.Header().Set("Location", url)
	r.writeTiming()
	r.w.WriteHeader(http.StatusSeeOther)
}

// WriteSecondary an out-of-band response produced by an action
func (r *ResponseWriter) WriteSecondary(response *SecondaryResponse) error {
	contentType := response.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	r.w.Header().Set("Content-Type", contentType)
	r.writeTiming()
	r.w.WriteHeader(http.StatusOK)
	_, err := r.w.Write(response.Body)
	return err
}
