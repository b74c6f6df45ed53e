package swp

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"github.com/cespare/xxhash"
	"strconv"
	"strings"
)

type StringSet map[string]bool

func (p StringSet) Contains(key string) (exists bool) {
	_, exists = p[key]
	return
}

func (p StringSet) Clone(others ...string) StringSet {
	nmap := StringSet{}
	for k, v := range p {
		nmap[k] = v
	}
	for _, other := range others {
		nmap[other] = true
	}
	return nmap
}

// Intersects true when both sets share at least one key
func (p StringSet) Intersects(other StringSet) bool {
	for k := range other {
		if p.Contains(k) {
			return true
		}
	}
	return false
}

const escapedChars = "&'<>\"\r"

func HtmlEscape(s string) string {
	w := &bytes.Buffer{}
	i := strings.IndexAny(s, escapedChars)
	for i != -1 {
		w.WriteString(s[:i])
		var esc string
		switch s[i] {
		case '&':
			esc = "&amp;"
		case '\'':
			// "&#39;" is shorter than "&apos;" and apos was not in HTML until HTML5.
			esc = "&#39;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '"':
			// "&#34;" is shorter than "&quot;".
			esc = "&#34;"
		case '\r':
			esc = "&#13;"
		default:
			panic("unrecognized HtmlEscape character")
		}
		s = s[i+1:]
		w.WriteString(esc)
		i = strings.IndexAny(s, escapedChars)
	}
	w.WriteString(s)
	return w.String()
}

// NormalizeName attribute names are case-insensitive in html
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HashMD5 computing the MD5 checksum of strings
func HashMD5(text string) string {
	h := md5.New()
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func HashXXH64(text string) string {
	h := xxhash.New()
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Sequence generates the per-request element ids. Ids are a function of the
// creation order, so two builds of the same tree produce the same ids. This
// is what correlates client component state with the freshly rebuilt tree.
type Sequence struct {
	next int
}

// NextId the next sequential id with the given prefix
func (s *Sequence) NextId(prefix string) string {
	s.next++
	return prefix + strconv.Itoa(s.next)
}

// NextHash Used by components to predictively obtain a short stable hash
func (s *Sequence) NextHash(prefix string) string {
	s.next++
	return prefix + HashXXH64(strconv.Itoa(s.next))[:8]
}
