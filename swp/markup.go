package swp

import (
	"github.com/erinpentecost/byteline"
	"github.com/syntax-framework/spage/cmn"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"golang.org/x/net/html"
	"io"
	"strings"
)

var errorMarkupTokenizer = cmn.Err(
	"markup.tokenizer",
	"An unexpected error occurred while tokenizing the markup block.", "Line: %d", "Column: %d", "Caused by: %s",
)

var errorMarkupEndTag = cmn.Err(
	"markup.endingTag",
	"Mismatched ending tag on markup block.", "Expected: %s", "Found: %s", "Line: %d", "Column: %d",
)

var errorScriptLexer = cmn.Err(
	"markup.script",
	"Invalid javascript on activation script.", "Offset: %d", "Caused by: %s",
)

// CheckMarkup verifies that a raw markup block is well formed before it is
// inserted, unescaped, into the tree. A malformed block is a modeling error,
// the caller panics with the returned error.
//
// The input is assumed to be UTF-8 encoded.
func CheckMarkup(markup string) error {

	lineTracker := byteline.NewReader(strings.NewReader(markup))
	tokenizer := html.NewTokenizer(lineTracker)

	var stack []*html.Token

	prevCol := 0
	prevLine := 1

	var err error
	for err != io.EOF {
		tokenizer.Next()

		totalOffset, _ := lineTracker.GetCurrentOffset()
		tokenOffset := totalOffset - len(tokenizer.Buffered())
		curLine, curCol, _ := lineTracker.GetLineAndColumn(tokenOffset)

		token := tokenizer.Token()
		switch token.Type {
		case html.ErrorToken:
			if err = tokenizer.Err(); err != nil {
				if err != io.EOF {
					return errorMarkupTokenizer(prevLine, prevCol, err.Error())
				}
			} else {
				return errorMarkupTokenizer(prevLine, prevCol, "unknown html.ErrorToken")
			}
		case html.StartTagToken:
			if !htmlVoidElements[token.Data] {
				pushed := token
				stack = append(stack, &pushed)
			}
		case html.EndTagToken:
			if len(stack) == 0 {
				return errorMarkupEndTag("", token.Data, prevLine, prevCol)
			}
			lastPushed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if lastPushed.DataAtom != token.DataAtom {
				return errorMarkupEndTag(lastPushed.Data, token.Data, prevLine, prevCol)
			}
		}

		prevCol = curCol + 1
		prevLine = curLine + 1
	}

	if len(stack) != 0 {
		return errorMarkupEndTag(stack[len(stack)-1].Data, "", prevLine, prevCol)
	}
	return nil
}

// CheckScript lexes an activation script and rejects invalid javascript.
// Activation behaviors accept developer-supplied scripts that end up inlined
// on row and cell elements; a broken script is a modeling error.
func CheckScript(script string) error {
	input := parse.NewInputString(script)
	lexer := js.NewLexer(input)
	for {
		tt, _ := lexer.Next()
		if tt == js.ErrorToken {
			if lexer.Err() == io.EOF {
				return nil
			}
			return errorScriptLexer(input.Offset(), lexer.Err().Error())
		}
	}
}

// htmlVoidElements Void elements are those that can't have any contents.
var htmlVoidElements = map[string]bool{}

func init() {
	for _, tag := range []string{
		"area", "base", "br", "col", "embed", "hr", "img", "input", "keygen", "link", "meta", "param", "source", "track", "wbr",
	} {
		htmlVoidElements[tag] = true
	}
}
