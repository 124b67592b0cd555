package output

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightStyle is the chroma style used on terminals.
const highlightStyle = "github-dark"

// highlight colors code written in lang for a terminal. Off a terminal, or when
// highlighting fails, the code comes back unchanged.
func (p *Printer) highlight(code, lang string) string {
	if !p.isTTY || code == "" {
		return code
	}
	out, ok := Highlight(code, lang)
	if !ok {
		return code
	}
	return out
}

// Highlight renders code in lang with 256-color terminal escapes.
func Highlight(code, lang string) (string, bool) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return "", false
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}
	var b strings.Builder
	if err := formatter.Format(&b, style, iterator); err != nil {
		return "", false
	}
	return b.String(), true
}
