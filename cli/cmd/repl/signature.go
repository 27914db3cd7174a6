package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/jmes/jmespath"
)

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string
	argIndex int  // 0-based index of the argument under the cursor
	inCall   bool // cursor is inside the parameter list
}

// detectFunctionCall reports whether the cursor is inside a function call's
// parameter list, and if so which function and argument. Parentheses,
// brackets, and braces nest, so commas inside [a, b] or {k: v} do not count
// as argument separators.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open := -1
	depth := 0

scan:
	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ')', ']', '}':
			depth++
		case '[', '{':
			depth--
		case '(':
			if depth == 0 {
				open = i

				break scan
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	nameStart := open
	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if !isIdentRune(r) {
			break
		}

		nameStart -= size
	}

	name := input[nameStart:open]
	if name == "" {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// signatureParams renders each parameter of sig. Optional parameters are
// bracketed and a variadic tail ends with "...".
func signatureParams(sig jmespath.Signature) []string {
	params := make([]string, 0, len(sig.Params)+1)

	for i, p := range sig.Params {
		param := p.String()
		if i >= sig.MinArgs() {
			param = "[" + param + "]"
		}

		params = append(params, param)
	}

	if sig.Variadic != 0 {
		params = append(params, sig.Variadic.String()+"...")
	}

	return params
}

// renderSignatureHint renders fn's signature with the parameter at argIdx
// highlighted. A variadic tail stays highlighted for every further argument.
func renderSignatureHint(fn *jmespath.Function, argIdx int) string {
	params := signatureParams(fn.Signature)

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(fn.Name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasSuffix(param, "...")
		if argIdx == i || variadic && argIdx > i {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
