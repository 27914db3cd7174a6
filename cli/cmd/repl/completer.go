package repl

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/jmes/jmespath"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "keys", "funcs", "edit", "clear", "quit"}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// wordBounds returns the identifier at the cursor and its byte boundaries
// within input. The word is empty when the cursor sits between two
// non-identifier characters.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// chainStart returns the start of the member-access chain ending at end:
// identifiers, dots, '@', quoted identifiers, and balanced bracket groups
// such as [0], [*], [] or [?a == b].
func chainStart(input string, end int) int {
	pos := end

	for pos > 0 {
		c := input[pos-1]

		switch {
		case c == '.' || c == '@' || c < utf8.RuneSelf && isIdentRune(rune(c)):
			pos--

		case c == ']':
			open := matchBackward(input, pos-1, '[', ']')
			if open < 0 {
				return pos
			}

			pos = open

		case c == '"':
			open := strings.LastIndexByte(input[:pos-1], '"')
			if open < 0 {
				return pos
			}

			pos = open

		default:
			return pos
		}
	}

	return pos
}

// matchBackward returns the index of the opener matching the closer at
// input[at], or -1.
func matchBackward(input string, at int, opener, closer byte) int {
	depth := 0

	for i := at; i >= 0; i-- {
		switch input[i] {
		case closer:
			depth++
		case opener:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// scope describes where the word at the cursor is evaluated.
type scope struct {
	// pipe is the expression left of the innermost enclosing '|', if any.
	pipe string
	// filter is the chain whose elements an enclosing '[?' filter visits.
	filter string
	// parent is the chain before the word's trailing dot.
	parent string
}

// target returns the expression whose result supplies the members that may
// follow the cursor, or "" for the document root.
func (s scope) target() string {
	expr := s.parent

	if s.filter != "" {
		expr = s.filter + "[*]"
		if s.parent != "" {
			expr += "." + s.parent
		}
	}

	if s.pipe != "" {
		return s.pipe + " | " + cmp.Or(expr, "@")
	}

	return expr
}

// topLevel reports whether the word starts a new chain, where function
// names are also valid.
func (s scope) topLevel() bool { return s.parent == "" }

// scopeAt analyzes input up to wordStart.
func scopeAt(input string, wordStart int) scope {
	var s scope

	start := chainStart(input, wordStart)
	if chain := input[start:wordStart]; strings.HasSuffix(chain, ".") {
		s.parent = strings.TrimSuffix(chain, ".")
	}

	// Walk left over the enclosing brackets looking for an unclosed filter
	// and the nearest pipe at the same nesting depth.
	depth := 0

	for i := start - 1; i >= 0; i-- {
		switch c := input[i]; c {
		case ')', ']', '}':
			depth++

		case '(', '{':
			depth--

		case '[':
			if depth == 0 && s.filter == "" && i+1 < len(input) && input[i+1] == '?' {
				s.filter = strings.TrimSpace(input[chainStart(input, i):i])
				if s.filter == "" {
					s.filter = "@"
				}
			}

			depth--

		case '|':
			if depth > 0 || i > 0 && input[i-1] == '|' || i+1 < len(input) && input[i+1] == '|' {
				continue
			}

			if depth == 0 {
				s.pipe = strings.TrimSpace(input[:i])

				return s
			}
		}

		if depth < 0 {
			depth = 0
		}
	}

	return s
}

// memberNames returns the keys of an object, or the union of the keys of
// the objects in an array, in first-seen order.
func memberNames(v *jmespath.Value) []string {
	switch v.Kind() {
	case jmespath.KindObject:
		return v.Keys()

	case jmespath.KindArray:
		var names []string

		for _, item := range v.Items() {
			for _, key := range item.Keys() {
				if !slices.Contains(names, key) {
					names = append(names, key)
				}
			}
		}

		return names
	}

	return nil
}

// candidates returns the names that may complete the word at wordStart.
func (m model) candidates(input string, wordStart int) []string {
	s := scopeAt(input, wordStart)

	cur := m.doc
	if expr := s.target(); expr != "" {
		v, err := m.cache.Search(expr, m.doc)
		if err != nil {
			return nil
		}

		cur = v
	}

	names := memberNames(cur)

	if s.topLevel() {
		names = append(names, m.registry.Names()...)
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best first, with the word boundaries. An empty word yields
// every candidate after a dot and nothing elsewhere, so the hint line stays
// visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	if m.mode == modeCtrl {
		if word == "" {
			return nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		candidates = m.candidates(input, wordStart)

		if word == "" {
			if wordStart == 0 || input[wordStart-1] != '.' || len(candidates) == 0 {
				return nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. Matched characters are highlighted and the selected
// candidate (while tab-cycling) uses the selected style.
func (m model) renderCandidateBar() string {
	if len(m.matches) == 0 || m.width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range m.matches {
		rendered := m.renderCandidate(match, m.tabActive && i == m.suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > m.width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// highlighted. Functions get a "()" suffix that is not part of the
// completion.
func (m model) renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if m.mode == modeEval {
		if _, ok := m.registry.Lookup(match.Str); ok {
			b.WriteString(base.Render("()"))
		}
	}

	return b.String()
}
