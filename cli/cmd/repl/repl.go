package repl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/jmes/jmespath"
	"github.com/ardnew/jmes/log"
)

// editDocMsg is sent when document editing completes successfully.
type editDocMsg struct{ doc *jmespath.Value }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc, or ':' on an empty line, to toggle mode):

  help           Print this help
  keys [EXPR]    List the member names of the document or of EXPR's result
  funcs [NAME]   List functions, fuzzy-filtered by NAME
  edit           Edit the document in $EDITOR
  clear          Clear screen
  quit           Exit REPL

Usage:
  Type a JMESPath expression to search the document
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// Config holds what a REPL session queries and where it keeps state.
type Config struct {
	// Document is the value expressions are searched against.
	Document *jmespath.Value
	// Registry supplies the functions available to expressions. Nil selects
	// [jmespath.Builtins].
	Registry *jmespath.Registry
	// CacheDir holds the history file. Empty disables persistence.
	CacheDir string
	Logger   log.Logger
	// Options are passed to [tea.NewProgram].
	Options []tea.ProgramOption
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	doc          *jmespath.Value
	registry     *jmespath.Registry
	cache        *jmespath.Cache
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts an interactive session over cfg.Document and blocks until the
// user quits or ctx is done.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.Document == nil {
		return ErrNoDocument
	}

	var historyPath string
	if cfg.CacheDir != "" {
		historyPath = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history", log.Err(err))
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("history_entries", history.Len()),
		slog.String("document", cfg.Document.Kind().String()),
	)

	m := newModel(ctx, cfg, history)

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, cfg.Options...)

	_, err = tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	registry := cfg.Registry
	if registry == nil {
		registry = jmespath.Builtins()
	}

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		doc:        cfg.Document,
		registry:   registry,
		cache:      jmespath.NewCache(jmespath.DefaultCacheCapacity, jmespath.WithRegistry(registry), jmespath.WithLogger(cfg.Logger)),
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
		suggIdx:    -1,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case editDocMsg:
		m.doc = msg.doc
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.String("document", m.doc.Kind().String()),
		)

		return m, tea.Println(resultStyle.Render("document updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	return b.String()
}

// statusLine renders the line under the input: a history position, a hint,
// a function signature, or the completion bar.
func (m model) statusLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression, or ':' for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if m.mode == modeEval {
		call := detectFunctionCall(input, m.input.Position())
		if fn, ok := m.registry.Lookup(call.name); call.inCall && ok {
			return renderSignatureHint(fn, call.argIndex)
		}
	}

	return m.renderCandidateBar()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		m.refreshMatches(true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches(false)

			return m, nil
		}

		return m.toggleMode(), nil

	case tea.KeyRunes:
		if m.mode == modeEval && m.input.Value() == "" && msg.String() == ":" {
			return m.toggleMode(), nil
		}

		// Space breaks out of tab-cycling, keeping the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refreshMatches(true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows, etc.) edits or moves
	// without auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(false)

	return m, cmd
}

// cycle moves the tab selection by step. A single candidate is completed
// and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceCurrentWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceCurrentWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with
// replacement and moves the cursor after it.
func (m *model) replaceCurrentWord(replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the completion candidates. With autoConfirm,
// a sole candidate equal to the typed word is accepted so that the bar
// disappears. Deletions and cursor movement pass false so editing never
// triggers a completion.
func (m *model) refreshMatches(autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", log.Err(err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	out, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(out)))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// evaluate searches the document with expr and returns the indented JSON
// result. On failure it returns the error text, with a caret snippet for
// expression errors.
func (m model) evaluate(expr string) (string, error) {
	ctx := m.ctxFunc()

	result, err := m.search(ctx, expr)
	if err != nil {
		m.logger.TraceContext(ctx, "repl eval failed", log.Err(err))

		var jerr *jmespath.Error
		if errors.As(err, &jerr) {
			return "error: " + err.Error() + "\n" + jerr.Snippet(), err
		}

		return "error: " + err.Error(), err
	}

	m.logger.TraceContext(ctx, "repl eval result",
		slog.String("kind", result.Kind().String()),
	)

	var buf bytes.Buffer
	if err := json.Indent(&buf, result.AppendJSON(nil), "", "  "); err != nil {
		return "error: " + err.Error(), err
	}

	return buf.String(), nil
}

func (m model) search(ctx context.Context, expr string) (*jmespath.Value, error) {
	q, err := m.cache.Compile(expr)
	if err != nil {
		return nil, err
	}

	return q.SearchContext(ctx, m.doc)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	input = strings.TrimPrefix(input, ":")

	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	args = strings.TrimSpace(args)

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "k", "keys":
		out, err := m.listKeys(args)
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render(out)))
		}

		return m, tea.Sequence(echo, tea.Println(out))

	case "f", "funcs":
		return m, tea.Sequence(echo, tea.Println(m.listFuncs(args)))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + name + " (try 'help')"),
		)
	}
}

// listKeys renders the member names of the document, or of the result of
// expr when given, one per line.
func (m model) listKeys(expr string) (string, error) {
	v := m.doc

	if expr != "" {
		var err error

		v, err = m.search(m.ctxFunc(), expr)
		if err != nil {
			return "error: " + err.Error(), err
		}
	}

	var b strings.Builder

	for _, name := range memberNames(v) {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(v, name)))
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// preview summarizes the member name of v: its kind and size, or a
// scalar's JSON text.
func preview(v *jmespath.Value, name string) string {
	member := v.Get(name)
	if v.Kind() == jmespath.KindArray {
		return "(" + strconv.Itoa(v.Len()) + " elements)"
	}

	switch member.Kind() {
	case jmespath.KindArray:
		return fmt.Sprintf("[ %d items ]", member.Len())
	case jmespath.KindObject:
		return fmt.Sprintf("{ %d members }", member.Len())
	}

	text := member.String()
	if utf8Len := len([]rune(text)); utf8Len > 40 {
		text = string([]rune(text)[:37]) + "..."
	}

	return text
}

// listFuncs renders the registered function signatures, fuzzy-filtered by
// pattern when given.
func (m model) listFuncs(pattern string) string {
	names := m.registry.Names()

	if pattern != "" {
		matches := fuzzy.Find(pattern, names)

		names = names[:0:0]
		for _, match := range matches {
			names = append(names, match.Str)
		}
	}

	var b strings.Builder

	for _, name := range names {
		if fn, ok := m.registry.Lookup(name); ok {
			b.WriteString("  " + renderSignatureHint(fn, -1) + "\n")
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		doc:     m.doc,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.newDoc == nil:
			return editCancelledMsg{}
		default:
			return editDocMsg{doc: cmd.newDoc}
		}
	})
}

// historyStep moves through history by step (-1 older, +1 newer). With
// sameMode only entries of the current mode are visited; otherwise the
// mode follows the entry. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		m.refreshMatches(false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches(false)
	}

	return m
}

// toggleMode switches between eval and control modes.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to mode, saving the current input and restoring
// the input last left in mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	m.tabActive = false

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.refreshMatches(false)

	return m
}
