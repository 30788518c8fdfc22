package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/tsender/internal/airdrop"
	"github.com/Mohsinsiddi/tsender/internal/amount"
	"github.com/Mohsinsiddi/tsender/internal/debounce"
	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/validate"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ── Feeds ────────────────────────────────────────────────────────────────────

// SnapshotFeed hands coordinator snapshots to the form. Only the newest
// undelivered snapshot is kept, so publishers never block.
type SnapshotFeed struct {
	ch chan debounce.Snapshot
}

// NewSnapshotFeed creates an empty feed.
func NewSnapshotFeed() *SnapshotFeed {
	return &SnapshotFeed{ch: make(chan debounce.Snapshot, 1)}
}

// Publish replaces any undelivered snapshot with s.
func (f *SnapshotFeed) Publish(s debounce.Snapshot) {
	for {
		select {
		case f.ch <- s:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// StateFeed carries orchestrator transitions to the form.
type StateFeed struct {
	ch chan airdrop.State
}

// NewStateFeed creates a feed. Transitions are dropped when the form lags.
func NewStateFeed() *StateFeed {
	return &StateFeed{ch: make(chan airdrop.State, 16)}
}

// Publish records s without blocking.
func (f *StateFeed) Publish(s airdrop.State) {
	select {
	case f.ch <- s:
	default:
	}
}

// ── Model ────────────────────────────────────────────────────────────────────

// Editor is the part of the debounce coordinator the form drives.
type Editor interface {
	Edit(f form.Field, value string)
}

// SubmitFunc runs one submission and returns the success notice.
type SubmitFunc func(fields form.Fields) (string, error)

// FormOptions wires a FormModel.
type FormOptions struct {
	Network string
	Account string // empty when no wallet is connected
	Initial form.Fields
	Editor  Editor
	Snaps   *SnapshotFeed
	States  *StateFeed // optional
	Submit  SubmitFunc
	OnTouch func() // called on every edit, e.g. to clear a finished run
}

type snapshotMsg debounce.Snapshot

type stateMsg airdrop.State

type submitDoneMsg struct {
	notice string
	err    error
}

// focusSubmit is the button, after the three inputs.
const focusSubmit = 3

var fieldLabels = map[form.Field]string{
	form.FieldToken:      "Token Address",
	form.FieldRecipients: "Recipients (comma or new line separated)",
	form.FieldAmounts:    "Amounts (tokens; comma or new line separated)",
}

var fieldPlaceholders = map[form.Field]string{
	form.FieldToken:      "0x",
	form.FieldRecipients: "0x123..., 0x456...",
	form.FieldAmounts:    "100, 200, 300...",
}

// FormModel is the Bubble Tea model for the airdrop form: three text
// inputs with inline errors, a token details panel and a gated submit.
type FormModel struct {
	opts FormOptions

	fields  form.Fields
	snap    debounce.Snapshot
	blocked form.Errors // reasons from the last blocked run, cleared on edit
	focus   int

	submitting bool
	phase      airdrop.State
	notice     string
	failure    string

	// Fields is the form content when the program exits.
	Fields   form.Fields
	Quitting bool
}

// NewFormModel creates the model and replays any restored draft into the editor.
func NewFormModel(opts FormOptions) FormModel {
	m := FormModel{opts: opts, fields: opts.Initial, Fields: opts.Initial}
	m.snap.Fields = opts.Initial
	for _, f := range form.AllFields {
		if v := opts.Initial.Get(f); v != "" && opts.Editor != nil {
			opts.Editor.Edit(f, v)
		}
	}
	return m
}

func (m FormModel) Init() tea.Cmd {
	return tea.Batch(m.waitSnapshot(), m.waitState())
}

func (m FormModel) waitSnapshot() tea.Cmd {
	if m.opts.Snaps == nil {
		return nil
	}
	ch := m.opts.Snaps.ch
	return func() tea.Msg { return snapshotMsg(<-ch) }
}

func (m FormModel) waitState() tea.Cmd {
	if m.opts.States == nil {
		return nil
	}
	ch := m.opts.States.ch
	return func() tea.Msg { return stateMsg(<-ch) }
}

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = debounce.Snapshot(msg)
		return m, m.waitSnapshot()

	case stateMsg:
		m.phase = airdrop.State(msg)
		return m, m.waitState()

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.failure = msg.err.Error()
			var blocked *airdrop.BlockedError
			if errors.As(msg.err, &blocked) {
				m.blocked = blocked.Errors
			}
			return m, nil
		}
		m.notice = msg.notice
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m FormModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Quitting = true
		m.Fields = m.fields
		return m, tea.Quit
	case "tab", "down":
		m.focus = (m.focus + 1) % (focusSubmit + 1)
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + focusSubmit) % (focusSubmit + 1)
		return m, nil
	case "ctrl+s":
		return m.trySubmit()
	}

	if m.focus == focusSubmit {
		if msg.Type == tea.KeyEnter {
			return m.trySubmit()
		}
		return m, nil
	}

	f := form.Field(m.focus)
	value := m.fields.Get(f)
	switch msg.Type {
	case tea.KeyEnter:
		if f == form.FieldToken {
			m.focus++
			return m, nil
		}
		value += "\n"
	case tea.KeyBackspace:
		if value == "" {
			return m, nil
		}
		r := []rune(value)
		value = string(r[:len(r)-1])
	case tea.KeyCtrlU:
		value = ""
	case tea.KeySpace:
		value += " "
	case tea.KeyRunes:
		value += string(msg.Runes)
	default:
		return m, nil
	}
	m.edit(f, value)
	return m, nil
}

func (m *FormModel) edit(f form.Field, value string) {
	m.fields = m.fields.With(f, value)
	m.Fields = m.fields
	m.blocked = form.Errors{}
	m.notice, m.failure = "", ""
	if m.opts.Editor != nil {
		m.opts.Editor.Edit(f, value)
	}
	if m.opts.OnTouch != nil {
		m.opts.OnTouch()
	}
}

func (m FormModel) trySubmit() (tea.Model, tea.Cmd) {
	if !m.snap.CanSubmit(m.submitting) || m.snap.Fields != m.fields || m.opts.Submit == nil {
		return m, nil
	}
	m.submitting = true
	m.notice, m.failure = "", ""
	submit, fields := m.opts.Submit, m.fields
	return m, func() tea.Msg {
		notice, err := submit(fields)
		return submitDoneMsg{notice: notice, err: err}
	}
}

// ── View ─────────────────────────────────────────────────────────────────────

var (
	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			Width(64)
	focusedInputStyle = inputStyle.BorderForeground(ColorHighlight)
	buttonStyle       = lipgloss.NewStyle().Padding(0, 2).Bold(true)
)

func (m FormModel) View() string {
	var sb strings.Builder

	sb.WriteString(Banner() + "\n")
	account := StyleWarning.Render("not connected")
	if m.opts.Account != "" {
		account = Addr(m.opts.Account)
	}
	sb.WriteString(Meta("network ") + ChainName(m.opts.Network) + Meta("  account ") + account + "\n\n")

	for _, f := range form.AllFields {
		sb.WriteString(m.renderInput(f))
	}

	sb.WriteString(m.renderTokenPanel())
	sb.WriteString(m.renderSubmit() + "\n")

	switch {
	case m.notice != "":
		sb.WriteString("\n" + Success(m.notice) + "\n")
	case m.failure != "":
		sb.WriteString("\n" + Err(m.failure) + "\n")
	}

	sb.WriteString("\n" + Meta("tab/↑↓ move · enter newline · ctrl+s send · ctrl+u clear field · esc quit"))
	return sb.String() + "\n"
}

func (m FormModel) renderInput(f form.Field) string {
	focused := m.focus == int(f)
	value := m.fields.Get(f)

	label := StyleMeta.Render(fieldLabels[f])
	if focused {
		label = StyleHeader.Render(fieldLabels[f])
	}

	body := value
	if body == "" && !focused {
		body = StyleDim.Render(fieldPlaceholders[f])
	}
	if focused {
		body += "█"
	}

	style := inputStyle
	if focused {
		style = focusedInputStyle
	}

	out := label + "\n" + style.Render(body) + "\n"
	if msg := m.fieldError(f); msg != "" {
		out += StyleError.Render("  "+msg) + "\n"
	}
	return out
}

// fieldError prefers the live coordinator result; a blocked run's reason
// is shown until the next edit.
func (m FormModel) fieldError(f form.Field) string {
	if msg := m.snap.Errors.Get(f); msg != "" {
		return msg
	}
	return m.blocked.Get(f)
}

func (m FormModel) renderTokenPanel() string {
	switch {
	case m.snap.Resolving:
		return Meta("  Loading token details...") + "\n\n"
	case m.snap.Metadata == nil:
		return "\n"
	}

	meta := m.snap.Metadata
	pairs := [][2]string{
		{"Token", meta.Symbol},
		{"Decimals", fmt.Sprintf("%d", meta.Decimals)},
	}
	if meta.HasBalance() {
		pairs = append(pairs, [2]string{"Balance", amount.FormatUnits(meta.Balance, meta.Decimals) + " " + meta.Symbol})
	}
	pairs = append(pairs, [2]string{"Amount (tokens)", formatTotal(m.fields.Amounts)})
	if total, ok := totalUnits(m.fields.Amounts, meta.Decimals); ok {
		pairs = append(pairs, [2]string{"Amount (base units)", total})
	}
	return KeyValueBlock("Transaction Details", pairs) + "\n"
}

func (m FormModel) renderSubmit() string {
	if m.submitting {
		label := "Processing..."
		if m.phase.Running() {
			label = fmt.Sprintf("Processing... (%s)", m.phase)
		}
		return buttonStyle.Foreground(ColorWarning).Render(label)
	}

	style := buttonStyle.Foreground(ColorMeta)
	if m.snap.CanSubmit(false) && m.snap.Fields == m.fields {
		style = buttonStyle.Foreground(ColorSuccess)
	}
	if m.focus == focusSubmit {
		style = style.Reverse(true)
	}
	return style.Render("[ Send Tokens ]")
}

// ── helpers ──────────────────────────────────────────────────────────────────

func formatTotal(text string) string {
	return amount.FormatTotal(amount.CalculateTotal(text))
}

func totalUnits(text string, decimals uint8) (string, bool) {
	entries, msg := validate.Amounts(text)
	if msg != "" {
		return "", false
	}
	units, _, err := validate.BaseUnits(entries, decimals)
	if err != nil {
		return "", false
	}
	return amount.Sum(units).String(), true
}

// RunForm runs the form until the user quits and returns the final fields.
func RunForm(opts FormOptions) (form.Fields, error) {
	p := tea.NewProgram(NewFormModel(opts))
	final, err := p.Run()
	if err != nil {
		return opts.Initial, fmt.Errorf("form error: %w", err)
	}
	return final.(FormModel).Fields, nil
}
