package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/termchat/termchat/internal/config"
	"github.com/termchat/termchat/internal/engine"
	"github.com/termchat/termchat/internal/models"
	"github.com/termchat/termchat/internal/provider"
	"github.com/termchat/termchat/internal/render"
	"github.com/termchat/termchat/internal/stream"
)

var (
	sInfo     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	sErr      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	sOK       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	sWarn     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	sPrompt   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	sFaint    = lipgloss.NewStyle().Faint(true)
	sHint     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sHintSel  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	sBar      = lipgloss.NewStyle().Faint(true)
	sDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sBold     = lipgloss.NewStyle().Bold(true)
	sThink    = lipgloss.NewStyle().Faint(true).Italic(true)
	sThinkHdr = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	sReplyHdr = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	sPanel    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("6")).Padding(0, 1)
)

func banner(model string) string {
	var b strings.Builder
	b.WriteString(sInfo.Bold(true).Render("🤖 TermChat — Terminal AI Assistant") + "\n\n")
	b.WriteString(sDim.Render("Current model: "+model) + "\n")
	b.WriteString(sBold.Render("Commands:") + "\n")
	b.WriteString(sDim.Render("  /help    - Show this help") + "\n")
	b.WriteString(sDim.Render("  /model   - Change AI model") + "\n")
	b.WriteString(sDim.Render("  /clear   - Clear conversation") + "\n")
	b.WriteString(sDim.Render("  /quit    - Exit the application") + "\n\n")
	b.WriteString(sOK.Render("Type your message and press Enter to chat!"))
	return sPanel.Render(b.String())
}

func helpText() string {
	var b strings.Builder
	b.WriteString(sInfo.Bold(true).Render("TermChat Commands:") + "\n\n")
	b.WriteString(sDim.Render("  /help    - Show this help message") + "\n")
	b.WriteString(sDim.Render("  /model   - Change the AI model") + "\n")
	b.WriteString(sDim.Render("  /clear   - Clear conversation history") + "\n")
	b.WriteString(sDim.Render("  /quit    - Exit the application") + "\n\n")
	b.WriteString(sBold.Render("Tips:") + "\n")
	b.WriteString(sDim.Render("  • Press Esc or Ctrl+C to interrupt a streaming reply") + "\n")
	b.WriteString(sDim.Render("  • Conversation history is kept until cleared") + "\n")
	b.WriteString(sDim.Render("  • Use /model to switch between AI models"))
	return sPanel.BorderForeground(lipgloss.Color("4")).Render(b.String())
}

type streamFragMsg provider.Fragment
type streamDoneMsg struct{ answer string }
type streamErrMsg struct{ err error }

// inputMode is what the prompt line currently means.
type inputMode int

const (
	modePrompt inputMode = iota
	modeConfirmQuit
	modeConfirmClear
	modePickModel
)

// --- completions ---

var slashCommands = []string{"/help", "/model", "/clear", "/quit", "/exit"}

func (m *chatModel) completions() []string {
	val := strings.ToLower(m.input.Value())
	if !strings.HasPrefix(val, "/") || strings.ContainsAny(val, " \t") {
		return nil
	}
	var out []string
	for _, c := range slashCommands {
		if strings.HasPrefix(c, val) && c != val {
			out = append(out, c)
		}
	}
	return out
}

func (m *chatModel) applyCompletion() {
	comps := m.completions()
	if len(comps) == 0 {
		return
	}
	m.input.SetValue(comps[m.compIdx%len(comps)])
	m.input.CursorEnd()
	m.compIdx = 0
}

// --- model ---

type chatModel struct {
	eng     *engine.Engine
	input   textinput.Model
	spinner spinner.Model
	width   int
	waiting bool
	mode    inputMode
	compIdx int
	// input history, in-memory only
	inputHist []string
	histIdx   int
	histBuf   string
	// streaming
	agg       *stream.Aggregator
	directive stream.Directive
	streamCh  chan tea.Msg
	cancel    context.CancelFunc
}

func initialChatModel(eng *engine.Engine) chatModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	ti.Cursor.TextStyle = lipgloss.NewStyle()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{
		eng:     eng,
		input:   ti,
		spinner: sp,
		histIdx: -1,
	}
}

// printAbove returns a tea.Cmd that prints a line above the managed View area.
func printAbove(s string) tea.Cmd {
	return tea.Println(s)
}

func (m *chatModel) statusBar() string {
	if comps := m.completions(); len(comps) > 0 {
		var hints []string
		for i, c := range comps {
			if i == m.compIdx%len(comps) {
				hints = append(hints, sHintSel.Render(c))
			} else {
				hints = append(hints, sHint.Render(c))
			}
		}
		return sHint.Render("Tab: ") + strings.Join(hints, sHint.Render("  "))
	}
	return sBar.Render(fmt.Sprintf("%s │ /help for commands", models.ShortName(m.eng.Selector.Current())))
}

func setIBeamCursor() tea.Msg {
	// \033[6 q = steady I-beam terminal cursor
	fmt.Print("\033[6 q")
	return nil
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		m.input.Cursor.SetMode(cursor.CursorStatic),
		m.spinner.Tick,
		setIBeamCursor,
		tea.Println(banner(m.eng.Selector.Current())),
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.waiting {
				// interrupt the in-flight turn, stay in the loop
				if m.cancel != nil {
					m.cancel()
				}
				return m, nil
			}
			return m, tea.Sequence(printAbove(sWarn.Render("Goodbye! 👋")), tea.Quit)
		}
		if m.waiting {
			if msg.Type == tea.KeyEsc && m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		switch m.mode {
		case modeConfirmQuit:
			return m.updateConfirmQuit(msg)
		case modeConfirmClear:
			return m.updateConfirmClear(msg)
		case modePickModel:
			return m.updatePickModel(msg)
		}
		switch msg.Type {
		case tea.KeyUp:
			if len(m.inputHist) > 0 {
				if m.histIdx == -1 {
					m.histBuf = m.input.Value()
					m.histIdx = len(m.inputHist) - 1
				} else if m.histIdx > 0 {
					m.histIdx--
				}
				m.input.SetValue(m.inputHist[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			if m.histIdx != -1 {
				if m.histIdx < len(m.inputHist)-1 {
					m.histIdx++
					m.input.SetValue(m.inputHist[m.histIdx])
				} else {
					m.histIdx = -1
					m.input.SetValue(m.histBuf)
				}
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyTab:
			if comps := m.completions(); len(comps) > 0 {
				m.compIdx = (m.compIdx + 1) % len(comps)
				m.applyCompletion()
			}
			return m, nil
		case tea.KeyShiftTab:
			if comps := m.completions(); len(comps) > 0 {
				m.compIdx = (m.compIdx - 1 + len(comps)) % len(comps)
				m.applyCompletion()
			}
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.compIdx = 0
			m.histIdx = -1
			m.histBuf = ""
			if input == "" {
				return m, nil
			}
			m.inputHist = append(m.inputHist, input)
			if strings.HasPrefix(input, "/") {
				return m.dispatchCommand(input)
			}
			m.waiting = true
			m.agg = stream.New()
			m.directive = stream.Directive{}
			return m, tea.Batch(
				printAbove(sPrompt.Render("You ▶ ")+input),
				printAbove(sReplyHdr.Render(fmt.Sprintf("AI (%s):", m.eng.Selector.Current()))),
				m.sendCmd(input),
			)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case streamFragMsg:
		if m.agg != nil {
			m.directive = m.agg.Push(provider.Fragment(msg))
		}
		return m, waitForStream(m.streamCh)

	case streamDoneMsg:
		out := m.finalBlock(msg.answer)
		m.endTurn()
		return m, printAbove(out)

	case streamErrMsg:
		m.endTurn()
		if errors.Is(msg.err, context.Canceled) {
			return m, printAbove(sWarn.Render("Response interrupted by user"))
		}
		return m, printAbove(sErr.Render("✘ " + msg.err.Error()))
	}

	prev := m.input.Value()
	if !m.waiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.input.Value() != prev {
		m.compIdx = 0
	}

	return m, tea.Batch(cmds...)
}

// endTurn resets all per-turn display state.
func (m *chatModel) endTurn() {
	if m.agg != nil {
		m.agg.Discard()
	}
	m.agg = nil
	m.directive = stream.Directive{}
	m.waiting = false
	m.cancel = nil
	m.streamCh = nil
}

// finalBlock formats the completed reply for the scrollback. Must be
// called before endTurn while the aggregator still holds the reasoning.
func (m *chatModel) finalBlock(answer string) string {
	width := m.contentWidth()
	if m.agg != nil && m.agg.HasReasoning() {
		var b strings.Builder
		b.WriteString(sThinkHdr.Render("🤔 AI was thinking:") + "\n")
		b.WriteString(sThink.Render(m.agg.Reasoning()) + "\n\n")
		b.WriteString(sReplyHdr.Render("💬 Response:") + "\n")
		b.WriteString(render.Markdown(answer, width))
		return sPanel.BorderForeground(lipgloss.Color("4")).Render(b.String())
	}
	// blank line after plain answers for spacing
	return render.Markdown(answer, width) + "\n"
}

func (m *chatModel) contentWidth() int {
	if m.width > 2 && m.width < 102 {
		return m.width - 2
	}
	return 100
}

// --- session loop: commands ---

// commandAction is the routing outcome for one input line.
type commandAction int

const (
	actionChat commandAction = iota // not a command
	actionHelp
	actionPickModel
	actionConfirmClear
	actionClearNoop
	actionConfirmQuit
	actionUnknown
)

// routeCommand maps an input line to its action. Matching is
// case-insensitive. /clear never asks for confirmation on an empty
// history.
func routeCommand(input string, historyLen int) commandAction {
	if !strings.HasPrefix(input, "/") {
		return actionChat
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/help":
		return actionHelp
	case "/model":
		return actionPickModel
	case "/clear":
		if historyLen == 0 {
			return actionClearNoop
		}
		return actionConfirmClear
	case "/quit", "/exit":
		return actionConfirmQuit
	default:
		return actionUnknown
	}
}

func (m chatModel) dispatchCommand(input string) (tea.Model, tea.Cmd) {
	switch routeCommand(input, m.eng.Conv.Len()) {
	case actionHelp:
		return m, printAbove(helpText())
	case actionPickModel:
		m.mode = modePickModel
		return m, nil
	case actionClearNoop:
		return m, nil
	case actionConfirmClear:
		m.mode = modeConfirmClear
		return m, nil
	case actionConfirmQuit:
		m.mode = modeConfirmQuit
		return m, nil
	default:
		return m, printAbove(sErr.Render("Unknown command: "+input) + "\n" +
			sDim.Render("Type /help for available commands"))
	}
}

func (m chatModel) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.mode = modePrompt
		return m, tea.Sequence(printAbove(sWarn.Render("Goodbye! 👋")), tea.Quit)
	case "n", "esc":
		m.mode = modePrompt
	}
	return m, nil
}

func (m chatModel) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.eng.Clear()
		m.mode = modePrompt
		return m, printAbove(sOK.Render("✓ Conversation cleared"))
	case "n", "esc":
		m.mode = modePrompt
	}
	return m, nil
}

func (m chatModel) updatePickModel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modePrompt
		m.input.Reset()
		return m, printAbove(sDim.Render("Keeping current model"))
	case tea.KeyEnter:
		choice := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		m.mode = modePrompt
		if choice == "" {
			return m, printAbove(sDim.Render("Keeping current model"))
		}
		idx, err := strconv.Atoi(choice)
		if err != nil {
			return m, printAbove(sWarn.Render("Invalid input - keeping current model"))
		}
		prev, cur, err := m.eng.Selector.Select(idx)
		if err != nil {
			return m, printAbove(sErr.Render("Invalid model number"))
		}
		return m, printAbove(sOK.Render(fmt.Sprintf("✓ Model changed from %s to %s",
			models.ShortName(prev), models.ShortName(cur))))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// --- views ---

// wrapInput renders the textinput value with soft-wrap and a cursor.
func (m *chatModel) wrapInput() string {
	prompt := sPrompt.Render("> ")
	promptW := 2 // "> " is 2 chars
	contentW := m.width - promptW
	if contentW < 1 {
		contentW = 1
	}

	val := m.input.Value()
	pos := m.input.Position()
	runes := []rune(val)

	// Insert a cursor marker
	const cur = "\x00"
	var buf strings.Builder
	for i, r := range runes {
		if i == pos {
			buf.WriteString(cur)
		}
		buf.WriteRune(r)
	}
	if pos >= len(runes) {
		buf.WriteString(cur)
	}
	text := buf.String()

	// Split into visual lines by display width
	textRunes := []rune(text)
	var lines []string
	for len(textRunes) > 0 {
		w := 0
		end := 0
		for end < len(textRunes) {
			r := textRunes[end]
			rw := 0
			if r != '\x00' {
				rw = runewidth.RuneWidth(r)
			}
			if w+rw > contentW && w > 0 {
				break
			}
			w += rw
			end++
		}
		if end == 0 {
			end = 1
		}
		lines = append(lines, string(textRunes[:end]))
		textRunes = textRunes[end:]
	}
	if len(lines) == 0 {
		lines = []string{cur}
	}

	// Render with cursor
	curStyle := lipgloss.NewStyle().Reverse(true)
	var out strings.Builder
	for i, line := range lines {
		pfx := "  "
		if i == 0 {
			pfx = prompt
		}
		// Replace cursor marker with styled cursor
		if strings.Contains(line, cur) {
			parts := strings.SplitN(line, cur, 2)
			ch := " "
			rest := parts[1]
			if len(rest) > 0 {
				r := []rune(rest)
				ch = string(r[0])
				rest = string(r[1:])
			}
			line = parts[0] + curStyle.Render(ch) + rest
		}
		out.WriteString(pfx + line)
		if i < len(lines)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

func (m chatModel) modelMenu() string {
	var b strings.Builder
	b.WriteString(sBold.Render("Available Models:") + "\n")
	for i, id := range m.eng.Selector.List() {
		marker := "  "
		if id == m.eng.Selector.Current() {
			marker = sOK.Render("→ ")
		}
		b.WriteString(fmt.Sprintf("%s%2d. %s\n", marker, i+1, id))
	}
	b.WriteString(sDim.Render("Current: "+m.eng.Selector.Current()) + "\n")
	b.WriteString(sDim.Render("Enter model number (or press Enter to keep current)"))
	return b.String()
}

func confirmLine(question string) string {
	return sWarn.Render(question) + sDim.Render(" [y/n] ")
}

func (m chatModel) streamView() string {
	d := m.directive
	width := m.contentWidth()
	switch {
	case d.Phase == stream.PhaseReasoning:
		return sThinkHdr.Render("🤔 AI is thinking:") + "\n" +
			sThink.Render(d.Reasoning) + "\n" +
			m.spinner.View() + sFaint.Render(" reasoning...")
	case d.Reasoning != "":
		var b strings.Builder
		b.WriteString(sThinkHdr.Render("🤔 AI was thinking:") + "\n")
		b.WriteString(sThink.Render(d.Reasoning) + "\n\n")
		b.WriteString(sReplyHdr.Render("💬 Response:") + "\n")
		b.WriteString(render.Markdown(d.Answer, width))
		return b.String() + "\n" + m.spinner.View() + sFaint.Render(" streaming...")
	case d.Answer != "":
		return render.Markdown(d.Answer, width) + "\n" +
			m.spinner.View() + sFaint.Render(" streaming...")
	default:
		return m.spinner.View() + sFaint.Render(" thinking...")
	}
}

func (m chatModel) View() string {
	if m.waiting {
		return m.streamView()
	}
	switch m.mode {
	case modeConfirmQuit:
		return confirmLine("Are you sure you want to quit?")
	case modeConfirmClear:
		return confirmLine("Clear conversation history?")
	case modePickModel:
		return m.modelMenu() + "\n" + m.wrapInput()
	}
	return m.wrapInput() + "\n" + m.statusBar()
}

// --- send to LLM ---

func waitForStream(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m *chatModel) sendCmd(input string) tea.Cmd {
	ch := make(chan tea.Msg, 64)
	m.streamCh = ch
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	eng := m.eng

	go func() {
		answer, err := eng.Send(ctx, input, func(f provider.Fragment) {
			ch <- streamFragMsg(f)
		})
		if err != nil {
			ch <- streamErrMsg{err}
			return
		}
		ch <- streamDoneMsg{answer}
	}()

	return waitForStream(ch)
}

// --- entry ---

func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sel := models.NewSelector(cfg.DefaultModel, cfg.Models)
	or := provider.NewOpenRouter(cfg.APIKey, cfg.BaseURL, cfg.AppURL, cfg.AppTitle)
	eng := engine.New(or, sel)

	p := tea.NewProgram(initialChatModel(eng))
	_, err = p.Run()
	fmt.Print("\033[0 q") // restore default cursor
	return err
}
