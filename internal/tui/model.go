package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"vaultfire/internal/engine"
	"vaultfire/internal/storage"
	"vaultfire/internal/ui"
)

const recentReflections = 5

type boardModel struct {
	ctx  context.Context
	svc  *engine.Service
	user string

	width  int
	height int

	record      *storage.UserRecord
	reflections []storage.Reflection
	signal      *storage.RewardSignal

	compose   textarea.Model
	composing bool
	public    bool

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	record      *storage.UserRecord
	reflections []storage.Reflection
	signal      *storage.RewardSignal
	err         error
}

type submittedMsg struct {
	sub *engine.Submission
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service, user string) boardModel {
	ta := textarea.New()
	ta.Placeholder = "What did you face today?"
	ta.CharLimit = 2000
	ta.SetWidth(60)
	ta.SetHeight(4)
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		user:    user,
		compose: ta,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		rec, err := m.svc.User(m.ctx, m.user)
		if err != nil {
			return loadedMsg{err: err}
		}
		refs, err := m.svc.UserReflections(m.ctx, m.user)
		if err != nil {
			return loadedMsg{err: err}
		}
		sig, err := m.svc.LastSignal(m.ctx, m.user)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{record: rec, reflections: refs, signal: sig}
	}
}

func (m boardModel) submitCmd(text string, public bool) tea.Cmd {
	return func() tea.Msg {
		sub, err := m.svc.Submit(m.ctx, engine.ReflectionInput{
			User:   m.user,
			Text:   text,
			Public: public,
			Now:    time.Now(),
		})
		return submittedMsg{sub: sub, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 10 {
			m.compose.SetWidth(msg.Width - 4)
		}
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.record = msg.record
		m.reflections = msg.reflections
		m.signal = msg.signal
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case submittedMsg:
		if msg.err != nil {
			m.lastLog = "Reflection failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = submissionLog(msg.sub)
		return m, m.loadCmd()
	case tea.KeyMsg:
		if m.composing {
			return m.updateCompose(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "n":
			m.composing = true
			m.public = false
			cmd := m.compose.Focus()
			return m, cmd
		case "p":
			m.composing = true
			m.public = true
			cmd := m.compose.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func (m boardModel) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.composing = false
		m.compose.Blur()
		return m, nil
	case "ctrl+s":
		text := strings.TrimSpace(m.compose.Value())
		if text == "" {
			m.lastLog = "Nothing to submit."
			return m, nil
		}
		m.composing = false
		m.compose.Blur()
		m.compose.Reset()
		m.lastLog = "Submitting…"
		return m, m.submitCmd(text, m.public)
	}
	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 20 {
			leftW = 20
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	out := header + "\n" + body.String()
	if m.composing {
		kind := "private"
		if m.public {
			kind = "public"
		}
		out += "\n" + ui.H2.Render("New "+kind+" reflection") + " " + ui.Muted.Render("(ctrl+s submit, esc cancel)") + "\n" + m.compose.View() + "\n"
	}
	return out + footer
}

func (m boardModel) renderHeader() string {
	if m.record == nil {
		if m.loading {
			return "Vaultfire: loading…"
		}
		return fmt.Sprintf("Vaultfire | %s | no reflections yet", m.user)
	}
	cur, next := engine.RankInfo(m.record.XP)
	bar := progressBar(engine.ProgressWithinRank(m.record.XP), 30)
	nextText := "max rank"
	if next != nil {
		nextText = fmt.Sprintf("%s XP to %s", humanize.Comma(int64(next.Min-m.record.XP)), next.Label)
	}
	return fmt.Sprintf("Vaultfire | %s | %s %s | XP %s %s %s",
		m.user, cur.Badge, cur.Label, humanize.Comma(int64(m.record.XP)), bar, nextText)
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Progress"}
	if m.record == nil {
		lines = append(lines, "- streak: 0", "")
	} else {
		lines = append(lines, fmt.Sprintf("- streak: %d day(s)", m.record.Streak))
		if m.record.Title != "" {
			lines = append(lines, "- title: "+m.record.Title)
		}
		if m.record.ChainRituals > 0 {
			lines = append(lines, fmt.Sprintf("- chain rituals: %d", m.record.ChainRituals))
		}
		if m.record.VaultRevealed {
			lines = append(lines, "- "+ui.IconVault+" vault revealed")
		}
		for _, b := range m.record.Badges {
			lines = append(lines, "- "+ui.IconTrophy+" "+b)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "Rituals")
	for _, r := range engine.Rituals(m.record) {
		lines = append(lines, fmt.Sprintf("- %s %s", ui.RitualIcon(r.Icon, r.Unlocked), r.Name))
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- n: private reflection")
	lines = append(lines, "- p: public reflection")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Signal")
	if m.signal == nil {
		out = append(out, "(no signal yet)")
	} else {
		out = append(out, fmt.Sprintf("- x%.2f yield %.2f", m.signal.RewardMultiplier, m.signal.Yield))
		if m.signal.Growth != "" {
			out = append(out, "- growth: "+m.signal.Growth)
		}
		if len(m.signal.TopTraits) > 0 {
			out = append(out, "- traits: "+strings.Join(m.signal.TopTraits, ", "))
		}
	}
	out = append(out, "")
	out = append(out, "Recent reflections")

	recent := m.reflections
	if len(recent) > recentReflections {
		recent = recent[len(recent)-recentReflections:]
	}
	if len(recent) == 0 {
		out = append(out, "(empty)")
		return strings.Join(out, "\n")
	}
	for i := len(recent) - 1; i >= 0; i-- {
		ref := recent[i]
		vis := "private"
		if ref.Public {
			vis = "public"
		}
		out = append(out, fmt.Sprintf("- %s +%d XP (%s) %s",
			humanize.Time(ref.Timestamp), ref.XPGain, vis, truncate(ref.Content, 40)))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func submissionLog(sub *engine.Submission) string {
	res := sub.Reflection
	msg := fmt.Sprintf("+%d XP (streak %d, %s)", res.XPGained, res.Streak, res.Step)
	if res.RankUp {
		msg += fmt.Sprintf(" %s %s → %s", ui.BadgeRankUp, res.RankBefore.Label, res.RankAfter.Label)
	}
	if len(sub.Unlock.Unlocked) > 0 {
		msg += " | rituals: " + strings.Join(sub.Unlock.Unlocked, ", ")
	}
	if sub.Unlock.VaultRevealed {
		msg += " | vault revealed"
	}
	if len(sub.Chain) > 0 {
		msg += " | chain ritual: " + strings.Join(sub.Chain, ", ")
	}
	return msg
}

func progressBar(frac float64, width int) string {
	if width <= 3 {
		width = 3
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
