package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/imageposter/internal/logtail"
	"github.com/five82/imageposter/internal/state"
)

// renderMain composes header, active screen, status line and footer.
func (m Model) renderMain() string {
	styles := m.theme.Styles()

	sections := []string{m.renderHeader(styles)}
	switch m.screen {
	case ScreenRestoring:
		sections = append(sections, m.renderRestoring(styles))
	case ScreenLogin:
		sections = append(sections, m.renderLogin(styles))
	case ScreenCompose:
		sections = append(sections, m.renderCompose(styles))
	case ScreenProgress:
		sections = append(sections, m.renderProgress(styles))
	case ScreenResult:
		sections = append(sections, m.renderResult(styles))
	}
	if m.status != "" {
		style := styles.InfoText
		if m.isError {
			style = styles.DangerText
		}
		sections = append(sections, style.Render(m.status))
	}
	if m.showLogs {
		sections = append(sections, m.renderLogs(styles))
	}
	sections = append(sections, m.renderFooter(styles))

	return strings.Join(sections, "\n\n")
}

func (m Model) renderHeader(styles Styles) string {
	who := styles.MutedText.Render("not logged in")
	if m.account.ID != 0 {
		who = styles.AccentText.Render(fmt.Sprintf("%s (id %d)", m.account.Name, m.account.ID))
	}
	left := styles.Text.Bold(true).Render("imageposter")
	right := styles.FaintText.Render(m.theme.Name)
	line := left + "  " + who
	if m.width > 0 {
		gap := m.width - lipgloss.Width(line) - lipgloss.Width(right) - 2
		if gap > 0 {
			line += strings.Repeat(" ", gap)
		} else {
			line += "  "
		}
	} else {
		line += "  "
	}
	return styles.Header.Render(line + right)
}

func (m Model) renderRestoring(styles Styles) string {
	body := styles.Logo.Render(m.logo) + "\n\n" +
		m.spinner.View() + " " + styles.MutedText.Render("Checking saved session...")
	return styles.Panel.Render(body)
}

func (m Model) renderLogin(styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Logo.Render(m.logo))
	b.WriteString("\n\n")
	title := ternary(m.tokenMode, "Log in with session token", "Log in to dtf.ru")
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.activeFormView())
	if m.busy {
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View())
	}
	return styles.FocusedPanel.Render(b.String())
}

func (m Model) renderCompose(styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("New draft"))
	b.WriteString("\n\n")
	b.WriteString(m.compose.view())
	b.WriteString("\n\n")
	mark := styles.MutedText.Render("off")
	if m.watermark {
		mark = styles.SuccessText.Render("on")
	}
	b.WriteString(padRight("Watermark", 10) + mark)
	return styles.FocusedPanel.Render(b.String())
}

func (m Model) renderProgress(styles Styles) string {
	snap := m.snapshot
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(styles.Text.Bold(true).Render(phaseLabel(snap.Phase)))
	if !snap.StartedAt.IsZero() {
		b.WriteString(styles.FaintText.Render("  " + humanizeDuration(time.Since(snap.StartedAt))))
	}
	b.WriteString("\n\n")

	uploaded, failed := snap.Counts()
	b.WriteString(m.bar.ViewAs(snap.Progress()))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d of %s", uploaded+failed, plural(len(snap.Items), "file"))))
	b.WriteString("\n\n")

	b.WriteString(m.renderItems(styles, snap))
	return styles.Panel.Render(b.String())
}

func (m Model) renderResult(styles Styles) string {
	snap := m.snapshot
	uploaded, failed := snap.Counts()
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(styles.DangerText.Render("Publishing failed"))
	} else {
		b.WriteString(styles.SuccessText.Render("Draft saved"))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(fmt.Sprintf("Uploaded %d of %s", uploaded, plural(len(snap.Items), "file"))))
	if failed > 0 {
		b.WriteString(styles.WarningText.Render(fmt.Sprintf(", %d failed", failed)))
	}
	if m.draftURL != "" {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Render(m.draftURL))
	}
	if len(snap.Items) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderItems(styles, snap))
	}
	return styles.Panel.Render(b.String())
}

// renderItems lists files with a status badge. Long lists keep the
// current item in view.
func (m Model) renderItems(styles Styles, snap state.Snapshot) string {
	limit := len(snap.Items)
	if m.height > 0 {
		limit = max(3, m.height-24)
	}
	start := 0
	if len(snap.Items) > limit && snap.Current >= 0 {
		start = min(max(0, snap.Current-limit/2), len(snap.Items)-limit)
	}
	end := min(len(snap.Items), start+limit)

	nameWidth := 40
	if m.width > 0 {
		nameWidth = max(16, m.width-30)
	}

	lines := make([]string, 0, end-start+2)
	if start > 0 {
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("… %d more", start)))
	}
	for _, item := range snap.Items[start:end] {
		badge := styles.StatusStyle(item.Status).Render(padRight(item.Status, 9))
		name := truncateMiddle(item.Path, nameWidth)
		line := badge + " " + styles.Text.Render(name)
		if item.Err != nil {
			line += " " + styles.DangerText.Render(truncate(item.Err.Error(), 40))
		}
		lines = append(lines, line)
	}
	if rest := len(snap.Items) - end; rest > 0 {
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("… %d more", rest)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogs(styles Styles) string {
	if len(m.logLines) == 0 {
		return styles.Panel.Render(styles.FaintText.Render("No log output"))
	}
	width := 100
	if m.width > 0 {
		width = max(20, m.width-8)
	}
	lines := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		lines[i] = styles.LevelStyle(logtail.Level(line)).Render(truncate(line, width))
	}
	return styles.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter(styles Styles) string {
	var hints []string
	switch m.screen {
	case ScreenLogin:
		hints = []string{"enter submit", "tab next", "ctrl+t password/token", "f1 help", "ctrl+c quit"}
	case ScreenCompose:
		hints = []string{"enter publish", "ctrl+w watermark", "ctrl+o log out", "f1 help", "ctrl+c quit"}
	case ScreenProgress:
		hints = []string{"esc cancel", "l logs", "? help", "ctrl+c quit"}
	case ScreenResult:
		hints = []string{"o open", "n new post", "ctrl+o log out", "l logs", "q quit"}
	default:
		hints = []string{"ctrl+c quit"}
	}
	return styles.Footer.Render(strings.Join(hints, " • "))
}

func (m Model) activeFormView() string {
	if m.tokenMode {
		return m.token.view()
	}
	return m.login.view()
}

func phaseLabel(p state.Phase) string {
	switch p {
	case state.PhaseCreating:
		return "Creating draft"
	case state.PhaseUploading:
		return "Uploading"
	case state.PhaseSaving:
		return "Saving draft"
	case state.PhaseDone:
		return "Done"
	case state.PhaseFailed:
		return "Failed"
	default:
		return "Starting"
	}
}
