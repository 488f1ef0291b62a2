package views

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/teamtodo/internal/model"
)

const dateLayout = "2006-01-02"

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTaskPanel(v TaskListView, cursor int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tasks: %d of %d | filter: %s | user: %s | sort: %s", len(v.Rows), v.Total, v.Status, v.AssigneeName, v.Sort)
	if v.Search != "" {
		fmt.Fprintf(&b, " | search: %q", v.Search)
	}
	b.WriteString("\n")
	if len(v.Rows) == 0 {
		b.WriteString(mutedStyle.Render("(no tasks match)"))
		return b.String()
	}
	for i, row := range v.Rows {
		mark := " "
		if i == cursor {
			mark = ">"
		}
		b.WriteString(mark + " " + RenderTaskLine(row) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderTaskLine formats one task as "3 [x] text !high #cat @name date".
func RenderTaskLine(row TaskRow) string {
	box := "[ ]"
	text := row.Text
	if row.Completed {
		box = "[x]"
		text = doneStyle.Render(text)
	}
	parts := []string{fmt.Sprintf("%2d %s %s", row.Position, box, text), RenderPriority(row.Priority)}
	if row.Category != "" {
		parts = append(parts, "#"+row.Category)
	}
	parts = append(parts, "@"+row.Assignee.Name, mutedStyle.Render(row.CreatedAt.Local().Format(dateLayout)))
	return strings.Join(parts, " ")
}

func RenderPriority(p model.Priority) string {
	style, ok := priorityStyles[string(p)]
	if !ok {
		return "!" + string(p)
	}
	return style.Render("!" + string(p))
}

func RenderStatsPanel(v StatsView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "stats: %s %s .. %s\n", v.Period, v.Start.Format(dateLayout), v.End.Format(dateLayout))
	fmt.Fprintf(&b, "completion: %s %d%% (%d/%d)\n", progressBar(float64(v.Rate)/100, 20), v.Rate, v.Completed, v.Total)

	b.WriteString("\nby category:\n")
	if len(v.Categories) == 0 {
		b.WriteString(mutedStyle.Render("  (none)") + "\n")
	}
	maxCat := 0
	for _, c := range v.Categories {
		maxCat = max(maxCat, c.Count)
	}
	for _, c := range v.Categories {
		fmt.Fprintf(&b, "  %-14s %s %d\n", c.Name, bar(c.Count, maxCat, 16), c.Count)
	}

	b.WriteString("\nby priority:\n")
	counts := []struct {
		p model.Priority
		n int
	}{
		{model.PriorityHigh, v.Priority.High},
		{model.PriorityMedium, v.Priority.Medium},
		{model.PriorityLow, v.Priority.Low},
	}
	maxPri := max(v.Priority.High, v.Priority.Medium, v.Priority.Low)
	for _, c := range counts {
		fmt.Fprintf(&b, "  %-6s %s %d\n", c.p, bar(c.n, maxPri, 16), c.n)
	}

	b.WriteString("\ntrend:\n  ")
	rates := make([]int, 0, len(v.Trend))
	labels := make([]string, 0, len(v.Trend))
	for _, p := range v.Trend {
		rates = append(rates, p.Rate)
		labels = append(labels, fmt.Sprintf("%s %d%%", p.Label, p.Rate))
	}
	b.WriteString(barStyle.Render(Sparkline(rates)) + "\n")
	b.WriteString(mutedStyle.Render("  " + strings.Join(labels, " | ")))
	return b.String()
}

func RenderGoalsPanel(v GoalsView, cursor int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "goals: %s | total: %d | done: %d | rate: %d%%\n", v.Month, v.Summary.Total, v.Summary.Completed, v.Summary.Percent)
	if len(v.Rows) == 0 {
		b.WriteString(mutedStyle.Render("(no goals this month, try: goal add 5 Read five books)"))
		return b.String()
	}
	for i, row := range v.Rows {
		mark := " "
		if i == cursor {
			mark = ">"
		}
		title := row.Title
		if row.Completed {
			title = doneStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s %2d %s @%s\n     %s %d/%d %d%%\n",
			mark, row.Position, title, row.Assignee.Name,
			progressBar(float64(row.Percent)/100, 20), row.Done, row.Total, row.Percent)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderUsersPanel(v UsersView, cursor int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "users: %d | active: %s\n", len(v.Rows), v.ActiveName)
	for i, row := range v.Rows {
		mark := " "
		if i == cursor {
			mark = ">"
		}
		badge := ""
		if row.Active {
			badge = " " + activeTabStyle.Render("(active)")
		}
		fmt.Fprintf(&b, "%s %2d %s%s  open:%d done:%d\n", mark, row.Position, row.Name, badge, row.Open, row.Done)
		if row.AvatarURL != "" {
			b.WriteString(mutedStyle.Render("       "+row.AvatarURL) + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderTaskDetail is the markdown shown in the detail pane for one task.
func RenderTaskDetail(row TaskRow) string {
	status := "pending"
	if row.Completed {
		status = "completed"
	}
	category := row.Category
	if category == "" {
		category = model.Uncategorized
	}
	return fmt.Sprintf("## %s\n\n- **status:** %s\n- **priority:** %s\n- **category:** %s\n- **assignee:** %s\n- **created:** %s\n- **id:** `%s`\n",
		row.Text, status, row.Priority, category, row.Assignee.Name, row.CreatedAt.Local().Format(dateLayout), row.ID)
}

func RenderToasts(toasts []Toast) string {
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		if line := RenderNotification(t.Level, t.Message); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func RenderNotification(level Level, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	line := fmt.Sprintf("[%s] %s", strings.ToUpper(string(level)), body)
	if level == LevelError {
		return errorStyle.Render(line)
	}
	return line
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func progressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func bar(n, maxN, width int) string {
	if maxN <= 0 {
		return strings.Repeat(" ", width)
	}
	filled := n * width / maxN
	return barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat(" ", width-filled)
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline maps percentages in [0,100] onto block characters.
func Sparkline(rates []int) string {
	out := make([]rune, 0, len(rates))
	for _, r := range rates {
		r = min(max(r, 0), 100)
		out = append(out, sparkLevels[r*(len(sparkLevels)-1)/100])
	}
	return string(out)
}
