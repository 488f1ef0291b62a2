package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/teamtodo/internal/scheduler"
	"github.com/sandeepkv93/teamtodo/internal/views"
)

const maxNotifications = 40

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderTasksView() string {
	v := m.Frame.Tasks()
	if len(v.Rows) == 0 {
		return views.RenderTaskPanel(v, 0)
	}
	header := fmt.Sprintf("tasks: %d of %d | filter: %s | user: %s | sort: %s", len(v.Rows), v.Total, v.Status, v.AssigneeName, v.Sort)
	if v.Search != "" {
		header += fmt.Sprintf(" | search: %q", v.Search)
	}
	return header + "\n" + m.taskTable.View()
}

func (m Model) renderGoalSummary() string {
	g := m.Frame.Goals()
	s := m.Frame.Stats()
	return fmt.Sprintf("tasks done %d/%d\n%s\n\ngoals %s: %d/%d done\n%s",
		s.Completed, s.Total, m.rateProgress.ViewAs(float64(s.Rate)/100),
		g.Month, g.Summary.Completed, g.Summary.Total, m.rateProgress.ViewAs(float64(g.Summary.Percent)/100))
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}

// ToastExpiry returns a toast hook that schedules each toast's dismissal
// d after it was shown. The toast the frame evicts to make room loses its
// pending expiry.
func ToastExpiry(engine *scheduler.Engine, d time.Duration) func(views.Toast) {
	return func(t views.Toast) {
		if engine == nil || d <= 0 {
			return
		}
		if evicted := t.ID - views.MaxToasts; evicted > 0 {
			engine.Cancel(toastEventID(evicted))
		}
		_ = engine.Schedule(scheduler.Event{
			ID:        toastEventID(t.ID),
			Kind:      scheduler.KindToastExpiry,
			Ref:       t.ID,
			TriggerAt: t.At.Add(d),
		})
	}
}

func toastEventID(id int) string {
	return fmt.Sprintf("toast-%d", id)
}
