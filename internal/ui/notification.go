package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// NotificationTTL is how long a notification stays on screen.
const NotificationTTL = 4 * time.Second

// NotifyLevel selects the notification style.
type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifySuccess
	NotifyError
)

// Notification is the single transient message line under the content.
// A newer notification replaces an older one; ID ties expiry ticks to it.
type Notification struct {
	ID    int
	Level NotifyLevel
	Text  string
}

// Active reports whether there is anything to show.
func (n Notification) Active() bool {
	return n.Text != ""
}

// View renders the notification line.
func (n Notification) View() string {
	if !n.Active() {
		return ""
	}
	switch n.Level {
	case NotifySuccess:
		return Styles.NoticeSuccess.Render("✓ " + n.Text)
	case NotifyError:
		return Styles.NoticeError.Render("✗ " + n.Text)
	default:
		return Styles.NoticeInfo.Render("• " + n.Text)
	}
}

// notifyMsgCmd wraps a NotifyMsg in a command.
func notifyMsgCmd(level NotifyLevel, text string) tea.Cmd {
	return func() tea.Msg {
		return NotifyMsg{Level: level, Text: text}
	}
}

// expireNotificationCmd schedules removal of notification id.
func expireNotificationCmd(id int, ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return clearNotificationMsg{ID: id}
	})
}
