// Package notify presents transient, timed messages: generic notifications
// and achievement toasts. Every element follows the same lifecycle: inserted
// invisible, shown one step later so the entry transition can run, then
// hidden after a fixed dwell and removed once the exit transition finishes.
package notify

import (
	"bytes"
	"html/template"
	"time"

	"github.com/google/uuid"

	"github.com/sameanonim/imageboard/internal/domain"
	"github.com/sameanonim/imageboard/internal/logger"
	"github.com/sameanonim/imageboard/internal/metrics"
	"github.com/sameanonim/imageboard/internal/view"
)

// Level classifies a notification for styling purposes.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Container ids; both are created lazily on first use.
const (
	NotificationsContainer = "notifications"
	AchievementsContainer  = "achievements"
)

// Overrideable for faster tests.
var (
	showDelay            = 20 * time.Millisecond
	achievementShowDelay = 100 * time.Millisecond
	dwellTime            = 5 * time.Second
	exitDelay            = 300 * time.Millisecond
	achievementExitDelay = 500 * time.Millisecond
	staggerInterval      = time.Second

	scheduleFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
)

var achievementTemplate = template.Must(template.New("achievement").Parse(
	`<div class="achievement-content"><span class="achievement-icon">{{.Icon}}</span>` +
		`<div class="achievement-text"><div class="achievement-title">{{.Title}}</div>` +
		`<div class="achievement-description">{{.Description}}</div></div></div>`))

type Presenter struct {
	doc *view.Document
}

func New(doc *view.Document) *Presenter {
	return &Presenter{doc: doc}
}

// Notify stacks a transient message into the shared notification container.
// Concurrent calls stack additively; nodes self-remove, so no cap is needed.
func (p *Presenter) Notify(message string, level Level) {
	node := &view.Node{
		ID:    "notification-" + uuid.NewString(),
		Class: "notification notification-" + string(level),
		Text:  message,
	}
	metrics.NotificationsTotal.WithLabelValues(string(level)).Inc()
	p.present(NotificationsContainer, node, showDelay, exitDelay)
}

// Achievement presents a single achievement toast.
func (p *Presenter) Achievement(a domain.Achievement) {
	buf := new(bytes.Buffer)
	if err := achievementTemplate.Execute(buf, a); err != nil {
		logger.Log.Error("rendering achievement toast", "error", err)
		return
	}
	node := &view.Node{
		ID:    "achievement-" + uuid.NewString(),
		Class: "achievement-notification",
		HTML:  template.HTML(buf.String()),
	}
	p.present(AchievementsContainer, node, achievementShowDelay, achievementExitDelay)
}

// AchievementBatch staggers a burst of achievements so they do not overlap:
// item i is displayed at i*staggerInterval.
func (p *Presenter) AchievementBatch(achievements []domain.Achievement) {
	for i, a := range achievements {
		scheduleFunc(time.Duration(i)*staggerInterval, func() {
			p.Achievement(a)
		})
	}
}

func (p *Presenter) present(containerID string, node *view.Node, show, exit time.Duration) {
	p.doc.Append(containerID, node)

	id := node.ID
	// Visibility flips in a later step than insertion so the entry transition
	// has something to transition from.
	scheduleFunc(show, func() {
		p.doc.SetVisible(id, true)
	})
	scheduleFunc(dwellTime, func() {
		p.doc.SetVisible(id, false)
		scheduleFunc(exit, func() {
			p.doc.Remove(id)
		})
	})
}
