package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameanonim/imageboard/internal/domain"
	"github.com/sameanonim/imageboard/internal/view"
)

func shrinkTimers(t *testing.T) {
	t.Helper()
	oldShow, oldAchShow, oldDwell, oldExit, oldAchExit := showDelay, achievementShowDelay, dwellTime, exitDelay, achievementExitDelay
	showDelay = 25 * time.Millisecond
	achievementShowDelay = 25 * time.Millisecond
	dwellTime = 100 * time.Millisecond
	exitDelay = 25 * time.Millisecond
	achievementExitDelay = 25 * time.Millisecond
	t.Cleanup(func() {
		showDelay, achievementShowDelay, dwellTime, exitDelay, achievementExitDelay = oldShow, oldAchShow, oldDwell, oldExit, oldAchExit
	})
}

func TestNotifyLifecycle(t *testing.T) {
	shrinkTimers(t)
	d := view.NewDocument(nil)
	defer d.Close()
	p := New(d)

	p.Notify("connected", LevelSuccess)
	require.Equal(t, 1, d.Len(NotificationsContainer))

	id := d.IDs(NotificationsContainer)[0]
	n := d.Get(id)
	require.NotNil(t, n)
	assert.False(t, n.Visible, "node must not be visible in the insertion step")
	assert.Equal(t, "notification notification-success", n.Class)
	assert.Equal(t, "connected", n.Text)

	assert.Eventually(t, func() bool {
		n := d.Get(id)
		return n != nil && n.Visible
	}, time.Second, time.Millisecond, "node should become visible after the show delay")

	assert.Eventually(t, func() bool {
		return d.Len(NotificationsContainer) == 0
	}, time.Second, time.Millisecond, "node should self-remove after dwell plus exit delay")
}

func TestNotificationsStack(t *testing.T) {
	shrinkTimers(t)
	d := view.NewDocument(nil)
	defer d.Close()
	p := New(d)

	for i := 0; i < 5; i++ {
		p.Notify(fmt.Sprintf("msg %d", i), LevelInfo)
	}

	assert.Equal(t, 5, d.Len(NotificationsContainer))
}

func TestAchievementToastMarkup(t *testing.T) {
	shrinkTimers(t)
	d := view.NewDocument(nil)
	defer d.Close()
	p := New(d)

	p.Achievement(domain.Achievement{Icon: "🏆", Title: "First post", Description: "Post <b>once</b>"})

	require.Equal(t, 1, d.Len(AchievementsContainer))
	n := d.Get(d.IDs(AchievementsContainer)[0])
	require.NotNil(t, n)
	html := string(n.HTML)
	assert.Contains(t, html, "🏆")
	assert.Contains(t, html, "First post")
	assert.Contains(t, html, "&lt;b&gt;once&lt;/b&gt;", "description must be escaped")
}

func TestAchievementBatchStagger(t *testing.T) {
	var mu sync.Mutex
	var delays []time.Duration
	oldSchedule := scheduleFunc
	scheduleFunc = func(d time.Duration, f func()) {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		// Do not run f: this test only checks the schedule.
	}
	t.Cleanup(func() { scheduleFunc = oldSchedule })

	d := view.NewDocument(nil)
	defer d.Close()
	p := New(d)

	batch := make([]domain.Achievement, 4)
	p.AchievementBatch(batch)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delays, 4)
	assert.Equal(t, []time.Duration{0, time.Second, 2 * time.Second, 3 * time.Second}, delays)
}

func TestAchievementBatchEmpty(t *testing.T) {
	d := view.NewDocument(nil)
	defer d.Close()
	p := New(d)

	p.AchievementBatch(nil)
	assert.Equal(t, 0, d.Len(AchievementsContainer))
}
