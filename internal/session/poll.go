package session

import (
	"context"
	"time"

	"github.com/sameanonim/imageboard/internal/logger"
	"github.com/sameanonim/imageboard/internal/metrics"
)

// pollFetchTimeout bounds a single thread fetch so a stalled request never
// blocks the next tick.
var pollFetchTimeout = 10 * time.Second

// startPoll runs the HTTP fallback loop. It covers events lost while the
// realtime channel is down; posts already delivered by push are skipped by
// node-id presence, so both paths stay idempotent.
func (s *Session) startPoll() {
	s.pollStop = make(chan struct{})
	s.pollDone = make(chan struct{})
	go func() {
		defer close(s.pollDone)
		ticker := time.NewTicker(s.cfg.PollInterval.Std())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.pollOnce()
			case <-s.pollStop:
				return
			}
		}
	}()
}

func (s *Session) stopPoll() {
	if s.pollStop == nil {
		return
	}
	close(s.pollStop)
	<-s.pollDone
	s.pollStop = nil
}

// pollOnce fetches the thread and appends whatever the page has not seen
// yet. Fetch failures are logged and retried on the next tick; the realtime
// channel keeps the page current in the meantime.
func (s *Session) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), pollFetchTimeout)
	defer cancel()

	posts, err := s.api.GetThread(ctx, s.board, s.threadID)
	if err != nil {
		logger.Log.Warn("thread poll failed", "thread", s.threadID, "error", err)
		return
	}
	metrics.PollsTotal.Inc()

	s.mu.Lock()
	lastSeen := s.lastPostID
	s.mu.Unlock()

	for _, p := range posts {
		if p.Id <= lastSeen {
			continue
		}
		if s.appendPost(p, true) {
			metrics.PolledPostsAppended.Inc()
		}
	}
}
