// Package session wires the page together: one Session is the context object
// for a single open thread view. It binds user interactions to the store,
// renderer and presenter, keeps the view consistent with push events and the
// polling fallback, and is constructed once at load and torn down at unload.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sameanonim/imageboard/internal/apiclient"
	"github.com/sameanonim/imageboard/internal/config"
	"github.com/sameanonim/imageboard/internal/domain"
	"github.com/sameanonim/imageboard/internal/logger"
	"github.com/sameanonim/imageboard/internal/markup"
	"github.com/sameanonim/imageboard/internal/notify"
	"github.com/sameanonim/imageboard/internal/prefs"
	"github.com/sameanonim/imageboard/internal/realtime"
	"github.com/sameanonim/imageboard/internal/render"
	"github.com/sameanonim/imageboard/internal/view"
)

// Prompter models the three blocking browser prompts. Implementations must
// not return until the user dismissed the prompt; interaction is paused
// until then.
type Prompter interface {
	Confirm(message string) bool
	Alert(message string)
}

// Container and node ids of the thread page.
const (
	PostsContainer    = "posts"
	FileListContainer = "file-list"
	PreviewContainer  = "file-preview"
	ThreadContainer   = "thread"

	statusNodeID = "thread-status"
	themeNodeID  = "page-theme"

	statusLocked   = "🔒"
	statusUnlocked = "🔓"
)

// Overrideable for faster tests.
var (
	postShowDelay = 20 * time.Millisecond
	postExitDelay = 300 * time.Millisecond
)

// Composer is the quick-reply form state: the name and content fields, the
// current file selection and the expand/collapse toggle.
type Composer struct {
	Name     string
	Content  string
	Files    []string // paths of the selected files
	Expanded bool
	Focused  bool
}

// Params collects the session's collaborators.
type Params struct {
	Config   *config.Config
	Store    *prefs.Store
	Prompter Prompter

	// Observer receives document changes; may be nil.
	Observer func(view.Change)

	// Reload is invoked after a successful quick-reply submission, standing
	// in for the full page reload of the original flow. May be nil.
	Reload func()
}

type Session struct {
	cfg       *config.Config
	store     *prefs.Store
	prompter  Prompter
	doc       *view.Document
	renderer  *render.Renderer
	proc      *markup.Processor
	presenter *notify.Presenter
	api       *apiclient.APIClient
	rt        *realtime.Client
	reload    func()

	board    string
	threadID int64
	action   string // server-provided quick-reply action URL

	mu         sync.Mutex
	composer   Composer
	posts      map[int64]domain.Post
	lastPostID int64

	pollStop chan struct{}
	pollDone chan struct{}
}

func New(p Params) *Session {
	proc := markup.New()
	doc := view.NewDocument(p.Observer)
	s := &Session{
		cfg:       p.Config,
		store:     p.Store,
		prompter:  p.Prompter,
		doc:       doc,
		renderer:  render.New(p.Config.Locale, proc),
		proc:      proc,
		presenter: notify.New(doc),
		api:       apiclient.New(p.Config.Server.BaseURL),
		reload:    p.Reload,
		posts:     make(map[int64]domain.Post),
	}
	s.rt = realtime.New(realtime.Options{
		URL:          p.Config.Server.SocketURL,
		InitialDelay: p.Config.Realtime.InitialDelay.Std(),
		MaxDelay:     p.Config.Realtime.MaxDelay.Std(),
		MaxAttempts:  p.Config.Realtime.MaxAttempts,
		DialTimeout:  p.Config.Realtime.DialTimeout.Std(),
	}, realtime.Callbacks{
		OnConnect:         s.onConnect,
		OnDisconnect:      s.onDisconnect,
		OnReconnectFailed: s.onReconnectFailed,
		OnEvent:           s.onEvent,
	})
	return s
}

// Document exposes the view tree, mainly for the CLI and tests.
func (s *Session) Document() *view.Document {
	return s.doc
}

// Composer returns a snapshot of the quick-reply form state.
func (s *Session) Composer() Composer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.composer
	c.Files = append([]string(nil), s.composer.Files...)
	return c
}

// OpenThread loads a thread page: renders the initial posts, restores
// store-derived state (hidden items, draft, theme), presents the embedded
// achievements batch and starts the realtime channel plus the poll fallback.
func (s *Session) OpenThread(board string, threadID int64, actionURL string, initial []domain.Post, embeddedAchievements []byte) {
	s.board = board
	s.threadID = threadID
	s.action = actionURL

	s.doc.EnsureContainer(ThreadContainer)
	s.doc.Append(ThreadContainer, &view.Node{
		ID: statusNodeID, Class: "thread-status", Text: statusUnlocked, Visible: true,
	})
	// The body-class equivalent: the stored theme applies on every load.
	s.doc.Append(ThreadContainer, &view.Node{
		ID: themeNodeID, Class: "theme", Text: string(s.store.Theme()), Visible: true,
	})

	for _, p := range initial {
		s.appendPost(p, false)
	}
	s.applyHidden()
	s.restoreDraft()

	if batch := domain.ParseEmbeddedAchievements(embeddedAchievements); len(batch) > 0 {
		s.presenter.AchievementBatch(batch)
	}

	s.rt.JoinThread(threadID)
	s.rt.Start()
	s.startPoll()
}

// Close tears the page session down: the poll stops, the realtime channel
// sends its best-effort leave and closes, the document loop exits.
func (s *Session) Close() {
	s.stopPoll()
	s.rt.Close()
	s.doc.Close()
}

// Theme returns the active theme.
func (s *Session) Theme() domain.Theme {
	return s.store.Theme()
}

// ToggleTheme flips the theme, persists it locally and mirrors it to the
// server. The server call is best-effort: a failure keeps the local choice.
func (s *Session) ToggleTheme(ctx context.Context) domain.Theme {
	next := s.store.Theme().Toggled()
	if err := s.store.SetTheme(next); err != nil {
		logger.Log.Error("persisting theme", "error", err)
	}
	s.doc.SetText(themeNodeID, string(next))
	if err := s.api.SetTheme(ctx, next); err != nil {
		logger.Log.Warn("mirroring theme to server", "error", err)
	}
	return next
}

// HideThread persists the hidden thread id and hides its subtree when it is
// on the page. One-way; hiding twice changes nothing.
func (s *Session) HideThread(id int64) {
	if err := s.store.HideThread(id); err != nil {
		logger.Log.Error("persisting hidden thread", "error", err)
		return
	}
	s.doc.SetHidden(threadNodeID(id), true)
}

// HidePost persists the hidden post id and hides the rendered node.
func (s *Session) HidePost(id int64) {
	if err := s.store.HidePost(id); err != nil {
		logger.Log.Error("persisting hidden post", "error", err)
		return
	}
	s.doc.SetHidden(render.PostNodeID(id), true)
}

func threadNodeID(id int64) string {
	return fmt.Sprintf("thread-%d", id)
}

// applyHidden re-hides everything the user hid in previous sessions.
func (s *Session) applyHidden() {
	for _, id := range s.store.HiddenThreads() {
		s.doc.SetHidden(threadNodeID(id), true)
	}
	for _, id := range s.store.HiddenPosts() {
		s.doc.SetHidden(render.PostNodeID(id), true)
	}
}

// appendPost renders and inserts a post, skipping ids already in the
// document. Push and poll can race over the same post from their own
// goroutines; the check-and-insert runs as one document op so only one of
// them lands.
func (s *Session) appendPost(p domain.Post, animate bool) bool {
	node, err := s.renderer.Post(p, render.Hooks{
		Quote:  func(id int64) { s.Quote(id) },
		Report: func(id int64) { s.Report(context.Background(), id) },
	})
	if err != nil {
		logger.Log.Error("rendering post", "post", p.Id, "error", err)
		return false
	}
	if !animate {
		node.Visible = true
	}
	if !s.doc.AppendIfAbsent(PostsContainer, node) {
		return false
	}
	if animate {
		id := node.ID
		time.AfterFunc(postShowDelay, func() { s.doc.SetVisible(id, true) })
	}

	s.mu.Lock()
	s.posts[p.Id] = p
	if p.Id > s.lastPostID {
		s.lastPostID = p.Id
	}
	s.mu.Unlock()
	return true
}

// removePost plays the exit transition, then deletes the node. A removal for
// an id that was never rendered is a no-op.
func (s *Session) removePost(id int64) {
	nodeID := render.PostNodeID(id)
	if !s.doc.Contains(nodeID) {
		return
	}
	s.doc.SetVisible(nodeID, false)
	time.AfterFunc(postExitDelay, func() { s.doc.Remove(nodeID) })

	s.mu.Lock()
	delete(s.posts, id)
	s.mu.Unlock()
}

func (s *Session) onConnect(reconnected bool) {
	if reconnected {
		s.presenter.Notify("Reconnected to server", notify.LevelSuccess)
		return
	}
	s.presenter.Notify("Connected to server", notify.LevelSuccess)
}

func (s *Session) onDisconnect(err error) {
	logger.Log.Warn("realtime connection lost", "error", err)
	s.presenter.Notify("Disconnected from server", notify.LevelError)
}

func (s *Session) onReconnectFailed() {
	s.presenter.Notify("Failed to reconnect to server", notify.LevelError)
}

// onEvent applies push events in arrival order. Events for other threads
// never mutate the page but still surface a notification.
func (s *Session) onEvent(name string, data json.RawMessage) {
	switch name {
	case realtime.EventNewPost:
		var ev realtime.PostEvent
		if !decodeEvent(name, data, &ev) {
			return
		}
		if ev.ThreadID == s.threadID {
			s.appendPost(ev.AsPost(), true)
		}
		s.presenter.Notify(fmt.Sprintf("New post from %s", authorOrAnon(ev.User)), notify.LevelInfo)

	case realtime.EventNewReply:
		var ev realtime.PostEvent
		if !decodeEvent(name, data, &ev) {
			return
		}
		if ev.ThreadID == s.threadID {
			s.appendReply(ev)
		}
		s.presenter.Notify(fmt.Sprintf("New reply from %s", authorOrAnon(ev.User)), notify.LevelInfo)

	case realtime.EventThreadLocked:
		var ev realtime.ThreadStateEvent
		if !decodeEvent(name, data, &ev) {
			return
		}
		if ev.ThreadID == s.threadID {
			s.doc.SetText(statusNodeID, statusLocked)
		}
		s.presenter.Notify(fmt.Sprintf("Thread locked by moderator %s", ev.LockedBy), notify.LevelWarning)

	case realtime.EventThreadUnlocked:
		var ev realtime.ThreadStateEvent
		if !decodeEvent(name, data, &ev) {
			return
		}
		if ev.ThreadID == s.threadID {
			s.doc.SetText(statusNodeID, statusUnlocked)
		}
		s.presenter.Notify(fmt.Sprintf("Thread unlocked by moderator %s", ev.UnlockedBy), notify.LevelSuccess)

	case realtime.EventPostDeleted:
		var ev realtime.PostDeletedEvent
		if !decodeEvent(name, data, &ev) {
			return
		}
		if ev.ThreadID == s.threadID {
			s.removePost(ev.PostID)
		}
		s.presenter.Notify("Post removed by moderator", notify.LevelWarning)

	case realtime.EventAchievement:
		var a domain.Achievement
		if !decodeEvent(name, data, &a) {
			return
		}
		s.presenter.Achievement(a)

	default:
		logger.Log.Debug("ignoring unknown push event", "event", name)
	}
}

// appendReply nests a reply under its parent post, creating the replies
// container lazily. A reply whose parent is not rendered is dropped, same as
// the original page.
func (s *Session) appendReply(ev realtime.PostEvent) {
	parentNode := render.PostNodeID(ev.ReplyToID)
	if !s.doc.Contains(parentNode) {
		return
	}
	node, err := s.renderer.Reply(domain.Reply{Post: ev.AsPost(), ReplyTo: ev.ReplyToID}, render.Hooks{})
	if err != nil {
		logger.Log.Error("rendering reply", "post", ev.PostID, "error", err)
		return
	}
	if !s.doc.AppendIfAbsent(render.RepliesContainerID(ev.ReplyToID), node) {
		return
	}
	id := node.ID
	time.AfterFunc(postShowDelay, func() { s.doc.SetVisible(id, true) })
}

func decodeEvent(name string, data json.RawMessage, out interface{}) bool {
	if err := json.Unmarshal(data, out); err != nil {
		logger.Log.Warn("dropping malformed event payload", "event", name, "error", err)
		return false
	}
	return true
}

func authorOrAnon(name string) string {
	if name == "" {
		return "Anonymous"
	}
	return name
}
