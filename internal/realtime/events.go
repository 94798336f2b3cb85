package realtime

import (
	"encoding/json"
	"time"

	"github.com/sameanonim/imageboard/internal/domain"
)

// Server→client event names. The set is fixed; unknown events are logged and
// dropped.
const (
	EventNewPost        = "new_post"
	EventNewReply       = "new_reply"
	EventThreadLocked   = "thread_locked"
	EventThreadUnlocked = "thread_unlocked"
	EventPostDeleted    = "post_deleted"
	EventAchievement    = "achievement"
)

// Client→server message names.
const (
	messageJoinThread  = "join_thread"
	messageLeaveThread = "leave_thread"
)

// envelope is the wire framing of both directions: a named event plus a
// JSON payload.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type threadRef struct {
	ThreadID int64 `json:"thread_id"`
}

// PostEvent is the payload of new_post and new_reply.
type PostEvent struct {
	ThreadID  int64             `json:"thread_id"`
	PostID    int64             `json:"post_id"`
	User      string            `json:"user,omitempty"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Files     []domain.PostFile `json:"files,omitempty"`

	// Only set on new_reply.
	ReplyToID int64 `json:"reply_to_id,omitempty"`
}

// AsPost converts the event payload to the record shape the renderer takes.
func (e PostEvent) AsPost() domain.Post {
	return domain.Post{
		Id:        e.PostID,
		ThreadId:  e.ThreadID,
		Author:    e.User,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
		Files:     e.Files,
	}
}

// ThreadStateEvent is the payload of thread_locked and thread_unlocked.
type ThreadStateEvent struct {
	ThreadID   int64  `json:"thread_id"`
	LockedBy   string `json:"locked_by,omitempty"`
	UnlockedBy string `json:"unlocked_by,omitempty"`
}

// PostDeletedEvent is the payload of post_deleted.
type PostDeletedEvent struct {
	ThreadID int64 `json:"thread_id"`
	PostID   int64 `json:"post_id"`
}
