package domain

import "time"

// Post is a single submission within a thread, as delivered by the initial
// page payload, the thread API or a push event. The client never mutates a
// post, it only displays or removes it.
type Post struct {
	Id        int64      `json:"id"`
	ThreadId  int64      `json:"thread_id"`
	Author    string     `json:"name,omitempty"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Files     []PostFile `json:"files,omitempty"`
}

// Reply is a post nested under a parent post.
type Reply struct {
	Post
	ReplyTo int64 `json:"reply_to_id"`
}

// PostFile is a file attached to a post. Width/Height are only present for
// images the server managed to probe.
type PostFile struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	Width            *int   `json:"width,omitempty"`
	Height           *int   `json:"height,omitempty"`
}
