package session

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/sameanonim/imageboard/internal/apiclient"
	"github.com/sameanonim/imageboard/internal/domain"
	internal_errors "github.com/sameanonim/imageboard/internal/errors"
	"github.com/sameanonim/imageboard/internal/logger"
)

// SetName updates the composer name field.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer.Name = name
}

// SetContent replaces the composer content field.
func (s *Session) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer.Content = content
}

// Quote appends a reference to the given post plus its text to the composer
// and focuses it. Quoting a post that is not on the page only appends the
// reference line.
func (s *Session) Quote(postID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quoted := fmt.Sprintf(">>%d\n", postID)
	if p, ok := s.posts[postID]; ok {
		if text := s.renderer.QuoteText(p); text != "" {
			quoted += text + "\n"
		}
	}
	s.composer.Content += quoted + "\n"
	s.composer.Expanded = true
	s.composer.Focused = true
}

// Report asks for confirmation, then files the report. The three outcomes
// get three distinct alerts: accepted, rejected by the server with its
// explanation, or not delivered at all.
func (s *Session) Report(ctx context.Context, postID int64) {
	if !s.prompter.Confirm("Report this post to the moderators?") {
		return
	}
	err := s.api.ReportPost(ctx, postID)
	if err == nil {
		s.prompter.Alert("Report sent")
		return
	}
	var semantic *internal_errors.SemanticError
	if errors.As(err, &semantic) {
		s.prompter.Alert(semantic.Error())
		return
	}
	logger.Log.Warn("report not delivered", "post", postID, "error", err)
	s.prompter.Alert("Failed to send report")
}

// SaveDraft persists the composer name and content for this thread.
func (s *Session) SaveDraft() {
	s.mu.Lock()
	draft := domain.Draft{Name: s.composer.Name, Content: s.composer.Content}
	s.mu.Unlock()

	if err := s.store.SaveDraft(s.threadID, draft); err != nil {
		logger.Log.Error("saving draft", "thread", s.threadID, "error", err)
		s.prompter.Alert("Failed to save draft")
		return
	}
	s.prompter.Alert("Draft saved")
}

// restoreDraft loads a previously saved draft into the composer. Field
// values already present are overwritten, matching the page-load behavior.
func (s *Session) restoreDraft() {
	draft := s.store.Draft(s.threadID)
	if draft == nil {
		return
	}
	s.mu.Lock()
	s.composer.Name = draft.Name
	s.composer.Content = draft.Content
	s.mu.Unlock()
}

// ExpandQuickReply opens the quick-reply form.
func (s *Session) ExpandQuickReply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer.Expanded = true
	s.composer.Focused = true
}

// CollapseQuickReply closes and resets the form, dropping the current file
// selection and previews.
func (s *Session) CollapseQuickReply() {
	s.mu.Lock()
	s.composer = Composer{Name: s.composer.Name}
	s.mu.Unlock()
	s.clearSelection()
}

// SubmitQuickReply posts the composer state to the server-provided action
// URL. On success the form resets and the page reload hook runs; on failure
// the form keeps its state so nothing typed is lost.
func (s *Session) SubmitQuickReply(ctx context.Context) error {
	s.mu.Lock()
	name := s.composer.Name
	content := s.composer.Content
	paths := append([]string(nil), s.composer.Files...)
	s.mu.Unlock()

	files := make([]apiclient.ReplyFile, 0, len(paths))
	opened := make([]*os.File, 0, len(paths))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			s.prompter.Alert(fmt.Sprintf("Cannot read file %s", filepath.Base(path)))
			return fmt.Errorf("open %s: %w", path, err)
		}
		opened = append(opened, f)
		files = append(files, apiclient.ReplyFile{
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
			Content:     f,
		})
	}

	fields := map[string]string{"name": name, "content": content}
	if err := s.api.SubmitReply(ctx, s.action, fields, files); err != nil {
		var semantic *internal_errors.SemanticError
		if errors.As(err, &semantic) {
			s.prompter.Alert(semantic.Error())
		} else {
			logger.Log.Warn("quick reply not delivered", "thread", s.threadID, "error", err)
			s.prompter.Alert("Failed to submit reply")
		}
		return err
	}

	s.CollapseQuickReply()
	if s.reload != nil {
		s.reload()
	}
	return nil
}
