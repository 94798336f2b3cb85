package session

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/sameanonim/imageboard/internal/logger"
	"github.com/sameanonim/imageboard/internal/view"
)

// AttachFiles replaces the quick-reply file selection. Validation is
// all-or-nothing: any file over the count or size limit rejects the whole
// selection, clears it and leaves no previews behind. On success the file
// list and previews are rebuilt from scratch.
func (s *Session) AttachFiles(paths []string) error {
	s.clearSelection()

	if len(paths) > s.cfg.Upload.MaxFiles {
		msg := fmt.Sprintf("Maximum number of files: %d", s.cfg.Upload.MaxFiles)
		s.prompter.Alert(msg)
		return fmt.Errorf("too many files: %d > %d", len(paths), s.cfg.Upload.MaxFiles)
	}
	infos := make([]os.FileInfo, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			s.prompter.Alert(fmt.Sprintf("Cannot read file %s", filepath.Base(path)))
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() > s.cfg.Upload.MaxFileSizeBytes {
			msg := fmt.Sprintf("File %s exceeds the maximum size of %d MB",
				filepath.Base(path), s.cfg.Upload.MaxFileSizeBytes/(1<<20))
			s.prompter.Alert(msg)
			return fmt.Errorf("file too large: %s (%d bytes)", path, info.Size())
		}
		infos = append(infos, info)
	}

	s.mu.Lock()
	s.composer.Files = append([]string(nil), paths...)
	s.mu.Unlock()

	for i, path := range paths {
		s.presentFile(path, infos[i].Size(), i)
	}
	return nil
}

// presentFile adds the file-list entry and, when the file can be read, the
// inline preview. Previews keep selection order; a read failure skips the
// preview but keeps the list entry, the selection stays valid.
func (s *Session) presentFile(path string, size int64, index int) {
	name := filepath.Base(path)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	isVideo := strings.HasPrefix(contentType, "video/")

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Log.Warn("reading attachment for preview", "file", name, "error", err)
		s.appendFileListEntry(name, size, index, "")
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	dims := ""
	if !isVideo {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			dims = fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
		}
	}
	s.appendFileListEntry(name, size, index, dims)

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	node, err := s.renderer.FilePreview(index, name, isVideo, dataURL, size)
	if err != nil {
		logger.Log.Error("rendering file preview", "file", name, "error", err)
		return
	}
	node.Visible = true
	s.doc.Append(PreviewContainer, node)
}

func (s *Session) appendFileListEntry(name string, size int64, index int, dims string) {
	text := fmt.Sprintf("%s (%.1f KB)", name, float64(size)/1024)
	if dims != "" {
		text = fmt.Sprintf("%s (%.1f KB, %s)", name, float64(size)/1024, dims)
	}
	s.doc.Append(FileListContainer, &view.Node{
		ID:      fmt.Sprintf("file-entry-%d", index),
		Class:   "file-entry",
		Text:    text,
		Visible: true,
	})
}

// clearSelection drops the current files along with their list entries and
// previews.
func (s *Session) clearSelection() {
	s.mu.Lock()
	s.composer.Files = nil
	s.mu.Unlock()
	for _, containerID := range []string{FileListContainer, PreviewContainer} {
		for _, id := range s.doc.IDs(containerID) {
			s.doc.Remove(id)
		}
	}
}
