package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	internal_errors "github.com/sameanonim/imageboard/internal/errors"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// ReplyFile is a locally selected file attached to a quick reply.
type ReplyFile struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// SubmitReply performs the quick-reply form POST: text fields plus file
// attachments as multipart/form-data, streamed through a pipe. The action
// path is server-provided, relative to the base URL.
func (c *APIClient) SubmitReply(ctx context.Context, actionPath string, fields map[string]string, files []ReplyFile) error {
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		defer pipeWriter.Close()
		defer writer.Close()

		for name, value := range fields {
			if err := writer.WriteField(name, value); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}

		for _, file := range files {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition",
				fmt.Sprintf(`form-data; name="files"; filename="%s"`,
					escapeQuotes(file.Filename)))
			if file.ContentType != "" {
				h.Set("Content-Type", file.ContentType)
			}

			part, err := writer.CreatePart(h)
			if err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, file.Content); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+actionPath, pipeReader)
	if err != nil {
		return fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("server unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// The server explains rejections in the payload; fall back to a generic
	// message when it does not.
	var payload struct {
		Message string `json:"message"`
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, &payload); err == nil && payload.Message != "" {
		return &internal_errors.SemanticError{Message: payload.Message}
	}
	return &internal_errors.SemanticError{Message: "failed to submit reply"}
}
