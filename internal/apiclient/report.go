package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	internal_errors "github.com/sameanonim/imageboard/internal/errors"
)

// ReportPost files a complaint against a post. A response that arrives but
// carries success=false is returned as a SemanticError so callers can show
// the server's own wording, distinct from transport failures.
func (c *APIClient) ReportPost(ctx context.Context, postID int64) error {
	path := fmt.Sprintf("/api/posts/%d/report", postID)
	resp, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("report rejected with status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("cannot decode report response: %w", err)
	}
	if !payload.Success {
		return &internal_errors.SemanticError{Message: payload.Message}
	}
	return nil
}
