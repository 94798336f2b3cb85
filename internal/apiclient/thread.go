package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sameanonim/imageboard/internal/domain"
	internal_errors "github.com/sameanonim/imageboard/internal/errors"
)

// GetThread fetches the full post list of a thread. Used by the polling
// fallback alongside the push-event path.
func (c *APIClient) GetThread(ctx context.Context, board string, threadID int64) ([]domain.Post, error) {
	path := fmt.Sprintf("/api/boards/%s/threads/%d", board, threadID)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("thread %d on /%s/ not found or access denied", threadID, board),
			StatusCode: resp.StatusCode,
		}
	}

	var payload struct {
		Posts []domain.Post `json:"posts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cannot decode thread response: %w", err)
	}
	return payload.Posts, nil
}
