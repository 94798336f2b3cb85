package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sameanonim/imageboard/internal/domain"
	internal_errors "github.com/sameanonim/imageboard/internal/errors"
)

// SetTheme mirrors the local theme choice to the server.
func (c *APIClient) SetTheme(ctx context.Context, theme domain.Theme) error {
	body, err := json.Marshal(map[string]domain.Theme{"theme": theme})
	if err != nil {
		return fmt.Errorf("encode theme payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/set-theme", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("set-theme rejected with status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}
