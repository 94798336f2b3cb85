package domain

import "encoding/json"

// Achievement is a display-once toast payload. It arrives either in the
// embedded page payload (batch) or as a single push event.
type Achievement struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ParseEmbeddedAchievements decodes the achievements payload embedded in the
// rendered page. A missing or malformed payload yields an empty batch.
func ParseEmbeddedAchievements(raw []byte) []Achievement {
	if len(raw) == 0 {
		return nil
	}
	var out []Achievement
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
