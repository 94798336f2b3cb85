package domain

// Draft is locally persisted, unsent reply content tied to a thread.
// One draft per thread; saves overwrite, never merge.
type Draft struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Theme is the page-wide color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
