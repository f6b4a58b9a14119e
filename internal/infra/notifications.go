package infra

import "strings"

// LooksLikeNotification reports whether a top-level window with the given
// class name and title is a toast or notification surface.
func LooksLikeNotification(class, title string) bool {
	class = strings.ToLower(class)
	title = strings.ToLower(title)

	switch {
	case strings.Contains(class, "toast"), strings.Contains(class, "notification"):
		return true
	case strings.Contains(class, "corewindow") && strings.Contains(title, "notification"):
		return true
	case strings.Contains(title, "notification"), strings.Contains(title, "action center"):
		return true
	}
	return false
}
