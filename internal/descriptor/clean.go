package descriptor

import "strings"

// videoSuffixes are stripped from client_video_id in this order. Each strip
// applies to the result of the previous one, so "a.m.mp" becomes "a".
var videoSuffixes = []string{".mp4", ".mp", ".m"}

// CleanVideoID removes trailing file-extension fragments from a raw
// client_video_id: ".mp4", then ".mp", then ".m", each at most once.
func CleanVideoID(raw string) string {
	id := raw
	for _, suffix := range videoSuffixes {
		id = strings.TrimSuffix(id, suffix)
	}
	return id
}
