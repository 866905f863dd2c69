package gateway

import "strings"

// Episode is one playable entry extracted from an upstream play-url blob.
// URL is omitted when the segment carried no '$' separator.
type Episode struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// ParsePlayURL splits the maccms play-url format: episodes separated by
// '#', each "name$url". A segment without '$' is accepted and kept as a
// name-only episode.
func ParsePlayURL(playURL string) []Episode {
	if playURL == "" {
		return []Episode{}
	}
	segments := strings.Split(playURL, "#")
	episodes := make([]Episode, 0, len(segments))
	for _, seg := range segments {
		name, url, _ := strings.Cut(seg, "$")
		episodes = append(episodes, Episode{Name: name, URL: url})
	}
	return episodes
}
