package rewrite

// Rename is one display name change applied to a video record.
type Rename struct {
	Key         string `json:"key"`
	ComponentID string `json:"component_id"`
	Previous    string `json:"previous"`
	// HadPrevious is false when display_name was absent and got created.
	HadPrevious bool   `json:"had_previous"`
	DisplayName string `json:"display_name"`
	RawID       string `json:"client_video_id"`
	Descriptor  string `json:"descriptor"`
}

// Changed reports whether the new display name differs from the old one.
func (r Rename) Changed() bool {
	return !r.HadPrevious || r.Previous != r.DisplayName
}

// Skip is an entry left untouched because its key is malformed.
type Skip struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Report summarizes one pass over a structure document.
type Report struct {
	Total    int      `json:"total"`
	NonVideo int      `json:"non_video"`
	Renamed  []Rename `json:"renamed"`
	Skipped  []Skip   `json:"skipped"`
}

// Videos returns the number of video records that were rewritten.
func (r Report) Videos() int { return len(r.Renamed) }

// Changed returns how many rewrites altered the previous display name.
func (r Report) Changed() int {
	count := 0
	for _, rename := range r.Renamed {
		if rename.Changed() {
			count++
		}
	}
	return count
}
