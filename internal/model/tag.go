package model

// Tag is an entry of the recommended tag vocabulary. Tasks may carry any
// string as a tag; the vocabulary only drives suggestions and colors.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// RecommendedTags returns the suggested tags in display order
func RecommendedTags() []Tag {
	return []Tag{
		{Name: "Design", Color: "#F472B6"},
		{Name: "UI/UX", Color: "#A78BFA"},
		{Name: "Dev", Color: "#4ADE80"},
		{Name: "Testing", Color: "#FACC15"},
	}
}

// TagColor returns the vocabulary color for name, or "" for free-form tags
func TagColor(name string) string {
	for _, t := range RecommendedTags() {
		if t.Name == name {
			return t.Color
		}
	}
	return ""
}
