package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes. Used for plain
	// text fields (titles, names, addresses, ticket type labels).
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows safe user-generated formatting: <p>, <b>, <i>,
	// <em>, <strong>, <a>, <ul>, <ol>, <li>, <br>. Used for event
	// descriptions and terms text.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML and returns plain text.
func Text(input string) string {
	return strictPolicy.Sanitize(input)
}

// HTML sanitizes content while keeping safe formatting tags. Script
// tags, iframes, event handlers, and style attributes are removed.
func HTML(input string) string {
	return ugcPolicy.Sanitize(input)
}

// TextSlice strips all HTML from each element.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	sanitized := make([]string, len(inputs))
	for i, input := range inputs {
		sanitized[i] = Text(input)
	}
	return sanitized
}
