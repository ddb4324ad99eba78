package model

// Suggestion is one omnibox completion: a navigable target plus marked-up
// display text using the <url>, <match> and <dim> tags.
type Suggestion struct {
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Contents returns the navigable targets of a suggestion batch, in order.
func Contents(suggestions []Suggestion) []string {
	urls := make([]string, len(suggestions))
	for i, s := range suggestions {
		urls[i] = s.Content
	}
	return urls
}
