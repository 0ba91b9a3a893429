package xltrack

// Link is a resolved value that a binding writes as a clickable hyperlink.
// Stores expose it as a field or method; the cell shows Text and opens URL.
type Link struct {
	URL  string
	Text string
}

// String returns the text shown in the cell.
func (l Link) String() string {
	if l.Text != "" {
		return l.Text
	}
	return l.URL
}

// NewLink creates a Link. An empty text displays the URL.
func NewLink(url, text string) Link {
	return Link{URL: url, Text: text}
}

// linkOf reports whether v is a Link or a non-nil *Link.
func linkOf(v any) (Link, bool) {
	switch l := v.(type) {
	case Link:
		return l, l.URL != ""
	case *Link:
		if l == nil {
			return Link{}, false
		}
		return *l, l.URL != ""
	}
	return Link{}, false
}
