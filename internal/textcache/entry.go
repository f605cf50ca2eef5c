package textcache

// Kind is the category of a generated text.
type Kind string

const (
	// KindPoem is a short original composition.
	KindPoem Kind = "poem"
	// KindQuote is an existing well-known quotation.
	KindQuote Kind = "quote"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindPoem || k == KindQuote
}

// Entry is the text shown with a photo. Entries are immutable once stored;
// a refresh replaces the whole value.
type Entry struct {
	Content string  `json:"content"`
	Kind    Kind    `json:"type"`
	Author  *string `json:"author"`
}

// AuthorName returns the author or "" when unknown.
func (e Entry) AuthorName() string {
	if e.Author == nil {
		return ""
	}
	return *e.Author
}
