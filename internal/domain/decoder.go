package domain

// Table is one raw table lifted from a bulletin page: rows of cells, where
// a nil cell marks a value the decoder could not recover.
type Table [][]*string

// Page is one decoded bulletin page.
type Page interface {
	// Text returns the page's plain text, lines separated by '\n'.
	Text() string
	// Tables returns the tables found on the page, possibly none.
	Tables() []Table
}

// Document is the external PDF decoder's view of one bulletin. Implementations
// live at the edges; the core never opens files itself. A decoder that cannot
// read a page should omit it rather than fail the document — fewer pages means
// fewer rows, never an abort.
type Document interface {
	Pages() ([]Page, error)
}
