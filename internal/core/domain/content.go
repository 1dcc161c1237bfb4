package domain

// RawContent is extracted text handed to the ingestion pipeline.
// It is a content provider's output before chunking.
type RawContent struct {
	// Title is the extracted or derived document title.
	Title string

	// Text is the plain text content.
	Text string

	// Kind records how the content was obtained.
	Kind SourceKind

	// Ref is the original source reference the content was
	// fetched from. Empty for raw text.
	Ref string
}

// ChangeType represents the type of source change observed by the
// directory watcher.
type ChangeType int

const (
	// ChangeCreated indicates a new source file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified source file.
	ChangeUpdated

	// ChangeDeleted indicates a removed source file.
	ChangeDeleted
)

// SourceChange is a change event for a watched source reference.
type SourceChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Ref is the affected source reference.
	Ref string
}
