package registry

import "errors"

var (
	// ErrNotFound is returned when a list name is not declared in the registry.
	ErrNotFound = errors.New("registry list not found")

	// ErrMalformed is returned when the document, or the requested list, does
	// not have the shape of named sequences of href/label records.
	ErrMalformed = errors.New("malformed registry")

	// ErrUnsupportedFormat is returned for registry files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported registry format")
)

// LinkEntry is one navigation link.
type LinkEntry struct {
	Href  string `json:"href" yaml:"href"`
	Label string `json:"label" yaml:"label"`
}

// Problem is a consistency issue reported by Check.
type Problem struct {
	List    string
	Message string
}

// document is the codec-specific in-memory form of a registry file.
type document interface {
	names() []string
	list(name string) ([]LinkEntry, error)
	appendEntry(name string, e LinkEntry) error
	bytes() ([]byte, error)
}
