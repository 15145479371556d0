package crawling

import "fmt"

// SourceError represents a failure fetching or parsing the research board.
// Report fetch failures are fatal for a routine run; callers decide.
type SourceError struct {
	URL     string
	Message string
	Cause   error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("content source error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("content source error for %s: %s", e.URL, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}
