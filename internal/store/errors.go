package store

// Errors
var (
	ErrStoreClosed        = storeError("store is closed")
	ErrAlreadyMounted     = storeError("store is already mounted")
	ErrNoThemes           = storeError("at least one theme is required")
	ErrConflictingSources = storeError("static variants and a fetch function given for the same kind")
	ErrNotInChoiceSet     = storeError("selection is not in the current choice set")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
