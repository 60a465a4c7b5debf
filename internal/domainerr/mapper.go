package domainerr

// PersistenceErrorClassifier recognizes the two persistence failures that
// map to domain errors. Implemented once per storage backend so handlers
// never see vendor error codes.
type PersistenceErrorClassifier interface {
	// IsUniqueViolation reports whether err is a unique-constraint
	// violation, and the offending field name when it can be resolved.
	IsUniqueViolation(err error) (field string, ok bool)

	// IsNotFound reports whether err means the requested record is absent.
	IsNotFound(err error) bool
}

// MapOptions narrows classification for a specific call site.
type MapOptions struct {
	// UniqueConstraintField is the field to blame when the backend cannot
	// resolve which constraint fired (the "last known conflicting field").
	UniqueConstraintField string

	// Resource names what was looked up, for not-found messages.
	// Defaults to "resource".
	Resource string
}

// Mapper translates persistence errors into domain errors.
type Mapper struct {
	classifier PersistenceErrorClassifier
}

// NewMapper builds a Mapper over the given backend classifier.
func NewMapper(classifier PersistenceErrorClassifier) *Mapper {
	return &Mapper{classifier: classifier}
}

// Map classifies err into a domain error, or returns nil when err is not a
// known persistence failure and the caller should propagate it unchanged.
// Map is pure and never panics: it is meant to compose as an optional
// narrowing step inside a caller's own error handling, not as a global
// interceptor.
func (m *Mapper) Map(err error, opts MapOptions) *Error {
	if err == nil || m.classifier == nil {
		return nil
	}
	if field, ok := m.classifier.IsUniqueViolation(err); ok {
		if field == "" {
			field = opts.UniqueConstraintField
		}
		return UniqueConstraint(field)
	}
	if m.classifier.IsNotFound(err) {
		resource := opts.Resource
		if resource == "" {
			resource = "resource"
		}
		return NotFound(resource)
	}
	return nil
}
