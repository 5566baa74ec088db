// Package extractors holds the named text extractors applied on demand
// to stored message bodies. An extractor is a pure function scanning a
// text body for one embedded value; yielding nothing is a normal
// outcome, not an error.
package extractors

type Extractor func(text string) (value string, ok bool)

// Registry maps extractor names to functions. It is built once at
// startup and read-only afterwards, so concurrent lookups need no
// locking.
type Registry map[string]Extractor

func NewRegistry() Registry {
	return Registry{
		"cursor": Cursor,
		"link":   FirstLink,
	}
}

func (r Registry) Lookup(name string) (Extractor, bool) {
	e, ok := r[name]
	return e, ok
}
