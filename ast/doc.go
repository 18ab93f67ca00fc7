package ast

// Visibility mirrors the handful of JSDoc-declared visibility levels the
// conformance engine and inference engine both consult.
type Visibility int

const (
	VisibilityUnspecified Visibility = iota
	VisibilityPublic
	VisibilityProtected
	VisibilityPrivate
)

// Doc is the attached documentation slot named in §3 DATA MODEL:
// "structured metadata about declared types, visibility, suppressions."
// DeclaredType is left as interface{} here to avoid an import cycle with
// package types; infer/ and conformance/ type-assert it to *types.Type.
type Doc struct {
	DeclaredType  interface{}
	Visibility    Visibility
	Suppressions  []string
	TemplateParams []string
	Abstract      bool
	Text          string
}

// Suppresses reports whether the documentation suppresses a named
// diagnostic key (e.g. "duplicate", per the Open Question in §9).
func (d *Doc) Suppresses(key string) bool {
	if d == nil {
		return false
	}
	for _, s := range d.Suppressions {
		if s == key {
			return true
		}
	}
	return false
}
