// Package licenses provides the static license registry used to validate
// submitted license codes. Lookups are pure in-memory reads; the table is
// fixed at construction and never mutated afterwards.
package licenses

// Licensee is the registered holder of a license code.
type Licensee struct {
	// Valid marks whether the license is currently usable. Revoked codes
	// stay in the table with Valid=false so they fail lookups the same way
	// unknown codes do.
	Valid bool
	// Name is the display name returned to the submitter.
	Name string
}

// Registry validates license codes against a fixed table.
type Registry struct {
	table map[string]Licensee
}

// defaultTable mirrors the production license list.
var defaultTable = map[string]Licensee{
	"123": {Valid: true, Name: "محمد"},
	"456": {Valid: true, Name: "علی"},
	"789": {Valid: true, Name: "زهرا"},
}

// NewRegistry returns a registry backed by the built-in license table.
func NewRegistry() *Registry {
	return &Registry{table: defaultTable}
}

// NewRegistryWithTable returns a registry backed by the given table.
// Intended for tests and for deployments that load the table elsewhere.
func NewRegistryWithTable(table map[string]Licensee) *Registry {
	return &Registry{table: table}
}

// Validate looks up code and reports whether it names a valid license.
// The returned Licensee is meaningful only when ok is true.
func (r *Registry) Validate(code string) (Licensee, bool) {
	l, found := r.table[code]
	if !found || !l.Valid {
		return Licensee{}, false
	}
	if l.Name == "" {
		l.Name = "کاربر"
	}
	return l, true
}
