package data

// Album identity as returned by a metadata lookup.
type Album struct {
	ID   string
	Name string
}
