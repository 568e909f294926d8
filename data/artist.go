package data

// An Artist is a reconciled entity. ID is derived from Name by
// names.Canonicalize, and two artists with the same ID are the same
// artist.
type Artist struct {
	ID       string
	Name     string
	ImageURL string

	// Knowledge-graph entity id, like "Q26876". Empty for artists that
	// were only ever seen in a song credit.
	EntityID string

	// Alternate names. Only knowledge-graph entities carry aliases.
	Aliases []string
}
