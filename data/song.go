package data

// A Song is one track as reported by a single source during a single
// fetch cycle. Songs are built once by a source adapter and never mutated
// afterwards; a later stage that learns more about a song makes a new one.
type Song struct {
	// Opaque, unique within its source. Like "1724488123".
	ID    string
	Title string

	// The raw credit string, exactly as supplied. Like
	// "Bad Bunny & Drake", or "Artist A (feat. Artist B)".
	Artist string

	Album   string
	AlbumID string

	ImageURL  string
	SourceURL string
}

// WithAlbum returns a copy of the song carrying the given album identity.
// Empty values leave the existing fields alone.
func (s Song) WithAlbum(album Album) Song {
	if album.ID != "" {
		s.AlbumID = album.ID
	}
	if album.Name != "" {
		s.Album = album.Name
	}
	return s
}

// WithImage returns a copy of the song with the given artwork.
func (s Song) WithImage(imageURL string) Song {
	s.ImageURL = imageURL
	return s
}
