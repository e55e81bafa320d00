package model

// Room statuses. A room is "created" until its owner starts playback and
// "active" afterwards. Whether a current song is populated distinguishes an
// armed room from a playing one.
const (
	RoomStatusCreated = "created"
	RoomStatusActive  = "active"
)

// Song is the snapshot of a track resolved against the streaming catalog.
// It is the payload broadcast on the bus when a room transitions.
type Song struct {
	SongID  string `json:"song_id"`
	TrackID string `json:"track_id"`
	Artist  string `json:"artist"`
	Title   string `json:"title"`
}

// Room mirrors the 'rooms' table. SeedCatalogID and PlaylistSessionID hold
// external recommendation-engine handles and stay empty until first use.
// CurrentSong is nil until the first advance commits a track.
type Room struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Findable          bool   `json:"findable"`
	Status            string `json:"status"`
	OwnerID           string `json:"owner_id"`
	SeedCatalogID     string `json:"-"`
	PlaylistSessionID string `json:"-"`
	CurrentSong       *Song  `json:"current_song,omitempty"`
}
