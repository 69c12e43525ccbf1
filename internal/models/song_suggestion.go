package models

// SongSuggestion is a song proposed by a guest for the party playlist.
type SongSuggestion struct {
	BaseModel

	SongName   string `gorm:"size:150;not null;uniqueIndex:idx_song_suggestion_unique" json:"songName"`
	Artist     string `gorm:"size:150;not null;uniqueIndex:idx_song_suggestion_unique" json:"artist"`
	PersonName string `gorm:"size:100;not null;uniqueIndex:idx_song_suggestion_unique" json:"personName"`
}
