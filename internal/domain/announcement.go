package domain

import "time"

// Announcement records that an article revision was posted to the chat channel.
type Announcement struct {
	ArticleID   string
	ContentHash string
	Title       string
	AnnouncedAt time.Time
}
