package models

import "time"

// ExportContent is the input to an export transform. Clients either send raw
// free-text or an already-structured payload; the transform accepts both.
// Raw is set when the client sent a plain string, the remaining fields when
// it sent a structured object.
type ExportContent struct {
	Raw string
	// Structured Instagram input.
	Text     string
	Hashtags []string
	// Structured YouTube input.
	Title       string
	Description string
	Tags        []string
}

// InstagramExport is the platform-constrained output for Instagram.
type InstagramExport struct {
	Platform string            `json:"platform"`
	Content  string            `json:"content"`
	Metadata InstagramMetadata `json:"metadata"`
	Tips     []string          `json:"tips"`
}

// InstagramMetadata describes the formatted Instagram post.
type InstagramMetadata struct {
	CaptionLength int       `json:"captionLength"`
	HashtagCount  int       `json:"hashtagCount"`
	MediaType     string    `json:"mediaType"`
	ExportedAt    time.Time `json:"exportedAt"`
}

// YouTubeExport is the platform-constrained output for YouTube.
type YouTubeExport struct {
	Platform    string          `json:"platform"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	Metadata    YouTubeMetadata `json:"metadata"`
	Tips        []string        `json:"tips"`
}

// YouTubeMetadata describes the formatted YouTube listing.
type YouTubeMetadata struct {
	TitleLength       int       `json:"titleLength"`
	DescriptionLength int       `json:"descriptionLength"`
	TagCount          int       `json:"tagCount"`
	Format            string    `json:"format"`
	ExportedAt        time.Time `json:"exportedAt"`
}
