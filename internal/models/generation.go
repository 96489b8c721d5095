package models

import "time"

// GenerationRequest is the ephemeral input for a content generation call.
// Tone/Length apply to the emu format, Style/Duration to longcat; unused
// fields are left empty.
type GenerationRequest struct {
	Format   string `json:"format"`
	Prompt   string `json:"prompt"`
	Tone     string `json:"tone,omitempty"`
	Style    string `json:"style,omitempty"`
	Length   string `json:"length,omitempty"`
	Duration string `json:"duration,omitempty"`
	UserID   string `json:"userId"`
}

// GenerationResult carries the backend's raw text plus the metadata the
// caller attaches to it.
type GenerationResult struct {
	Content  string             `json:"content"`
	Metadata GenerationMetadata `json:"metadata"`
}

// GenerationMetadata describes how a piece of content was generated.
type GenerationMetadata struct {
	Format    string    `json:"format"`
	Tone      string    `json:"tone,omitempty"`
	Style     string    `json:"style,omitempty"`
	Length    string    `json:"length,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
