package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/models"
)

// Platform limits.
const (
	instagramCaptionMax  = 2200
	instagramHashtagsMax = 30
	youtubeTitleMax      = 100
	youtubeDescMax       = 5000
	youtubeTagsMax       = 30
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

var instagramTips = []string{
	"Copy the content below and paste into Instagram",
	"Add your image or video in Instagram",
	"Post at optimal times for your audience",
	"Engage with comments within the first hour",
}

var youtubeTips = []string{
	"Create an eye-catching thumbnail",
	"Upload during peak hours for your audience",
	"Add end screens and cards",
	"Respond to comments to boost engagement",
	"Include relevant keywords in title and description",
}

// ExportServiceProvider defines the interface for export formatting.
type ExportServiceProvider interface {
	Export(platform string, content models.ExportContent, mediaFormat string) (interface{}, error)
}

// ExportService turns raw or structured content into platform-constrained
// output. The transforms are pure: no ledger interaction, no persisted
// state, and re-formatting already-formatted text is harmless.
type ExportService struct {
	platforms map[string]func(content models.ExportContent, mediaFormat string) interface{}
}

// NewExportService creates a new ExportService with its closed platform
// table.
func NewExportService() *ExportService {
	s := &ExportService{}
	s.platforms = map[string]func(models.ExportContent, string) interface{}{
		"instagram": func(c models.ExportContent, f string) interface{} { return s.FormatInstagram(c, f) },
		"youtube":   func(c models.ExportContent, f string) interface{} { return s.FormatYouTube(c, f) },
	}
	return s
}

// Export dispatches to the transform for platform. Unknown platforms are
// rejected here, before any formatting work.
func (s *ExportService) Export(platform string, content models.ExportContent, mediaFormat string) (interface{}, error) {
	transform, ok := s.platforms[platform]
	if !ok {
		return nil, apperr.Newf(apperr.UnknownFormat, "Unknown platform: %s", platform)
	}
	return transform(content, mediaFormat), nil
}

// FormatInstagram splits content into a caption and a hashtag set, applies
// Instagram's limits and joins them with the usual dot spacer.
func (s *ExportService) FormatInstagram(content models.ExportContent, mediaFormat string) models.InstagramExport {
	var caption string
	var hashtags []string

	if content.Raw != "" {
		caption, hashtags = splitCaptionHashtags(content.Raw)
	} else {
		caption = content.Text
		hashtags = content.Hashtags
	}

	caption = truncate(caption, instagramCaptionMax)
	if len(hashtags) > instagramHashtagsMax {
		hashtags = hashtags[:instagramHashtagsMax]
	}

	if mediaFormat == "" {
		mediaFormat = "post"
	}

	return models.InstagramExport{
		Platform: "instagram",
		Content:  caption + "\n.\n.\n.\n" + strings.Join(hashtags, " "),
		Metadata: models.InstagramMetadata{
			CaptionLength: len([]rune(caption)),
			HashtagCount:  len(hashtags),
			MediaType:     mediaFormat,
			ExportedAt:    time.Now().UTC(),
		},
		Tips: instagramTips,
	}
}

// FormatYouTube derives a title, description and tag list from content and
// renders the structured listing description.
func (s *ExportService) FormatYouTube(content models.ExportContent, mediaFormat string) models.YouTubeExport {
	title := content.Title
	description := content.Description
	tags := content.Tags

	if content.Raw != "" {
		lines := nonBlankLines(content.Raw)
		if len(lines) > 0 {
			title = lines[0]
			description = strings.Join(lines[1:], "\n")
		}
		for _, tag := range hashtagPattern.FindAllString(content.Raw, -1) {
			tags = append(tags, strings.TrimPrefix(tag, "#"))
		}
	}
	if title == "" {
		title = "Untitled Video"
	}

	title = truncate(title, youtubeTitleMax)
	description = truncate(description, youtubeDescMax)
	if len(tags) > youtubeTagsMax {
		tags = tags[:youtubeTagsMax]
	}

	if mediaFormat == "" {
		mediaFormat = "video"
	}

	structured := description + `

──────────────────────────

📌 CHAPTERS
0:00 Introduction

──────────────────────────

🔗 LINKS
🌐 Website: [Your Website]
📱 Social: [Your Social Media]

──────────────────────────

#️⃣ TAGS
` + strings.Join(tags, ", ")

	return models.YouTubeExport{
		Platform:    "youtube",
		Title:       title,
		Description: structured,
		Tags:        tags,
		Metadata: models.YouTubeMetadata{
			TitleLength:       len([]rune(title)),
			DescriptionLength: len([]rune(structured)),
			TagCount:          len(tags),
			Format:            mediaFormat,
			ExportedAt:        time.Now().UTC(),
		},
		Tips: youtubeTips,
	}
}

// splitCaptionHashtags separates free text into caption lines and hashtag
// tokens. Any line containing '#' contributes its #word tokens and is
// excluded from the caption.
func splitCaptionHashtags(text string) (string, []string) {
	var captionLines []string
	var hashtags []string

	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "#") {
			hashtags = append(hashtags, hashtagPattern.FindAllString(line, -1)...)
			continue
		}
		captionLines = append(captionLines, line)
	}
	return strings.TrimSpace(strings.Join(captionLines, "\n")), hashtags
}

// nonBlankLines splits text into lines, dropping blank ones.
func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// truncate caps s at max characters, replacing the tail with "..." so the
// result is exactly max characters long when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
