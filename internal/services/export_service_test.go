package services

import (
	"strings"
	"testing"

	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/models"
)

func TestExportUnknownPlatform(t *testing.T) {
	svc := NewExportService()

	_, err := svc.Export("tiktok", models.ExportContent{Raw: "hello"}, "")
	if apperr.CodeOf(err) != apperr.UnknownFormat {
		t.Fatalf("expected UnknownFormat, got %v", err)
	}
}

func TestFormatInstagramSplitsCaptionAndHashtags(t *testing.T) {
	svc := NewExportService()

	out := svc.FormatInstagram(models.ExportContent{Raw: "Great day!\n#sun #fun"}, "")

	if !strings.HasPrefix(out.Content, "Great day!\n.\n.\n.\n") {
		t.Errorf("caption block wrong: %q", out.Content)
	}
	if !strings.HasSuffix(out.Content, "#sun #fun") {
		t.Errorf("hashtag block wrong: %q", out.Content)
	}
	if out.Metadata.HashtagCount != 2 {
		t.Errorf("expected 2 hashtags, got %d", out.Metadata.HashtagCount)
	}
	if out.Metadata.CaptionLength != len("Great day!") {
		t.Errorf("expected caption length %d, got %d", len("Great day!"), out.Metadata.CaptionLength)
	}
	if out.Metadata.MediaType != "post" {
		t.Errorf("expected default media type post, got %q", out.Metadata.MediaType)
	}
	if out.Platform != "instagram" {
		t.Errorf("expected platform instagram, got %q", out.Platform)
	}
	if len(out.Tips) == 0 {
		t.Error("expected tips to be attached")
	}
}

func TestFormatInstagramStructuredContent(t *testing.T) {
	svc := NewExportService()

	out := svc.FormatInstagram(models.ExportContent{
		Text:     "A structured caption",
		Hashtags: []string{"#one", "#two", "#three"},
	}, "reel")

	if !strings.HasPrefix(out.Content, "A structured caption\n.\n.\n.\n") {
		t.Errorf("caption block wrong: %q", out.Content)
	}
	if !strings.HasSuffix(out.Content, "#one #two #three") {
		t.Errorf("hashtag block wrong: %q", out.Content)
	}
	if out.Metadata.MediaType != "reel" {
		t.Errorf("expected media type reel, got %q", out.Metadata.MediaType)
	}
}

func TestFormatInstagramTruncatesCaption(t *testing.T) {
	svc := NewExportService()

	out := svc.FormatInstagram(models.ExportContent{Raw: strings.Repeat("a", 3000)}, "")

	caption := strings.SplitN(out.Content, "\n.\n.\n.\n", 2)[0]
	if len([]rune(caption)) != 2200 {
		t.Errorf("expected caption of exactly 2200 characters, got %d", len([]rune(caption)))
	}
	if !strings.HasSuffix(caption, "...") {
		t.Error("expected truncated caption to end with ellipsis")
	}
	if out.Metadata.CaptionLength != 2200 {
		t.Errorf("metadata caption length %d, want 2200", out.Metadata.CaptionLength)
	}
}

func TestFormatInstagramCapsHashtags(t *testing.T) {
	svc := NewExportService()

	var b strings.Builder
	b.WriteString("Caption line\n")
	for i := 0; i < 40; i++ {
		b.WriteString("#tag ")
	}
	out := svc.FormatInstagram(models.ExportContent{Raw: b.String()}, "")

	if out.Metadata.HashtagCount != 30 {
		t.Errorf("expected hashtag cap of 30, got %d", out.Metadata.HashtagCount)
	}
}

func TestFormatYouTubeFromRawText(t *testing.T) {
	svc := NewExportService()

	out := svc.FormatYouTube(models.ExportContent{Raw: "My Title\nLine1\nLine2\n#tag1 #tag2"}, "")

	if out.Title != "My Title" {
		t.Errorf("expected title from first line, got %q", out.Title)
	}
	if !strings.HasPrefix(out.Description, "Line1\nLine2") {
		t.Errorf("description start wrong: %q", out.Description)
	}
	if len(out.Tags) != 2 || out.Tags[0] != "tag1" || out.Tags[1] != "tag2" {
		t.Errorf("expected tags [tag1 tag2], got %v", out.Tags)
	}
	if !strings.Contains(out.Description, "0:00 Introduction") {
		t.Error("expected chapters stub in description")
	}
	if !strings.Contains(out.Description, "tag1, tag2") {
		t.Error("expected tag listing in description")
	}
	if out.Metadata.Format != "video" {
		t.Errorf("expected default format video, got %q", out.Metadata.Format)
	}
}

func TestFormatYouTubeUntitledFallback(t *testing.T) {
	svc := NewExportService()

	out := svc.FormatYouTube(models.ExportContent{Raw: "   \n\n  "}, "")
	if out.Title != "Untitled Video" {
		t.Errorf("expected Untitled Video fallback, got %q", out.Title)
	}
}

func TestFormatYouTubeTruncatesTitle(t *testing.T) {
	svc := NewExportService()

	out := svc.FormatYouTube(models.ExportContent{Title: strings.Repeat("x", 150)}, "")

	if len([]rune(out.Title)) != 100 {
		t.Errorf("expected title of exactly 100 characters, got %d", len([]rune(out.Title)))
	}
	if !strings.HasSuffix(out.Title, "...") {
		t.Error("expected truncated title to end with ellipsis")
	}
}

func TestFormatYouTubeCapsTags(t *testing.T) {
	svc := NewExportService()

	tags := make([]string, 45)
	for i := range tags {
		tags[i] = "tag"
	}
	out := svc.FormatYouTube(models.ExportContent{Title: "T", Tags: tags}, "")

	if len(out.Tags) != 30 {
		t.Errorf("expected tag cap of 30, got %d", len(out.Tags))
	}
}

func TestExportIsIdempotentOnFormattedText(t *testing.T) {
	svc := NewExportService()

	first := svc.FormatInstagram(models.ExportContent{Raw: "Hello world\n#go"}, "")
	second := svc.FormatInstagram(models.ExportContent{Raw: first.Content}, "")

	if !strings.HasPrefix(second.Content, "Hello world") {
		t.Errorf("re-export mangled caption: %q", second.Content)
	}
	if second.Metadata.HashtagCount != 1 {
		t.Errorf("re-export changed hashtag count: %d", second.Metadata.HashtagCount)
	}
}
