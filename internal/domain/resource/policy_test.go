package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		raw  string
		want Type
		ok   bool
	}{
		{"video", TypeVideo, true},
		{" PPT ", TypePPT, true},
		{"ai", TypeAI, true},
		{"audio", "audio", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseType(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}

func TestStorageExtension(t *testing.T) {
	tests := []struct {
		name, fileName, contentType, want string
	}{
		{"plain", "song.mp4", "video/mp4", ".mp4"},
		{"uppercase", "COLORS.PPTX", pptxMIME, ".pptx"},
		{"path components dropped", "../../etc/passwd.html", "text/html", ".html"},
		{"windows path", `C:\Users\kid\game.json`, "application/json", ".json"},
		{"missing extension", "clip", "video/mp4", ".mp4"},
		{"unsafe extension", "x.m p4", "video/webm", ".webm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storageExtension(tt.fileName, tt.contentType))
		})
	}
}

func TestStorageNameShape(t *testing.T) {
	name := storageName(TypeAI, "../../../../evil.html", "text/html")
	assert.Regexp(t, `^ai_[0-9a-f]{32}\.html$`, name)
	assert.NotEqual(t, name, storageName(TypeAI, "evil.html", "text/html"))
}

func TestCheckMIMEReturnsEffectiveType(t *testing.T) {
	ctx := context.Background()

	got, err := checkMIME(ctx, TypeVideo, "", mp4Header)
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", got)

	got, err = checkMIME(ctx, TypeAI, "TEXT/HTML; charset=UTF-8", htmlBody)
	require.NoError(t, err)
	assert.Equal(t, "text/html", got)

	_, err = checkMIME(ctx, TypeAI, "application/pdf", []byte("%PDF-1.4"))
	assert.Error(t, err)
}

func TestAllowedMIMEsIsACopy(t *testing.T) {
	list := AllowedMIMEs(TypeVideo)
	list[0] = "changed"
	assert.Equal(t, "video/mp4", AllowedMIMEs(TypeVideo)[0])
}

func TestLinkFileName(t *testing.T) {
	assert.Equal(t, "animals.mp4", linkFileName("https://cdn.example.com/a/animals.mp4"))
	assert.Equal(t, "unknown", linkFileName("https://cdn.example.com/"))
	assert.Equal(t, "unknown", linkFileName("https://cdn.example.com"))
}

func TestFormatLimit(t *testing.T) {
	tests := []struct {
		limit int64
		want  string
	}{
		{100 << 20, "100MB"},
		{1 << 20, "1MB"},
		{4096, "4KB"},
		{1536 << 10, "1536KB"},
		{1000, "1000 B"},
		{(1 << 20) + 1, "1.0 MiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLimit(tt.limit))
	}
}

func TestTooLargeMessageForDefaultCeiling(t *testing.T) {
	err := TooLargeError(context.Background(), 104857600)
	assert.Equal(t, "文件大小不能超过 100MB", messageOf(t, err))
}
