package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	source, _, _ := newTestService(100 << 20)
	ctx := context.Background()

	video, err := source.Upload(ctx, upload("video", "小星星儿歌", "star.mp4", "video/mp4", mp4Bytes(2048)))
	require.NoError(t, err)
	link, err := source.RegisterLink(ctx, LinkRequest{Type: "ai", Title: "数字游戏", URL: "https://games.example.com/count"})
	require.NoError(t, err)

	exported, err := source.Export(ctx)
	require.NoError(t, err)
	require.Len(t, exported, 2)

	target, repo, _ := newTestService(100 << 20)
	result, err := target.Import(ctx, exported)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Imported: 2}, result)
	require.Len(t, repo.items, 2)

	got, err := target.Get(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.StorageRef, got.StorageRef)
	assert.Equal(t, int64(2048), got.SizeBytes)
	assert.Equal(t, "/uploads/"+video.StorageRef, got.AccessURL)

	got, err = target.Get(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://games.example.com/count", got.AccessURL)

	// importing the same dump again adds nothing
	result, err = target.Import(ctx, exported)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Skipped: 2}, result)
	assert.Len(t, repo.items, 2)
}

func TestImportAssignsIDsAndTimestamps(t *testing.T) {
	svc, repo, _ := newTestService(100 << 20)
	records := []*Resource{
		{Title: " 颜色认知 ", Type: "PPT", StorageProvider: ProviderLocal, StorageRef: "ppt_1.pptx", MimeType: pptxMIME + "; charset=binary"},
		{ID: "res_dup", Title: "儿歌", Type: "video", StorageProvider: ProviderURL, StorageRef: "https://videos.example.com/a/song.mp4"},
		{ID: "res_dup", Title: "儿歌", Type: "video", StorageProvider: ProviderURL, StorageRef: "https://videos.example.com/a/song.mp4"},
	}

	result, err := svc.Import(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Imported: 2, Skipped: 1}, result)

	byTitle := map[string]*Resource{}
	for _, item := range repo.items {
		byTitle[item.Title] = item
	}
	ppt := byTitle["颜色认知"]
	require.NotNil(t, ppt)
	assert.Regexp(t, `^res_`, ppt.ID)
	assert.Equal(t, TypePPT, ppt.Type)
	assert.Equal(t, pptxMIME, ppt.MimeType)
	assert.Equal(t, time.Date(2025, 6, 1, 1, 30, 0, 0, time.UTC), ppt.CreatedAt)
	assert.Equal(t, "song.mp4", byTitle["儿歌"].OriginalFileName)
}

func TestImportRejectsInvalidBatches(t *testing.T) {
	valid := &Resource{Title: "ok", Type: "ai", StorageProvider: ProviderLocal, StorageRef: "ai_1.html"}
	tests := map[string][]*Resource{
		"not a list":      nil,
		"nil record":      {valid, nil},
		"bad type":        {valid, {Title: "x", Type: "audio", StorageProvider: ProviderLocal, StorageRef: "a.mp3"}},
		"blank title":     {valid, {Title: "  ", Type: "ai", StorageProvider: ProviderLocal, StorageRef: "ai_2.html"}},
		"unknown storage": {valid, {Title: "x", Type: "ai", StorageProvider: "ftp", StorageRef: "ai_2.html"}},
		"missing ref":     {valid, {Title: "x", Type: "ai", StorageProvider: ProviderS3}},
		"bad link":        {valid, {Title: "x", Type: "ai", StorageProvider: ProviderURL, StorageRef: "javascript:alert(1)"}},
		"negative size":   {valid, {Title: "x", Type: "ai", StorageProvider: ProviderLocal, StorageRef: "ai_2.html", SizeBytes: -1}},
	}

	for name, records := range tests {
		t.Run(name, func(t *testing.T) {
			svc, repo, _ := newTestService(100 << 20)
			_, err := svc.Import(context.Background(), records)
			require.Error(t, err)
			assert.Equal(t, MsgImportFormat, messageOf(t, err))
			assert.Empty(t, repo.items)
		})
	}
}

func TestImportEmptyList(t *testing.T) {
	svc, _, _ := newTestService(100 << 20)
	result, err := svc.Import(context.Background(), []*Resource{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{}, result)
}

func TestUsage(t *testing.T) {
	svc, _, _ := newTestService(100 << 20)
	ctx := context.Background()

	_, err := svc.Upload(ctx, upload("video", "儿歌", "a.mp4", "video/mp4", mp4Bytes(2048)))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, upload("ai", "数字", "n.html", "text/html", htmlBody))
	require.NoError(t, err)
	_, err = svc.RegisterLink(ctx, LinkRequest{Type: "video", Title: "外部", URL: "https://v.example.com/x.mp4"})
	require.NoError(t, err)

	usage, err := svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), usage.Total)
	assert.Equal(t, int64(2048+len(htmlBody)), usage.TotalBytes)
	assert.Equal(t, TypeUsage{Count: 2, Bytes: 2048}, usage.ByType[TypeVideo])
	assert.Equal(t, TypeUsage{}, usage.ByType[TypePPT])
	assert.Len(t, usage.ByType, 3)
	assert.Equal(t, ProviderLocal, usage.Storage)
	assert.Equal(t, int64(100<<20), usage.MaxUploadBytes)
}
