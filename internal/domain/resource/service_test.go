package resource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu-resources/internal/config"
	"edu-resources/internal/utils/platformerrors"
)

const pptxMIME = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

var (
	mp4Header  = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'}
	pptxHeader = []byte("PK\x03\x04\x14\x00\x06\x00\x08\x00\x00\x00\x21\x00slides")
	htmlBody   = []byte("<!DOCTYPE html><html><head><title>数字</title></head><body>1 2 3</body></html>")
)

func mp4Bytes(size int) []byte {
	out := make([]byte, size)
	copy(out, mp4Header)
	return out
}

type fakeStorage struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	puts     int
	deleted  []string
	putErr   error
	urlErr   error
	healthOK bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: map[string][]byte{}, healthOK: true}
}

func (f *fakeStorage) Provider() string { return ProviderLocal }

func (f *fakeStorage) Put(_ context.Context, name string, body io.Reader, size int64, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if int64(len(data)) != size {
		return "", errors.New("size mismatch")
	}
	f.blobs[name] = data
	return name, nil
}

func (f *fakeStorage) URL(_ context.Context, ref string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "/uploads/" + ref, nil
}

func (f *fakeStorage) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[ref]
	if !ok {
		return nil, "", errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), "video/mp4", nil
}

func (f *fakeStorage) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	delete(f.blobs, ref)
	return nil
}

func (f *fakeStorage) Health(context.Context) error {
	if !f.healthOK {
		return errors.New("disk full")
	}
	return nil
}

type fakeRepo struct {
	mu        sync.Mutex
	items     []*Resource
	createErr error
}

func (r *fakeRepo) Create(ctx context.Context, res *Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	stored := *res
	r.items = append([]*Resource{&stored}, r.items...)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			res := *item
			return &res, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, MsgNotFound, nil, "")
}

func (r *fakeRepo) List(_ context.Context, filter Filter) ([]*Resource, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Resource
	for _, item := range r.items {
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(item.Title+" "+item.Description), strings.ToLower(filter.Query)) {
			continue
		}
		res := *item
		out = append(out, &res)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.items {
		if item.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, MsgNotFound, nil, "")
}

func (r *fakeRepo) CountByType(context.Context) (map[Type]TypeUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[Type]TypeUsage{}
	for _, item := range r.items {
		usage := out[item.Type]
		usage.Count++
		usage.Bytes += item.SizeBytes
		out[item.Type] = usage
	}
	return out, nil
}

func (r *fakeRepo) Health(context.Context) error { return nil }

func newTestService(maxBytes int64) (*Service, *fakeRepo, *fakeStorage) {
	repo := &fakeRepo{}
	store := newFakeStorage()
	svc := NewService(&config.Config{MaxUploadBytes: maxBytes}, repo, store, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.FixedZone("CST", 8*3600)) }
	return svc, repo, store
}

func upload(typ, title, name, contentType string, data []byte) UploadRequest {
	return UploadRequest{
		Type:  typ,
		Title: title,
		File: &UploadFile{
			Name:        name,
			ContentType: contentType,
			Size:        int64(len(data)),
			Body:        bytes.NewReader(data),
		},
	}
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	var perr *platformerrors.PlatformError
	require.True(t, errors.As(err, &perr), "expected platform error, got %v", err)
	return perr.Message
}

func TestUploadVideoSucceeds(t *testing.T) {
	svc, repo, store := newTestService(100 << 20)
	data := mp4Bytes(2 << 20)
	req := upload("video", "  小星星儿歌  ", "little-star.mp4", "video/mp4", data)
	req.Description = "经典儿歌"

	res, err := svc.Upload(context.Background(), req)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^res_[0-9a-z]{26}$`), res.ID)
	assert.Equal(t, "小星星儿歌", res.Title)
	assert.Equal(t, "经典儿歌", res.Description)
	assert.Equal(t, TypeVideo, res.Type)
	assert.Equal(t, int64(2<<20), res.SizeBytes)
	assert.Equal(t, "video/mp4", res.MimeType)
	assert.Equal(t, "little-star.mp4", res.OriginalFileName)
	assert.Regexp(t, regexp.MustCompile(`^video_[0-9a-f]{32}\.mp4$`), res.StorageRef)
	assert.Equal(t, "/uploads/"+res.StorageRef, res.AccessURL)
	assert.Equal(t, ProviderLocal, res.StorageProvider)
	assert.Equal(t, time.UTC, res.CreatedAt.Location())

	assert.Equal(t, 1, store.puts)
	assert.Equal(t, data, store.blobs[res.StorageRef])
	require.Len(t, repo.items, 1)
	assert.Equal(t, res.ID, repo.items[0].ID)
}

func TestUploadValidationFailuresNeverWrite(t *testing.T) {
	tests := []struct {
		name    string
		req     UploadRequest
		message string
	}{
		{
			name:    "missing file",
			req:     UploadRequest{Type: "video", Title: "儿歌"},
			message: MsgMissingFile,
		},
		{
			name:    "missing file wins over bad type",
			req:     UploadRequest{Type: "audio", Title: ""},
			message: MsgMissingFile,
		},
		{
			name:    "invalid type",
			req:     upload("audio", "儿歌", "a.mp3", "audio/mpeg", []byte("ID3")),
			message: MsgInvalidType,
		},
		{
			name:    "empty title",
			req:     upload("ppt", "   ", "colors.pptx", pptxMIME, pptxHeader),
			message: MsgMissingTitle,
		},
		{
			name:    "empty file",
			req:     upload("ai", "数字", "empty.json", "application/json", nil),
			message: MsgEmptyFile,
		},
		{
			name:    "mp4 declared as ppt",
			req:     upload("ppt", "颜色认知", "colors.pptx", pptxMIME, mp4Bytes(4096)),
			message: mismatchMessages[TypePPT],
		},
		{
			name:    "video with disallowed content type",
			req:     upload("video", "儿歌", "song.avi", "video/x-msvideo", mp4Bytes(512)),
			message: mismatchMessages[TypeVideo],
		},
		{
			name:    "text declared as video",
			req:     upload("video", "儿歌", "notes.mp4", "video/mp4", []byte("just some plain notes")),
			message: mismatchMessages[TypeVideo],
		},
		{
			name:    "html declared as ppt",
			req:     upload("ppt", "游戏", "game.ppt", "application/vnd.ms-powerpoint", htmlBody),
			message: mismatchMessages[TypePPT],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store := newTestService(100 << 20)

			_, err := svc.Upload(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
			assert.Equal(t, tt.message, messageOf(t, err))
			assert.Zero(t, store.puts)
			assert.Empty(t, repo.items)
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	t.Run("declared size", func(t *testing.T) {
		svc, _, store := newTestService(4096)
		_, err := svc.Upload(context.Background(), upload("video", "儿歌", "big.mp4", "video/mp4", mp4Bytes(5000)))
		require.Error(t, err)
		assert.Equal(t, "文件大小不能超过 4KB", messageOf(t, err))
		assert.Zero(t, store.puts)
	})

	t.Run("unknown size", func(t *testing.T) {
		svc, _, store := newTestService(4096)
		req := upload("video", "儿歌", "big.mp4", "video/mp4", mp4Bytes(5000))
		req.File.Size = -1
		_, err := svc.Upload(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, "文件大小不能超过 4KB", messageOf(t, err))
		assert.Zero(t, store.puts)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		svc, _, store := newTestService(4096)
		_, err := svc.Upload(context.Background(), upload("video", "儿歌", "edge.mp4", "video/mp4", mp4Bytes(4096)))
		require.NoError(t, err)
		assert.Equal(t, 1, store.puts)
	})
}

func TestUploadAcceptsEveryType(t *testing.T) {
	tests := []struct {
		typ, name, contentType string
		data                   []byte
		wantMIME               string
		wantExt                string
	}{
		{"ppt", "colors.pptx", pptxMIME, pptxHeader, pptxMIME, ".pptx"},
		{"ai", "count.html", "text/html; charset=utf-8", htmlBody, "text/html", ".html"},
		{"ai", "config.json", "application/json", []byte(`{"level":1,"items":["一","二"]}`), "application/json", ".json"},
		{"ai", "prompt.txt", "text/plain", []byte("数一数有几只小鸭子"), "text/plain", ".txt"},
		{"video", "clip", "application/octet-stream", mp4Bytes(1024), "video/mp4", ".mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(100 << 20)
			res, err := svc.Upload(context.Background(), upload(tt.typ, "资源", tt.name, tt.contentType, tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, res.MimeType)
			assert.True(t, strings.HasPrefix(res.StorageRef, tt.typ+"_"), res.StorageRef)
			assert.True(t, strings.HasSuffix(res.StorageRef, tt.wantExt), res.StorageRef)
		})
	}
}

func TestUploadStorageNamesAreUnique(t *testing.T) {
	svc, _, store := newTestService(100 << 20)
	for i := 0; i < 20; i++ {
		_, err := svc.Upload(context.Background(), upload("ai", "同名", "same.json", "application/json", []byte(`{}`)))
		require.NoError(t, err)
	}
	assert.Len(t, store.blobs, 20)
}

func TestUploadStorageFailure(t *testing.T) {
	svc, repo, store := newTestService(100 << 20)
	store.putErr = errors.New("bucket unreachable")

	_, err := svc.Upload(context.Background(), upload("video", "儿歌", "a.mp4", "video/mp4", mp4Bytes(1024)))
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))
	assert.Equal(t, MsgUploadFailed, messageOf(t, err))
	assert.Empty(t, repo.items)
}

func TestUploadRegistryFailureRemovesBlob(t *testing.T) {
	svc, repo, store := newTestService(100 << 20)
	repo.createErr = platformerrors.NewError(context.Background(), platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "insert failed", nil, "")

	_, err := svc.Upload(context.Background(), upload("video", "儿歌", "a.mp4", "video/mp4", mp4Bytes(1024)))
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))
	assert.Equal(t, 1, store.puts)
	assert.Len(t, store.deleted, 1)
	assert.Empty(t, store.blobs)
}

func TestUploadURLFailureRemovesBlob(t *testing.T) {
	svc, repo, store := newTestService(100 << 20)
	store.urlErr = errors.New("presign failed")

	_, err := svc.Upload(context.Background(), upload("video", "儿歌", "a.mp4", "video/mp4", mp4Bytes(1024)))
	require.Error(t, err)
	assert.Equal(t, MsgUploadFailed, messageOf(t, err))
	assert.Len(t, store.deleted, 1)
	assert.Empty(t, repo.items)
}

func TestRegisterLink(t *testing.T) {
	svc, repo, store := newTestService(100 << 20)

	res, err := svc.RegisterLink(context.Background(), LinkRequest{
		Type:  "video",
		Title: "动物世界",
		URL:   " https://cdn.example.com/media/animals.mp4 ",
	})
	require.NoError(t, err)
	assert.Equal(t, ProviderURL, res.StorageProvider)
	assert.Equal(t, "https://cdn.example.com/media/animals.mp4", res.AccessURL)
	assert.Equal(t, "animals.mp4", res.OriginalFileName)
	assert.Zero(t, store.puts)
	require.Len(t, repo.items, 1)

	_, err = svc.RegisterLink(context.Background(), LinkRequest{Type: "video", Title: "x", URL: "ftp://cdn.example.com/a.mp4"})
	assert.Equal(t, MsgInvalidURL, messageOf(t, err))

	_, err = svc.RegisterLink(context.Background(), LinkRequest{Type: "slides", Title: "x", URL: "https://a.example.com"})
	assert.Equal(t, MsgInvalidType, messageOf(t, err))
}

func TestListResolvesURLsAndValidatesFilter(t *testing.T) {
	svc, _, _ := newTestService(100 << 20)
	ctx := context.Background()

	_, err := svc.Upload(ctx, upload("video", "小星星儿歌", "star.mp4", "video/mp4", mp4Bytes(1024)))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, upload("ai", "认识数字1-10", "count.html", "text/html", htmlBody))
	require.NoError(t, err)
	_, err = svc.RegisterLink(ctx, LinkRequest{Type: "ppt", Title: "颜色认知", URL: "https://example.com/colors.pptx"})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, item := range items {
		assert.NotEmpty(t, item.AccessURL)
	}

	videos, err := svc.FilterByType(ctx, TypeVideo)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "小星星儿歌", videos[0].Title)

	found, err := svc.Search(ctx, " 数字 ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "认识数字1-10", found[0].Title)

	none, err := svc.Search(ctx, "xyz")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, _, err = svc.List(ctx, Filter{Type: "audio"})
	assert.Equal(t, MsgInvalidType, messageOf(t, err))

	_, _, err = svc.List(ctx, Filter{Limit: -1})
	assert.Equal(t, MsgInvalidFilter, messageOf(t, err))
}

func TestGetAndDelete(t *testing.T) {
	svc, repo, store := newTestService(100 << 20)
	ctx := context.Background()

	res, err := svc.Upload(ctx, upload("video", "儿歌", "a.mp4", "video/mp4", mp4Bytes(1024)))
	require.NoError(t, err)

	got, err := svc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+res.StorageRef, got.AccessURL)

	require.NoError(t, svc.Delete(ctx, res.ID))
	assert.Empty(t, repo.items)
	assert.Equal(t, []string{res.StorageRef}, store.deleted)

	_, err = svc.Get(ctx, res.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	assert.Equal(t, MsgNotFound, messageOf(t, err))

	err = svc.Delete(ctx, res.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestDeleteLinkLeavesStorageAlone(t *testing.T) {
	svc, _, store := newTestService(100 << 20)
	ctx := context.Background()

	res, err := svc.RegisterLink(ctx, LinkRequest{Type: "ai", Title: "外部游戏", URL: "https://games.example.com/count"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, res.ID))
	assert.Empty(t, store.deleted)
}

func TestOpen(t *testing.T) {
	svc, _, _ := newTestService(100 << 20)
	ctx := context.Background()
	data := mp4Bytes(2048)

	res, err := svc.Upload(ctx, upload("video", "儿歌", "a.mp4", "video/mp4", data))
	require.NoError(t, err)

	got, reader, err := svc.Open(ctx, res.ID)
	require.NoError(t, err)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.Equal(t, res.ID, got.ID)

	link, err := svc.RegisterLink(ctx, LinkRequest{Type: "video", Title: "外链", URL: "https://example.com/v.mp4"})
	require.NoError(t, err)
	got, reader, err = svc.Open(ctx, link.ID)
	require.NoError(t, err)
	assert.Nil(t, reader)
	assert.Equal(t, "https://example.com/v.mp4", got.AccessURL)
}

func TestHealth(t *testing.T) {
	svc, _, store := newTestService(100 << 20)
	require.NoError(t, svc.Health(context.Background()))

	store.healthOK = false
	err := svc.Health(context.Background())
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnavailable))
}
