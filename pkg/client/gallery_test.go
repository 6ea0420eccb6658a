package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	err     error
	listed  []Resource
}

func (f *fakeUploader) Upload(ctx context.Context, form UploadForm) (*Resource, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Resource{
		ID:          "res_" + string(rune('a'+n)),
		Title:       form.Title,
		Description: form.Description,
		Type:        form.Type,
		FileName:    form.File.Name,
		Size:        int64(len(form.File.Data)),
	}, nil
}

func (f *fakeUploader) List(context.Context, ListOptions) (*Page, error) {
	return &Page{Items: f.listed, Total: int64(len(f.listed))}, nil
}

func filledForm() UploadForm {
	return UploadForm{
		Type:        "video",
		Title:       "小星星儿歌",
		Description: "儿歌",
		File:        &File{Name: "star.mp4", ContentType: "video/mp4", Data: []byte("data")},
	}
}

func TestGallerySubmitPrependsAndResets(t *testing.T) {
	uploader := &fakeUploader{listed: []Resource{{ID: "res_old", Title: "旧资源", Type: "ppt"}}}
	g := NewGallery(uploader)
	require.NoError(t, g.Load(context.Background()))
	require.True(t, g.SetForm(filledForm()))

	res, err := g.Submit(context.Background())
	require.NoError(t, err)

	items := g.Items()
	require.Len(t, items, 2)
	assert.Equal(t, res.ID, items[0].ID)
	assert.Equal(t, "res_old", items[1].ID)

	form := g.Form()
	assert.Empty(t, form.Title)
	assert.Nil(t, form.File)
	assert.Equal(t, "video", form.Type)
	assert.False(t, g.Busy())
}

func TestGalleryBlocksIncompleteForm(t *testing.T) {
	uploader := &fakeUploader{}
	g := NewGallery(uploader)

	form := filledForm()
	form.Title = "  "
	g.SetForm(form)
	_, err := g.Submit(context.Background())
	assert.ErrorIs(t, err, ErrMissingTitle)

	form = filledForm()
	form.File = nil
	g.SetForm(form)
	_, err = g.Submit(context.Background())
	assert.ErrorIs(t, err, ErrMissingFile)

	assert.Zero(t, uploader.calls)
}

func TestGalleryKeepsFormOnFailure(t *testing.T) {
	uploader := &fakeUploader{err: &APIError{StatusCode: 400, Message: "PPT 文件格式不正确，请上传 .ppt 或 .pptx 文件"}}
	g := NewGallery(uploader)
	form := filledForm()
	g.SetForm(form)

	_, err := g.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "PPT 文件格式不正确，请上传 .ppt 或 .pptx 文件", err.Error())

	assert.Equal(t, form, g.Form())
	assert.Empty(t, g.Items())
	assert.False(t, g.Busy())
}

func TestGalleryRefusesWhileBusy(t *testing.T) {
	uploader := &fakeUploader{release: make(chan struct{})}
	g := NewGallery(uploader)
	g.SetForm(filledForm())

	done := make(chan error, 1)
	go func() {
		_, err := g.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, g.Busy, time.Second, 5*time.Millisecond)

	_, err := g.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, g.SetForm(UploadForm{}))

	close(uploader.release)
	require.NoError(t, <-done)
	assert.False(t, g.Busy())
	assert.Equal(t, 1, uploader.calls)
}

func TestGalleryFilterAndSearch(t *testing.T) {
	uploader := &fakeUploader{listed: []Resource{
		{ID: "3", Title: "认识数字1-10", Type: "ai"},
		{ID: "2", Title: "颜色认知", Description: "Colors", Type: "ppt"},
		{ID: "1", Title: "小星星儿歌", Type: "video"},
	}}
	g := NewGallery(uploader)
	require.NoError(t, g.Load(context.Background()))

	ppt := g.Filter("ppt")
	require.Len(t, ppt, 1)
	assert.Equal(t, "2", ppt[0].ID)
	assert.Len(t, g.Filter(""), 3)

	found := g.Search("数字")
	require.Len(t, found, 1)
	assert.Equal(t, "3", found[0].ID)
	assert.Len(t, g.Search("colors"), 1)
	assert.Empty(t, g.Search("xyz"))
}

func TestUploadFormValidate(t *testing.T) {
	form := filledForm()
	assert.NoError(t, form.Validate())

	form.File = &File{Name: "empty.mp4"}
	assert.ErrorIs(t, form.Validate(), ErrMissingFile)

	var apiErr *APIError
	assert.False(t, errors.As(form.Validate(), &apiErr))
}
