package client

import (
	"context"
	"strings"
	"sync"
)

// Uploader is the part of Client a Gallery needs.
type Uploader interface {
	Upload(ctx context.Context, form UploadForm) (*Resource, error)
	List(ctx context.Context, opts ListOptions) (*Page, error)
}

// Gallery is a local view over resources with an upload form attached.
// Only one submission runs at a time.
type Gallery struct {
	uploader Uploader

	mu    sync.Mutex
	busy  bool
	form  UploadForm
	items []Resource
}

func NewGallery(uploader Uploader) *Gallery {
	return &Gallery{uploader: uploader}
}

// Load replaces the local view with the server listing.
func (g *Gallery) Load(ctx context.Context) error {
	page, err := g.uploader.List(ctx, ListOptions{})
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = append([]Resource(nil), page.Items...)
	return nil
}

// Form returns a copy of the current form.
func (g *Gallery) Form() UploadForm {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.form
}

// SetForm replaces the form. Ignored while a submission is running.
func (g *Gallery) SetForm(form UploadForm) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.form = form
	return true
}

// Busy reports whether a submission is in flight.
func (g *Gallery) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Submit uploads the current form. On success the resource is prepended to
// the view and the form is cleared; on failure the form is left as entered.
func (g *Gallery) Submit(ctx context.Context) (*Resource, error) {
	g.mu.Lock()
	if g.busy {
		g.mu.Unlock()
		return nil, ErrBusy
	}
	if err := g.form.Validate(); err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.busy = true
	form := g.form
	g.mu.Unlock()

	res, err := g.uploader.Upload(ctx, form)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
	if err != nil {
		return nil, err
	}
	g.items = append([]Resource{*res}, g.items...)
	g.form.Reset()
	return res, nil
}

// Items returns the local view, newest first.
func (g *Gallery) Items() []Resource {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Resource(nil), g.items...)
}

// Filter returns the resources of type t; an empty t returns everything.
func (g *Gallery) Filter(t string) []Resource {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Resource, 0, len(g.items))
	for _, item := range g.items {
		if t == "" || item.Type == t {
			out = append(out, item)
		}
	}
	return out
}

// Search matches q case-insensitively against title and description.
func (g *Gallery) Search(q string) []Resource {
	q = strings.ToLower(strings.TrimSpace(q))
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Resource, 0, len(g.items))
	for _, item := range g.items {
		if q == "" ||
			strings.Contains(strings.ToLower(item.Title), q) ||
			strings.Contains(strings.ToLower(item.Description), q) {
			out = append(out, item)
		}
	}
	return out
}
