package flight

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/fragcache/fragment"
	"github.com/jonwraymond/fragcache/store"
)

// Output receives the final fragment content. It exposes the wrapper regions
// surrounding the cached fragment and a modified flag.
//
// Contract:
// - Process always clears the pre and post regions, assigns the main
//   content, and marks the output modified - hit, miss, and disabled paths
//   alike. Only the fragment's own content survives.
type Output interface {
	// SetPre assigns the region preceding the main content.
	SetPre(s string)

	// SetPost assigns the region following the main content.
	SetPost(s string)

	// SetContent assigns the main content region.
	SetContent(s string)

	// MarkModified flags the output as changed.
	MarkModified()
}

// Buffer is the reference Output implementation.
type Buffer struct {
	Pre      string
	Content  string
	Post     string
	Modified bool
}

func (b *Buffer) SetPre(s string)     { b.Pre = s }
func (b *Buffer) SetPost(s string)    { b.Post = s }
func (b *Buffer) SetContent(s string) { b.Content = s }
func (b *Buffer) MarkModified()       { b.Modified = true }

// Ensure Buffer implements Output
var _ Output = (*Buffer)(nil)

// Request carries one fragment-serving call through Process.
type Request struct {
	// Enabled selects the caching path. When false the renderer runs
	// unconditionally and the store and gate machinery are never touched.
	Enabled bool

	// Key is the fragment's cache key (see the vary package). Ignored
	// when Enabled is false.
	Key string

	// Policy is the entry lifetime for a cached render.
	Policy store.Policy

	// Render produces the fragment on a miss or on the disabled path.
	Render RenderFunc

	// Output receives the final content.
	Output Output
}

// Handler drives fragment serving end to end: cache lookup or render via the
// coalescing service, then output placement.
type Handler struct {
	service *Service
}

// NewHandler creates a handler over the given service.
func NewHandler(service *Service) (*Handler, error) {
	if service == nil {
		return nil, ErrNilService
	}
	return &Handler{service: service}, nil
}

// Process serves one fragment request. Whichever path produces the content,
// the output wrapper is replaced entirely: pre and post are cleared, the
// main region gets the fragment content, and the modified flag is set.
//
// A cache-write failure after a successful render still places the content;
// the ErrSetFailed-wrapped error is returned for the caller to observe.
func (h *Handler) Process(ctx context.Context, req Request) error {
	if req.Output == nil {
		return ErrNilOutput
	}
	if req.Render == nil {
		return ErrNilRender
	}

	var (
		frag fragment.Fragment
		err  error
	)
	if req.Enabled {
		frag, err = h.service.Serve(ctx, req.Key, req.Policy, req.Render)
		if err != nil && !errors.Is(err, ErrSetFailed) {
			return err
		}
	} else {
		frag, err = req.Render(ctx)
		if err != nil {
			return fmt.Errorf("flight: render: %w", err)
		}
	}

	req.Output.SetPre("")
	req.Output.SetPost("")
	req.Output.SetContent(frag.Content)
	req.Output.MarkModified()

	return err
}
