package graphs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/layout"
	"github.com/psidex/visualizer/internal/style"
)

var (
	// ErrNoContainer is returned by engines that need a mount point when given none.
	ErrNoContainer = errors.New("container not found")
	// ErrUnknownLayout is returned when the layout is neither built in nor registered.
	ErrUnknownLayout = errors.New("unknown layout")
)

// Engine constructs a visualization from a merged configuration.
type Engine interface {
	Name() string
	New(opts *Options) (Handle, error)
}

// Handle is a constructed visualization. Render is safe to call repeatedly and from
// many goroutines; the handle is never mutated after construction.
type Handle interface {
	// ID identifies this instance. Two handles built from equal options differ only in
	// their ID.
	ID() string
	Options() *Options
	// ContentType is the MIME type of what Render writes.
	ContentType() string
	Render(w io.Writer) error
}

// Pan is the initial viewport offset.
type Pan struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport holds the initial viewport state, interaction and rendering options. The
// fields carry no cross-field invariants.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	Pan  Pan     `json:"pan"`

	MinZoom             float64 `json:"minZoom"`
	MaxZoom             float64 `json:"maxZoom"`
	ZoomingEnabled      bool    `json:"zoomingEnabled"`
	UserZoomingEnabled  bool    `json:"userZoomingEnabled"`
	PanningEnabled      bool    `json:"panningEnabled"`
	UserPanningEnabled  bool    `json:"userPanningEnabled"`
	BoxSelectionEnabled bool    `json:"boxSelectionEnabled"`
	SelectionType       string  `json:"selectionType"`
	TouchTapThreshold   int     `json:"touchTapThreshold"`
	DesktopTapThreshold int     `json:"desktopTapThreshold"`
	Autolock            bool    `json:"autolock"`
	Autoungrabify       bool    `json:"autoungrabify"`
	Autounselectify     bool    `json:"autounselectify"`

	Headless             bool    `json:"headless"`
	StyleEnabled         bool    `json:"styleEnabled"`
	HideEdgesOnViewport  bool    `json:"hideEdgesOnViewport"`
	HideLabelsOnViewport bool    `json:"hideLabelsOnViewport"`
	TextureOnViewport    bool    `json:"textureOnViewport"`
	MotionBlur           bool    `json:"motionBlur"`
	MotionBlurOpacity    float64 `json:"motionBlurOpacity"`
	WheelSensitivity     float64 `json:"wheelSensitivity"`
	// PixelRatio is "auto" or a number.
	PixelRatio any `json:"pixelRatio"`
}

// DefaultViewport returns the static viewport and interaction options.
func DefaultViewport() Viewport {
	return Viewport{
		Zoom: 1,
		Pan:  Pan{X: 0, Y: 0},

		MinZoom:             1e-50,
		MaxZoom:             1e50,
		ZoomingEnabled:      true,
		UserZoomingEnabled:  true,
		PanningEnabled:      true,
		UserPanningEnabled:  true,
		BoxSelectionEnabled: false,
		SelectionType:       "single",
		TouchTapThreshold:   8,
		DesktopTapThreshold: 4,
		Autolock:            false,
		Autoungrabify:       false,
		Autounselectify:     false,

		Headless:             false,
		StyleEnabled:         true,
		HideEdgesOnViewport:  false,
		HideLabelsOnViewport: false,
		TextureOnViewport:    false,
		MotionBlur:           false,
		MotionBlurOpacity:    0.2,
		WheelSensitivity:     1,
		PixelRatio:           "auto",
	}
}

// Options is the single configuration object handed to an engine.
type Options struct {
	Viewport
	Container *Container     `json:"container"`
	Elements  elements.List  `json:"elements"`
	Style     []style.Sheet  `json:"style"`
	Layout    layout.Options `json:"layout"`
}

// Base carries what every engine's handle has in common. Engines embed it.
type Base struct {
	id   string
	opts *Options
}

// NewBase gives a new instance a random identity.
func NewBase(opts *Options) Base {
	return Base{id: uuid.NewString(), opts: opts}
}

func (b Base) ID() string        { return b.id }
func (b Base) Options() *Options { return b.opts }

// RenderToFile writes h to filename, which should be the desired file name without an
// extension; one matching the handle's content type is appended. It returns the path
// written.
func RenderToFile(h Handle, filename string) (string, error) {
	filename = filename + extension(h.ContentType())

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := h.Render(file); err != nil {
		return "", fmt.Errorf("render %s: %w", filename, err)
	}

	return filename, file.Close()
}

func extension(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "text/html"):
		return ".html"
	case strings.HasPrefix(contentType, "image/svg"):
		return ".svg"
	case strings.HasPrefix(contentType, "application/json"):
		return ".json"
	}
	return ""
}
