package render

import (
	"context"
	"fmt"
	"time"
)

// Format is the kind of document an Engine produces
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ContentType is the MIME type sent with the document
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/html; charset=utf-8"
}

// Extension is the file extension without the dot
func (f Format) Extension() string {
	return string(f)
}

// Document is a rendered receipt ready to download
type Document struct {
	Format Format
	Body   []byte
}

// ContentType reports the MIME type of what was actually produced
func (d *Document) ContentType() string {
	return d.Format.ContentType()
}

// Engine turns a receipt view into a document
type Engine interface {
	// Render must not return a partial document together with a nil error.
	Render(ctx context.Context, r *Receipt) (*Document, error)
	// Format is the kind of document Render produces
	Format() Format
	// Name identifies the engine in logs and health output
	Name() string
}

// --- HTML engine (the printable page itself) ---

type htmlEngine struct{}

// NewHTMLEngine returns the page as-is for the browser to print
func NewHTMLEngine() Engine {
	return htmlEngine{}
}

func (htmlEngine) Render(_ context.Context, r *Receipt) (*Document, error) {
	body, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}
	return &Document{Format: FormatHTML, Body: body}, nil
}

func (htmlEngine) Format() Format { return FormatHTML }

func (htmlEngine) Name() string { return "html" }

// NewEngineFromConfig creates the Engine named by engineType.
//
//	engineType: "chrome", "maroto", or "html"
//	chromePath: browser binary for chrome; looked up on PATH when empty
//	timeout:    upper bound for one chrome render
func NewEngineFromConfig(engineType, chromePath string, timeout time.Duration) (Engine, error) {
	switch engineType {
	case "chrome":
		return NewChromeEngine(chromePath, timeout)
	case "maroto":
		return NewMarotoEngine(), nil
	case "html", "none", "":
		return NewHTMLEngine(), nil
	default:
		return nil, fmt.Errorf("render: unknown engine %q (use chrome, maroto, or html)", engineType)
	}
}
