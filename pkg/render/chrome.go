package render

import (
	"context"
	"os/exec"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"
)

// A4 with 20mm margins, in inches as the DevTools protocol expects
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginInches   = 20 / 25.4
)

// ErrChromeNotFound is returned when no browser binary is configured or on PATH
var ErrChromeNotFound = errors.New("render: no chrome binary found")

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

type chromeEngine struct {
	execPath string
	timeout  time.Duration
}

// NewChromeEngine prints the HTML page to PDF with a headless browser.
// It fails when no browser binary can be found.
func NewChromeEngine(execPath string, timeout time.Duration) (Engine, error) {
	if execPath == "" {
		for _, name := range chromeCandidates {
			if p, err := exec.LookPath(name); err == nil {
				execPath = p
				break
			}
		}
	}
	if execPath == "" {
		return nil, errors.Wrapf(ErrChromeNotFound, "tried %v", chromeCandidates)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &chromeEngine{execPath: execPath, timeout: timeout}, nil
}

func (e *chromeEngine) Format() Format { return FormatPDF }

func (e *chromeEngine) Name() string { return "chrome" }

func (e *chromeEngine) Render(ctx context.Context, r *Receipt) (*Document, error) {
	html, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(e.execPath),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// cancelling the browser context kills the browser process
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := cdppage.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return cdppage.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = cdppage.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				WithMarginRight(marginInches).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "print receipt to pdf")
	}
	if len(pdf) == 0 {
		return nil, errors.New("print receipt to pdf: browser returned an empty document")
	}

	return &Document{Format: FormatPDF, Body: pdf}, nil
}
