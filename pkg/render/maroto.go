package render

import (
	"bytes"
	"context"
	_ "embed"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	imagecomp "github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// pdfFontFamily covers the naira sign and combining accents, which the PDF
// core fonts do not
const pdfFontFamily = "dejavu"

const (
	logoTimeout  = 5 * time.Second
	maxLogoBytes = 5 << 20
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
	//go:embed fonts/DejaVuSansCondensed-Oblique.ttf
	fontItalic []byte
)

type marotoEngine struct {
	logos *retryablehttp.Client
}

// NewMarotoEngine draws the receipt as a PDF without an external browser.
// The logo is downloaded while rendering; a logo that cannot be fetched or
// decoded is left out, the same as a broken image in the browser.
func NewMarotoEngine() Engine {
	logos := retryablehttp.NewClient()
	logos.Logger = nil
	logos.RetryMax = 1
	logos.RetryWaitMax = time.Second
	logos.HTTPClient.Timeout = logoTimeout
	return &marotoEngine{logos: logos}
}

func (e *marotoEngine) Format() Format { return FormatPDF }

func (e *marotoEngine) Name() string { return "maroto" }

func (e *marotoEngine) Render(ctx context.Context, r *Receipt) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logo := e.fetchLogo(ctx, r.LogoURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Vertical).
		WithLeftMargin(20).
		WithTopMargin(20).
		WithRightMargin(20).
		WithBottomMargin(20).
		WithCustomFonts([]*entity.CustomFont{
			{Family: pdfFontFamily, Style: fontstyle.Normal, Bytes: fontRegular},
			{Family: pdfFontFamily, Style: fontstyle.Bold, Bytes: fontBold},
			{Family: pdfFontFamily, Style: fontstyle.Italic, Bytes: fontItalic},
		}).
		WithDefaultFont(&props.Font{Family: pdfFontFamily})
	if !r.IssuedAt.IsZero() {
		builder = builder.WithCreationDate(r.IssuedAt)
	}

	m := maroto.New(builder.Build())
	view := newPage(r)
	accent := parseColor(r.Color())

	addHeader(m, view.Receipt, logo, accent)
	addDetails(m, view.Details, accent)
	addFeeTable(m, view.Receipt, accent)
	addFooter(m, view.Receipt, accent)

	doc, err := m.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "generate receipt pdf")
	}
	return &Document{Format: FormatPDF, Body: doc.GetBytes()}, nil
}

// fetchLogo downloads the logo and re-encodes it as PNG, or returns nil
func (e *marotoEngine) fetchLogo(ctx context.Context, url string) []byte {
	if url == "" {
		return nil
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := e.logos.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func addHeader(m core.Maroto, r *Receipt, logo []byte, accent *props.Color) {
	m.AddRow(12, text.NewCol(12, r.Institution, props.Text{
		Size:  18,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: accent,
	}))
	m.AddRow(10, text.NewCol(12, r.Title, props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: accent,
	}))
	if logo != nil {
		m.AddRow(22, imagecomp.NewFromBytesCol(12, logo, extension.Png, props.Rect{Center: true, Percent: 100}))
	}
	m.AddRow(6)
}

func addSectionTitle(m core.Maroto, title string, accent *props.Color) {
	m.AddRow(9, text.NewCol(12, title, props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Color: accent,
	}))
	m.AddRow(3, line.NewCol(12, props.Line{Color: accent, Thickness: 0.6}))
	m.AddRow(3)
}

func addDetails(m core.Maroto, details []Detail, accent *props.Color) {
	addSectionTitle(m, "STUDENT INFORMATION", accent)

	for i := 0; i < len(details); i += 2 {
		cols := make([]core.Col, 0, 4)
		for _, d := range details[i:min(i+2, len(details))] {
			cols = append(cols,
				text.NewCol(3, d.Label+":", props.Text{Size: 10, Style: fontstyle.Bold}),
				text.NewCol(3, d.Value, props.Text{Size: 10}),
			)
		}
		m.AddRow(8, cols...)
	}
	m.AddRow(6)
}

func addFeeTable(m core.Maroto, r *Receipt, accent *props.Color) {
	addSectionTitle(m, "FEE BREAKDOWN", accent)

	white := &props.Color{Red: 255, Green: 255, Blue: 255}
	m.AddRows(row.New(9).
		WithStyle(&props.Cell{BackgroundColor: accent}).
		Add(
			text.NewCol(8, "Item", props.Text{Size: 10, Style: fontstyle.Bold, Color: white, Left: 2, Top: 2}),
			text.NewCol(4, "Amount (₦)", props.Text{Size: 10, Style: fontstyle.Bold, Color: white, Align: align.Right, Right: 2, Top: 2}),
		))

	for _, item := range r.Items {
		m.AddRow(8,
			text.NewCol(8, item.Title, props.Text{Size: 10, Left: 2, Top: 2}),
			text.NewCol(4, item.Amount, props.Text{Size: 10, Align: align.Right, Right: 2, Top: 2}),
		)
	}

	m.AddRow(2, line.NewCol(12, props.Line{Color: accent, Thickness: 0.6}))
	m.AddRows(row.New(9).
		WithStyle(&props.Cell{BackgroundColor: &props.Color{Red: 248, Green: 249, Blue: 250}}).
		Add(
			col.New(8).Add(text.New("TOTAL AMOUNT", props.Text{Size: 11, Style: fontstyle.Bold, Left: 2, Top: 2})),
			col.New(4).Add(text.New(r.Total, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Right: 2, Top: 2})),
		))
	m.AddRow(8)
}

func addFooter(m core.Maroto, r *Receipt, accent *props.Color) {
	m.AddRow(3, line.NewCol(12, props.Line{Color: accent, Thickness: 0.3}))
	if r.FooterNote != "" {
		m.AddRow(8, text.NewCol(12, r.FooterNote, props.Text{
			Size:  10,
			Style: fontstyle.Italic,
			Align: align.Center,
			Color: &props.Color{Red: 102, Green: 102, Blue: 102},
			Top:   2,
		}))
	}
	m.AddRow(6, text.NewCol(12, "Generated on: "+r.GeneratedOn, props.Text{
		Size:  8,
		Align: align.Center,
		Color: &props.Color{Red: 153, Green: 153, Blue: 153},
	}))
}

// parseColor converts #rgb or #rrggbb into a maroto color
func parseColor(hex string) *props.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return &props.Color{}
	}
	return &props.Color{
		Red:   int(v >> 16 & 0xff),
		Green: int(v >> 8 & 0xff),
		Blue:  int(v & 0xff),
	}
}
