package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// visibleText returns the words a reader sees on the printed HTML page
func visibleText(t *testing.T, page []byte) string {
	t.Helper()

	var words []string
	skip := 0
	z := html.NewTokenizer(bytes.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(words, " ")
		case html.StartTagToken:
			if hidden(z) {
				skip++
			}
		case html.EndTagToken:
			if hidden(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				words = append(words, strings.Fields(string(z.Text()))...)
			}
		}
	}
}

// hidden reports tags whose text never reaches paper
func hidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "head", "style", "script", "button":
		return true
	}
	return false
}

// pdfText collects the strings drawn with Tj. maroto writes page content
// uncompressed and, with an embedded font, encodes text as UTF-16BE.
func pdfText(t *testing.T, doc []byte) string {
	t.Helper()

	var words []string
	marker := []byte(" Td (")
	for {
		i := bytes.Index(doc, marker)
		if i < 0 {
			return strings.Join(words, " ")
		}
		doc = doc[i+len(marker):]

		var raw []byte
		j := 0
		for ; j < len(doc) && doc[j] != ')'; j++ {
			if doc[j] == '\\' && j+1 < len(doc) {
				j++
				if doc[j] == 'r' {
					raw = append(raw, '\r')
					continue
				}
			}
			raw = append(raw, doc[j])
		}
		doc = doc[j:]

		require.Zero(t, len(raw)%2, "text is not UTF-16")
		units := make([]uint16, 0, len(raw)/2)
		for k := 0; k < len(raw); k += 2 {
			units = append(units, uint16(raw[k])<<8|uint16(raw[k+1]))
		}
		words = append(words, strings.Fields(string(utf16.Decode(units)))...)
	}
}

func yorubaReceipt() *Receipt {
	r := sampleReceipt()
	r.StudentName = "Ọlá Ẹ̀kọ́"
	r.FooterNote = "Ẹ ṣé o! Thank you for your payment."
	return r
}

func TestMarotoEngine_SameTextAsHTML(t *testing.T) {
	r := yorubaReceipt()

	page, err := NewHTMLEngine().Render(context.Background(), r)
	require.NoError(t, err)
	doc, err := NewMarotoEngine().Render(context.Background(), r)
	require.NoError(t, err)

	want := visibleText(t, page.Body)
	got := pdfText(t, doc.Body)

	assert.Contains(t, want, "Ọlá Ẹ̀kọ́")
	assert.Contains(t, want, "₦65,000")
	assert.Equal(t, want, got)
}

func logoServer(t *testing.T) *httptest.Server {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 26, G: 115, B: 232, A: 255})
		}
	}
	var logo bytes.Buffer
	require.NoError(t, png.Encode(&logo, img))

	mux := http.NewServeMux()
	mux.HandleFunc("/logo.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(logo.Bytes())
	})
	mux.HandleFunc("/not-an-image.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>moved</html>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMarotoEngine_DrawsLogo(t *testing.T) {
	srv := logoServer(t)
	r := sampleReceipt()
	r.LogoURL = srv.URL + "/logo.png"

	doc, err := NewMarotoEngine().Render(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, string(doc.Body), "/Subtype /Image")
}

func TestMarotoEngine_BrokenLogoIsLeftOut(t *testing.T) {
	srv := logoServer(t)
	page, err := RenderHTML(sampleReceipt())
	require.NoError(t, err)

	for _, path := range []string{"/missing.png", "/not-an-image.png"} {
		t.Run(path, func(t *testing.T) {
			r := sampleReceipt()
			r.LogoURL = srv.URL + path

			doc, err := NewMarotoEngine().Render(context.Background(), r)
			require.NoError(t, err)
			assert.NotContains(t, string(doc.Body), "/Subtype /Image")
			assert.Equal(t, visibleText(t, page), pdfText(t, doc.Body))
		})
	}
}
