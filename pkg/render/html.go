package render

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/cockroachdb/errors"
)

//go:embed templates/receipt.html.tmpl
var templateFS embed.FS

var receiptTemplate = template.Must(template.ParseFS(templateFS, "templates/receipt.html.tmpl"))

// RenderHTML renders the printable receipt page. Output depends only on r.
func RenderHTML(r *Receipt) ([]byte, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.ExecuteTemplate(&buf, "receipt.html.tmpl", newPage(r)); err != nil {
		return nil, errors.Wrap(err, "render receipt html")
	}
	return buf.Bytes(), nil
}
