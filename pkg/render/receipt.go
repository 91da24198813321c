// Package render turns a receipt view into an HTML page and, through an
// Engine, into a downloadable document.
package render

import (
	"html/template"
	"regexp"
	"time"
)

// DefaultTitle is printed under the institution name
const DefaultTitle = "SCHOOL FEE RECEIPT"

// DefaultColor is used when no valid accent color is supplied
const DefaultColor = "#000000"

// Receipt is a fully formatted receipt: every value is already display text
type Receipt struct {
	Institution   string
	Title         string
	Number        string
	StudentName   string
	ClassLevel    string
	Term          string
	Session       string
	PaymentMethod string
	Items         []Line
	Total         string
	LogoURL       string
	PrimaryColor  string
	FooterNote    string
	GeneratedOn   string
	// IssuedAt pins metadata such as the PDF creation date
	IssuedAt time.Time
}

// Line is one row of the fee table
type Line struct {
	Title  string
	Amount string
}

// Detail is a labelled value in the student information grid
type Detail struct {
	Label string
	Value string
}

// Details lists the student information grid in display order
func (r *Receipt) Details() []Detail {
	return []Detail{
		{Label: "Receipt Number", Value: r.Number},
		{Label: "Student Name", Value: r.StudentName},
		{Label: "Class Level", Value: r.ClassLevel},
		{Label: "Term", Value: r.Term},
		{Label: "Session", Value: r.Session},
		{Label: "Payment Method", Value: r.PaymentMethod},
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color returns the accent color, or DefaultColor when it is not a hex color
func (r *Receipt) Color() string {
	if hexColor.MatchString(r.PrimaryColor) {
		return r.PrimaryColor
	}
	return DefaultColor
}

// page is what the HTML template sees
type page struct {
	*Receipt
	Details      []Detail
	PrimaryColor template.CSS
}

func newPage(r *Receipt) page {
	view := *r
	if view.Title == "" {
		view.Title = DefaultTitle
	}
	return page{
		Receipt:      &view,
		Details:      view.Details(),
		PrimaryColor: template.CSS(view.Color()),
	}
}
