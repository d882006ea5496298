// Package layout draws legal documents onto A4 pages with a flow cursor:
// blocks are placed top to bottom and a new page is started whenever a block
// would not fit above the footer.
package layout

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry in points.
const (
	Margin             = 50.0
	BottomMargin       = 60.0
	FooterOffset       = 35.0
	SignatureMinHeight = 160.0
	lineHeight         = 14.0
	signatureLineWidth = 200.0
)

// Func draws a template. It must not perform I/O; everything it needs is in
// the document configuration and the field values.
type Func func(d *Document, v Values)

// Config controls a single rendering.
type Config struct {
	Style    Style
	Fonts    *FontLibrary
	IssuedAt time.Time
	Title    string
	Author   string
	Footer   string
	Compress bool
}

// Signatory is one party of the signature block.
type Signatory struct {
	Role string
	Name string
}

// Document wraps a gofpdf writer with a vertical cursor.
type Document struct {
	pdf      *gofpdf.Fpdf
	style    Style
	family   string
	tr       func(string) string
	issuedAt time.Time
	footer   string
}

// NewDocument prepares an empty A4 portrait document. Creation and
// modification dates are pinned to cfg.IssuedAt so equal inputs produce
// identical bytes.
func NewDocument(cfg Config) *Document {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(true, BottomMargin)
	pdf.SetCompression(cfg.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(cfg.IssuedAt)
	pdf.SetModificationDate(cfg.IssuedAt)
	pdf.SetTitle(cfg.Title, true)
	pdf.SetAuthor(cfg.Author, true)
	pdf.SetCreator("LexForge", true)

	d := &Document{
		pdf:      pdf,
		style:    cfg.Style,
		family:   "Helvetica",
		issuedAt: cfg.IssuedAt,
		footer:   cfg.Footer,
	}

	if set, ok := cfg.Fonts.Lookup(cfg.Style.FontFamily); ok && registerFontSet(pdf, set) {
		d.family = set.Family
		d.tr = func(s string) string { return s }
	} else {
		d.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.SetHeaderFunc(d.continuationHeader)
	pdf.SetFooterFunc(d.drawFooter)
	pdf.AddPage()
	return d
}

// registerFontSet adds every face of set. On failure the writer error is
// cleared and the caller stays on Helvetica.
func registerFontSet(pdf *gofpdf.Fpdf, set *FontSet) bool {
	for _, style := range faceStyles {
		if !addFace(pdf, set.Family, style, set.face(style)) {
			pdf.ClearError()
			return false
		}
	}
	return true
}

// Bytes finalises the document. Any drawing error recorded by the writer is
// returned instead of output.
func (d *Document) Bytes() ([]byte, error) {
	if err := d.pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PageCount is the number of pages started so far.
func (d *Document) PageCount() int {
	return d.pdf.PageCount()
}

// IssuedAt is the date printed on the document.
func (d *Document) IssuedAt() time.Time {
	return d.issuedAt
}

// Y is the cursor position.
func (d *Document) Y() float64 {
	return d.pdf.GetY()
}

// Remaining is the vertical space left above the footer zone.
func (d *Document) Remaining() float64 {
	return d.bottom() - d.pdf.GetY()
}

// EnsureSpace starts a new page unless at least min points remain.
func (d *Document) EnsureSpace(min float64) {
	if d.Remaining() < min {
		d.pdf.AddPage()
	}
}

// Space moves the cursor down, never past the footer zone.
func (d *Document) Space(h float64) {
	d.pdf.SetY(math.Min(d.pdf.GetY()+h, d.bottom()))
}

// Header draws the first page header for the configured style.
func (d *Document) Header(title, subtitle string) {
	w, _ := d.pdf.GetPageSize()
	switch d.style.Header {
	case HeaderFormal:
		d.fill(white)
		d.draw(d.style.Primary)
		d.pdf.SetLineWidth(2)
		d.pdf.Line(Margin, 40, w-Margin, 40)
		d.pdf.SetLineWidth(0.5)
		d.pdf.Line(Margin, 44, w-Margin, 44)
		d.centered(60, title, "B", 20, d.style.Primary)
		d.centered(88, subtitle, "I", 9, textMuted)
		d.pdf.Line(Margin, 110, w-Margin, 110)
		d.pdf.SetLineWidth(2)
		d.pdf.Line(Margin, 114, w-Margin, 114)
		d.pdf.SetLineWidth(1)
		d.pdf.SetY(140)
	case HeaderClean:
		d.fill(d.style.Primary)
		d.pdf.Rect(0, 0, w, 8, "F")
		d.centered(40, title, "B", 20, d.style.Primary)
		d.centered(68, subtitle, "", 9, textMuted)
		d.draw(d.style.Secondary)
		d.pdf.Line(Margin, 90, w-Margin, 90)
		d.pdf.SetY(115)
	default:
		d.fill(d.style.Primary)
		d.pdf.Rect(0, 0, w, 120, "F")
		d.centered(40, title, "B", 22, white)
		d.centered(80, subtitle, "", 9, white)
		d.pdf.SetY(150)
	}
}

// Section draws a numbered section title. It keeps the title together with
// at least two lines of body text.
func (d *Document) Section(title string) {
	d.EnsureSpace(20 + 2*lineHeight)
	d.setFont("B", 14)
	d.color(d.style.Primary)
	d.pdf.SetX(Margin)
	d.pdf.CellFormat(0, 20, d.tr(title), "", 1, "L", false, 0, "")
	d.Space(4)
}

// Label draws a small bold caption in the secondary color.
func (d *Document) Label(text string) {
	d.EnsureSpace(2 * lineHeight)
	d.setFont("B", 10)
	d.color(d.style.Secondary)
	d.pdf.SetX(Margin)
	d.pdf.CellFormat(0, lineHeight+1, d.tr(text), "", 1, "L", false, 0, "")
}

// Line draws a single wrapped line of body text, indented by indent points.
func (d *Document) Line(indent float64, text string) {
	d.setFont("", 10)
	d.color(textDark)
	d.pdf.SetX(Margin + indent)
	w, _ := d.pdf.GetPageSize()
	d.pdf.MultiCell(w-2*Margin-indent, lineHeight+1, d.tr(text), "", "L", false)
}

// Paragraph draws justified body text; long text flows across pages.
func (d *Document) Paragraph(text string) {
	d.setFont("", 10)
	d.color(textDark)
	d.pdf.SetX(Margin)
	w, _ := d.pdf.GetPageSize()
	d.pdf.MultiCell(w-2*Margin, lineHeight, d.tr(text), "", "J", false)
}

// Panel draws a tinted box with a title and short lines. The whole panel is
// kept on one page.
func (d *Document) Panel(title string, lines ...string) {
	height := 30 + float64(len(lines))*lineHeight + 12
	d.EnsureSpace(height)
	w, _ := d.pdf.GetPageSize()
	y := d.pdf.GetY()

	d.fill(d.style.Primary.Tint(0.92))
	d.draw(d.style.Primary)
	d.pdf.Rect(Margin, y, w-2*Margin, height, "FD")

	d.setFont("B", 12)
	d.color(d.style.Primary)
	d.pdf.SetXY(Margin+15, y+10)
	d.pdf.CellFormat(w-2*Margin-30, 16, d.tr(title), "", 2, "L", false, 0, "")

	d.setFont("", 10)
	d.color(textDark)
	for _, line := range lines {
		d.pdf.SetX(Margin + 15)
		d.pdf.CellFormat(w-2*Margin-30, lineHeight, d.tr(line), "", 2, "L", false, 0, "")
	}
	d.pdf.SetY(y + height)
}

// Highlight draws a filled band with a caption and a large value.
func (d *Document) Highlight(label, value string) {
	d.EnsureSpace(50)
	w, _ := d.pdf.GetPageSize()
	y := d.pdf.GetY()
	d.fill(d.style.Primary)
	d.pdf.Rect(Margin, y, w-2*Margin, 44, "F")
	d.setFont("B", 11)
	d.color(white)
	d.pdf.SetXY(Margin+15, y+6)
	d.pdf.CellFormat(w-2*Margin-30, 14, d.tr(label), "", 2, "L", false, 0, "")
	d.setFont("B", 16)
	d.pdf.SetX(Margin + 15)
	d.pdf.CellFormat(w-2*Margin-30, 20, d.tr(value), "", 2, "L", false, 0, "")
	d.pdf.SetY(y + 44)
}

// SignatureBlock places the place/date line and one signature rule per
// signatory (at most two) at the bottom of the current page, or of a new page
// when fewer than SignatureMinHeight points remain above the footer.
func (d *Document) SignatureBlock(place string, signers ...Signatory) {
	d.EnsureSpace(SignatureMinHeight)
	w, _ := d.pdf.GetPageSize()
	y := math.Max(d.pdf.GetY(), d.bottom()-SignatureMinHeight)

	d.setFont("I", 10)
	d.color(textMuted)
	d.pdf.SetXY(Margin, y+10)
	d.pdf.CellFormat(w-2*Margin, lineHeight, d.tr(place+", "+LongDate(d.issuedAt)), "", 0, "C", false, 0, "")

	ruleY := y + 70
	columns := []float64{Margin, w/2 + 30}
	if len(signers) > len(columns) {
		signers = signers[:len(columns)]
	}
	d.draw(d.style.Primary)
	d.pdf.SetLineWidth(0.75)
	for i, s := range signers {
		x := columns[i]
		d.pdf.Line(x, ruleY, x+signatureLineWidth, ruleY)

		d.setFont("B", 9)
		d.color(d.style.Primary)
		d.pdf.SetXY(x, ruleY+8)
		d.pdf.CellFormat(signatureLineWidth, 12, d.tr(s.Role), "", 0, "C", false, 0, "")
		d.setFont("", 8)
		d.color(textMuted)
		d.pdf.SetXY(x, ruleY+22)
		d.pdf.CellFormat(signatureLineWidth, 12, d.tr(s.Name), "", 0, "C", false, 0, "")
	}
	d.pdf.SetLineWidth(1)
	d.pdf.SetY(ruleY + 40)
}

func (d *Document) continuationHeader() {
	if d.pdf.PageNo() <= 1 {
		return
	}
	w, _ := d.pdf.GetPageSize()
	d.fill(d.style.Primary)
	d.pdf.Rect(0, 0, w, 6, "F")
	d.pdf.SetY(Margin)
}

func (d *Document) drawFooter() {
	w, h := d.pdf.GetPageSize()
	d.setFont("", 8)
	d.color(textLight)
	d.pdf.SetXY(Margin, h-FooterOffset)
	text := d.footer
	if text == "" {
		text = "Documento gerado automaticamente"
	}
	d.pdf.CellFormat(w-2*Margin, 10, d.tr(fmt.Sprintf("%s - Página %d", text, d.pdf.PageNo())), "", 0, "C", false, 0, "")
}

func (d *Document) centered(y float64, text, style string, size float64, c Color) {
	w, _ := d.pdf.GetPageSize()
	d.setFont(style, size)
	d.color(c)
	d.pdf.SetXY(Margin, y)
	d.pdf.CellFormat(w-2*Margin, size+4, d.tr(text), "", 0, "C", false, 0, "")
}

func (d *Document) bottom() float64 {
	_, h := d.pdf.GetPageSize()
	return h - BottomMargin
}

func (d *Document) setFont(style string, size float64) {
	d.pdf.SetFont(d.family, style, size)
}

func (d *Document) color(c Color) {
	d.pdf.SetTextColor(c.R, c.G, c.B)
}

func (d *Document) fill(c Color) {
	d.pdf.SetFillColor(c.R, c.G, c.B)
}

func (d *Document) draw(c Color) {
	d.pdf.SetDrawColor(c.R, c.G, c.B)
}
