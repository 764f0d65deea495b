package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/plombicrm/i18n"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// Party is a company or client identity block.
type Party struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// QuoteItem is one table row. Section rows carry a label only.
type QuoteItem struct {
	Description string
	Quantity    string
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	Section     bool
}

type QuoteTotals struct {
	Subtotal        decimal.Decimal
	DiscountPercent float64
	DiscountAmount  decimal.Decimal
	TaxRate         float64
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Date            time.Time
}

// Signature is a captured client signature; Image must be PNG.
type Signature struct {
	Name  string
	Image []byte
}

type QuoteData struct {
	Ref       string
	Company   Party
	Client    Party
	Items     []QuoteItem
	Totals    QuoteTotals
	Signature *Signature
	// SignURL, when set on an unsigned quote, is printed as a QR code next to the signature box.
	SignURL string
}

// Page geometry in points (A4 portrait).
const (
	margin     = 48.0
	rightEdge  = 548.0
	footerY    = 815.0
	lineHeight = 11.0
	rowGap     = 6.0

	colDesc, wDesc   = 50.0, 300.0
	colQty, wQty     = 360.0, 40.0
	colUnit, wUnit   = 430.0, 70.0
	colTotal, wTotal = 510.0, 70.0

	sigBoxW, sigBoxH = 220.0, 80.0
	sigInset         = 8.0
	qrSize           = 80.0
)

type rgb struct{ r, g, b int }

var (
	ink   = rgb{17, 24, 39}
	muted = rgb{107, 114, 128}
	rule  = rgb{229, 231, 235}
)

// QuotePDF lays out a quote document and returns the PDF bytes.
func QuotePDF(d QuoteData) ([]byte, error) {
	doc, err := render(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type writer struct {
	*gofpdf.Fpdf
	tr      func(string) string
	bottom  float64
	imageID int
}

func render(d QuoteData) (*gofpdf.Fpdf, error) {
	f := gofpdf.New("P", "pt", "A4", "")
	f.SetMargins(margin, margin, margin)
	f.SetAutoPageBreak(false, margin)
	f.SetCompression(true)
	f.SetTitle(d.Ref, true)
	f.SetCreator("PlombiCRM", true)
	f.AliasNbPages("")
	_, pageH := f.GetPageSize()
	w := &writer{Fpdf: f, tr: f.UnicodeTranslatorFromDescriptor(""), bottom: pageH - margin}
	f.SetFooterFunc(func() {
		w.font("", 8, muted)
		f.SetXY(margin, footerY)
		f.CellFormat(rightEdge-margin, 10, w.tr(fmt.Sprintf("%s · page %d/{nb}", d.Ref, f.PageNo())), "", 0, "R", false, 0, "")
	})
	f.AddPage()

	y := w.header(d)
	y = w.clientBlock(d.Client, y+24)

	y += 24
	w.font("U", 11, ink)
	w.text(margin, y, 200, "Description", "L")
	y = w.tableHeader(y + 18)

	for _, it := range d.Items {
		y = w.item(it, y)
	}

	y = w.totals(d.Totals, y+12)
	if err := w.signature(d, y+24); err != nil {
		return nil, err
	}
	if f.Err() {
		return nil, f.Error()
	}
	return f, nil
}

func (w *writer) font(style string, size float64, c rgb) {
	w.SetFont("Helvetica", style, size)
	w.SetTextColor(c.r, c.g, c.b)
}

func (w *writer) text(x, y, width float64, s, align string) {
	w.SetXY(x, y)
	w.CellFormat(width, lineHeight, w.tr(s), "", 0, align, false, 0, "")
}

func (w *writer) hline(x1, x2, y float64) {
	w.SetDrawColor(rule.r, rule.g, rule.b)
	w.SetLineWidth(0.75)
	w.Line(x1, y, x2, y)
}

// ensure starts a new page when h points do not fit; the caller redraws context.
func (w *writer) ensure(y, h float64) (float64, bool) {
	if y+h <= w.bottom {
		return y, false
	}
	w.AddPage()
	return margin, true
}

func (w *writer) header(d QuoteData) float64 {
	left := margin
	w.font("B", 18, ink)
	w.SetXY(margin, left)
	w.CellFormat(300, 22, w.tr(d.Company.Name), "", 0, "L", false, 0, "")
	left += 26
	w.font("", 10, muted)
	for _, line := range companyLines(d.Company) {
		w.text(margin, left, 300, line, "L")
		left += 13
	}

	right := margin
	w.font("B", 16, ink)
	w.SetXY(rightEdge-200, right)
	w.CellFormat(200, 20, w.tr("Devis"), "", 0, "R", false, 0, "")
	right += 24
	w.font("", 10, muted)
	w.text(rightEdge-200, right, 200, "Réf. devis : "+d.Ref, "R")
	right += 13
	w.text(rightEdge-200, right, 200, "Date de devis : "+i18n.LongDate("fr", d.Totals.Date), "R")
	right += 13

	if right > left {
		return right
	}
	return left
}

func companyLines(p Party) []string {
	var out []string
	for _, l := range strings.Split(p.Address, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	if p.Phone != "" {
		out = append(out, "Tél : "+p.Phone)
	}
	if p.Email != "" {
		out = append(out, "Email : "+p.Email)
	}
	return out
}

func (w *writer) clientBlock(c Party, y float64) float64 {
	w.font("U", 11, ink)
	w.text(margin, y, 200, "Adressé à :", "L")
	y += 16
	w.font("", 10, ink)
	w.text(margin, y, 300, c.Name, "L")
	y += 13
	for _, line := range companyLines(c) {
		w.text(margin, y, 300, line, "L")
		y += 13
	}
	return y
}

func (w *writer) tableHeader(y float64) float64 {
	w.font("", 9, muted)
	w.text(colDesc, y, wDesc, "Description", "L")
	w.text(colQty, y, wQty, "Qté", "R")
	w.text(colUnit, y, wUnit, "Prix Unitaire", "R")
	w.text(colTotal, y, wTotal, "Prix HT", "R")
	y += lineHeight + 4
	w.hline(margin, rightEdge, y)
	return y + 8
}

func (w *writer) item(it QuoteItem, y float64) float64 {
	if it.Section {
		y, broke := w.ensure(y, 26)
		if broke {
			y = w.tableHeader(y)
		}
		w.font("", 9, muted)
		w.text(colDesc, y, wDesc, strings.ToUpper(it.Description), "L")
		y += lineHeight + 3
		w.hline(margin, rightEdge, y)
		return y + 8
	}

	w.font("", 9, ink)
	lines := w.SplitLines([]byte(w.tr(it.Description)), wDesc)
	h := float64(len(lines)) * lineHeight
	if h < 12 {
		h = 12
	}
	y, broke := w.ensure(y, h+rowGap)
	if broke {
		y = w.tableHeader(y)
		w.font("", 9, ink)
	}
	w.SetXY(colDesc, y)
	w.MultiCell(wDesc, lineHeight, w.tr(it.Description), "", "L", false)
	w.text(colQty, y, wQty, it.Quantity, "R")
	w.text(colUnit, y, wUnit, FormatCurrency(it.UnitPrice), "R")
	w.text(colTotal, y, wTotal, FormatCurrency(it.Total), "R")
	return y + h + rowGap
}

func (w *writer) totals(t QuoteTotals, y float64) float64 {
	rows := 3
	if t.DiscountPercent > 0 {
		rows++
	}
	y, _ = w.ensure(y, float64(rows)*16+16)
	w.hline(320, rightEdge, y)
	y += 10

	w.font("", 10, ink)
	line := func(label, amount string) {
		w.text(360, y, 120, label, "R")
		w.text(colTotal, y, wTotal, amount, "R")
		y += 16
	}
	line("Total HT", FormatCurrency(t.Subtotal))
	if t.DiscountPercent > 0 {
		line("Remise ("+FormatPercent(t.DiscountPercent)+"%)", "- "+FormatCurrency(t.DiscountAmount))
	}
	line("TVA "+FormatPercent(t.TaxRate)+"%", FormatCurrency(t.Tax))
	w.font("B", 11, ink)
	line("Total TTC", FormatCurrency(t.Total))
	return y
}

func (w *writer) signature(d QuoteData, y float64) error {
	y, _ = w.ensure(y, 16+sigBoxH+24)
	w.font("", 10, ink)
	w.text(margin, y, 200, "Signature du client", "L")
	y += 16

	w.SetDrawColor(rule.r, rule.g, rule.b)
	w.SetLineWidth(1)
	w.Rect(margin, y, sigBoxW, sigBoxH, "D")

	if d.Signature != nil && len(d.Signature.Image) > 0 {
		if err := w.placeImage(d.Signature.Image, margin+sigInset, y+sigInset, sigBoxW-2*sigInset, sigBoxH-2*sigInset); err != nil {
			return err
		}
	} else if d.SignURL != "" {
		png, err := qrcode.Encode(d.SignURL, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("qr code: %w", err)
		}
		qx := margin + sigBoxW + 24
		if err := w.placeImage(png, qx, y, qrSize, qrSize); err != nil {
			return err
		}
		w.font("", 8, muted)
		w.text(qx+qrSize+8, y+qrSize/2-lineHeight/2, 150, "Signer en ligne", "L")
	}

	if d.Signature != nil && d.Signature.Name != "" {
		w.font("", 9, muted)
		w.text(margin, y+sigBoxH+12, 300, "Signé par : "+d.Signature.Name, "L")
	}
	return nil
}

// placeImage fits a PNG inside the given box, keeping its aspect ratio and centring it.
func (w *writer) placeImage(png []byte, x, y, boxW, boxH float64) error {
	w.imageID++
	name := fmt.Sprintf("img%d", w.imageID)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := w.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if w.Err() {
		return fmt.Errorf("embed image: %w", w.Error())
	}
	if info == nil {
		return fmt.Errorf("embed image: unreadable %s", name)
	}
	iw, ih := info.Width(), info.Height()
	if iw <= 0 || ih <= 0 {
		return fmt.Errorf("embed image: empty image")
	}
	scale := boxW / iw
	if s := boxH / ih; s < scale {
		scale = s
	}
	dw, dh := iw*scale, ih*scale
	w.ImageOptions(name, x+(boxW-dw)/2, y+(boxH-dh)/2, dw, dh, false, opts, 0, "")
	return nil
}
