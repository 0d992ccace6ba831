package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

type column[T any] struct {
	title string
	width float64
	value func(i int, v T) string
}

func index[T any](i int, _ T) string { return strconv.Itoa(i + 1) }

var borrowColumns = []column[model.BorrowRecord]{
	{"#", 10, index[model.BorrowRecord]},
	{"Reader", 45, func(_ int, r model.BorrowRecord) string { return r.Reader() }},
	{"Book", 65, func(_ int, r model.BorrowRecord) string { return r.BookTitle }},
	{"Borrowed", 32, func(_ int, r model.BorrowRecord) string { return r.BorrowedAt.Format(dateTimeLayout) }},
	{"Due", 24, func(_ int, r model.BorrowRecord) string { return r.DueDate.Format(dateLayout) }},
	{"Returned", 32, func(_ int, r model.BorrowRecord) string {
		if r.ReturnedAt == nil {
			return "-"
		}
		return r.ReturnedAt.Format(dateTimeLayout)
	}},
	{"Fine", 20, func(_ int, r model.BorrowRecord) string { return fmt.Sprintf("%.2f", r.FineAmount) }},
	{"State", 24, func(_ int, r model.BorrowRecord) string { return string(r.Status) }},
}

var bookColumns = []column[model.Book]{
	{"#", 10, index[model.Book]},
	{"Title", 60, func(_ int, b model.Book) string { return b.Title }},
	{"Author", 35, func(_ int, b model.Book) string { return b.Author }},
	{"Category", 28, func(_ int, b model.Book) string { return b.Category }},
	{"ISBN", 27, func(_ int, b model.Book) string {
		if b.ISBN == nil {
			return "-"
		}
		return *b.ISBN
	}},
	{"Total", 15, func(_ int, b model.Book) string { return strconv.Itoa(b.TotalCopies) }},
	{"Available", 15, func(_ int, b model.Book) string { return strconv.Itoa(b.AvailableCopies) }},
}

type metric struct {
	name  string
	value int
}

var metricColumns = []column[metric]{
	{"Metric", 70, func(_ int, m metric) string { return m.name }},
	{"Value", 40, func(_ int, m metric) string { return strconv.Itoa(m.value) }},
}

var popularColumns = []column[model.BookCount]{
	{"#", 10, index[model.BookCount]},
	{"Title", 80, func(_ int, b model.BookCount) string { return b.Title }},
	{"Author", 55, func(_ int, b model.BookCount) string { return b.Author }},
	{"Borrows", 25, func(_ int, b model.BookCount) string { return strconv.Itoa(b.BorrowCount) }},
}

var readerColumns = []column[model.ReaderCount]{
	{"#", 10, index[model.ReaderCount]},
	{"Reader", 55, func(_ int, r model.ReaderCount) string { return r.Name }},
	{"Email", 80, func(_ int, r model.ReaderCount) string { return r.Email }},
	{"Borrows", 25, func(_ int, r model.ReaderCount) string { return strconv.Itoa(r.BorrowCount) }},
}

// Statistics is the content of the statistics report.
type Statistics struct {
	model.Stats
	PopularBooks  []model.BookCount
	ActiveReaders []model.ReaderCount
}

// BorrowsReport renders records as a landscape A4 table.
func BorrowsReport(records []model.BorrowRecord, filter model.LoanFilter, generatedAt time.Time) ([]byte, error) {
	d := newDocument("L", "Borrow records report", generatedAt,
		"Status: "+string(filter),
		"Records: "+strconv.Itoa(len(records)))
	writeTable(d, borrowColumns, records)
	return d.bytes()
}

// BooksReport renders the catalog as a portrait A4 table.
func BooksReport(books []model.Book, generatedAt time.Time) ([]byte, error) {
	d := newDocument("P", "Book catalog report", generatedAt,
		"Books: "+strconv.Itoa(len(books)))
	writeTable(d, bookColumns, books)
	return d.bytes()
}

// StatisticsReport renders the summary counts and the top books and readers.
func StatisticsReport(st Statistics, generatedAt time.Time) ([]byte, error) {
	d := newDocument("P", "Library statistics report", generatedAt)

	d.section("Summary")
	writeTable(d, metricColumns, []metric{
		{"Total books", st.TotalBooks},
		{"Total readers", st.TotalUsers},
		{"Books on loan", st.ActiveBorrows},
		{"Overdue books", st.OverdueBooks},
	})

	d.section("Most borrowed books")
	writeTable(d, popularColumns, st.PopularBooks)

	d.section("Most active readers")
	writeTable(d, readerColumns, st.ActiveReaders)
	return d.bytes()
}

type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	// header redraws the table being written when it spills onto a new page
	header func()
}

func newDocument(orientation, title string, generatedAt time.Time, info ...string) *document {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	d := &document{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetHeaderFunc(func() {
		if d.header != nil {
			d.header()
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated: "+generatedAt.Format(dateTimeLayout), "", 1, "L", false, 0, "")
	for _, line := range info {
		pdf.CellFormat(0, 6, d.tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
	return d
}

func (d *document) section(title string) {
	d.pdf.Ln(4)
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.CellFormat(0, 8, d.tr(title), "", 1, "L", false, 0, "")
}

func writeTable[T any](d *document, cols []column[T], rows []T) {
	pdf := d.pdf
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range cols {
			pdf.CellFormat(c.width, 8, c.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()
	d.header = header
	defer func() { d.header = nil }()

	for i, r := range rows {
		for _, c := range cols {
			pdf.CellFormat(c.width, 7, fit(pdf, d.tr(c.value(i, r)), c.width), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit shortens s with an ellipsis until it fits the cell. s is already
// translated to the single-byte font encoding.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	const pad = 2
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width-pad {
		s = s[:len(s)-1]
	}
	return s + "..."
}
