// Package exports renders job paperwork into downloadable documents.
package exports

import (
	"bytes"
	"fmt"
	"strings"
)

// Fixed single page layout, in PDF points.
const (
	pageWidth  = 612
	pageHeight = 792
	fontSize   = 12
	marginLeft = 50
	textTop    = 760
	lineHeight = 14
)

// pdfHeader carries the binary marker comment as raw high bytes.
var pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

var pdfEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// escapePDFString escapes a literal string for a content stream.
func escapePDFString(s string) string {
	return pdfEscaper.Replace(s)
}

// contentStream builds the text object placing lines top to bottom.
// Lines past the bottom of the page are emitted but fall off the media box.
func contentStream(lines []string) string {
	parts := make([]string, 0, 2*len(lines)+4)
	parts = append(parts, "BT")
	parts = append(parts, fmt.Sprintf("/F1 %d Tf", fontSize))
	parts = append(parts, fmt.Sprintf("%d %d Td", marginLeft, textTop))

	for i, line := range lines {
		parts = append(parts, "("+escapePDFString(line)+") Tj")
		if i != len(lines)-1 {
			parts = append(parts, fmt.Sprintf("0 -%d Td", lineHeight))
		}
	}
	parts = append(parts, "ET")

	return strings.Join(parts, "\n") + "\n"
}

// SinglePagePDF produces a complete single page PDF showing lines in 12pt
// Helvetica. Output depends only on lines.
func SinglePagePDF(lines []string) []byte {
	stream := contentStream(lines)

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
			pageWidth, pageHeight),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream),
	}

	var buf bytes.Buffer
	buf.Write(pdfHeader)

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefStart := buf.Len()
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	return buf.Bytes()
}
