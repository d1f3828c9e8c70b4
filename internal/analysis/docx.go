package analysis

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/studyforge/backend/internal/models"
)

// DocxExport handles POST /docx-export: renders the analysis report as a
// Word document for download.
func (h *Handler) DocxExport(w http.ResponseWriter, r *http.Request) {
	var req models.DocxExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Report == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Report is required"})
		return
	}

	doc, err := buildReportDocx(req.Report)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate document: " + err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="code-analysis-report.docx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// buildReportDocx assembles a minimal OOXML package: content types,
// package relationships, and a single document part.
func buildReportDocx(report *models.AnalysisReport) ([]byte, error) {
	var body strings.Builder

	docxHeading(&body, "Code Analysis Report", 32)
	docxParagraph(&body, "Generated on "+time.Now().Format("January 2, 2006"))
	docxParagraph(&body, "")

	sections := []struct {
		title string
		text  string
	}{
		{"Approach", report.Approach},
		{"Logic", report.Logic},
		{"AI Detection", report.AIDetection},
		{"Suggestions", report.Suggestions},
		{"Overall Score", fmt.Sprintf("%.1f / 10", report.OverallScore)},
	}
	for _, s := range sections {
		docxHeading(&body, s.title, 26)
		docxParagraph(&body, s.text)
		docxParagraph(&body, "")
	}

	if report.IsMockData {
		docxParagraph(&body, "Note: this report contains fallback data. The analysis service was unavailable.")
	}

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`},
		{"word/document.xml", document},
	}

	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := f.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}

	return buf.Bytes(), nil
}

// docxHeading writes a bold paragraph; size is in half-points.
func docxHeading(sb *strings.Builder, text string, size int) {
	fmt.Fprintf(sb,
		`<w:p><w:r><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		size, escapeXML(text))
}

func docxParagraph(sb *strings.Builder, text string) {
	if text == "" {
		sb.WriteString(`<w:p/>`)
		return
	}
	fmt.Fprintf(sb,
		`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		escapeXML(text))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
