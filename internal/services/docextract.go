package services

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	ltpdf "github.com/ledongthuc/pdf"
	rscpdf "rsc.io/pdf"
)

// MinDocumentBytes is the smallest upload worth parsing. Anything
// shorter cannot be a valid document and is rejected before any
// strategy runs.
const MinDocumentBytes = 100

// ExtractAttempt records why one strategy failed.
type ExtractAttempt struct {
	Strategy string `json:"strategy"`
	Note     string `json:"note"`
}

// ExtractResult is the outcome of the extraction chain. Text is empty
// when every strategy failed; Attempts then explains each failure.
type ExtractResult struct {
	Text     string
	Strategy string
	Attempts []ExtractAttempt
}

// OK reports whether a strategy produced non-trivial text.
func (r ExtractResult) OK() bool {
	return strings.TrimSpace(r.Text) != ""
}

type extractStrategy struct {
	name string
	run  func(data []byte) (string, error)
}

// DocExtractService pulls text out of uploaded documents by trying an
// ordered chain of strategies: the embedded text layer first, then a
// structural re-parse with a second library, and OCR as the last
// resort for scanned or image-only files.
type DocExtractService struct {
	strategies []extractStrategy
}

func NewDocExtractService() *DocExtractService {
	s := &DocExtractService{}
	s.strategies = []extractStrategy{
		{name: "pdf-text", run: extractTextLayer},
		{name: "pdf-structure", run: extractStructural},
		{name: "ocr", run: s.extractOCR},
	}
	return s
}

// Extract runs the strategy chain and stops at the first strategy that
// yields non-empty text. "No text found" is not an error: the result
// simply carries every attempt note and the caller decides how to
// surface it.
func (s *DocExtractService) Extract(data []byte) ExtractResult {
	var res ExtractResult

	if len(data) < MinDocumentBytes {
		res.Attempts = append(res.Attempts, ExtractAttempt{
			Strategy: "size-check",
			Note:     fmt.Sprintf("input is %d bytes, too small to be a valid document", len(data)),
		})
		return res
	}

	for _, st := range s.strategies {
		text, err := runStrategy(st, data)
		if err != nil {
			res.Attempts = append(res.Attempts, ExtractAttempt{Strategy: st.name, Note: err.Error()})
			continue
		}

		text = normalizeExtractedText(text)
		if text == "" {
			res.Attempts = append(res.Attempts, ExtractAttempt{Strategy: st.name, Note: "empty text"})
			continue
		}

		res.Text = text
		res.Strategy = st.name
		return res
	}

	return res
}

// runStrategy isolates one strategy. Both PDF libraries panic on some
// corrupt streams; a panic counts as that strategy's failure and the
// chain moves on.
func runStrategy(st extractStrategy, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return st.run(data)
}

// extractTextLayer reads the document's embedded text objects page by
// page, pages separated by newlines.
func extractTextLayer(data []byte) (string, error) {
	reader, err := ltpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return b.String(), nil
}

// extractStructural re-parses each page's positioned text items with an
// alternate library, joining items with single spaces and pages with
// newlines. Catches documents whose text layer the first parser
// mishandles.
func extractStructural(data []byte) (string, error) {
	reader, err := rscpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		parts := make([]string, 0, len(content.Text))
		for _, item := range content.Text {
			if strings.TrimSpace(item.S) == "" {
				continue
			}
			parts = append(parts, item.S)
		}
		if len(parts) > 0 {
			pages = append(pages, strings.Join(parts, " "))
		}
	}

	return strings.Join(pages, "\n"), nil
}

// extractOCR persists the document to a scoped temp file and runs
// tesseract over rendered page images. Expensive, so it only runs after
// both text-layer strategies came back empty.
func (s *DocExtractService) extractOCR(data []byte) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not installed")
	}
	return withScopedTempFile(data, runTesseractOCR)
}

// withScopedTempFile writes data to a temporary file, invokes fn with
// its path, and removes the file on every exit path including panics.
func withScopedTempFile(data []byte, fn func(path string) (string, error)) (string, error) {
	f, err := os.CreateTemp("", "lumi-doc-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return fn(path)
}

// runTesseractOCR converts the document to page images with pdftoppm
// and recognizes each page in order. Without pdftoppm it hands the file
// to tesseract directly in case the local build can read it.
func runTesseractOCR(docPath string) (string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return tesseractRecognize(docPath)
	}

	tmpDir, err := os.MkdirTemp("", "lumi-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	if err := exec.Command("pdftoppm", "-png", "-r", "300", docPath, prefix).Run(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w", err)
	}

	images, err := filepath.Glob(prefix + "*")
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("no page images produced from document")
	}
	sortByPageNumber(images)

	var pages []string
	for _, img := range images {
		text, err := tesseractRecognize(img)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("ocr recognized no text")
	}
	return strings.Join(pages, "\n"), nil
}

func tesseractRecognize(path string) (string, error) {
	cmd := exec.Command("tesseract", path, "stdout", "-l", "eng")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return out.String(), nil
}

var pageNumberPattern = regexp.MustCompile(`(\d+)\.png$`)

// sortByPageNumber orders page images numerically; a lexical sort would
// put page-10 before page-2.
func sortByPageNumber(files []string) {
	sort.Slice(files, func(i, j int) bool {
		return pageImageNumber(files[i]) < pageImageNumber(files[j])
	})
}

func pageImageNumber(path string) int {
	m := pageNumberPattern.FindStringSubmatch(filepath.Base(path))
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// normalizeExtractedText collapses runs of blank lines and trims each
// line, keeping page text readable for prompting.
func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
