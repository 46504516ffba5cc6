package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahrav/go-prospect/internal/domain"
)

// excerptLimit truncates character texts in the report tables so one
// verbose assessment does not swallow the page.
const excerptLimit = 120

var titleCaser = cases.Title(language.English)

// WriteReport renders the Markdown report and the flat CSV table over
// the evaluation records. Records are expected pre-sorted by subject
// id; the report preserves their order.
func (s *FileSink) WriteReport(records []domain.EvaluationRecord) error {
	if err := s.writeMarkdownReport(records); err != nil {
		return err
	}
	return s.writeCSVReport(records)
}

func (s *FileSink) writeMarkdownReport(records []domain.EvaluationRecord) error {
	var b strings.Builder
	b.WriteString("# Prospection Evaluation Report\n\n")
	fmt.Fprintf(&b, "Evaluated subjects: %d\n\n", len(records))

	for _, record := range records {
		fmt.Fprintf(&b, "## %s\n\n", record.SubjectID)

		if coords, ok := record.Context["coordinates"]; ok {
			fmt.Fprintf(&b, "Location: %s\n\n", coords)
		}
		if score, ok := record.Context["site_score"]; ok {
			fmt.Fprintf(&b, "Score: %s\n\n", score)
		}

		for _, name := range sortedNames(record.Assessments) {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", titleCaser.String(name), record.Assessments[name])
		}
		if record.Summary != "" {
			fmt.Fprintf(&b, "### Summary\n\n%s\n\n", record.Summary)
		}
	}

	path := filepath.Join(s.dir, reportMarkdown)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", reportMarkdown, err)
	}
	return nil
}

func (s *FileSink) writeCSVReport(records []domain.EvaluationRecord) error {
	characters := characterColumns(records)

	f, err := os.Create(filepath.Join(s.dir, reportCSV))
	if err != nil {
		return fmt.Errorf("create %s: %w", reportCSV, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"subject_id", "score"}, characters...)
	header = append(header, "summary")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", reportCSV, err)
	}

	for _, record := range records {
		row := []string{record.SubjectID, record.Context["site_score"]}
		for _, name := range characters {
			row = append(row, excerpt(record.Assessments[name]))
		}
		row = append(row, excerpt(record.Summary))
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s row: %w", reportCSV, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", reportCSV, err)
	}
	return nil
}

// characterColumns returns the union of character names across records
// in sorted order, so the CSV stays rectangular even when panels
// differ between runs.
func characterColumns(records []domain.EvaluationRecord) []string {
	seen := make(map[string]struct{})
	for _, record := range records {
		for name := range record.Assessments {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// excerpt truncates text at a rune boundary for table cells.
func excerpt(text string) string {
	runes := []rune(strings.ReplaceAll(text, "\n", " "))
	if len(runes) <= excerptLimit {
		return string(runes)
	}
	return string(runes[:excerptLimit]) + "…"
}
