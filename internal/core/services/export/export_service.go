package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
)

// ExportFactsJSON writes facts as a JSON array
func ExportFactsJSON(w io.Writer, facts []domain.Fact) error {
	if facts == nil {
		facts = []domain.Fact{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(facts)
}

// ExportFactsCSV writes facts as CSV with headers, one row per fact in list order
func ExportFactsCSV(w io.Writer, facts []domain.Fact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Position", "ID", "Text", "Source"}); err != nil {
		return err
	}

	for i, f := range facts {
		row := []string{
			fmt.Sprintf("%d", i+1),
			f.ID,
			f.Text,
			f.Source,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportRunsCSV writes fetch sequence records as CSV
func ExportRunsCSV(w io.Writer, runs []domain.FetchRun) error {
	writer := csv.NewWriter(w)

	headers := []string{"ID", "Trigger", "Outcome", "Attempts", "Succeeded", "StartedAt", "FinishedAt", "DurationMs", "Error"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, r := range runs {
		row := []string{
			r.ID,
			string(r.Trigger),
			string(r.Outcome),
			fmt.Sprintf("%d", r.Attempts),
			fmt.Sprintf("%d", r.Succeeded),
			r.StartedAt.Format(time.RFC3339),
			r.FinishedAt.Format(time.RFC3339),
			fmt.Sprintf("%d", r.Duration().Milliseconds()),
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
