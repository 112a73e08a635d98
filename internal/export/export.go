package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"egasrsvp/internal/model"
)

const (
	FileName    = "rsvps_egas_moniz.csv"
	ContentType = "text/csv; charset=utf-8"

	// utf8BOM makes spreadsheet tools pick the right encoding.
	utf8BOM = "\xEF\xBB\xBF"
)

var Header = []string{"Nome", "Email", "Instituição", "Cargo", "Confirmação", "Telefone", "Mensagem"}

// WriteCSV writes records in the order given, one row per record.
func WriteCSV(w io.Writer, records []model.RSVP) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Name,
			r.Email,
			r.Institution,
			r.Role,
			string(r.Confirmation),
			r.Phone,
			r.Message,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Summary holds the dashboard counters.
type Summary struct {
	Total int `json:"total"`
	Yes   int `json:"sim"`
	Maybe int `json:"talvez"`
	No    int `json:"nao"`
}

func Summarize(records []model.RSVP) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Confirmation {
		case model.StatusYes:
			s.Yes++
		case model.StatusMaybe:
			s.Maybe++
		case model.StatusNo:
			s.No++
		}
	}
	return s
}

// Filter keeps the records whose name or institution contains term, ignoring case.
// An empty term keeps everything.
func Filter(records []model.RSVP, term string) []model.RSVP {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}
	out := make([]model.RSVP, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), term) || strings.Contains(strings.ToLower(r.Institution), term) {
			out = append(out, r)
		}
	}
	return out
}
