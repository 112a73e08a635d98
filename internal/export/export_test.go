package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"egasrsvp/internal/model"
)

func sample() []model.RSVP {
	return []model.RSVP{
		{ID: "3", Guest: model.Guest{Name: "Ana Silva", Email: "ana@exemplo.ao", Institution: "ENAPP", Confirmation: model.StatusYes}},
		{ID: "2", Guest: model.Guest{Name: "Bruno", Email: "b@x.ao", Institution: "Ministério, Finanças", Role: `Director "geral"`, Confirmation: model.StatusMaybe, Message: "linha1\nlinha2"}},
		{ID: "1", Guest: model.Guest{Name: "Carla", Email: "c@x.ao", Confirmation: model.StatusNo, Phone: "+244 900 000 000"}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, utf8BOM) {
		t.Fatal("missing BOM")
	}

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("csv output does not parse: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if strings.Join(rows[0], "|") != strings.Join(Header, "|") {
		t.Errorf("header = %v", rows[0])
	}

	bruno := rows[2]
	if bruno[2] != "Ministério, Finanças" || bruno[3] != `Director "geral"` || bruno[6] != "linha1\nlinha2" {
		t.Errorf("quoted fields not preserved: %q", bruno)
	}
	if rows[3][5] != "+244 900 000 000" || rows[3][4] != "nao" {
		t.Errorf("row 3 = %q", rows[3])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := strings.TrimPrefix(buf.String(), utf8BOM); got != strings.Join(Header, ",")+"\n" {
		t.Errorf("empty export = %q", got)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(sample())
	want := Summary{Total: 3, Yes: 1, Maybe: 1, No: 1}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", got)
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		term string
		want int
	}{
		{"", 3},
		{"ana", 1},
		{"ENAPP", 1},
		{"finanças", 1},
		{"zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := Filter(sample(), tt.term); len(got) != tt.want {
				t.Errorf("Filter(%q) returned %d records, want %d", tt.term, len(got), tt.want)
			}
		})
	}
}
