package roster

import (
	"bytes"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core/gymnast"
)

// ParseCSV decodes a header-keyed roster file (first_name, last_name, birth_date, level, ...).
// Unknown columns are ignored; values are validated later, row by row.
func ParseCSV(r io.Reader) ([]gymnast.NewGymnast, error) {
	var rows []gymnast.NewGymnast
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "decoding roster csv")
	}
	return rows, nil
}

type rowErrorCSV struct {
	Row       int    `csv:"row"`
	Error     string `csv:"error"`
	FirstName string `csv:"first_name"`
	LastName  string `csv:"last_name"`
	Email     string `csv:"email"`
	BirthDate string `csv:"birth_date"`
	Level     string `csv:"level"`
	Type      string `csv:"type"`
}

// errorsCSV renders row errors for the summary email attachment.
func errorsCSV(rowErrs []RowError) ([]byte, error) {
	lines := make([]rowErrorCSV, 0, len(rowErrs))
	for _, re := range rowErrs {
		lines = append(lines, rowErrorCSV{
			Row:       re.Row,
			Error:     re.Error,
			FirstName: re.Data.FirstName,
			LastName:  re.Data.LastName,
			Email:     re.Data.Email,
			BirthDate: re.Data.BirthDate,
			Level:     re.Data.Level,
			Type:      re.Data.Type,
		})
	}
	var buf bytes.Buffer
	if err := gocsv.Marshal(lines, &buf); err != nil {
		return nil, errors.Wrap(err, "encoding row errors")
	}
	return buf.Bytes(), nil
}
