package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/roster"
)

// importRoster bulk-creates the gymnasts listed in a CSV file, acting as the user owning email.
func (cli *commandLine) importRoster(gymID, path, email string) error {
	ctx := context.Background()
	actor, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening roster file")
	}
	defer func() { _ = f.Close() }()

	rows, err := roster.ParseCSV(f)
	if err != nil {
		return err
	}

	res, err := cli.rosterSvc.Import(ctx, actor, gymID, filepath.Base(path), rows)
	if err != nil {
		return errors.New(core.ErrorMessage(err, cli.translator))
	}

	fmt.Fprintf(cli.out, "upload %s %s: %d/%d rows imported, %d rejected\n",
		res.UploadID, res.Status, res.ProcessedRows, res.TotalRows, res.ErrorRows)
	for _, rowErr := range res.Errors {
		fmt.Fprintf(cli.out, "  row %d: %s\n", rowErr.Row, rowErr.Error)
	}
	return nil
}
