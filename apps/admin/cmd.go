package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/roster"
	"github.com/trezcool/gymleague/core/user"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf       *core.Config
	db         *sql.DB
	logger     core.Logger
	out        io.Writer
	validate   *validator.Validate
	translator ut.Translator
	usrSvc     *user.Service
	rosterSvc  *roster.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo, version, ...)")
	fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL -role ROLE - create a user, or change an existing user's role")
	fmt.Fprintln(cli.out, "  token -email EMAIL - print an access token for the user")
	fmt.Fprintln(cli.out, "  importroster -gym GYM_ID -file PATH -email EMAIL - import a roster CSV on behalf of the user")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRole := addUserCmd.String("role", user.RoleAdmin, "One of: admin, gym_admin, coach, gymnast, spectator.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenEmail := tokenCmd.String("email", "", "The user's email.")

	importCmd := flag.NewFlagSet("importroster", flag.ContinueOnError)
	importGym := importCmd.String("gym", "", "The gym ID.")
	importFile := importCmd.String("file", "", "Path to the roster CSV.")
	importEmail := importCmd.String("email", "", "Email of the staff member or admin performing the import.")

	for _, fs := range []*flag.FlagSet{addUserCmd, tokenCmd, importCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, *addUserRole)

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.printToken(*tokenEmail)

	case "importroster":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importGym == "" || *importFile == "" || *importEmail == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importRoster(*importGym, *importFile, *importEmail)

	default:
		cli.printUsage()
		return errHelp
	}
}
