package main

import (
	"context"

	"github.com/trezcool/gymleague/storage/database"
)

var runMigrationsFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return runMigrationsFunc(context.Background(), cli.db, cli.logger, args[0], arguments...)
}
