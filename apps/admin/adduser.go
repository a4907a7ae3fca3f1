package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/user"
)

// addUser creates a user, or sets the role of the user owning email.
func (cli *commandLine) addUser(name, email, role string) error {
	ctx := context.Background()
	nu := user.NewUser{Name: name, Email: email, Role: role}
	nu.Clean()
	if err := cli.validate.Struct(nu); err != nil {
		return errors.New(core.ErrorMessage(err, cli.translator))
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, nu.Email)
	switch {
	case err == nil:
		if usr.Role == nu.Role {
			fmt.Fprintf(cli.out, "user %s already exists (%s)\n", usr.Email, usr.ID)
			return nil
		}
		// the CLI acts as a league admin distinct from the target user
		if usr, err = cli.usrSvc.UpdateRole(ctx, user.User{ID: "cli", Role: user.RoleAdmin}, usr.ID, nu.Role); err != nil {
			return errors.Wrap(err, "updating role")
		}
		fmt.Fprintf(cli.out, "user %s is now %s (%s)\n", usr.Email, usr.Role, usr.ID)
		return nil

	case errors.Cause(err) == user.ErrNotFound:
		if usr, err = cli.usrSvc.Create(ctx, nu); err != nil {
			return errors.New(core.ErrorMessage(err, cli.translator))
		}
		fmt.Fprintf(cli.out, "user %s created (%s)\n", usr.Email, usr.ID)
		return nil

	default:
		return errors.Wrap(err, "finding user by email")
	}
}
