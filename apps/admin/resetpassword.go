package main

import (
	"context"
	"time"

	"github.com/upskillway/crm/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err := cli.usrRepo.UpdateUser(ctx, user.User{
		ID:           usr.ID,
		PasswordHash: usr.PasswordHash,
		UpdatedAt:    usr.UpdatedAt,
	}, nil); err != nil {
		return err
	}
	return nil
}
