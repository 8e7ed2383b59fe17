package main

import (
	"time"

	"github.com/matludke/tempocerto/core"
	"github.com/matludke/tempocerto/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Name:      name,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		isActive := true
		usr.IsActive = &isActive
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}

	if name != "" {
		usr.Name = name
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	isActive := true
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(usr, &isActive)
	return err
}
