package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/common"
)

func (a *App) AdminList(ctx context.Context) error {
	users, err := a.admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		a.println("No users.")
		return nil
	}
	for i := range users {
		a.printUserLine(&users[i])
	}
	return nil
}

func (a *App) AdminGet(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		return err
	}
	u, err := a.admin.GetUser(ctx, id)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

func (a *App) AdminFind(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	u, err := a.admin.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

// AdminCreate creates an enabled account. Without roles the user gets
// ROLE_USER.
func (a *App) AdminCreate(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Enter password")
	if err != nil {
		return err
	}
	roles, err := GetList(a.reader, "Roles (comma separated, empty for "+models.RoleUser+")", a.out)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}

	u, err := a.admin.CreateUser(ctx, models.AdminUserCreateRequest{
		Name: name, Email: email, Password: password, Roles: roles,
	})
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

// AdminRoles shows the user's roles and replaces them with the ones entered.
func (a *App) AdminRoles(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		return err
	}
	u, err := a.admin.GetUser(ctx, id)
	if err != nil {
		return err
	}
	current := u.RoleNames()
	a.printf("Current roles: %s\n", joinOrDash(current))

	desired, err := GetList(a.reader, "New roles (comma separated)", a.out)
	if err != nil {
		return err
	}

	updated, err := a.admin.UpdateRoles(ctx, id, current, desired)
	if errors.Is(err, common.ErrNoRoleChanges) {
		a.println("No role changes.")
		return nil
	}
	if err != nil {
		return err
	}
	a.printUser(updated)
	return nil
}

func (a *App) AdminDisable(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		return err
	}
	ok, err := GetConfirmation(a.reader, "Disable user "+id+"?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}

	res, err := a.admin.DisableUser(ctx, id)
	if err != nil {
		return err
	}
	a.printMessage(&models.MessageResponse{Message: res.Message}, "User "+id+" disabled.")
	return nil
}
