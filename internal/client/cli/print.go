package cli

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
)

func (a *App) printUser(u *models.User) {
	a.printf("ID:       %s\n", u.ID)
	a.printf("Name:     %s\n", u.Name)
	a.printf("Email:    %s\n", u.Email)
	a.printf("Enabled:  %t\n", u.Enabled)
	if u.Provider != "" {
		a.printf("Provider: %s\n", u.Provider)
	}
	a.printf("Roles:    %s\n", joinOrDash(u.RoleNames()))
	if !u.CreatedAt.IsZero() {
		a.printf("Created:  %s\n", u.CreatedAt.Local().Format(time.DateTime))
	}
}

func (a *App) printUserLine(u *models.User) {
	state := "enabled"
	if !u.Enabled {
		state = "disabled"
	}
	a.printf("%-36s  %-30s  %-8s  %s\n", u.ID, u.Email, state, joinOrDash(u.RoleNames()))
}

// printMessage prints the backend's message, or fallback when it sent none.
func (a *App) printMessage(msg *models.MessageResponse, fallback string) {
	if msg != nil && msg.Message != "" {
		a.println(msg.Message)
		return
	}
	a.println(fallback)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
