package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

// rootAdminID matches the portal's ROOT_ADMIN_ID default.
const rootAdminID = 1

func (a *app) usersCmd() *cobra.Command {
	var rootID int64
	svc := func() *service.AdminUserService { return service.NewAdminUserService(a.api, rootID, a.log) }

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage administrator accounts (superadmin only)",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.requireAdmin(cmd.Context(), true)
		},
	}
	cmd.PersistentFlags().Int64Var(&rootID, "root-id", rootAdminID, "id of the protected principal superadmin")

	printUsers := func(res service.Refreshed[[]domain.AdminUser], err error) error {
		if err != nil {
			return err
		}
		return printRefreshed(a, res, func(users []domain.AdminUser) any { return users })
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List administrator accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := svc().List(cmd.Context())
			return printUsers(service.Refreshed[[]domain.AdminUser]{Data: users}, err)
		},
	}

	var form domain.AdminUserForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printUsers(svc().Create(cmd.Context(), form))
		},
	}
	create.Flags().StringVar(&form.Name, "name", "", "display name")
	create.Flags().StringVar(&form.Email, "email", "", "login email")
	create.Flags().StringVar(&form.Password, "password", "", "initial password")
	create.Flags().StringVar(&form.Role, "role", domain.RoleAdmin, "admin or superadmin")

	setActive := func(use, short string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return printUsers(svc().SetActive(cmd.Context(), id, active))
			},
		}
	}

	role := &cobra.Command{
		Use:   "role <id> <admin|superadmin>",
		Short: "Change the role of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return printUsers(svc().SetRole(cmd.Context(), id, args[1]))
		},
	}

	var newPassword string
	reset := &cobra.Command{
		Use:   "reset-password <id>",
		Short: "Set a new password for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if newPassword == "" {
				if newPassword, err = a.readPassword("New password: "); err != nil {
					return err
				}
			}
			ack, err := svc().ResetPassword(cmd.Context(), id, newPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "password updated for %s\ntemporary password: %s\n", ack.UserEmail, ack.TempPassword)
			return nil
		},
	}
	reset.Flags().StringVar(&newPassword, "password", "", "new password (prompted when empty)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := svc().Delete(cmd.Context(), id, a.confirmer())
			if err != nil {
				return a.cancelled(err)
			}
			return printUsers(res, nil)
		},
	}

	cmd.AddCommand(
		list,
		create,
		setActive("activate", "Re-enable an account", true),
		setActive("deactivate", "Disable an account", false),
		role,
		reset,
		del,
	)
	return cmd
}
