package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

func (a *app) contactCmd() *cobra.Command {
	svc := func() *service.ContactService { return service.NewContactService(a.api, a.log) }

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Manage the contact profile",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.requireAdmin(cmd.Context(), false)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the contact profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := svc().Load(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(c)
		},
	}

	var (
		phones, emails, socials       []string
		address, schedule, socialText string
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Update the contact profile; only the given flags change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s := svc()
			c, err := s.Load(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("phone") {
				c.Phones = phones
			}
			if flags.Changed("email") {
				c.Emails = emails
			}
			if flags.Changed("address") {
				c.Address = address
			}
			if flags.Changed("schedule") {
				c.Schedule = schedule
			}
			if flags.Changed("social-text") {
				c.SocialText = socialText
			}
			if flags.Changed("social") {
				c.Socials = c.Socials[:0]
				for _, raw := range socials {
					label, url, ok := strings.Cut(raw, "=")
					if !ok {
						return domain.NewValidationError("social", fmt.Sprintf("--social %q: expected label=url", raw))
					}
					c.Socials = append(c.Socials, domain.Social{Label: label, URL: url})
				}
			}

			saved, err := s.Save(ctx, *c)
			if err != nil {
				return err
			}
			return a.print(saved)
		},
	}
	save.Flags().StringArrayVar(&phones, "phone", nil, "phone number, repeatable; replaces the list")
	save.Flags().StringArrayVar(&emails, "email", nil, "email address, repeatable; replaces the list")
	save.Flags().StringVar(&address, "address", "", "postal address")
	save.Flags().StringVar(&schedule, "schedule", "", "opening hours")
	save.Flags().StringVar(&socialText, "social-text", "", "text shown above the social links")
	save.Flags().StringArrayVar(&socials, "social", nil, "label=url, repeatable; replaces the list")

	uploadHero := &cobra.Command{
		Use:   "upload-hero <file>",
		Short: "Upload the contact page image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUpload(args[0], func(up service.Upload) error {
				url, err := svc().UploadHero(cmd.Context(), up)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, url)
				return nil
			})
		},
	}

	cmd.AddCommand(show, save, uploadHero)
	return cmd
}
