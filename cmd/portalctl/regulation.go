package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

func (a *app) regulationCmd() *cobra.Command {
	svc := func() *service.RegulationService { return service.NewRegulationService(a.api, a.log) }

	cmd := &cobra.Command{
		Use:   "regulation",
		Short: "Manage the institutional regulation",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.requireAdmin(cmd.Context(), false)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the text, PDF and sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := svc().Load(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(doc)
		},
	}

	var htmlFile string
	saveText := &cobra.Command{
		Use:   "save-text",
		Short: "Replace the regulation text with the HTML in --file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(htmlFile)
			if err != nil {
				return err
			}
			res, err := svc().SaveText(cmd.Context(), string(raw))
			if err != nil {
				return err
			}
			return printRefreshed(a, res, func(doc *domain.Regulation) any { return doc })
		},
	}
	saveText.Flags().StringVar(&htmlFile, "file", "", "HTML file")
	_ = saveText.MarkFlagRequired("file")

	uploadPDF := &cobra.Command{
		Use:   "upload-pdf <file>",
		Short: "Upload the regulation PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUpload(args[0], func(up service.Upload) error {
				path, err := svc().UploadPDF(cmd.Context(), up)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, path)
				return nil
			})
		},
	}

	cmd.AddCommand(show, saveText, uploadPDF, a.sectionCmd(svc), a.itemCmd(svc))
	return cmd
}

func (a *app) sectionCmd(svc func() *service.RegulationService) *cobra.Command {
	cmd := &cobra.Command{Use: "section", Short: "Manage regulation sections"}

	create := &cobra.Command{
		Use:   "create",
		Short: "Append an empty section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := svc().CreateSection(cmd.Context())
			if err != nil {
				return err
			}
			return printRefreshed(a, res, sections)
		},
	}

	var sets []string
	save := &cobra.Command{
		Use:   "save <id>",
		Short: "Change fields of a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := svc()
			doc, err := s.Load(ctx)
			if err != nil {
				return err
			}
			sec, ok := findSection(doc, id)
			if !ok {
				return fmt.Errorf("section %d: %w", id, domain.ErrNotFound)
			}
			form := domain.SectionForm{
				Title:       sec.Title,
				Description: sec.Description,
				Order:       sec.Order.Or(1),
				Visible:     sec.Visible.Truthy(true),
			}
			if err := applySets(&form, sets); err != nil {
				return err
			}
			res, err := s.SaveSection(ctx, id, form)
			if err != nil {
				return err
			}
			return printRefreshed(a, res, sections)
		},
	}
	save.Flags().StringArrayVar(&sets, "set", nil, "field=value, repeatable")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a section and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := svc().DeleteSection(cmd.Context(), id, a.confirmer())
			if err != nil {
				return a.cancelled(err)
			}
			return printRefreshed(a, res, sections)
		},
	}

	cmd.AddCommand(create, save, del)
	return cmd
}

func (a *app) itemCmd(svc func() *service.RegulationService) *cobra.Command {
	cmd := &cobra.Command{Use: "item", Short: "Manage items inside regulation sections"}

	create := &cobra.Command{
		Use:   "create <section-id>",
		Short: "Append an empty item to a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sectionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := svc().CreateItem(cmd.Context(), sectionID)
			if err != nil {
				return err
			}
			return printRefreshed(a, res, sections)
		},
	}

	var sets []string
	save := &cobra.Command{
		Use:   "save <id>",
		Short: "Change fields of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := svc()
			doc, err := s.Load(ctx)
			if err != nil {
				return err
			}
			it, ok := findItem(doc, id)
			if !ok {
				return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
			}
			form := domain.ItemForm{
				SectionID: it.SectionID,
				Title:     it.Title,
				Content:   it.Content,
				Order:     it.Order.Or(0),
				Visible:   it.Visible.Truthy(true),
			}
			if err := applySets(&form, sets); err != nil {
				return err
			}
			res, err := s.SaveItem(ctx, id, form)
			if err != nil {
				return err
			}
			return printRefreshed(a, res, sections)
		},
	}
	save.Flags().StringArrayVar(&sets, "set", nil, "field=value, repeatable")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := svc().DeleteItem(cmd.Context(), id, a.confirmer())
			if err != nil {
				return a.cancelled(err)
			}
			return printRefreshed(a, res, sections)
		},
	}

	cmd.AddCommand(create, save, del)
	return cmd
}

func sections(doc *domain.Regulation) any {
	return doc.Sections
}

func findSection(doc *domain.Regulation, id int64) (domain.RegulationSection, bool) {
	for _, s := range doc.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return domain.RegulationSection{}, false
}

func findItem(doc *domain.Regulation, id int64) (domain.RegulationItem, bool) {
	for _, s := range doc.Sections {
		for _, it := range s.Items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return domain.RegulationItem{}, false
}
