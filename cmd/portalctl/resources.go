package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

// resourceCmd builds list/create/update/delete for one admin collection.
func resourceCmd[T domain.Record, F any](a *app, use, short string, res service.Resource[T, F]) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every " + res.Name + ", hidden ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireAdmin(ctx, false); err != nil {
				return err
			}
			ed := service.NewEditor(a.api, res, a.log)
			if err := ed.Mount(ctx); err != nil {
				return err
			}
			return a.print(ed.State().Items)
		},
	}

	var createSets []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a " + res.Name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireAdmin(ctx, false); err != nil {
				return err
			}
			var form F
			if res.Blank != nil {
				form = res.Blank()
			}
			if err := applySets(&form, createSets); err != nil {
				return err
			}
			ed := service.NewEditor(a.api, res, a.log)
			ed.Attach()
			if err := ed.Submit(ctx, form); err != nil {
				return err
			}
			return a.print(ed.State().Items)
		},
	}
	create.Flags().StringArrayVar(&createSets, "set", nil, "field=value, repeatable")

	var updateSets []string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a " + res.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAdmin(ctx, false); err != nil {
				return err
			}
			ed := service.NewEditor(a.api, res, a.log)
			if err := ed.Mount(ctx); err != nil {
				return err
			}
			if err := ed.Edit(id); err != nil {
				return err
			}
			form := ed.State().Form
			if err := applySets(&form, updateSets); err != nil {
				return err
			}
			if err := ed.Submit(ctx, form); err != nil {
				return err
			}
			return a.print(ed.State().Items)
		},
	}
	update.Flags().StringArrayVar(&updateSets, "set", nil, "field=value, repeatable")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + res.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAdmin(ctx, false); err != nil {
				return err
			}
			ed := service.NewEditor(a.api, res, a.log)
			if err := ed.Mount(ctx); err != nil {
				return err
			}
			if err := ed.Delete(ctx, id, a.confirmer()); err != nil {
				return a.cancelled(err)
			}
			return a.print(ed.State().Items)
		},
	}

	cmd.AddCommand(list, create, update, del)
	return cmd
}

func (a *app) coursesCmd() *cobra.Command {
	cmd := resourceCmd(a, "courses", "Manage the course catalogue", service.CoursesResource)
	cmd.AddCommand(&cobra.Command{
		Use:   "upload-image <file>",
		Short: "Upload a course image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireAdmin(ctx, false); err != nil {
				return err
			}
			return withUpload(args[0], func(up service.Upload) error {
				url, err := service.CourseImage(ctx, a.api, up)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, url)
				return nil
			})
		},
	})
	return cmd
}

// applySets decodes field=value pairs onto form, matching json field names.
// Values are converted to the field's type; unknown fields are rejected.
func applySets(form any, sets []string) error {
	if len(sets) == 0 {
		return nil
	}
	values := make(map[string]any, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return domain.NewValidationError("set", fmt.Sprintf("--set %q: expected field=value", s))
		}
		values[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           form,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return domain.NewValidationError("set", err.Error())
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func withUpload(path string, fn func(service.Upload) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(service.Upload{Filename: filepath.Base(path), Content: f})
}
