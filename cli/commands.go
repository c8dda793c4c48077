package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/asaidimu/go-gqlbuilder/core/document"
	"github.com/asaidimu/go-gqlbuilder/core/manifest"
	"github.com/asaidimu/go-gqlbuilder/core/persisted"
	"github.com/asaidimu/go-gqlbuilder/core/query"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(a *app) *cobra.Command {
	var (
		envelope  bool
		withHash  bool
		operation string
	)

	cmd := &cobra.Command{
		Use:   "render <manifest>",
		Short: "Render a manifest to operation text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, text, err := a.render(args[0])
			if err != nil {
				return err
			}

			if envelope {
				var opts []document.EnvelopeOption
				if operation != "" {
					opts = append(opts, document.WithOperationName(operation))
				}
				if withHash {
					opts = append(opts, document.WithPersistedQuery())
				}
				data, err := document.NewEnvelope(op, opts...).JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().Bool("pretty", false, "print the canonical multi-line layout")
	cmd.Flags().Bool("validate", false, "fail when the output does not parse")
	cmd.Flags().BoolVar(&envelope, "envelope", false, "print a JSON request body instead of the text")
	cmd.Flags().BoolVar(&withHash, "persisted", false, "add the persistedQuery extension to the envelope")
	cmd.Flags().StringVar(&operation, "operation-name", "", "operationName of the envelope")
	return cmd
}

// render loads and builds a manifest and returns the operation with the
// text to print, honouring render.validate and render.pretty.
func (a *app) render(path string) (*query.Operation, string, error) {
	m, err := manifest.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	op, err := m.Build()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}

	text := query.NewAssembler(a.logger.Named("assembler")).Assemble(op)
	if a.v.GetBool("render.validate") {
		if err := document.Validate(text); err != nil {
			return nil, "", fmt.Errorf("%s renders an invalid document: %w", path, err)
		}
	}
	if a.v.GetBool("render.pretty") {
		pretty, err := document.Pretty(text)
		if err != nil {
			return nil, "", err
		}
		text = pretty
	}
	return op, text, nil
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <manifest>",
		Short: "Report the shape of a rendered manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, _, err := a.render(args[0])
			if err != nil {
				return err
			}
			analysis, err := document.Analyze(op.String())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			a.printf(out, a.info, "%s %s\n", analysis.OperationType, strings.Join(analysis.RootFields, ", "))
			fmt.Fprintf(out, "fields:    %d\n", analysis.FieldCount)
			fmt.Fprintf(out, "depth:     %d\n", analysis.SelectionDepth)
			fmt.Fprintf(out, "arguments: %d\n", analysis.ArgumentCount)
			fmt.Fprintf(out, "hash:      %s\n", analysis.Hash)
			return nil
		},
	}
}

// NewPersistCommand creates the persist command.
func NewPersistCommand(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "persist <manifest>",
		Short: "Register a manifest's operation under its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.LoadFile(args[0])
			if err != nil {
				return err
			}
			op, err := m.Build()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if name == "" {
				name = m.Name
			}

			return a.openStore(func(store *persisted.Store) error {
				record, err := store.Save(cmd.Context(), name, op.Kind, op)
				if err != nil {
					a.printf(cmd.ErrOrStderr(), a.failure, "✗ %s\n", err)
					return err
				}
				a.printf(cmd.OutOrStdout(), a.success, "✓ %s %s\n", record.Hash, record.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "record name (default: the manifest name)")
	return cmd
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(a *app) *cobra.Command {
	var (
		byName bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "lookup <hash|name>",
		Short: "Print a persisted operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.openStore(func(store *persisted.Store) error {
				var (
					record *persisted.Record
					err    error
				)
				if byName {
					record, err = store.LookupByName(cmd.Context(), args[0])
				} else {
					record, err = store.Lookup(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}

				if asJSON {
					data, err := json.Marshal(record)
					if err != nil {
						return fmt.Errorf("failed to encode record: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), record.Document)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&byName, "by-name", false, "look up the latest record with this name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the whole record as JSON")
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(a *app) *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := persisted.ListOptions{Kind: query.OperationKind(kind), Limit: limit}
			if kind != "" && !opts.Kind.IsValid() {
				return fmt.Errorf("unknown operation kind %q", kind)
			}

			return a.openStore(func(store *persisted.Store) error {
				records, err := store.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				a.logger.Debug("Listed operations", zap.Int("count", len(records)))

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "HASH\tKIND\tNAME\tCREATED")
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Hash, r.Kind, r.Name, r.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list query, mutation or subscription records")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records (0 for all)")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <hash>",
		Short: "Remove a persisted operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.openStore(func(store *persisted.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				a.printf(cmd.OutOrStdout(), a.success, "✓ deleted %s\n", args[0])
				return nil
			})
		},
	}
}
