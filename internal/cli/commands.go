package cli

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/schema"
	"github.com/iliyamo/video-rental/internal/service"
)

func NewSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "setup",
		Aliases: []string{"create"},
		Short:   "Create the film, client and rental tables if absent",
		Args:    cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, _ config.Config, db *sql.DB, d database.Dialect) error {
				if err := schema.NewManager(db, d).Provision(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Tables setup completed.")
				return nil
			})
		}),
	}
}

func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "insert-sample",
		Aliases: []string{"seed"},
		Short:   "Insert the demonstration dataset (5 films, 5 clients, 10 rentals)",
		Args:    cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				res, err := svc.Seed(ctx)
				if err != nil {
					if res.Films+res.Clients+res.Rentals > 0 {
						fmt.Fprintf(cmd.ErrOrStderr(), "Partially inserted: %s\n", formatSeedResult(res))
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sample data inserted: %s\n", formatSeedResult(res))
				return nil
			})
		}),
	}
}

func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"show-movies"},
		Short:   "List all films",
		Args:    cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				films, err := svc.ListFilms(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Movies in the system:")
				for _, f := range films {
					fmt.Fprintln(out, formatFilm(f))
				}
				if len(films) == 0 {
					fmt.Fprintln(out, "  (none)")
				}
				return nil
			})
		}),
	}
}

func NewAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [title] [year] [category] [director]",
		Short: "Add a film; year, category and director are optional",
		Args:  cobra.RangeArgs(1, 4),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			nf, err := parseNewFilm(args)
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				id, err := svc.AddFilm(ctx, nf)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Movie added with ID: %d\n", id)
				return nil
			})
		}),
	}
}

func NewUpdateEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update-email [client-id] [new-email]",
		Aliases: []string{"update"},
		Short:   "Change a client's email address",
		Args:    cobra.ExactArgs(2),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			id, err := parseClientID(args[0])
			if err != nil {
				return err
			}
			email, err := requireArg("new email address", args[1])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				n, err := svc.UpdateClientEmail(ctx, id, email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Customer %d email updated to %s (%d row(s) affected)\n", id, email, n)
				return nil
			})
		}),
	}
}

func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [client-id]",
		Aliases: []string{"remove-customer"},
		Short:   "Delete a client together with their rental history",
		Args:    cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			id, err := parseClientID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				if err := svc.RemoveClient(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Customer %d and their rental history removed.\n", id)
				return nil
			})
		}),
	}
}

func NewShowClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-client [client-id]",
		Short: "Show one client and the number of rentals on record",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			id, err := parseClientID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				c, err := svc.GetClient(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatClient(c))
				return nil
			})
		}),
	}
}

func NewFindMoviesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "find-movies-by-customer [email]",
		Aliases: []string{"find-movies"},
		Short:   "List the films rented by the client with this email",
		Args:    cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			email, err := requireArg("email address", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				seq, err := svc.FindFilmsRentedBy(ctx, email)
				if err != nil {
					return err
				}
				return printSeq(cmd.OutOrStdout(), fmt.Sprintf("Movies rented by %s:", email), seq, formatFilm)
			})
		}),
	}
}

func NewFindCustomersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "find-customers-by-movie [title]",
		Aliases: []string{"find-customers"},
		Short:   "List the clients who rented a film",
		Args:    cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			title, err := requireArg("film title", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				seq, err := svc.FindClientsWhoRented(ctx, title)
				if err != nil {
					return err
				}
				return printSeq(cmd.OutOrStdout(), fmt.Sprintf("Customers who rented %q:", title), seq, model.ClientName.String)
			})
		}),
	}
}

func NewRentalHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rental-history [title]",
		Short: "Show the dated rental log of a film",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			title, err := requireArg("film title", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				seq, err := svc.RentalHistory(ctx, title)
				if err != nil {
					return err
				}
				return printSeq(cmd.OutOrStdout(), fmt.Sprintf("Rental history for %q:", title), seq, formatRecord)
			})
		}),
	}
}

func NewCurrentlyRentedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currently-rented",
		Short: "List films that have not been returned",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.RentalService) error {
				return printSeq(cmd.OutOrStdout(), "Currently rented movies:", svc.ListOpenRentals(ctx), formatOpenRental)
			})
		}),
	}
}

// parseNewFilm maps the positional arguments of add.  Empty optional
// arguments are stored as NULL.
func parseNewFilm(args []string) (model.NewFilm, error) {
	title, err := requireArg("film title", args[0])
	if err != nil {
		return model.NewFilm{}, err
	}
	nf := model.NewFilm{Title: title}
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		year, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			return nf, fmt.Errorf("%w: release year %q is not a number", service.ErrValidation, args[1])
		}
		nf.ReleaseYear = &year
	}
	if len(args) > 2 && strings.TrimSpace(args[2]) != "" {
		category := strings.TrimSpace(args[2])
		nf.Category = &category
	}
	if len(args) > 3 && strings.TrimSpace(args[3]) != "" {
		director := strings.TrimSpace(args[3])
		nf.DirectorName = &director
	}
	return nf, nil
}

// parseClientID accepts ids that fit the signed 64-bit key column.
func parseClientID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 63)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: client id %q must be a positive integer", service.ErrValidation, s)
	}
	return id, nil
}

// requireArg trims a positional argument and rejects it when blank, so bad
// input is reported before configuration is read or the store is dialled.
func requireArg(name, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s must not be empty", service.ErrValidation, name)
	}
	return s, nil
}
