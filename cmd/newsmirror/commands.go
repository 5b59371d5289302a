package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"NewsMirror/internal/app"
	"NewsMirror/internal/config"
	"NewsMirror/internal/discovery"
	"NewsMirror/internal/domain"
	"NewsMirror/internal/infrastructure/parser"
	"NewsMirror/internal/logging"
	"NewsMirror/internal/repository"
	"NewsMirror/internal/usecase"
)

type globalOptions struct {
	configPath string
	verbose    bool
}

func rootCMD() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "newsmirror",
		Short:         "Mirror the Heroes of the Storm news feed into a local cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default $NEWSMIRROR_CONFIG)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		syncCMD(opts),
		serveCMD(opts),
		latestCMD(opts),
		listCMD(opts),
		showCMD(opts),
	)
	return root
}

func buildApp(opts *globalOptions) (*app.Application, config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, config.Config{}, err
	}

	logger := logging.New(logging.Level(cfg.Logging.Level, opts.verbose))
	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return application, cfg, nil
}

func syncCMD(opts *globalOptions) *cobra.Command {
	var (
		months int
		from   string
		to     string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new and updated articles into the local mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cfg, err := buildApp(opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("months") {
				months = cfg.Sync.LookbackMonths
			}

			// an invalid window fails here, before any request is made
			window, err := discovery.ComputeWindow(months, from, to, time.Now())
			if err != nil {
				return err
			}

			stats, err := application.Sync(cmd.Context(), usecase.RunOptions{Limit: limit, Window: &window})
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().IntVar(&months, "months", 3, "lookback window in months")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")
	cmd.Flags().IntVar(&limit, "limit", 0, "max number of candidate articles (0 = no limit)")
	return cmd
}

func serveCMD(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily sync scheduler and the HTTP read API",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := buildApp(opts)
			if err != nil {
				return err
			}
			return application.Serve(cmd.Context())
		},
	}
}

func latestCMD(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the latest local article",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := buildApp(opts)
			if err != nil {
				return err
			}
			repo := application.Repository()
			out := cmd.OutOrStdout()

			entry, err := repo.LatestEntry()
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Fprintln(out, "No local news yet. Run `newsmirror sync` or wait for the daily sync.")
				return nil
			}

			record, err := repo.GetByID(entry.ID)
			if err != nil {
				return err
			}
			if record == nil {
				fmt.Fprintln(out, "Latest article metadata exists, but local article content is missing.")
				return nil
			}
			printArticle(out, *record)
			return nil
		},
	}
}

func listCMD(opts *globalOptions) *cobra.Command {
	var (
		year     int
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse local articles newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var yearFilter *int
			if cmd.Flags().Changed("year") {
				if year < 2000 || year > 2100 {
					return fmt.Errorf("year must be between 2000 and 2100")
				}
				yearFilter = &year
			}

			if pageSize <= 0 {
				return repository.ErrInvalidPageSize
			}

			application, _, err := buildApp(opts)
			if err != nil {
				return err
			}

			all, err := application.Repository().Filter(yearFilter)
			if err != nil {
				return err
			}
			totalPages, err := repository.TotalPages(len(all), pageSize)
			if err != nil {
				return err
			}
			page = min(max(page, 1), totalPages)
			entries, err := repository.PageSlice(all, page, pageSize)
			if err != nil {
				return err
			}

			printList(cmd.OutOrStdout(), entries, page, totalPages, yearFilter)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "only articles from this year")
	cmd.Flags().IntVar(&page, "page", 1, "page number, 1-based")
	cmd.Flags().IntVar(&pageSize, "page-size", 5, "articles per page")
	return cmd
}

func showCMD(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one local article by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := buildApp(opts)
			if err != nil {
				return err
			}

			record, err := application.Repository().GetByID(args[0])
			if err != nil {
				return err
			}
			if record == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Article %s not found in the local mirror.\n", args[0])
				return nil
			}
			printArticle(cmd.OutOrStdout(), *record)
			return nil
		},
	}
}

func printStats(w io.Writer, stats domain.SyncStats) error {
	encoded, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

func printList(w io.Writer, entries []domain.IndexEntry, page, totalPages int, year *int) {
	title := "HOTS News"
	if year != nil {
		title = fmt.Sprintf("HOTS News (%d)", *year)
	}
	fmt.Fprintln(w, title)

	if len(entries) == 0 {
		fmt.Fprintln(w, "No local articles match this query.")
	}
	for i, entry := range entries {
		fmt.Fprintf(w, "%d. %s (%s) [%s]\n", i+1, entry.Title, usecase.DateLabel(entry.Timestamp), entry.ID)
	}
	fmt.Fprintf(w, "Page %d/%d\n", page, totalPages)
}

func printArticle(w io.Writer, record domain.ArticleRecord) {
	fmt.Fprintln(w, usecase.ArticleMessage(record))
	if body := parser.PlainText(record.Body); body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, body)
	}
}
