package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/app"
	"github.com/ravi-m-fleetenable/global-search/internal/config"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
)

type queryOptions struct {
	searchType string
	page       int
	limit      int
	facets     bool
	empty      bool
	noHL       bool
	status     []string
	from, to   string
	role       string
	userID     string
	driverID   string
}

func newQueryCmd(opts *globalOptions) *cobra.Command {
	qo := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run one federated search and print the result envelope as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := qo.caller()
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(ctx context.Context, cfg config.Config, a *app.App, _ *zap.Logger) error {
				req, err := qo.request(strings.Join(args, " "), cfg)
				if err != nil {
					return err
				}

				ctx, cancel := context.WithTimeout(ctx, cfg.Search.Timeout())
				defer cancel()

				env, err := a.Search.Search(ctx, c, &req)
				if err != nil {
					return err //nolint:wrapcheck // domain error, printed as is
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(env) //nolint:wrapcheck // terminal output
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&qo.searchType, "type", "t", request.SearchTypeAll, "Collection to search, or all")
	f.IntVar(&qo.page, "page", 1, "Page number")
	f.IntVarP(&qo.limit, "limit", "n", 0, "Results per collection (default: search.default_page_size)")
	f.BoolVar(&qo.facets, "facets", false, "Include facet counts")
	f.BoolVar(&qo.empty, "include-empty", false, "Include collections without matches")
	f.BoolVar(&qo.noHL, "no-highlights", false, "Skip highlight snippets")
	f.StringSliceVar(&qo.status, "status", nil, "Status filter (repeatable)")
	f.StringVar(&qo.from, "from", "", "created_at lower bound (any common date format)")
	f.StringVar(&qo.to, "to", "", "created_at upper bound (any common date format)")
	f.StringVar(&qo.role, "role", string(role.Admin), "Caller role")
	f.StringVar(&qo.userID, "user", "cli", "Caller user id")
	f.StringVar(&qo.driverID, "driver-id", "", "Linked driver id (driver role)")

	return cmd
}

func (qo *queryOptions) caller() (caller.Context, error) {
	r, err := role.Parse(qo.role)
	if err != nil {
		return caller.Context{}, fmt.Errorf("--role: %w", err)
	}
	return caller.New(qo.userID, r, qo.driverID), nil
}

func (qo *queryOptions) request(text string, cfg config.Config) (request.Search, error) {
	dr, err := request.ParseDateRange(qo.from, qo.to)
	if err != nil {
		return request.Search{}, err //nolint:wrapcheck // domain error
	}
	return request.New( //nolint:wrapcheck // domain error
		text, qo.searchType, qo.page, qo.limit,
		request.Options{IncludeHighlights: !qo.noHL, IncludeFacets: qo.facets, IncludeEmpty: qo.empty},
		request.Filters{Status: qo.status, DateRange: dr},
		nil,
		app.Limits(cfg.Search),
	)
}
