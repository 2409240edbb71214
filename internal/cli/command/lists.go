package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/lingvo-go/internal/cli/output"
	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/core/query"
	"github.com/yndnr/lingvo-go/internal/core/service"
)

const timeLayout = "2006-01-02 15:04"

type listController = service.ListController[domain.Translation]

// listSource picks a controller out of the runtime.
type listSource func(rt *Runtime) *listController

// TranslationsCommand browses the caller's own translations.
func TranslationsCommand() *cli.Command {
	src := func(rt *Runtime) *listController { return rt.translations }
	return &cli.Command{
		Name:    "translations",
		Aliases: []string{"tr"},
		Usage:   "Browse your translations",
		Subcommands: append(listSubcommands(query.MyTranslations, src), &cli.Command{
			Name:      "get",
			Usage:     "Show one translation",
			ArgsUsage: "ID",
			Action:    translationGet,
		}),
	}
}

// StatsCommand browses every translation with the daily aggregate.
func StatsCommand() *cli.Command {
	src := func(rt *Runtime) *listController { return rt.stats }
	return &cli.Command{
		Name:        "stats",
		Usage:       "Service statistics (admin only)",
		Flags:       listFlags(query.Stats),
		Action:      listAction(query.Stats, src),
		Subcommands: listSubcommands(query.Stats, src),
	}
}

// listSubcommands builds list, filter and sort for a view. In the shell
// the controller persists, so filters staged by "filter" are applied by
// the next "list".
func listSubcommands(view query.View, src listSource) []*cli.Command {
	return []*cli.Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Usage:   "Apply staged filters and fetch",
			Flags:   listFlags(view),
			Action:  listAction(view, src),
		},
		{
			Name:      "filter",
			Usage:     "Stage a filter without fetching; no arguments shows staged and applied filters",
			ArgsUsage: "[KEY VALUE]",
			Action:    filterAction(view, src),
		},
		{
			Name:      "sort",
			Usage:     "Sort by FIELD, toggling the direction when it is already active",
			ArgsUsage: "FIELD",
			Action:    sortAction(view, src),
		},
	}
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func listFlags(view query.View) []cli.Flag {
	flags := make([]cli.Flag, 0, len(view.Filters)+2)
	for _, f := range view.Filters {
		flags = append(flags, &cli.StringFlag{Name: flagName(f.Key), Usage: f.Label})
	}
	return append(flags,
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort field: " + strings.Join(view.SortFields, ", "),
		},
		&cli.BoolFlag{
			Name:  "clear",
			Usage: "Clear all filters first",
		},
	)
}

func listAction(view query.View, src listSource) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := mustRuntime(c)
		if err != nil {
			return err
		}
		ctl := src(rt)

		// Local criteria errors are reported before touching the network.
		err = ctl.Stage(func(spec *query.Spec) error {
			if c.Bool("clear") {
				for _, key := range view.FilterKeys() {
					if err := spec.SetFilter(key, ""); err != nil {
						return err
					}
				}
			}
			for _, key := range view.FilterKeys() {
				if name := flagName(key); c.IsSet(name) {
					if err := spec.SetFilter(key, c.String(name)); err != nil {
						return err
					}
				}
			}
			spec.Apply()
			if c.IsSet("sort") {
				return spec.SetSort(c.String("sort"))
			}
			return nil
		})
		if err != nil {
			return err
		}

		if _, err := rt.require(c.Context, view.Capability); err != nil {
			return err
		}
		res, err := ctl.Refetch(c.Context)
		if err != nil {
			return rt.check(c.Context, err)
		}
		return rt.render(newListView(view, ctl, res))
	}
}

func filterAction(view query.View, src listSource) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := mustRuntime(c)
		if err != nil {
			return err
		}
		ctl := src(rt)

		switch c.NArg() {
		case 0:
		case 1, 2:
			if err := ctl.SetFilter(c.Args().Get(0), c.Args().Get(1)); err != nil {
				return err
			}
		default:
			return domain.ErrMissingArgument.WithMessage("usage: filter [KEY VALUE]")
		}

		staged, applied := ctl.Staged(), ctl.Applied()
		t := &output.Table{Headers: []string{"FILTER", "STAGED", "APPLIED"}}
		for _, f := range view.Filters {
			t.AddRow(f.Key, staged[f.Key], applied[f.Key])
		}
		return rt.render(tableValue{table: t, value: map[string]query.Filters{"staged": staged, "applied": applied}})
	}
}

func sortAction(view query.View, src listSource) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := mustRuntime(c)
		if err != nil {
			return err
		}
		if c.NArg() != 1 {
			return domain.ErrMissingArgument.WithMessage("usage: sort FIELD (" + strings.Join(view.SortFields, ", ") + ")")
		}
		field := c.Args().First()
		if !view.Sortable(field) {
			return domain.ErrUnknownSortField.WithMessage("cannot sort by " + field)
		}
		if _, err := rt.require(c.Context, view.Capability); err != nil {
			return err
		}

		ctl := src(rt)
		res, err := ctl.SetSort(c.Context, field)
		if err != nil {
			return rt.check(c.Context, err)
		}
		return rt.render(newListView(view, ctl, res))
	}
}

// listView renders one list result.
type listView struct {
	view    query.View
	sort    query.Sort
	applied query.Filters
	items   []domain.Translation
	summary *domain.DailyStats
}

func newListView(view query.View, ctl *listController, res service.Result[domain.Translation]) listView {
	v := listView{
		view:    view,
		sort:    ctl.Sort(),
		applied: ctl.Applied().Active(),
		items:   res.Items,
	}
	if s, ok := res.Summary.(domain.DailyStats); ok {
		v.summary = &s
	}
	return v
}

func (v listView) Value() any {
	if v.summary != nil {
		return domain.StatsReport{DailyStats: *v.summary, Translations: v.items}
	}
	if v.items == nil {
		return []domain.Translation{}
	}
	return v.items
}

func (v listView) Table() *output.Table {
	withUser := v.view.Name == query.Stats.Name
	t := &output.Table{}
	if withUser {
		t.SetHeaders("ID", "CREATED", "USER", "FROM", "TO", "AMOUNT", "TEXT", "TRANSLATION")
	} else {
		t.SetHeaders("ID", "CREATED", "FROM", "TO", "AMOUNT", "TEXT", "TRANSLATION")
	}

	for _, tr := range v.items {
		row := []string{strconv.FormatInt(tr.ID, 10), tr.CreatedAt.Local().Format(timeLayout)}
		if withUser {
			row = append(row, tr.User.Username)
		}
		row = append(row,
			tr.SourceLang,
			tr.TargetLang,
			paymentAmount(tr.Payment),
			output.Truncate(tr.SourceText, 32),
			output.Truncate(tr.TranslatedText, 32),
		)
		t.AddRow(row...)
	}

	footer := fmt.Sprintf("%d translation(s), sorted by %s %s", len(v.items), v.sort.Field, v.sort.Direction)
	if len(v.applied) > 0 {
		keys := make([]string, 0, len(v.applied))
		for k := range v.applied {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + v.applied[k]
		}
		footer += ", filtered by " + strings.Join(pairs, " ")
	}
	t.Footer = []string{footer}

	if s := v.summary; s != nil {
		t.Footer = append(t.Footer,
			fmt.Sprintf("Daily stats for %s: %d translation(s), revenue %s UAH, average check %s UAH",
				s.Date, s.TotalTranslations, s.TotalRevenue, s.AverageCheck),
			fmt.Sprintf("Users: %d total, %d with translations", s.TotalUsers, s.UsersWithTranslations),
		)
	}
	return t
}

func paymentAmount(ref domain.PaymentRef) string {
	if !ref.Loaded() {
		return ""
	}
	return ref.Record.Amount.String()
}

// tableValue pairs a prepared table with the value JSON and YAML print.
type tableValue struct {
	table *output.Table
	value any
}

func (t tableValue) Table() *output.Table { return t.table }
func (t tableValue) Value() any           { return t.value }

func translationGet(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}
	if _, err := rt.require(c.Context, domain.CapabilityNone); err != nil {
		return err
	}

	tr, err := rt.detail.Translation(c.Context, id)
	if err != nil {
		return rt.check(c.Context, err)
	}

	pairs := []string{
		"id", strconv.FormatInt(tr.ID, 10),
		"user", tr.User.Username,
		"created", tr.CreatedAt.Local().Format(timeLayout),
		"languages", tr.SourceLang + " -> " + tr.TargetLang,
	}
	switch {
	case tr.Payment.Loaded():
		p := tr.Payment.Record
		pairs = append(pairs,
			"payment", fmt.Sprintf("#%d %s UAH (%s)", p.ID, p.Amount, p.Status))
	case tr.Payment.ID != 0:
		pairs = append(pairs, "payment", fmt.Sprintf("#%d", tr.Payment.ID))
	}
	pairs = append(pairs, "source text", tr.SourceText, "translation", tr.TranslatedText)
	return rt.render(tableValue{table: output.KeyValue(pairs...), value: tr})
}

func parseID(arg string) (int64, error) {
	if arg == "" {
		return 0, domain.ErrMissingArgument.WithMessage("an ID argument is required")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrMissingArgument.WithMessage("ID must be a positive integer: " + arg)
	}
	return id, nil
}
