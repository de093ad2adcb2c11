// tabkit: round-trips nested per-locale translation files through a flat
// delimited table for translators.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/lmittmann/tint"
	"github.com/minios-linux/tabkit/config"
	"github.com/minios-linux/tabkit/csvfile"
	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/finder"
	"github.com/minios-linux/tabkit/format"
	"github.com/minios-linux/tabkit/i18n"
	"github.com/minios-linux/tabkit/jsonfile"
	"github.com/minios-linux/tabkit/langmeta"
	"github.com/minios-linux/tabkit/loader"
	"github.com/minios-linux/tabkit/lockfile"
	"github.com/minios-linux/tabkit/merge"
	"github.com/minios-linux/tabkit/propfile"
	"github.com/minios-linux/tabkit/scope"
	"github.com/minios-linux/tabkit/store"
	"github.com/minios-linux/tabkit/tomlfile"
	"github.com/minios-linux/tabkit/writer"
	"github.com/minios-linux/tabkit/yamlfile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

// ANSI 256-color codes used for tint attributes.
const (
	colorGreen  = 10
	colorYellow = 11
	colorRed    = 9
)

var logger = slog.New(tint.NewHandler(os.Stderr, nil))

// setupLogging installs the console logger. level is one of debug, info,
// warn, error.
func setupLogging(w io.Writer, level string, noColor bool) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	logger = slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
	}))
	return nil
}

func logDebug(format string, args ...any) {
	logger.Debug(fmt.Sprintf(format, args...))
}

func logInfo(format string, args ...any) {
	logger.Info(fmt.Sprintf(format, args...))
}

func logSuccess(format string, args ...any) {
	logger.Info(fmt.Sprintf(format, args...), tint.Attr(colorGreen, slog.String("status", "ok")))
}

func logWarning(format string, args ...any) {
	logger.Warn(fmt.Sprintf(format, args...))
}

func logError(err error) {
	logger.Error(err.Error(), tint.Attr(colorRed, slog.String("kind", errkind.Kind(err))))
}

// ---------------------------------------------------------------------------
// Separator flag
// ---------------------------------------------------------------------------

// separatorValue is a pflag.Value accepting a single character or one of
// the names tab, comma, semicolon, pipe (and the escape \t).
type separatorValue string

var _ pflag.Value = (*separatorValue)(nil)

func (s *separatorValue) String() string {
	if *s == "\t" {
		return "tab"
	}
	return string(*s)
}

func (s *separatorValue) Set(v string) error {
	sep, err := parseSeparator(v)
	if err != nil {
		return err
	}
	*s = separatorValue(sep)
	return nil
}

func (s *separatorValue) Type() string { return "separator" }

func parseSeparator(v string) (string, error) {
	switch strings.ToLower(v) {
	case "tab", `\t`, "\t":
		return "\t", nil
	case "comma":
		return ",", nil
	case "semicolon":
		return ";", nil
	case "pipe":
		return "|", nil
	}
	if utf8.RuneCountInString(v) != 1 || v == "\n" || v == "\r" {
		return "", fmt.Errorf("separator %q must be a single character or one of tab, comma, semicolon, pipe", v)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Shared state
// ---------------------------------------------------------------------------

// app holds what every subcommand needs once the configuration is loaded.
type app struct {
	rootDir   string
	logLevel  string
	separator separatorValue

	cfg      *config.File
	groups   *config.Registry
	resolver *finder.Resolver
	codecs   *format.Registry
}

// setup loads the configuration from rootDir and prepares logging,
// codecs and the group registry.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.rootDir)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	if err := setupLogging(cmd.ErrOrStderr(), level, cfg.NoColor); err != nil {
		return err
	}

	a.cfg = cfg
	a.codecs = format.NewRegistry(yamlfile.Codec{}, tomlfile.Codec{}, jsonfile.Codec{}, propfile.Codec{})
	if _, err := a.codecs.MustGet(cfg.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	a.resolver = finder.NewResolver(cfg.AppRoot, a.codecs.Exts())
	if a.groups, err = cfg.Registry(); err != nil {
		return err
	}

	if !cmd.Flags().Changed("separator") {
		a.separator = "\t"
		if cfg.Separator != "" {
			if err := a.separator.Set(cfg.Separator); err != nil {
				return fmt.Errorf("%s: %w", config.FileName, err)
			}
		}
	}
	logDebug("root %s, app translations %s, groups: %s",
		cfg.Dir(), cfg.AppTranslations, strings.Join(a.groups.Names(), ", "))
	return nil
}

// parseLocales splits a comma-separated locale list, dropping blanks and
// duplicates. Locales that are not valid language tags are kept but
// reported, since resource file names may use any spelling.
func parseLocales(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range strings.Split(s, ",") {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		if !langmeta.Valid(l) {
			logWarning(i18n.T("Locale %q is not a known language tag"), l)
		}
		out = append(out, l)
	}
	return out
}

// without returns list minus every occurrence of s.
func without(list []string, s string) []string {
	var out []string
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// stage reports an interruption between two steps of a run.
func stage(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	a := &app{separator: "\t"}

	root := &cobra.Command{
		Use:   "tabkit",
		Short: i18n.T("Exchange nested translation files through a flat table"),
		Long: `tabkit exports per-locale translation resources of an application and
its groups into one delimited table, and imports the edited table back into
the resource files. Resources are named <domain>.<locale>.<ext> and may be
YAML (yml, yaml), TOML, JSON or .properties files.

Commands:
  export    Write translations of the selected groups to a table
  import    Merge a table back into the resource files
  status    Show groups, resource directories and per-locale key counts
  version   Show version information

Configuration is read from .tabkit.yaml in the project root and from
TABKIT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.rootDir, "root", ".", i18n.T("Project root directory"))
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", i18n.T("Log level: debug, info, warn, error"))

	root.AddCommand(
		newExportCmd(a),
		newImportCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logError(err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errkind.ErrData):
		return 2
	case errors.Is(err, errkind.ErrNotFound):
		return 3
	default:
		return 1
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tabkit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
			fmt.Fprintf(out, "  languages: %s\n", strings.Join(append([]string{"en"}, i18n.Available()...), ", "))
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func newExportCmd(a *app) *cobra.Command {
	var (
		domains     string
		onlyMissing bool
	)

	cmd := &cobra.Command{
		Use:   "export [<locale> <locales> <groups>] <csv>",
		Short: i18n.T("Export translations to a delimited table"),
		Long: `Load the translation files of the selected groups for the reference
locale and the target locales and write them as one table:

  Bundle<sep>Domain<sep>Key<sep><locale><sep><locales...>

<locales> and <groups> are comma-separated; "app" names the application's
own translation directory and "all" selects every known group. With only
<csv> given, the reference locale and locales come from .tabkit.yaml and
every group is exported. The output file is overwritten.`,
		Example: `  tabkit export en fr,de app,AcmeBundle translations.csv
  tabkit export en fr all missing.csv --only-missing --separator semicolon`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 4 {
				return fmt.Errorf("accepts 1 or 4 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := exportArgs{
				domains:     scope.Parse(domains),
				onlyMissing: onlyMissing,
				groups:      scope.Any,
			}
			if len(args) == 4 {
				opts.reference = strings.TrimSpace(args[0])
				opts.locales = parseLocales(args[1])
				opts.groups = scope.Parse(args[2])
				opts.csv = args[3]
			} else {
				opts.reference = a.cfg.ReferenceLocale
				opts.locales = parseLocales(strings.Join(a.cfg.Locales, ","))
				opts.csv = args[0]
			}
			return a.runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&domains, "domains", scope.All, i18n.T("Comma-separated domains to export"))
	cmd.Flags().BoolVar(&onlyMissing, "only-missing", false, i18n.T("Export only keys missing a translation"))
	cmd.Flags().VarP(&a.separator, "separator", "s", i18n.T("Cell separator (tab, comma, semicolon, pipe or one character)"))
	cmd.Flags().Lookup("separator").DefValue = "tab"
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "sep" {
			name = "separator"
		}
		return pflag.NormalizedName(name)
	})

	return cmd
}

type exportArgs struct {
	reference   string
	locales     []string
	groups      scope.Filter
	domains     scope.Filter
	onlyMissing bool
	csv         string
}

func (a *app) runExport(ctx context.Context, opts exportArgs) error {
	if opts.reference == "" {
		return errkind.Data("no reference locale given and none configured (reference_locale)")
	}
	locales := without(opts.locales, opts.reference)
	if len(locales) < len(opts.locales) {
		logWarning(i18n.T("Reference locale %s is already the first locale column"), opts.reference)
	}

	groups, err := a.groups.Select(opts.groups)
	if err != nil {
		return err
	}
	logDebug("export groups %s, domains %s", opts.groups, opts.domains)

	st := store.New()
	ld := loader.New(a.resolver, a.codecs)
	files, err := ld.LoadAll(st, groups, opts.domains, append([]string{opts.reference}, locales...))
	if err != nil {
		return err
	}
	logInfo(i18n.T("Loaded %d files from %d groups"), files, len(groups))
	if err := stage(ctx); err != nil {
		return err
	}

	stats, err := csvfile.WriteFile(opts.csv, st, csvfile.EncodeOptions{
		Reference:   opts.reference,
		Locales:     locales,
		Delimiter:   string(a.separator),
		OnlyMissing: opts.onlyMissing,
	})
	if err != nil {
		return err
	}

	logSuccess(i18n.T("Saved %d of %d keys to %s"), stats.Written, stats.Rows, opts.csv)
	if stats.Missing > 0 {
		logInfo(i18n.T("%d keys miss at least one translation"), stats.Missing)
	}

	if a.cfg.NoLock {
		return nil
	}
	lf, err := lockfile.Load(a.cfg.Dir())
	if err != nil {
		return err
	}
	lf.Record(st, opts.reference)
	if err := lf.Save(); err != nil {
		return err
	}
	targets, keys := lf.Stats()
	logDebug("recorded %d keys of %d domains in %s", keys, targets, lf.Path())
	return nil
}

// ---------------------------------------------------------------------------
// import
// ---------------------------------------------------------------------------

func newImportCmd(a *app) *cobra.Command {
	var (
		domains string
		groups  string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "import [<locales>] <csv>",
		Short: i18n.T("Import a delimited table into translation files"),
		Long: `Read the given locale columns of a table, merge them over the current
translation files of every group named in the table, and rewrite the
<domain>.<locale> files with keys sorted. Table values win over existing
ones; keys absent from the table are kept. Each rewritten file whose
content changed is reported as updated.

With only <csv> given, the locales come from .tabkit.yaml.`,
		Example: `  tabkit import fr,de translations.csv
  tabkit import fr translations.csv --groups AcmeBundle --dry-run`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := importArgs{
				domains: scope.Parse(domains),
				groups:  scope.Parse(groups),
				dryRun:  dryRun,
			}
			if len(args) == 2 {
				opts.locales = parseLocales(args[0])
				opts.csv = args[1]
			} else {
				opts.locales = parseLocales(strings.Join(a.cfg.Locales, ","))
				opts.csv = args[0]
			}
			return a.runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&domains, "domains", scope.All, i18n.T("Comma-separated domains to import"))
	cmd.Flags().StringVar(&groups, "groups", scope.All, i18n.T("Comma-separated groups to import"))
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, i18n.T("Report changes without writing files"))
	cmd.Flags().VarP(&a.separator, "separator", "s", i18n.T("Cell separator (tab, comma, semicolon, pipe or one character)"))
	cmd.Flags().Lookup("separator").DefValue = "tab"
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "sep":
			name = "separator"
		case "bundles":
			name = "groups"
		}
		return pflag.NormalizedName(name)
	})

	return cmd
}

type importArgs struct {
	locales []string
	groups  scope.Filter
	domains scope.Filter
	dryRun  bool
	csv     string
}

func (a *app) runImport(ctx context.Context, opts importArgs) error {
	if len(opts.locales) == 0 {
		return errkind.Data("no locales given and none configured (locales)")
	}

	imported, err := csvfile.ReadFile(opts.csv, csvfile.DecodeOptions{
		Delimiter: string(a.separator),
		Groups:    opts.groups,
		Domains:   opts.domains,
		Locales:   opts.locales,
	})
	if err != nil {
		return err
	}
	logInfo(i18n.T("Read %d values from %s"), imported.Len(), opts.csv)
	if err := stage(ctx); err != nil {
		return err
	}

	logDebug("import groups %s, domains %s", opts.groups, opts.domains)

	// Resolve every group named in the table before touching any file.
	var selected []finder.Group
	for _, name := range imported.GroupNames() {
		g, err := a.groups.Lookup(name)
		if err != nil {
			return err
		}
		selected = append(selected, g)
	}

	ld := loader.New(a.resolver, a.codecs)
	if err := a.checkStale(ld, imported, selected, opts.domains); err != nil {
		return err
	}

	current := store.New()
	files, err := ld.LoadAll(current, selected, opts.domains, opts.locales)
	if err != nil {
		return err
	}
	logDebug("loaded %d existing files", files)
	if err := stage(ctx); err != nil {
		return err
	}

	merged, report := merge.Merge(current, imported)
	logInfo(i18n.T("%d added, %d changed, %d unchanged, %d kept"),
		report.Added, report.Updated, report.Unchanged, report.Kept)
	if !report.Changed() {
		logInfo(i18n.T("The table brings no new translations"))
	}
	if err := stage(ctx); err != nil {
		return err
	}

	w := writer.New(a.resolver, a.codecs, a.cfg.Format)
	w.DryRun = opts.dryRun
	results, err := w.Write(merged, a.groups.Map(), opts.locales)
	if err != nil {
		return err
	}

	changed := 0
	for _, r := range results {
		if !r.Changed {
			continue
		}
		changed++
		if opts.dryRun {
			logger.Info(fmt.Sprintf(i18n.T("%s would be updated"), r.Path),
				tint.Attr(colorYellow, slog.Int("entries", r.Entries)))
		} else {
			logger.Info(fmt.Sprintf(i18n.T("%s updated"), r.Path),
				tint.Attr(colorGreen, slog.Int("entries", r.Entries)))
		}
	}

	if changed == 0 {
		logSuccess(i18n.T("All %d files are up to date"), len(results))
	} else if opts.dryRun {
		logSuccess(i18n.T("Dry run: %d of %d files would change"), changed, len(results))
	} else {
		logSuccess(i18n.T("Updated %d of %d files"), changed, len(results))
	}
	return nil
}

// checkStale warns about imported keys whose reference text changed after
// the table was exported, as recorded in .tabkit.lock.
func (a *app) checkStale(ld *loader.Loader, imported *store.Store, groups []finder.Group, domains scope.Filter) error {
	if a.cfg.NoLock {
		return nil
	}
	lf, err := lockfile.Load(a.cfg.Dir())
	if err != nil {
		return err
	}
	if lf.Reference == "" {
		return nil
	}

	ref := store.New()
	if _, err := ld.LoadAll(ref, groups, domains, []string{lf.Reference}); err != nil {
		return err
	}

	stale := 0
	for _, g := range imported.Groups() {
		for _, d := range g.Domains() {
			current := make(map[string]string, len(d.Keys()))
			for _, key := range d.Keys() {
				current[key], _ = ref.Value(g.Name, d.Name, key, lf.Reference)
			}
			for _, key := range lf.Stale(lockfile.Target(g.Name, d.Name), current) {
				logWarning(i18n.T("%s/%s/%s: %s text changed since export"), g.Name, d.Name, key, lf.Reference)
				stale++
			}
		}
	}
	if stale > 0 {
		logWarning(i18n.N("%d translation may be outdated", "%d translations may be outdated", stale), stale)
	}
	return nil
}

// ---------------------------------------------------------------------------
// status (read-only: groups + per-locale key counts)
// ---------------------------------------------------------------------------

func newStatusCmd(a *app) *cobra.Command {
	var (
		locales string
		groups  string
		domains string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show groups and translation statistics"),
		Long: `List the known groups with their resource directory and, per locale,
the number of translated keys and the number of keys found in other
locales but missing in this one. Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := a.groups.Select(scope.Parse(groups))
			if err != nil {
				return err
			}
			var list []string
			switch {
			case locales != "":
				list = parseLocales(locales)
			case len(a.cfg.Locales) > 0:
				list = a.cfg.Locales
				if ref := a.cfg.ReferenceLocale; ref != "" {
					list = append([]string{ref}, without(list, ref)...)
				}
			default:
				if list, err = config.DetectLocales(a.resolver, sel); err != nil {
					return err
				}
			}
			return a.runStatus(cmd.OutOrStdout(), sel, scope.Parse(domains), list)
		},
	}

	cmd.Flags().StringVar(&locales, "locales", "", i18n.T("Comma-separated locales (default: configured or detected)"))
	cmd.Flags().StringVar(&groups, "groups", scope.All, i18n.T("Comma-separated groups"))
	cmd.Flags().StringVar(&domains, "domains", scope.All, i18n.T("Comma-separated domains"))

	return cmd
}

func (a *app) runStatus(out io.Writer, groups []finder.Group, domains scope.Filter, locales []string) error {
	fmt.Fprintf(out, "%s %s\n", i18n.T("Root:"), a.cfg.Dir())
	fmt.Fprintf(out, "%s %s\n", i18n.T("Format:"), a.cfg.Format)
	if len(locales) == 0 {
		fmt.Fprintln(out, i18n.T("No locales configured or detected."))
	}
	if !a.cfg.NoLock {
		lf, err := lockfile.Load(a.cfg.Dir())
		if err != nil {
			return err
		}
		if lf.Reference != "" {
			_, keys := lf.Stats()
			fmt.Fprintf(out, "%s %s, %s\n", i18n.T("Last export:"), lf.Reference,
				fmt.Sprintf(i18n.N("%d key", "%d keys", keys), keys))
			for _, target := range lf.Targets() {
				fmt.Fprintf(out, "  %s\n", target)
			}
		}
	}

	ld := loader.New(a.resolver, a.codecs)
	for _, g := range groups {
		st := store.New()
		if _, err := ld.Load(st, g, domains, locales); err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s  %s\n", g.Name, a.resolver.Dir(g.Location))
		fmt.Fprintln(out, strings.Repeat("─", 52))

		sg, ok := st.Group(g.Name)
		if !ok {
			fmt.Fprintf(out, "  %s\n", i18n.T("no translation files"))
			continue
		}
		for _, d := range sg.Domains() {
			total := len(d.Keys())
			fmt.Fprintf(out, "  %s (%s)\n", d.Name, fmt.Sprintf(i18n.N("%d key", "%d keys", total), total))
			for _, l := range locales {
				n := d.Count(l)
				fmt.Fprintf(out, "    %-10s %-24s %6d  %s\n", l, langmeta.Name(l), n,
					fmt.Sprintf(i18n.T("%d missing"), total-n))
			}
		}
	}
	return nil
}
