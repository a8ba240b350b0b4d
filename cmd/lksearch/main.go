// Command lksearch searches the MAST archive for Kepler, K2, and TESS data
// products, downloads them into the local cache, and manages the cache and
// configuration.
//
// Examples:
//
//	lksearch -mission tess -target "pi Mensae" -sector 1 -timeseries -download
//	lksearch -cache-list
//	lksearch -cache-clear -yes
//	lksearch -write-config
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/lightkurve/lksearch"
	"github.com/lightkurve/lksearch/catalogs"
	"github.com/lightkurve/lksearch/config"
	"github.com/lightkurve/lksearch/internal/flagx"
	"github.com/lightkurve/lksearch/internal/logging"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "lksearch:", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	mission    string
	target     string
	sector     int
	quarter    int
	campaign   int
	exptime    string
	pipeline   string
	radius     float64
	limit      int
	cube       bool
	timeseries bool
	download   bool

	cloudOnly     bool
	preferCloud   bool
	downloadCloud bool

	cacheList   bool
	cacheClear  bool
	yes         bool
	writeConfig bool
	overwrite   bool
	showCats    bool
	verbose     bool

	set map[string]bool
}

func run(ctx context.Context) error {
	// The config directory flag is resolved ahead of everything else so the
	// settings file can steer the remaining defaults.
	configDir := flagx.ConfigDirFlag()

	var f cliFlags
	fs := flag.NewFlagSet("lksearch", flag.ExitOnError)
	fs.String("c", "", "path to configuration directory (short)")
	fs.String("config", "", "path to configuration directory")
	fs.StringVar(&f.mission, "mission", "all", "mission to search: tess, kepler, k2, or all")
	fs.StringVar(&f.target, "target", "", `target name or "ra, dec" in decimal degrees`)
	fs.IntVar(&f.sector, "sector", 0, "TESS sector")
	fs.IntVar(&f.quarter, "quarter", 0, "Kepler quarter")
	fs.IntVar(&f.campaign, "campaign", 0, "K2 campaign")
	fs.StringVar(&f.exptime, "exptime", "", "cadence filter: fast, short, long, any, or seconds")
	fs.StringVar(&f.pipeline, "pipeline", "", "processing pipeline (SPOC, QLP, Kepler, ...)")
	fs.Float64Var(&f.radius, "radius", 0, "search radius in arcseconds")
	fs.IntVar(&f.limit, "limit", 0, "maximum number of products")
	fs.BoolVar(&f.cube, "cube", false, "narrow to target pixel / cube products")
	fs.BoolVar(&f.timeseries, "timeseries", false, "narrow to light-curve products")
	fs.BoolVar(&f.download, "download", false, "download the matched products")
	fs.BoolVar(&f.cloudOnly, "cloud-only", false, "override CLOUD_ONLY for this run")
	fs.BoolVar(&f.preferCloud, "prefer-cloud", true, "override PREFER_CLOUD for this run")
	fs.BoolVar(&f.downloadCloud, "download-cloud", true, "override DOWNLOAD_CLOUD for this run")
	fs.BoolVar(&f.cacheList, "cache-list", false, "list cache subdirectories and exit")
	fs.BoolVar(&f.cacheClear, "cache-clear", false, "remove cache subdirectories")
	fs.BoolVar(&f.yes, "yes", false, "skip the cache-clear confirmation prompt")
	fs.BoolVar(&f.writeConfig, "write-config", false, "persist current settings to the config file")
	fs.BoolVar(&f.overwrite, "overwrite", false, "allow -write-config to replace an existing file")
	fs.BoolVar(&f.showCats, "catalogs", false, "list the crossmatch catalog table and exit")
	fs.BoolVar(&f.verbose, "v", false, "verbose logging")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	f.set = map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	log := logging.NewSlogLogger(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	settings, err := config.LoadFrom(configDir)
	if err != nil {
		return err
	}
	// Per-run flag overrides only apply when explicitly set.
	overrides := map[string]any{}
	if f.set["cloud-only"] {
		overrides["CLOUD_ONLY"] = f.cloudOnly
	}
	if f.set["prefer-cloud"] {
		overrides["PREFER_CLOUD"] = f.preferCloud
	}
	if f.set["download-cloud"] {
		overrides["DOWNLOAD_CLOUD"] = f.downloadCloud
	}
	if len(overrides) > 0 {
		if settings, err = settings.WithOverrides(overrides); err != nil {
			return err
		}
	}

	switch {
	case f.showCats:
		return printCatalogs(os.Stdout)
	case f.writeConfig:
		path, err := settings.CreateConfigFile(f.overwrite)
		if err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	case f.cacheList:
		return listCache(os.Stdout, settings)
	case f.cacheClear:
		return clearCache(os.Stdout, settings, f.yes)
	case f.target != "":
		return search(ctx, os.Stdout, settings, log, f)
	default:
		fs.Usage()
		return fmt.Errorf("nothing to do: pass -target, -cache-list, -cache-clear, -catalogs, or -write-config")
	}
}

func search(ctx context.Context, out *os.File, settings *config.Settings, log logging.Logger, f cliFlags) error {
	client, err := lksearch.NewClient(
		lksearch.WithSettings(settings),
		lksearch.WithLogger(log),
	)
	if err != nil {
		return err
	}

	var opts []lksearch.SearchOption
	if f.sector > 0 {
		opts = append(opts, lksearch.WithSector(f.sector))
	}
	if f.quarter > 0 {
		opts = append(opts, lksearch.WithQuarter(f.quarter))
	}
	if f.campaign > 0 {
		opts = append(opts, lksearch.WithCampaign(f.campaign))
	}
	if f.exptime != "" {
		opts = append(opts, lksearch.WithExpTime(f.exptime))
	}
	if f.pipeline != "" {
		opts = append(opts, lksearch.WithPipeline(f.pipeline))
	}
	if f.radius > 0 {
		opts = append(opts, lksearch.WithRadius(f.radius))
	}

	var sr *lksearch.SearchResult
	switch strings.ToLower(f.mission) {
	case "tess":
		sr, err = client.TESSSearch(ctx, f.target, opts...)
	case "kepler":
		sr, err = client.KeplerSearch(ctx, f.target, opts...)
	case "k2":
		sr, err = client.K2Search(ctx, f.target, opts...)
	case "", "all":
		sr, err = client.MASTSearch(ctx, f.target, opts...)
	default:
		return fmt.Errorf("unknown mission %q", f.mission)
	}
	if err != nil {
		return err
	}

	if f.cube {
		sr = sr.Cubedata()
	}
	if f.timeseries {
		sr = sr.Timeseries()
	}
	if f.limit > 0 {
		sr = sr.FilterTable(f.limit)
	}

	if !f.download {
		fmt.Fprint(out, sr)
		return nil
	}

	manifest, err := sr.Download(ctx)
	if err != nil {
		return err
	}
	printManifest(out, manifest)
	return nil
}

func printManifest(out *os.File, m lksearch.Manifest) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tLOCAL PATH\tMESSAGE")
	for _, row := range m {
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.Status, row.LocalPath, row.Message)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "%d complete, %d errors\n", m.Completed(), m.Errored())
}

func printCatalogs(out *os.File) error {
	names, err := catalogs.Names()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATALOG\tDEFAULT MAG\tCROSSMATCH")
	for _, name := range names {
		c, err := catalogs.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			name, c.Catalog, c.DefaultMag, strings.Join(c.CrossmatchCatalogs, ","))
	}
	return w.Flush()
}

func listCache(out *os.File, settings *config.Settings) error {
	dirs, err := settings.ClearCache(true)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		fmt.Fprintln(out, "cache is empty")
		return nil
	}
	for _, d := range dirs {
		fmt.Fprintln(out, d)
	}
	return nil
}

func clearCache(out *os.File, settings *config.Settings, yes bool) error {
	dirs, err := settings.ClearCache(true)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		fmt.Fprintln(out, "cache is empty")
		return nil
	}

	fmt.Fprintln(out, "will remove:")
	for _, d := range dirs {
		fmt.Fprintln(out, " ", d)
	}

	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to clear the cache without -yes on a non-interactive stdin")
		}
		fmt.Fprint(out, "proceed? [y/N] ")
		answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(out, "aborted")
			return nil
		}
	}

	removed, err := settings.ClearCache(false)
	for _, d := range removed {
		fmt.Fprintln(out, "removed", d)
	}
	return err
}
