// Command fmtcheck parses a track format and prints how it was understood:
// the canonical text, its levels and the fields it reads. With -render it
// also renders the format against tracks from the catalog.
//
//	fmtcheck -dialect percent '%artist%|%album%|%title%'
//	fmtcheck -render -search 'post' ':a>:l>[:n. ]:t'
//	fmtcheck -functions
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/config"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/titleformat"
)

func main() {
	log.SetFlags(0)

	dialectName := flag.String("dialect", "", "format dialect: colon or percent (default: from config)")
	render := flag.Bool("render", false, "render the format against catalog tracks")
	dbPath := flag.String("db", "", "catalog database (default: from config)")
	search := flag.String("search", "", "only render tracks matching this text")
	limit := flag.Int("n", 20, "maximum number of tracks to render")
	functions := flag.Bool("functions", false, "list the built-in functions and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] FORMAT\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *functions {
		listFunctions(titleformat.Builtins())
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	text := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dialectName != "" {
		cfg.Dialect = *dialectName
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}
	dialect, err := cfg.GetDialect()
	if err != nil {
		log.Fatalf("Invalid dialect: %v", err)
	}

	f, err := titleformat.NewParser(nil, titleformat.WithDialect(dialect)).Parse(text)
	if err != nil {
		reportParseError(text, err)
		os.Exit(1)
	}

	fmt.Printf("dialect:   %s\n", dialect)
	fmt.Printf("canonical: %s\n", f)
	for i, l := range f.Levels {
		fmt.Printf("level %d:   %s\n", i+1, titleformat.Print(l, dialect))
	}
	fmt.Printf("fields:    %s\n", strings.Join(f.Fields(), ", "))

	if !*render {
		return
	}
	if err := renderTracks(cfg, f, *search, *limit); err != nil {
		log.Fatalf("Failed to render tracks: %v", err)
	}
}

// listFunctions prints the functions of reg, marking the ones that only
// evaluate the arguments they need.
func listFunctions(reg *titleformat.Registry) {
	for _, name := range reg.Names() {
		fn, _ := reg.Lookup(name)
		if fn.Policy == titleformat.Lazy {
			fmt.Printf("$%s (lazy)\n", name)
			continue
		}
		fmt.Printf("$%s\n", name)
	}
}

// reportParseError prints err with a caret under the offending line.
func reportParseError(text string, err error) {
	log.Print(errmsg.Format(errmsg.OpFormatParse, err))
	var pe *titleformat.ParseError
	if !errors.As(err, &pe) {
		return
	}
	lines := strings.Split(text, "\n")
	line := lines[min(pe.Line, len(lines))-1]
	log.Printf("  %s", line)
	log.Printf("  %s^", strings.Repeat(" ", max(pe.Col-1, 0)))
}

func renderTracks(cfg *config.Config, f *titleformat.Format, search string, limit int) error {
	path, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	cat, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx := context.Background()
	var coll catalog.Collection = catalog.Universe{}
	if search != "" {
		coll = catalog.Search{Text: search}
	}
	ids, err := cat.QueryIDs(ctx, coll)
	if err != nil {
		return err
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	recs, err := cat.QueryRecords(ctx, ids, f.Fields())
	if err != nil {
		return err
	}

	fmt.Println()
	ev := titleformat.NewEvaluator(nil)
	for _, id := range ids {
		rec, ok := recs[id]
		if !ok {
			continue
		}
		results := f.EvalLevels(ev, titleformat.NewContext(rec))
		values := make([]string, len(results))
		for i, r := range results {
			values[i] = r.Value
		}
		fmt.Printf("%6d  %s\n", id, strings.Join(values, " | "))
	}
	if len(ids) == 0 {
		fmt.Println("no tracks")
	}
	return nil
}
