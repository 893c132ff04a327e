package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.senan.xyz/table/table"

	"liner"
	"liner/cmd/internal/linerflag"
	"liner/cmd/internal/logging"
	"liner/tags"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] composer [<album query>]\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] artwork  [<album query>]\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] info     [<album query>]\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

// replaced while testing
var tg liner.TagIO = tags.Lib{}

var dmp = diffmatchpatch.New()

func main() {
	exit := logging.Logging()
	defer exit()

	cfg := linerflag.Config()
	catalog := linerflag.Itunes()
	creditSource := linerflag.Tower()
	linerflag.Parse()
	linerflag.DefaultClient()

	if cfg.MediaPath == "" {
		slog.Error("no media path provided")
		return
	}

	command := flag.Arg(0)
	switch command {
	case "composer", "artwork", "info":
	default:
		flag.Usage()
		slog.Error("unknown command", "command", command)
		return
	}

	subflag := flag.NewFlagSet(command, flag.ExitOnError)
	subflag.Parse(flag.Args()[1:])
	query := strings.Join(subflag.Args(), " ")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch command {
	case "composer":
		runComposer(ctx, cfg, creditSource, query)
	case "artwork":
		runArtwork(ctx, cfg, catalog, query)
	case "info":
		runInfo(cfg, query)
	}
}

func runComposer(ctx context.Context, cfg *liner.Config, src liner.CreditSource, query string) {
	results, err := liner.UpdateComposers(ctx, cfg, src, tg, query)
	if err != nil && !errors.Is(err, liner.ErrNoAlbums) {
		slog.Error("updating composers", "err", err)
	}
	if errors.Is(err, liner.ErrNoAlbums) {
		slog.Error("no albums match", "query", query)
		return
	}

	t := table.NewStringWriter()
	for _, r := range results {
		status := " "
		if r.Updated {
			status = "*"
		}
		fmt.Fprintf(t, "%s\t%s\t%s\n", status, r.Title, fmtDiff(r.Before, r.After))
	}
	printTable(t)
}

func runArtwork(ctx context.Context, cfg *liner.Config, catalog liner.CatalogClient, query string) {
	results, err := liner.UpdateArtwork(ctx, cfg, catalog, tg, query)
	if err != nil && !errors.Is(err, liner.ErrNoAlbums) {
		slog.Error("updating artwork", "err", err)
	}
	if errors.Is(err, liner.ErrNoAlbums) {
		slog.Error("no albums match", "query", query)
		return
	}

	t := table.NewStringWriter()
	for _, r := range results {
		fmt.Fprintf(t, "%s\t%s\t%d file(s)\n", r.Album, r.CoverPath, len(r.Files))
	}
	printTable(t)
}

func runInfo(cfg *liner.Config, query string) {
	tracks, err := liner.FetchInfo(cfg, tg, query)
	if err != nil && !errors.Is(err, liner.ErrNoAlbums) {
		slog.Error("reading tracks", "err", err)
	}
	if errors.Is(err, liner.ErrNoAlbums) {
		slog.Error("no albums match", "query", query)
		return
	}

	t := table.NewStringWriter()
	fmt.Fprintf(t, "title\tartist\talbum\tcomposer\tyear\tartwork\n")
	for _, track := range tracks {
		fmt.Fprintf(t, "%s\t%s\t%s\t%s\t%s\t%v\n", track.Title, track.Artist, track.Album, track.Composer, track.Year, track.HasArtwork)
	}
	printTable(t)
}

func printTable(t fmt.Stringer) {
	for _, row := range strings.Split(strings.TrimRight(t.String(), "\n"), "\n") {
		fmt.Println(row)
	}
}

func fmtDiff(before, after string) string {
	if before == after {
		return before
	}
	diff := dmp.DiffMain(before, after, false)
	if d := dmp.DiffPrettyText(diff); d != "" {
		return d
	}
	return "[empty]"
}
