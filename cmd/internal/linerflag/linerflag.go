// Package linerflag declares the flags shared by liner commands and turns
// them into configured clients.
package linerflag

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.senan.xyz/flagconf"

	"liner"
	"liner/clientutil"
	"liner/credits"
	"liner/itunes"
	"liner/tower"
)

func DefaultClient() {
	chain := clientutil.Chain(
		clientutil.WithLogging(slog.Default()),
		clientutil.WithUserAgent(fmt.Sprintf(`%s/%s`, liner.Name, liner.Version)),
	)

	http.DefaultTransport = chain(http.DefaultTransport)
}

func Parse() {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}

	defaultConfigPath := filepath.Join(userConfig, liner.Name, "config")
	configPath := flag.String("config-path", defaultConfigPath, "Path to config file")

	printVersion := flag.Bool("version", false, "Print the version and exit")
	printConfig := flag.Bool("config", false, "Print the parsed config and exit")

	flag.Parse()
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string { return liner.Name }
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", flag.CommandLine.Name(), liner.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-16s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}
}

func Config() *liner.Config {
	var cfg liner.Config

	flag.StringVar(&cfg.MediaPath, "media-path", "", "Path to the root music directory")
	flag.StringVar(&cfg.ArtworkDir, "artwork-dir", filepath.Join(os.TempDir(), liner.Name), "Directory downloaded artwork is stored in")
	cfg.ArtworkQuality = itunes.QualityLarge
	flag.Var(&qualityParser{&cfg.ArtworkQuality}, "artwork-quality", "Artwork size to download (small, medium, large, original)")
	flag.StringVar(&cfg.SearchCountry, "search-country", "jp", "Catalog search country code")
	flag.BoolVar(&cfg.KeepArtwork, "keep-artwork", false, "Keep downloaded artwork files after embedding")
	flag.Var(&roleMapParser{&cfg.Roles}, "role-map", "Path to a YAML role map file")

	return &cfg
}

func Itunes() *itunes.Client {
	var client itunes.Client
	client.UserAgent = fmt.Sprintf(`%s/%s`, liner.Name, liner.Version)
	flag.StringVar(&client.BaseURL, "itunes-base-url", `https://itunes.apple.com/`, "iTunes Search API base URL")
	flag.DurationVar(&client.RateLimit, "itunes-rate-limit", 500*time.Millisecond, "iTunes Search API rate limit duration")
	return &client
}

func Tower() *tower.Client {
	var client tower.Client
	client.UserAgent = fmt.Sprintf(`%s/%s`, liner.Name, liner.Version)
	flag.StringVar(&client.BaseURL, "tower-base-url", `https://tower.jp`, "tower.jp base URL")
	flag.DurationVar(&client.RateLimit, "tower-rate-limit", 1*time.Second, "tower.jp rate limit duration")
	return &client
}

var _ flag.Value = (*qualityParser)(nil)
var _ flag.Value = (*roleMapParser)(nil)

type qualityParser struct{ *itunes.Quality }

func (qp *qualityParser) Set(value string) error {
	q, err := itunes.ParseQuality(value)
	if err != nil {
		return err
	}
	*qp.Quality = q
	return nil
}
func (qp qualityParser) String() string {
	if qp.Quality == nil {
		return ""
	}
	return string(*qp.Quality)
}

type roleMapParser struct{ roles *[]credits.RoleLabel }

func (rm *roleMapParser) Set(value string) error {
	roles, err := credits.LoadRoleMap(value)
	if err != nil {
		return err
	}
	*rm.roles = roles
	return nil
}
func (rm roleMapParser) String() string {
	if rm.roles == nil {
		return ""
	}
	var parts []string
	for _, r := range *rm.roles {
		parts = append(parts, r.Label)
	}
	return strings.Join(parts, ", ")
}
