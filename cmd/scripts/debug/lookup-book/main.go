package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/listenlog/listenlog/pkg/bookinfo"
	"github.com/listenlog/listenlog/pkg/config"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

func main() {
	log := logger.New()

	var opts struct {
		Title   string        `short:"t" long:"title" description:"Title to search for" required:"true"`
		Author  string        `short:"a" long:"author" description:"Author to narrow the search"`
		BaseURL string        `long:"base-url" description:"Open Library base URL (defaults to the configured one)"`
		Timeout time.Duration `long:"timeout" description:"Request timeout (defaults to the configured one)"`
	}

	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		log.Err(err).Fatal("flags parse error")
	}

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}
	cfg.EnrichmentEnabled = true
	if opts.BaseURL != "" {
		cfg.EnrichmentBaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.EnrichmentTimeout = opts.Timeout
	}

	ctx := log.WithContext(context.Background())
	info := bookinfo.NewClient(cfg).Lookup(ctx, opts.Title, opts.Author)
	if info == nil {
		fmt.Println("no match")
		os.Exit(1)
	}

	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		log.Err(err).Fatal("json marshal error")
	}
	fmt.Println(string(out))
}
