package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/andreyvit/formkit/backoff"
	"github.com/andreyvit/formkit/formconfig"
	"github.com/andreyvit/formkit/formserver"
	"github.com/andreyvit/formkit/logging"
	"github.com/andreyvit/formkit/tokens"
)

type serveOptions struct {
	addr         string
	path         string
	title        string
	store        string
	redisAddr    string
	redisDB      int
	boltPath     string
	perSec       float64
	burst        int
	maxDelay     time.Duration
	gracePeriod  time.Duration
	template     string
	htmlTemplate string
	proxies      string
}

func serveCmd() *cobra.Command {
	var opt serveOptions
	cmd := &cobra.Command{
		Use:   "serve <definition>",
		Short: "Serve a form definition over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), args[0], &opt)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opt.addr, "addr", "localhost:8080", "listen address")
	flags.StringVar(&opt.path, "path", "/", "URL path of the form")
	flags.StringVar(&opt.title, "title", "", "page title")
	flags.StringVar(&opt.store, "store", "memory", "token store: memory, redis or bolt")
	flags.StringVar(&opt.redisAddr, "redis-addr", "localhost:6379", "Redis address for --store=redis")
	flags.IntVar(&opt.redisDB, "redis-db", 0, "Redis database for --store=redis")
	flags.StringVar(&opt.boltPath, "bolt-path", "formkit-tokens.db", "database file for --store=bolt")
	flags.Float64Var(&opt.perSec, "rate", 1, "submissions per second per client, 0 disables limiting")
	flags.IntVar(&opt.burst, "burst", 5, "submissions a client may make at once")
	flags.DurationVar(&opt.maxDelay, "max-delay", 2*time.Second, "longest a submission is held back before it is refused")
	flags.DurationVar(&opt.gracePeriod, "grace-period", 10*time.Second, "how long to wait for requests in flight on shutdown")
	flags.StringVar(&opt.template, "template", "", "placeholder template file with [{name}] markers")
	flags.StringVar(&opt.htmlTemplate, "html-template", "", "html/template file with {{.name}} actions")
	flags.StringVar(&opt.proxies, "trusted-proxies", "", "CIDRs whose X-Forwarded-For is believed, e.g. 127.0.0.1/32")
	cmd.MarkFlagsMutuallyExclusive("template", "html-template")
	return cmd
}

func serve(ctx context.Context, path string, opt *serveOptions) error {
	cfg, err := formconfig.Load(path)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, opt)
	if err != nil {
		return err
	}
	defer closeStore()

	var limiter *formserver.RateLimiter
	if opt.perSec > 0 {
		limiter = formserver.NewRateLimiter(formserver.RateLimitSettings{
			PerSec:   rate.Limit(opt.perSec),
			Burst:    opt.burst,
			MaxDelay: opt.maxDelay,
		})
	}

	proxies, err := formserver.ParseProxies(opt.proxies)
	if err != nil {
		return err
	}

	var text string
	if opt.template != "" {
		raw, err := os.ReadFile(opt.template)
		if err != nil {
			return err
		}
		text = string(raw)
	}

	srv := formserver.New(formserver.Options{
		Definition:     *cfg,
		Path:           opt.path,
		Title:          opt.title,
		Template:       text,
		HTMLTemplate:   opt.htmlTemplate,
		Store:          store,
		Limiter:        limiter,
		TrustedProxies: proxies,
	})

	ctx = logging.WithAttrs(ctx, "form", path)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	formserver.InterceptShutdownSignals(ctx, cancel)
	return formserver.ListenAndServe(ctx, opt.addr, srv, opt.gracePeriod)
}

func openStore(ctx context.Context, opt *serveOptions) (tokens.Store, func(), error) {
	switch opt.store {
	case "memory":
		return tokens.NewMemoryStore(), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: opt.redisAddr, DB: opt.redisDB})
		err := backoff.Retry(ctx, backoff.ConnectPolicy, "redis "+opt.redisAddr, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		store, err := tokens.NewRedisStore(tokens.RedisConfig{Client: client})
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "bolt":
		store, err := tokens.OpenBoltStore(opt.boltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown --store %q, expected memory, redis or bolt", opt.store)
	}
}
