package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mercator-hq/routecost/pkg/cli"
	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/engine"
	"mercator-hq/routecost/pkg/history/storage"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/service"

	"github.com/spf13/cobra"
)

// usageFlags bind the fields of an engine.UsageRequest.
type usageFlags struct {
	inputTokens  float64
	outputTokens float64
	requests     int
	images       float64
	audioMinutes float64
	videoMinutes float64
	cacheHitRate float64
	retryRate    float64
	batch        bool
	routers      []string
	noRouters    bool
}

func (u *usageFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&u.inputTokens, "input-tokens", 0, "input tokens per request")
	f.Float64Var(&u.outputTokens, "output-tokens", 0, "output tokens per request")
	f.IntVarP(&u.requests, "requests", "n", 1, "number of requests")
	f.Float64Var(&u.images, "images", 0, "images per request")
	f.Float64Var(&u.audioMinutes, "audio-minutes", 0, "audio minutes per request")
	f.Float64Var(&u.videoMinutes, "video-minutes", 0, "video minutes per request")
	f.Float64Var(&u.cacheHitRate, "cache-hit-rate", 0, "fraction of input tokens served from cache (0-1)")
	f.Float64Var(&u.retryRate, "retry-rate", 0, "fraction of requests retried (0-1)")
	f.BoolVar(&u.batch, "batch", false, "price requests with the model's batch discount")
	f.StringArrayVar(&u.routers, "router", nil, "router fee as id=fraction, repeatable (replaces the configured path)")
	f.BoolVar(&u.noRouters, "no-routers", false, "price without any router commission")
	cmd.MarkFlagsMutuallyExclusive("router", "no-routers")
}

func (u *usageFlags) request() (engine.UsageRequest, error) {
	req := engine.UsageRequest{
		InputTokens:     u.inputTokens,
		OutputTokens:    u.outputTokens,
		RequestsCount:   u.requests,
		Images:          u.images,
		AudioMinutes:    u.audioMinutes,
		VideoMinutes:    u.videoMinutes,
		CacheHitRate:    u.cacheHitRate,
		RetryRate:       u.retryRate,
		BatchProcessing: u.batch,
	}

	switch {
	case u.noRouters:
		req.Routers = routers.RouterPath{}
	case len(u.routers) > 0:
		path, err := parseRouterFlags(u.routers)
		if err != nil {
			return req, err
		}
		req.Routers = path
	}
	return req, nil
}

// parseRouterFlags turns "id=fee" pairs into an enabled router path, one
// layer per flag in the order given.
func parseRouterFlags(values []string) (routers.RouterPath, error) {
	path := make(routers.RouterPath, 0, len(values))
	for i, v := range values {
		id, feeStr, ok := strings.Cut(v, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --router %q: want id=fraction", v)
		}
		fee, err := strconv.ParseFloat(feeStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --router %q: %w", v, err)
		}
		path = append(path, routers.RouterFee{ID: id, Name: id, Layer: i + 1, FeePct: fee, Enabled: true})
	}
	return path, nil
}

// openService builds a service from the loaded configuration. When record
// is true and history is enabled, the history store is attached; the
// returned closer releases it.
func openService(opts *globalOptions, record bool) (*service.Service, *config.Config, func(), error) {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	noop := func() {}
	var svcOpts []service.Option
	closer := noop
	if record && cfg.History.Enabled {
		store, err := storage.New(&cfg.History)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open history store: %w", err)
		}
		svcOpts = append(svcOpts, service.WithStore(store))
		closer = func() { _ = store.Close() }
	}

	svc, err := service.New(cfg, svcOpts...)
	if err != nil {
		closer()
		return nil, nil, nil, cli.NewConfigError("", err.Error())
	}
	return svc, cfg, closer, nil
}

// render writes raw for structured formats and tables otherwise.
func render(w io.Writer, opts *globalOptions, raw any, tables any) error {
	format, err := cli.ParseFormat(opts.output)
	if err != nil {
		return err
	}
	if format.Structured() {
		return cli.NewFormatter(format).FormatTo(w, raw)
	}
	return cli.NewFormatter(format).FormatTo(w, tables)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
