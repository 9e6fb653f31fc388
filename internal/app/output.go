package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/crimson-sun/tiermap/internal/config"
	"github.com/crimson-sun/tiermap/internal/output"
	"github.com/crimson-sun/tiermap/internal/output/async"
	"github.com/crimson-sun/tiermap/internal/output/csvfile"
	"github.com/crimson-sun/tiermap/internal/output/file"
	"github.com/crimson-sun/tiermap/internal/output/multi"
	"github.com/crimson-sun/tiermap/internal/output/sqlite"
	"github.com/crimson-sun/tiermap/internal/output/stdout"
	"github.com/crimson-sun/tiermap/internal/output/webhook"
)

// SinkNames splits a comma-separated sink list.
func SinkNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// OpenOutput opens every sink named in cfg.Sink. Several sinks are fanned
// out through one Output. Network and database sinks are decoupled from the
// caller through an async buffer.
func OpenOutput(ctx context.Context, cfg config.OutputConfig) (output.Output, error) {
	names := SinkNames(cfg.Sink)
	if len(names) == 0 {
		names = []string{"stdout"}
	}
	outs := make([]output.Output, 0, len(names))
	closeAll := func() {
		for _, o := range outs {
			o.Close()
		}
	}
	for _, name := range names {
		o, err := openSink(ctx, name, cfg)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("app: output %s: %w", name, err)
		}
		outs = append(outs, o)
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}

func openSink(ctx context.Context, name string, cfg config.OutputConfig) (output.Output, error) {
	detail := output.ParseDetail(cfg.Detail)
	switch name {
	case "stdout":
		return stdout.New(stdout.Format(cfg.Format), detail), nil
	case "file":
		return file.New(cfg.Path, detail)
	case "csv":
		path := cfg.CSVPath
		if path == "" {
			path = cfg.Path
		}
		return csvfile.New(path)
	case "webhook":
		wh := webhook.New(cfg.WebhookURL,
			webhook.WithToken(cfg.WebhookToken),
			webhook.WithDetail(detail),
		)
		return async.New(wh), nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return async.New(db), nil
	default:
		return nil, fmt.Errorf("unknown sink %q", name)
	}
}
