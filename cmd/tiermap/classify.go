package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/tiermap/internal/app"
	"github.com/crimson-sun/tiermap/internal/engine/compactor"
	"github.com/crimson-sun/tiermap/internal/model"
	"github.com/crimson-sun/tiermap/internal/output"
	"github.com/crimson-sun/tiermap/internal/output/stdout"
	"github.com/crimson-sun/tiermap/internal/source"
)

type classifyFlags struct {
	file       string
	url        string
	json       bool
	pretty     bool
	text       bool
	detail     string
	maxResults int
	noFine     bool
	minScore   float64
	depth      int
}

func (c *cli) classifyCmd() *cobra.Command {
	var f classifyFlags
	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify one text, file or web page",
		Long: "Classify a literal text argument, a local file (--file) or a web page (--url). " +
			"With no argument and no flag the text is read from stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClassify(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.file, "file", "", "read the text from a file (.html is extracted)")
	fl.StringVar(&f.url, "url", "", "fetch and extract a web page")
	fl.BoolVar(&f.json, "json", false, "print one JSON object (default)")
	fl.BoolVar(&f.pretty, "pretty", false, "print indented JSON")
	fl.BoolVar(&f.text, "text", false, "print a human-readable report")
	fl.StringVar(&f.detail, "detail", "", "minimal or full")
	fl.IntVar(&f.maxResults, "max-results", 0, "number of categories to return")
	fl.BoolVar(&f.noFine, "no-fine", false, "skip fine classification (vector-only)")
	fl.Float64Var(&f.minScore, "min-score", -1, "skip fine classification below this domain score")
	fl.IntVar(&f.depth, "depth", 0, "candidate tier depth (2-4)")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	cmd.MarkFlagsMutuallyExclusive("json", "pretty", "text")
	return cmd
}

func (c *cli) runClassify(cmd *cobra.Command, args []string, f classifyFlags) error {
	ref, err := classifyRef(args, f, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg := c.cfg
	switch {
	case f.pretty:
		cfg.Output.Format = string(stdout.Pretty)
	case f.text:
		cfg.Output.Format = string(stdout.Text)
	case f.json:
		cfg.Output.Format = string(stdout.JSON)
	}
	if f.detail != "" {
		cfg.Output.Detail = f.detail
	}
	if f.maxResults != 0 {
		cfg.Engine.MaxResults = f.maxResults
	}
	if f.noFine {
		cfg.Engine.DisableFine = true
	}
	if f.minScore >= 0 {
		cfg.Engine.MinDomainScore = f.minScore
	}
	if f.depth != 0 {
		cfg.Data.TierDepth = f.depth
	}
	cfg.Output.Sink = "stdout"
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	doc, err := source.NewFetcher(source.Config{}).Fetch(ctx, ref)
	if err != nil {
		return fmt.Errorf("fetch input: %w", err)
	}

	a, err := app.Build(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Engine.Classify(ctx, doc.Text, a.Options)
	if err != nil {
		return err
	}
	rec := model.ToRecord(res)
	env := output.Envelope{Preview: compactor.Summary(doc.Text), Record: &rec}
	if !strings.HasPrefix(ref, "text:") {
		env.Ref = ref
	}
	if doc.Title != "" {
		env.Preview = doc.Title
	}
	out := stdout.NewWriter(cmd.OutOrStdout(), stdout.Format(cfg.Output.Format), output.ParseDetail(cfg.Output.Detail))
	if err := out.Write(ctx, env); err != nil {
		return err
	}
	return out.Close()
}

// classifyRef turns the positional argument or flags into a source reference.
func classifyRef(args []string, f classifyFlags, stdin io.Reader) (string, error) {
	switch {
	case f.file != "":
		if len(args) > 0 {
			return "", model.Configf("pass either a text argument or --file, not both")
		}
		return "file:" + f.file, nil
	case f.url != "":
		if len(args) > 0 {
			return "", model.Configf("pass either a text argument or --url, not both")
		}
		if !strings.HasPrefix(f.url, "http://") && !strings.HasPrefix(f.url, "https://") {
			return "", model.Configf("--url must be an http or https URL, got %q", f.url)
		}
		return f.url, nil
	case len(args) == 1:
		return "text:" + args[0], nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", model.Configf("no text given: pass an argument, --file, --url or stdin")
	}
	return "text:" + string(raw), nil
}
