package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/opd-ai/clipforge/client"
	"github.com/sirupsen/logrus"
)

// CLIConfig holds the command-line options.
type CLIConfig struct {
	serverURL string
	filter    string
	history   bool
	quiet     bool
	timeout   time.Duration
	files     []string
}

func parseCLIFlags(args []string) (*CLIConfig, error) {
	cli := &CLIConfig{}
	fs := flag.NewFlagSet("clipforge-upload", flag.ContinueOnError)

	defaultServer := os.Getenv("CLIPFORGE_SERVER")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:5000"
	}

	fs.StringVar(&cli.serverURL, "server", defaultServer, "Server base URL")
	fs.StringVar(&cli.filter, "filter", "grayscale", "Filter to apply")
	fs.BoolVar(&cli.history, "history", false, "List processed videos instead of uploading")
	fs.BoolVar(&cli.quiet, "quiet", false, "Do not print upload progress")
	fs.DurationVar(&cli.timeout, "timeout", client.DefaultTimeout, "Per-request timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cli.files = fs.Args()
	if !cli.history && len(cli.files) == 0 {
		return nil, errors.New("no files to upload")
	}
	return cli, nil
}

func main() {
	cli, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}
	logrus.SetLevel(logrus.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(cli.serverURL)
	c.HTTPClient.Timeout = cli.timeout

	if cli.history {
		err = printHistory(ctx, c, os.Stdout)
	} else {
		err = uploadAll(ctx, c, cli, os.Stdout, os.Stderr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func uploadAll(ctx context.Context, c *client.Client, cli *CLIConfig, out, progressOut io.Writer) error {
	var failed []error
	for _, path := range cli.files {
		var progress client.ProgressFunc
		if !cli.quiet {
			progress = func(sent, total int64) {
				if total > 0 {
					fmt.Fprintf(progressOut, "\r%s: %3d%%", path, sent*100/total)
				}
			}
		}

		resp, err := c.Upload(ctx, path, cli.filter, progress)
		if !cli.quiet {
			fmt.Fprintln(progressOut)
		}
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", resp.ID, path)
	}
	return errors.Join(failed...)
}

func printHistory(ctx context.Context, c *client.Client, out io.Writer) error {
	records, err := c.History(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFILTER\tDATE\tDURATION\tURL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1fs\t%s\n",
			r.ID, r.OriginalName, r.Filter,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.DurationSec, c.MediaURL(r.PathProcessed))
	}
	return tw.Flush()
}
