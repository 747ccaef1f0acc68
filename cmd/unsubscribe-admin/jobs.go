package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/target/mmk-unsubscribe/internal/bootstrap"
	"github.com/target/mmk-unsubscribe/internal/data"
	"github.com/target/mmk-unsubscribe/internal/devseed"
	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultQueryTimeout     = 30 * time.Second
	// A run is bounded only by its items; the default leaves room for large jobs.
	defaultRunTimeout = 6 * time.Hour
)

type timeoutOptions struct {
	Timeout time.Duration
}

type jobOptions struct {
	JobID   string
	Timeout time.Duration
	JSON    bool
}

type createOptions struct {
	File    string
	Timeout time.Duration
}

type seedOptions struct {
	BaseURL string
	Timeout time.Duration
}

type listOptions struct {
	Limit   int
	Offset  int
	Timeout time.Duration
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parseTimeoutFlags(name string, args []string, def time.Duration) (timeoutOptions, error) {
	fs := newFlagSet(name)
	opts := timeoutOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", def, "Maximum duration of the command")
	if err := fs.Parse(args); err != nil {
		return timeoutOptions{}, err
	}
	if opts.Timeout <= 0 {
		return timeoutOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

// parseJobFlags accepts the job id as --id or as the first positional argument.
func parseJobFlags(name string, args []string, defTimeout time.Duration) (jobOptions, error) {
	fs := newFlagSet(name)
	opts := jobOptions{}
	fs.StringVar(&opts.JobID, "id", "", "Job ID")
	fs.DurationVar(&opts.Timeout, "timeout", defTimeout, "Maximum duration of the command")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return jobOptions{}, err
	}
	if opts.JobID == "" && fs.NArg() > 0 {
		opts.JobID = fs.Arg(0)
	}
	opts.JobID = strings.TrimSpace(opts.JobID)
	if opts.JobID == "" {
		return jobOptions{}, errors.New("job id is required (--id)")
	}
	if opts.Timeout <= 0 {
		return jobOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseCreateFlags(args []string) (createOptions, error) {
	fs := newFlagSet("create-job")
	opts := createOptions{}
	fs.StringVar(&opts.File, "file", "", `Path to a JSON job request ({"items":[...]}), or "-" for stdin`)
	fs.DurationVar(&opts.Timeout, "timeout", defaultQueryTimeout, "Maximum duration of the command")
	if err := fs.Parse(args); err != nil {
		return createOptions{}, err
	}
	if opts.File == "" {
		return createOptions{}, errors.New("--file is required")
	}
	return opts, nil
}

func parseSeedFlags(args []string) (seedOptions, error) {
	fs := newFlagSet("seed-demo-job")
	opts := seedOptions{}
	fs.StringVar(&opts.BaseURL, "base-url", devseed.DefaultBaseURL, "Base URL of the local unsubscribe fixture server")
	fs.DurationVar(&opts.Timeout, "timeout", defaultQueryTimeout, "Maximum duration of the command")
	if err := fs.Parse(args); err != nil {
		return seedOptions{}, err
	}
	return opts, nil
}

func parseListFlags(args []string) (listOptions, error) {
	fs := newFlagSet("list-jobs")
	opts := listOptions{}
	fs.IntVar(&opts.Limit, "limit", 20, "Maximum number of jobs")
	fs.IntVar(&opts.Offset, "offset", 0, "Number of jobs to skip")
	fs.DurationVar(&opts.Timeout, "timeout", defaultQueryTimeout, "Maximum duration of the command")
	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}
	if opts.Limit < 1 {
		return listOptions{}, errors.New("--limit must be at least 1")
	}
	if opts.Offset < 0 {
		return listOptions{}, errors.New("--offset must be non-negative")
	}
	return opts, nil
}

// readJobRequest decodes a job request, rejecting unknown fields.
func readJobRequest(r io.Reader) (*model.CreateJobRequest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var req model.CreateJobRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode job request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

func openRequestFile(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path) //nolint:gosec // operator-supplied path
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutFlags("migrate", args, defaultMigrationTimeout)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runCreateJob(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateFlags(args)
	if err != nil {
		return err
	}

	f, err := openRequestFile(opts.File)
	if err != nil {
		return fmt.Errorf("open job request: %w", err)
	}
	req, err := readJobRequest(f)
	if closeErr := f.Close(); closeErr != nil {
		cmdCtx.Logger.Warn("close job request failed", "error", closeErr)
	}
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		store := data.NewJobStore(db, data.StoreConfig{Logger: cmdCtx.Logger})
		job, createErr := store.CreateJob(ctx, req)
		if createErr != nil {
			return createErr
		}
		return writef(cmdCtx.Out, "created job %s with %d items\n", job.ID, job.TotalItems)
	})
}

func runRunJob(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobFlags("run-job", args, defaultRunTimeout)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, opts.Timeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		sum, runErr := svcs.Jobs.Run(ctx, opts.JobID)
		if sum != nil {
			if printErr := printRunSummary(cmdCtx.Out, sum); printErr != nil {
				return errors.Join(runErr, printErr)
			}
		}
		return runErr
	})
}

func runResumeJob(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobFlags("resume-job", args, defaultRunTimeout)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, opts.Timeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		sum, runErr := svcs.Jobs.Resume(ctx, opts.JobID)
		if sum != nil {
			if printErr := printRunSummary(cmdCtx.Out, sum); printErr != nil {
				return errors.Join(runErr, printErr)
			}
		}
		return runErr
	})
}

func runRetryJob(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobFlags("retry-job", args, defaultRunTimeout)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, opts.Timeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		res, retryErr := svcs.Jobs.Retry(ctx, opts.JobID)
		if res != nil {
			if printErr := writef(cmdCtx.Out, "retried %d failed items of job %s\n", res.Retried, res.JobID); printErr != nil {
				return errors.Join(retryErr, printErr)
			}
		}
		return retryErr
	})
}

func runJobStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobFlags("job-status", args, defaultQueryTimeout)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, opts.Timeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		snap, statusErr := svcs.Jobs.Status(ctx, opts.JobID)
		if statusErr != nil {
			return statusErr
		}
		if opts.JSON {
			return printJSON(cmdCtx.Out, snap)
		}
		return printStatus(cmdCtx.Out, snap)
	})
}

func runListJobs(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		store := data.NewJobStore(db, data.StoreConfig{Logger: cmdCtx.Logger})
		jobs, listErr := store.ListJobs(ctx, model.JobListOptions{Limit: opts.Limit, Offset: opts.Offset})
		if listErr != nil {
			return listErr
		}
		return printJobs(cmdCtx.Out, jobs, time.Now())
	})
}

func runActiveJob(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutFlags("active-job", args, defaultQueryTimeout)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		store := data.NewJobStore(db, data.StoreConfig{Logger: cmdCtx.Logger})
		job, activeErr := store.GetActiveJob(ctx)
		if activeErr != nil {
			return activeErr
		}
		if job == nil {
			return writeln(cmdCtx.Out, "no job is running")
		}
		return printJobs(cmdCtx.Out, []*model.Job{job}, time.Now())
	})
}

func runFailedItems(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobFlags("failed-items", args, defaultQueryTimeout)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, opts.Timeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		items, failedErr := svcs.Jobs.FailedItems(ctx, opts.JobID)
		if failedErr != nil {
			return failedErr
		}
		if opts.JSON {
			return printJSON(cmdCtx.Out, items)
		}
		return printFailedItems(cmdCtx.Out, items)
	})
}

func runSeedDemoJob(cmdCtx *commandContext, args []string) error {
	opts, err := parseSeedFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		store := data.NewJobStore(db, data.StoreConfig{Logger: cmdCtx.Logger})
		job, seedErr := devseed.Run(ctx, store, devseed.Options{BaseURL: opts.BaseURL, Logger: cmdCtx.Logger})
		if seedErr != nil {
			return seedErr
		}
		return writef(cmdCtx.Out, "created demo job %s with %d items\n", job.ID, job.TotalItems)
	})
}
