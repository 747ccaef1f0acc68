package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/target/mmk-unsubscribe/config"
	"github.com/target/mmk-unsubscribe/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"create-job": {
			name:        "create-job",
			description: "Create an unsubscribe job from a JSON file of items",
			run:         runCreateJob,
		},
		"run-job": {
			name:        "run-job",
			description: "Run a pending job in the foreground",
			run:         runRunJob,
		},
		"retry-job": {
			name:        "retry-job",
			description: "Reset failed items of a job and run it again",
			run:         runRetryJob,
		},
		"resume-job": {
			name:        "resume-job",
			description: "Continue the job left running by a crashed process",
			run:         runResumeJob,
		},
		"job-status": {
			name:        "job-status",
			description: "Show progress and item results of a job",
			run:         runJobStatus,
		},
		"list-jobs": {
			name:        "list-jobs",
			description: "List jobs, newest first",
			run:         runListJobs,
		},
		"active-job": {
			name:        "active-job",
			description: "Show the currently running job, if any",
			run:         runActiveJob,
		},
		"seed-demo-job": {
			name:        "seed-demo-job",
			description: "Create a demo job that exercises every lane (development only)",
			run:         runSeedDemoJob,
		},
		"failed-items": {
			name:        "failed-items",
			description: "List failed items of a job for manual follow-up",
			run:         runFailedItems,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: unsubscribe-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
