package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
	"github.com/target/mmk-unsubscribe/internal/service"
	"github.com/target/mmk-unsubscribe/internal/util"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRunSummary(w io.Writer, sum *service.RunSummary) error {
	if err := writef(w, "job %s %s: dispatched=%d successful=%d failed=%d skipped=%d\n",
		sum.JobID, sum.Status, sum.Dispatched, sum.Successful, sum.Failed, sum.Skipped); err != nil {
		return err
	}
	lanes := make([]string, 0, len(sum.PerLane))
	for lane := range sum.PerLane {
		lanes = append(lanes, string(lane))
	}
	sort.Strings(lanes)
	for _, lane := range lanes {
		if err := writef(w, "  %-10s %d\n", lane, sum.PerLane[service.Lane(lane)]); err != nil {
			return err
		}
	}
	return nil
}

func printJobs(w io.Writer, jobs []*model.Job, now time.Time) error {
	if len(jobs) == 0 {
		return writeln(w, "(no jobs)")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tSTATUS\tCREATED\tDONE\tOK\tFAILED\tDURATION"); err != nil {
		return err
	}
	for _, j := range jobs {
		created := j.CreatedAt
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
			j.ID, j.Status, util.FormatTimestamp(&created),
			j.CompletedItems, j.TotalItems, j.SuccessfulItems, j.FailedItems,
			util.FormatRunDuration(j.StartedAt, j.CompletedAt, now)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printStatus(w io.Writer, snap model.JobStatusSnapshot) error {
	if err := writef(w, "job %s %s: %d/%d items done\n", snap.JobID, snap.Status, snap.Progress, snap.Total); err != nil {
		return err
	}
	if len(snap.Results) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ITEM\tSENDER\tRESULT\tMETHOD\tMESSAGE"); err != nil {
		return err
	}
	for _, r := range snap.Results {
		result := "failed"
		if r.Success {
			result = "ok"
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ItemID, r.Sender, result, r.Method, r.Message); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printFailedItems(w io.Writer, items []model.FailedItem) error {
	if len(items) == 0 {
		return writeln(w, "(no failed items)")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ITEM\tSENDER\tURL\tMAILTO\tMETHOD\tERROR\tRETRIES"); err != nil {
		return err
	}
	for _, it := range items {
		method := "—"
		if it.Method != nil {
			method = string(*it.Method)
		}
		sender := it.Sender
		if sender == "" {
			sender = it.SenderEmail
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			it.ItemID, sender,
			util.Deref(it.UnsubscribeURL, "—"), util.Deref(it.UnsubscribeMailto, "—"),
			method, util.Deref(it.ErrorMessage, "—"), it.RetryCount); err != nil {
			return err
		}
	}
	return tw.Flush()
}
