package service

import (
	"github.com/target/mmk-unsubscribe/internal/domain/model"
)

const defaultSuccessMessage = "Done"

// ProjectStatus derives the polling snapshot of job from its persisted state.
// Only items with a terminal status appear in Results, in item order.
func ProjectStatus(job *model.Job) model.JobStatusSnapshot {
	snap := model.JobStatusSnapshot{
		JobID:    job.ID,
		Status:   job.Status,
		Running:  job.Status == model.JobStatusRunning,
		Progress: job.CompletedItems,
		Total:    job.TotalItems,
		Results:  make([]model.ItemResult, 0, job.CompletedItems),
	}
	for i := range job.Items {
		it := &job.Items[i]
		if !it.Status.IsTerminal() {
			continue
		}
		res := model.ItemResult{
			ItemID:  it.ID,
			Sender:  it.DisplaySender(),
			Success: it.Status == model.ItemStatusSuccess,
		}
		if it.MethodAttempted != nil {
			res.Method = *it.MethodAttempted
		}
		if it.ErrorMessage != nil {
			res.Message = *it.ErrorMessage
		}
		if res.Message == "" && res.Success {
			res.Message = defaultSuccessMessage
		}
		snap.Results = append(snap.Results, res)
	}
	return snap
}

// failedItems converts failed job items into their follow-up view.
func failedItems(items []model.JobItem) []model.FailedItem {
	out := make([]model.FailedItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.FailedItem{
			ItemID:            it.ID,
			Sender:            it.Sender,
			SenderEmail:       it.SenderEmail,
			UnsubscribeURL:    it.UnsubscribeURL,
			UnsubscribeMailto: it.UnsubscribeMailto,
			Method:            it.MethodAttempted,
			ErrorMessage:      it.ErrorMessage,
			RetryCount:        it.RetryCount,
		})
	}
	return out
}
