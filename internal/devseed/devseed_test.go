package devseed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
	"github.com/target/mmk-unsubscribe/internal/service"
)

type captureCreator struct {
	req *model.CreateJobRequest
	err error
}

func (c *captureCreator) CreateJob(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return &model.Job{ID: "demo", Status: model.JobStatusPending, TotalItems: len(req.Items)}, nil
}

func TestRun_CoversEveryLane(t *testing.T) {
	c := &captureCreator{}
	job, err := Run(context.Background(), c, Options{BaseURL: "http://127.0.0.1:9000/"})
	require.NoError(t, err)
	assert.Equal(t, 5, job.TotalItems)
	require.NoError(t, c.req.Validate())

	lanes := map[service.Lane]int{}
	unclassified := 0
	for i, it := range c.req.Items {
		item := model.JobItem{
			ID: int64(i + 1), Sender: it.Sender, SenderEmail: it.SenderEmail,
			UnsubscribeURL: it.UnsubscribeURL, UnsubscribeMailto: it.UnsubscribeMailto, OneClick: it.OneClick,
		}
		lane, ok := service.Classify(item)
		if !ok {
			unclassified++
			continue
		}
		lanes[lane]++
	}
	assert.Equal(t, map[service.Lane]int{
		service.LaneOneClick: 1,
		service.LaneBrowser:  2,
		service.LaneMailto:   1,
	}, lanes)
	assert.Equal(t, 1, unclassified)
	assert.Equal(t, "http://127.0.0.1:9000/one-click/deals", *c.req.Items[0].UnsubscribeURL)
}

func TestRun_Errors(t *testing.T) {
	_, err := Run(context.Background(), &captureCreator{}, Options{BaseURL: "::not a url"})
	require.Error(t, err)

	_, err = Run(context.Background(), &captureCreator{err: errors.New("db down")}, Options{})
	require.ErrorContains(t, err, "db down")
}
