package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/logger"
)

func TestDispatcherCountsFailuresWithoutReturning(t *testing.T) {
	ctx := context.Background()
	rec := &events.Recorder{}
	d := events.NewDispatcher(rec, logger.Discard())

	d.Emit(ctx, events.RequestRejected{RequesterID: 1, RequestID: 2})
	rec.FailDeliveries(true)
	d.Emit(ctx,
		events.MatchCreated{ParticipantID: 1, CounterpartID: 2},
		events.MatchCreated{ParticipantID: 2, CounterpartID: 1},
	)

	assert.Equal(t, int64(1), d.Sent())
	assert.Equal(t, int64(2), d.Failed())
	assert.Len(t, rec.Events(), 1)
	assert.Len(t, rec.Named("request.rejected"), 1)
}

func TestDispatcherNilPublisher(t *testing.T) {
	d := events.NewDispatcher(nil, logger.Discard())
	d.Emit(context.Background(), events.ReportFiled{ReporterID: 1, ReportedID: 2})
	assert.Zero(t, d.Sent())
	assert.EqualValues(t, 1, d.Failed())
	assert.ErrorIs(t, d.Deliver(context.Background(), events.Broadcast{RecipientID: 1}), events.ErrNoPublisher)
	assert.EqualValues(t, 2, d.Failed())
}

func TestDeliverReportsFailure(t *testing.T) {
	rec := &events.Recorder{}
	d := events.NewDispatcher(rec, logger.Discard())
	require.NoError(t, d.Deliver(context.Background(), events.Broadcast{RecipientID: 1, Text: "hi"}))

	rec.FailDeliveries(true)
	assert.ErrorIs(t, d.Deliver(context.Background(), events.Broadcast{RecipientID: 2}), events.ErrRecorderClosed)
	assert.Equal(t, int64(1), d.Sent())
	assert.Equal(t, int64(1), d.Failed())
}

func TestNatsSubject(t *testing.T) {
	p := &events.NatsPublisher{}
	assert.Equal(t, "unlock.result", p.Subject(events.UnlockResult{}))
}
