package protocol_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/db/dbtest"
	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/logger"
	"github.com/oggyb/trio-connect/internal/protocol"
	"github.com/oggyb/trio-connect/internal/repository"
)

type fixture struct {
	db     *gorm.DB
	ledger *repository.Ledger
	rec    *events.Recorder
	svc    *protocol.Service
}

func newFixture(t *testing.T, ids ...int64) fixture {
	t.Helper()
	database := dbtest.Open(t)
	for _, id := range ids {
		dbtest.Registered(t, database, id, db.GenderOther, nil, nil)
	}
	ledger := repository.NewLedger(database)
	rec := &events.Recorder{}
	svc := protocol.New(ledger, events.NewDispatcher(rec, logger.Discard()), logger.Discard())
	return fixture{db: database, ledger: ledger, rec: rec, svc: svc}
}

func TestLikeCreatesRequestAndNotifiesTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	res, err := f.svc.Like(ctx, 1, 2, protocol.PurposeFriendship)
	require.NoError(t, err)
	assert.False(t, res.AlreadyRequested)
	assert.Equal(t, db.RequestPending, res.Request.Status)

	got := f.rec.Named("request.received")
	require.Len(t, got, 1)
	ev := got[0].(events.RequestReceived)
	assert.Equal(t, int64(2), ev.TargetID)
	assert.Equal(t, "user1", ev.RequesterName)
	assert.Equal(t, protocol.PurposeFriendship, ev.Purpose)
}

func TestLikeTwiceIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	_, err := f.svc.Like(ctx, 1, 2, protocol.PurposeFriendship)
	require.NoError(t, err)
	res, err := f.svc.Like(ctx, 1, 2, protocol.PurposeRelationship)
	require.NoError(t, err)
	assert.True(t, res.AlreadyRequested)
	assert.Equal(t, protocol.PurposeFriendship, res.Request.Purpose)
	assert.Len(t, f.rec.Named("request.received"), 1)
}

func TestLikeAfterRejectStaysRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	res, err := f.svc.Like(ctx, 1, 2, protocol.PurposeOther)
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, 2, res.Request.ID)
	require.NoError(t, err)

	again, err := f.svc.Like(ctx, 1, 2, protocol.PurposeOther)
	require.NoError(t, err)
	assert.True(t, again.AlreadyRequested)
	assert.Equal(t, db.RequestRejected, again.Request.Status)
}

func TestLikeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	_, err := f.svc.Like(ctx, 1, 1, protocol.PurposeFriendship)
	assert.ErrorIs(t, err, protocol.ErrSelfAction)

	_, err = f.svc.Like(ctx, 1, 2, "Business")
	assert.ErrorIs(t, err, protocol.ErrInvalidPurpose)

	_, err = f.svc.Like(ctx, 1, 99, protocol.PurposeFriendship)
	assert.ErrorIs(t, err, protocol.ErrUnknownUser)
}

func TestAcceptCreatesCanonicalMatchAndNotifiesBoth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)
	require.NoError(t, f.db.Model(&db.User{}).Where("id = ?", 2).Update("free_unlocks", 1).Error)

	res, err := f.svc.Like(ctx, 2, 1, protocol.PurposeRelationship)
	require.NoError(t, err)

	d, err := f.svc.Accept(ctx, 1, res.Request.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Match)
	assert.True(t, d.MatchCreated)
	assert.Equal(t, int64(1), d.Match.User1ID)
	assert.Equal(t, int64(2), d.Match.User2ID)
	assert.Equal(t, protocol.PurposeRelationship, d.Match.Purpose)
	assert.False(t, d.Match.User1Unlocked)
	assert.False(t, d.Match.User2Unlocked)
	assert.Equal(t, db.RequestAccepted, d.Request.Status)

	notices := f.rec.Named("match.created")
	require.Len(t, notices, 2)
	byUser := map[int64]events.MatchCreated{}
	for _, n := range notices {
		mc := n.(events.MatchCreated)
		byUser[mc.ParticipantID] = mc
	}
	assert.Equal(t, int64(2), byUser[1].CounterpartID)
	assert.False(t, byUser[1].FreeUnlockAvailable)
	assert.Equal(t, int64(1), byUser[2].CounterpartID)
	assert.True(t, byUser[2].FreeUnlockAvailable)
}

func TestRespondRejectsInvalidRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2, 3)

	res, err := f.svc.Like(ctx, 1, 2, protocol.PurposeFriendship)
	require.NoError(t, err)

	// not the target
	_, err = f.svc.Accept(ctx, 3, res.Request.ID)
	assert.ErrorIs(t, err, protocol.ErrInvalidRequest)
	// the requester cannot accept their own request
	_, err = f.svc.Accept(ctx, 1, res.Request.ID)
	assert.ErrorIs(t, err, protocol.ErrInvalidRequest)
	// missing
	_, err = f.svc.Reject(ctx, 2, 999)
	assert.ErrorIs(t, err, protocol.ErrInvalidRequest)

	_, err = f.svc.Reject(ctx, 2, res.Request.ID)
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, 2, res.Request.ID)
	assert.ErrorIs(t, err, protocol.ErrInvalidRequest)

	rejected := f.rec.Named("request.rejected")
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(1), rejected[0].(events.RequestRejected).RequesterID)

	count, err := f.ledger.Matches.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestConcurrentReciprocalAcceptsCreateOneMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	ab, err := f.svc.Like(ctx, 1, 2, protocol.PurposeFriendship)
	require.NoError(t, err)
	ba, err := f.svc.Like(ctx, 2, 1, protocol.PurposeRelationship)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]protocol.Decision, 2)
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = f.svc.Accept(ctx, 2, ab.Request.ID)
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = f.svc.Accept(ctx, 1, ba.Request.ID)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0].Match.ID, results[1].Match.ID)
	assert.NotEqual(t, results[0].MatchCreated, results[1].MatchCreated)

	count, err := f.ledger.Matches.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestConcurrentAcceptsOfSameRequestHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	res, err := f.svc.Like(ctx, 1, 2, protocol.PurposeFriendship)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Accept(ctx, 2, res.Request.ID); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Len(t, f.rec.Named("match.created"), 2)
}

func TestDislikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	created, err := f.svc.Dislike(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = f.svc.Dislike(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = f.svc.Dislike(ctx, 1, 1)
	assert.ErrorIs(t, err, protocol.ErrSelfAction)

	_, err = f.svc.Dislike(ctx, 1, 404)
	assert.ErrorIs(t, err, protocol.ErrUnknownUser)
	blocked, err := f.ledger.Blocks.Exists(ctx, 1, 404)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestReportBlocksAndNotifiesAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	r, err := f.svc.Report(ctx, 1, 2, protocol.ReasonOther, "  asked for money ")
	require.NoError(t, err)
	assert.Equal(t, "Other: asked for money", r.Reason)
	assert.Equal(t, db.ReportPending, r.Status)

	blocked, err := f.ledger.Blocks.Exists(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, blocked)

	notices := f.rec.Named("report.filed")
	require.Len(t, notices, 1)
	assert.Equal(t, int64(2), notices[0].(events.ReportFiled).ReportedID)

	// reporting after an earlier dislike still records the report
	_, err = f.svc.Report(ctx, 1, 2, protocol.ReasonSpam, "")
	require.NoError(t, err)
	pending, err := f.ledger.Reports.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)
}

func TestReportRejectsUnknownReason(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)

	_, err := f.svc.Report(ctx, 1, 2, "Rude", "")
	assert.ErrorIs(t, err, protocol.ErrInvalidReason)
	_, err = f.svc.Report(ctx, 1, 2, protocol.ReasonSpam, "extra text")
	assert.ErrorIs(t, err, protocol.ErrInvalidReason)

	blocked, err := f.ledger.Blocks.Exists(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestEventFailureDoesNotUndoWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 2)
	f.rec.FailDeliveries(true)

	res, err := f.svc.Like(ctx, 1, 2, protocol.PurposeFriendship)
	require.NoError(t, err)

	stored, err := f.ledger.Requests.Get(ctx, res.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, db.RequestPending, stored.Status)
}

func TestFormatReason(t *testing.T) {
	got, err := protocol.FormatReason(protocol.ReasonOther, "")
	require.NoError(t, err)
	assert.Equal(t, "Other", got)

	got, err = protocol.FormatReason(protocol.ReasonNudity, "")
	require.NoError(t, err)
	assert.Equal(t, "Nudity/Adult", got)
}
