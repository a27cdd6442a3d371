package services

import (
	"context"
	"errors"
	"testing"

	"github.com/famtrack/expense_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDispatcher records Send calls and returns a scripted outcome.
type fakeDispatcher struct {
	sent    [][]string
	titles  []string
	data    []map[string]string
	invalid []string
	err     error
}

func (d *fakeDispatcher) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	d.sent = append(d.sent, append([]string(nil), tokens...))
	d.titles = append(d.titles, title)
	d.data = append(d.data, data)
	return d.invalid, d.err
}

type notifierFixture struct {
	dispatcher    *fakeDispatcher
	tokens        *fakeDeviceTokenStore
	notifications *fakeNotificationStore
	families      *fakeFamilyStore
	users         *fakeUserStore
	service       *NotificationService
}

func newNotifierFixture(t *testing.T) *notifierFixture {
	t.Helper()

	f := &notifierFixture{
		dispatcher:    &fakeDispatcher{},
		tokens:        newFakeDeviceTokenStore(),
		notifications: newFakeNotificationStore(),
		families:      newFakeFamilyStore(),
		users:         newFakeUserStore(),
	}
	f.service = NewNotificationService(f.dispatcher, f.tokens, f.notifications, f.families, f.users, nil, testLogger())
	return f
}

func (f *notifierFixture) family() *models.Family {
	return &models.Family{ID: "fam-1", AliasName: "ABCDEF", Name: "The Smiths", HeadID: "head-1", MaxSize: 10}
}

func TestJoinRequestedNotifiesHead(t *testing.T) {
	f := newNotifierFixture(t)
	f.users.users["head-1"] = models.User{ID: "head-1", AliasName: "head-1"}
	f.tokens.tokens["head-1"] = []models.DeviceToken{{UserID: "head-1", Token: "tok-a"}}

	requester := &models.User{ID: "user-1", AliasName: "alice"}
	request := &models.JoinRequest{ID: 9, RequesterID: "user-1", FamilyID: "fam-1", Message: "hi"}

	f.service.JoinRequested(f.family(), requester, request)

	require.Len(t, f.notifications.created, 1)
	n := f.notifications.created[0]
	assert.Equal(t, models.NotificationJoinRequest, n.Type)
	assert.Equal(t, "head-1", n.ReceiverID)
	assert.Equal(t, uint(9), n.JoinRequestID)

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, []string{"tok-a"}, f.dispatcher.sent[0])
	assert.Equal(t, "9", f.dispatcher.data[0]["join_request_id"])
	assert.Equal(t, models.NotificationJoinRequest, f.dispatcher.data[0]["type"])
}

func TestInvalidTokensArePruned(t *testing.T) {
	f := newNotifierFixture(t)
	f.users.users["head-1"] = models.User{ID: "head-1", AliasName: "head-1"}
	f.tokens.tokens["head-1"] = []models.DeviceToken{
		{UserID: "head-1", Token: "tok-live"},
		{UserID: "head-1", Token: "tok-stale"},
	}
	f.dispatcher.invalid = []string{"tok-stale"}

	f.service.JoinCancelled(f.family(), &models.User{ID: "user-1", AliasName: "alice"}, &models.JoinRequest{ID: 3})

	assert.Equal(t, []string{"tok-stale"}, f.tokens.pruned)
}

func TestDispatchFailureDoesNotPanicOrSkipPersistence(t *testing.T) {
	f := newNotifierFixture(t)
	f.users.users["user-1"] = models.User{ID: "user-1", AliasName: "alice", FCMToken: "tok-legacy"}
	f.dispatcher.err = errors.New("gateway unavailable")

	f.service.JoinAccepted(f.family(), &models.User{ID: "user-1", AliasName: "alice"}, &models.JoinRequest{ID: 5, RequesterID: "user-1"})

	// The inbox record lands even when the push gateway is down.
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, models.NotificationJoinAccepted, f.notifications.created[0].Type)
	assert.Empty(t, f.tokens.pruned)
}

func TestLegacyTokenFoldedIn(t *testing.T) {
	f := newNotifierFixture(t)
	f.users.users["user-1"] = models.User{ID: "user-1", AliasName: "alice", FCMToken: "tok-legacy"}
	f.tokens.tokens["user-1"] = []models.DeviceToken{
		{UserID: "user-1", Token: "tok-a"},
		{UserID: "user-1", Token: "tok-legacy"}, // registered copy of the legacy token
	}

	f.service.JoinRejected(f.family(), &models.User{ID: "user-1", AliasName: "alice"}, &models.JoinRequest{ID: 2, RequesterID: "user-1"})

	require.Len(t, f.dispatcher.sent, 1)
	assert.ElementsMatch(t, []string{"tok-a", "tok-legacy"}, f.dispatcher.sent[0], "legacy token must not be dispatched twice")
}

func TestInviteToUnregisteredEmail(t *testing.T) {
	f := newNotifierFixture(t)
	sender := &models.User{ID: "head-1", AliasName: "head-1"}

	f.service.InviteSent(f.family(), sender, nil, "stranger@example.com", "come join")

	assert.Empty(t, f.notifications.created, "no inbox record without an account")
	assert.Empty(t, f.dispatcher.sent)
}

func TestMemberJoinedFansOutToOthers(t *testing.T) {
	f := newNotifierFixture(t)
	f.families.members["fam-1"] = []string{"head-1", "user-1", "user-2"}
	f.users.users["head-1"] = models.User{ID: "head-1", AliasName: "head-1"}
	f.users.users["user-1"] = models.User{ID: "user-1", AliasName: "alice"}

	f.service.MemberJoined(f.family(), &models.User{ID: "user-2", AliasName: "bob"})

	require.Len(t, f.notifications.created, 2)
	receivers := []string{f.notifications.created[0].ReceiverID, f.notifications.created[1].ReceiverID}
	assert.ElementsMatch(t, []string{"head-1", "user-1"}, receivers, "the joiner is excluded from their own fan-out")
}

func TestReceiverWithoutTokensSkipsDispatch(t *testing.T) {
	f := newNotifierFixture(t)
	f.users.users["user-1"] = models.User{ID: "user-1", AliasName: "alice"}

	f.service.MemberRemoved(f.family(), &models.User{ID: "user-1", AliasName: "alice"}, "")

	require.Len(t, f.notifications.created, 1)
	assert.Empty(t, f.dispatcher.sent)
}
