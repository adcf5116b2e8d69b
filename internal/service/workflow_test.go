package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/postrelay/internal/domain"
	"github.com/set-night/postrelay/internal/repository"
)

type workflow struct {
	dir        *fakeDirectory
	members    *fakeMembers
	messenger  *fakeMessenger
	classifier *countingClassifier
	sessions   *repository.MemorySessions
	ledger     *repository.MemoryProposals
	conv       *Conversation
	publisher  *Publisher
}

// newWorkflow wires the directory from the reference scenario: channel 100
// "News" administered by users 1 and 2, with user 7 as a member.
func newWorkflow(t *testing.T) *workflow {
	t.Helper()
	w := &workflow{
		dir: &fakeDirectory{channels: []domain.Channel{
			{ID: "100", Name: "News", Admins: []int64{1, 2}},
		}},
		members: &fakeMembers{status: map[domain.ChannelID]map[int64]domain.MemberStatus{
			"100": {7: domain.MemberStatusMember},
		}},
		messenger: newFakeMessenger(),
		classifier: &countingClassifier{result: domain.Classification{
			Label:      "greeting",
			Confidence: 0.9,
			Spam:       "not spam",
			Keywords:   "hello",
		}},
		sessions: repository.NewMemorySessions(0),
		ledger:   repository.NewMemoryProposals(),
	}

	resolver := NewPermissionResolver(w.dir, w.members)
	dispatcher := NewDispatcher(w.dir, w.classifier, w.messenger, w.ledger, DispatcherOptions{Concurrency: 4})
	w.conv = NewConversation(w.sessions, resolver, w.dir, dispatcher)
	w.publisher = NewPublisher(w.dir, w.messenger, w.ledger)
	return w
}

func (w *workflow) state(t *testing.T, userID int64) domain.State {
	t.Helper()
	s, err := w.conv.State(context.Background(), userID)
	require.NoError(t, err)
	return s
}

func (w *workflow) submitHello(t *testing.T) DispatchReport {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.conv.Reset(ctx, 7))

	channels, err := w.conv.RequestSubmission(ctx, 7)
	require.NoError(t, err)
	require.Len(t, channels, 1)

	_, err = w.conv.SelectChannel(ctx, 7, channels[0].ID)
	require.NoError(t, err)

	report, err := w.conv.SubmitDraft(ctx, domain.Draft{
		Content:       domain.Content{ChatID: 7, MessageID: 55},
		Text:          "Hello",
		SubmitterID:   7,
		SubmitterName: "Alice",
	})
	require.NoError(t, err)
	return report
}

func TestConversation_NoEligibleChannels(t *testing.T) {
	w := newWorkflow(t)
	ctx := context.Background()

	_, err := w.conv.RequestSubmission(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNoChannels)
	assert.Equal(t, domain.StateIdle, w.state(t, 8))
}

func TestConversation_NoEligibleChannelsKeepsPendingState(t *testing.T) {
	w := newWorkflow(t)
	ctx := context.Background()
	require.NoError(t, w.sessions.Put(ctx, domain.Session{UserID: 8, State: domain.StateAwaitingDraft, Channel: "100"}))

	_, err := w.conv.RequestSubmission(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNoChannels)

	s, err := w.sessions.Get(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingDraft, s.State)
	assert.Equal(t, domain.ChannelID("100"), s.Channel)
}

func TestConversation_SelectChannel(t *testing.T) {
	w := newWorkflow(t)
	w.dir.channels = append(w.dir.channels, domain.Channel{ID: "200", Admins: []int64{3}})
	w.members.status["200"] = map[int64]domain.MemberStatus{7: domain.MemberStatusAdministrator}
	ctx := context.Background()

	channels, err := w.conv.RequestSubmission(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, channels, 2)
	assert.Equal(t, domain.StateAwaitingChannelChoice, w.state(t, 7))

	ch, err := w.conv.SelectChannel(ctx, 7, "100")
	require.NoError(t, err)
	assert.Equal(t, "News", ch.DisplayName())

	s, err := w.sessions.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingDraft, s.State)
	assert.Equal(t, domain.ChannelID("100"), s.Channel)
}

func TestConversation_OutOfOrderEvents(t *testing.T) {
	w := newWorkflow(t)
	ctx := context.Background()

	_, err := w.conv.SelectChannel(ctx, 7, "100")
	assert.ErrorIs(t, err, domain.ErrUnexpectedState)

	_, err = w.conv.SubmitDraft(ctx, domain.Draft{SubmitterID: 7, Text: "x"})
	assert.ErrorIs(t, err, domain.ErrUnexpectedState)
	assert.Zero(t, w.classifier.calls.Load())
}

func TestConversation_ResetFromAnyState(t *testing.T) {
	states := []domain.Session{
		{UserID: 7, State: domain.StateIdle},
		{UserID: 7, State: domain.StateAwaitingChannelChoice},
		{UserID: 7, State: domain.StateAwaitingDraft, Channel: "100"},
	}
	for _, s := range states {
		t.Run(string(s.State), func(t *testing.T) {
			w := newWorkflow(t)
			ctx := context.Background()
			require.NoError(t, w.sessions.Put(ctx, s))

			require.NoError(t, w.conv.Reset(ctx, 7))

			got, err := w.sessions.Get(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, domain.StateIdle, got.State)
			assert.Empty(t, got.Channel)
		})
	}
}

func TestConversation_SubmitScenario(t *testing.T) {
	w := newWorkflow(t)

	report := w.submitHello(t)

	assert.Equal(t, domain.StateIdle, w.state(t, 7))
	assert.Equal(t, int32(1), w.classifier.calls.Load())
	assert.Equal(t, 2, report.Admins)
	assert.Equal(t, 2, report.Delivered)

	for _, admin := range []int64{1, 2} {
		to := domain.UserChat(admin)

		texts := w.messenger.textsTo(to)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "News")
		assert.Contains(t, texts[0], "greeting")
		assert.Contains(t, texts[0], "90%")
		assert.Contains(t, texts[0], "not spam")
		assert.Contains(t, texts[0], "hello")
		assert.Contains(t, texts[0], "Alice")

		copies := w.messenger.copiesTo(to)
		require.Len(t, copies, 1)
		assert.Equal(t, domain.Content{ChatID: 7, MessageID: 55}, copies[0].src)
		require.Len(t, copies[0].controls, 1)

		channel, proposalID, err := ParsePublishData(copies[0].controls[0].Data)
		require.NoError(t, err)
		assert.Equal(t, domain.ChannelID("100"), channel)
		assert.Equal(t, report.ProposalID, proposalID)
	}
}
