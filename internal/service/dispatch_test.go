package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/postrelay/internal/domain"
	"github.com/set-night/postrelay/internal/repository"
)

func newDispatcher(dir *fakeDirectory, classifier *countingClassifier, m *fakeMessenger) (*Dispatcher, *repository.MemoryProposals) {
	ledger := repository.NewMemoryProposals()
	return NewDispatcher(dir, classifier, m, ledger, DispatcherOptions{Concurrency: 3}), ledger
}

func TestDispatcher_ClassifiesOncePerDraft(t *testing.T) {
	admins := make([]int64, 10)
	for i := range admins {
		admins[i] = int64(i + 1)
	}
	dir := &fakeDirectory{channels: []domain.Channel{{ID: "100", Admins: admins}}}
	classifier := &countingClassifier{}
	m := newFakeMessenger()
	d, ledger := newDispatcher(dir, classifier, m)

	report, err := d.Dispatch(context.Background(), domain.Draft{Text: "hi"}, "100")
	require.NoError(t, err)

	assert.Equal(t, int32(1), classifier.calls.Load())
	assert.Equal(t, 10, report.Delivered)
	assert.Len(t, m.copies, 10)
	assert.Len(t, m.texts, 10)

	instances, err := ledger.Instances(context.Background(), report.ProposalID)
	require.NoError(t, err)
	assert.Len(t, instances, 10)
}

func TestDispatcher_UnreachableAdmins(t *testing.T) {
	dir := &fakeDirectory{channels: []domain.Channel{{ID: "100", Admins: []int64{1, 2, 3, 4, 5}}}}
	m := newFakeMessenger()
	m.unreachable[domain.UserChat(1)] = true
	m.unreachable[domain.UserChat(4)] = true
	m.failCopyTo[domain.UserChat(5)] = true
	d, _ := newDispatcher(dir, &countingClassifier{}, m)

	report, err := d.Dispatch(context.Background(), domain.Draft{Text: "hi"}, "100")
	require.NoError(t, err)

	assert.Equal(t, 5, report.Admins)
	assert.Equal(t, 2, report.Delivered)
	assert.Equal(t, 3, report.Failed)
	for _, admin := range []int64{2, 3} {
		assert.Len(t, m.copiesTo(domain.UserChat(admin)), 1, fmt.Sprintf("admin %d", admin))
	}
}

func TestDispatcher_NoAdmins(t *testing.T) {
	dir := &fakeDirectory{}
	classifier := &countingClassifier{}
	m := newFakeMessenger()
	d, _ := newDispatcher(dir, classifier, m)

	report, err := d.Dispatch(context.Background(), domain.Draft{Text: "hi"}, "100")
	require.NoError(t, err)

	assert.Zero(t, report.Admins)
	assert.Empty(t, m.copies)
	assert.Zero(t, classifier.calls.Load())
}

func TestDispatcher_ClassifierFailure(t *testing.T) {
	dir := &fakeDirectory{channels: []domain.Channel{{ID: "100", Name: "News", Admins: []int64{1}}}}
	classifier := &countingClassifier{err: errors.New("model offline")}
	m := newFakeMessenger()
	d, _ := newDispatcher(dir, classifier, m)

	report, err := d.Dispatch(context.Background(), domain.Draft{Text: "hi"}, "100")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Delivered)
	texts := m.textsTo(domain.UserChat(1))
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "unknown (0%)")
}

func TestDispatcher_CancelledContextStillDelivers(t *testing.T) {
	dir := &fakeDirectory{channels: []domain.Channel{{ID: "100", Admins: []int64{1, 2}}}}
	m := newFakeMessenger()
	d, _ := newDispatcher(dir, &countingClassifier{}, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := d.Dispatch(ctx, domain.Draft{Text: "hi"}, "100")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Delivered)
}

func TestNotice(t *testing.T) {
	got := Notice("", "News", domain.Classification{Label: "event", Confidence: 0.294, Spam: "ok", Keywords: "k"})
	assert.Equal(t, "📝 New post for News from anonymous\nTopic: event (29%)\nok\nk", got)
}
