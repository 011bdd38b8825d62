package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/retry"
)

type stubDirectory struct {
	recipients []Recipient
	err        error
}

func (d *stubDirectory) ListRecipients(_ context.Context, audience Audience) ([]Recipient, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []Recipient
	for _, r := range d.recipients {
		if audience.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingSender struct {
	sent    []*Notification
	failFor map[string]error // recipient id -> permanent error
}

func (s *recordingSender) Send(_ context.Context, n *Notification) error {
	if err, ok := s.failFor[n.RecipientID]; ok {
		return retry.Permanent(err)
	}
	s.sent = append(s.sent, n)
	return nil
}

type memoryRepo struct {
	saved []*Notification
}

func (r *memoryRepo) Save(_ context.Context, n *Notification) error {
	r.saved = append(r.saved, n)
	return nil
}

func (r *memoryRepo) ListByRecipient(_ context.Context, recipientID string, limit int) ([]*Notification, error) {
	var out []*Notification
	for _, n := range r.saved {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestDispatcher_FansOutToMatchingRecipients(t *testing.T) {
	dir := &stubDirectory{recipients: []Recipient{
		{ID: "u1", Grade: 2, Enabled: true},
		{ID: "u2", Grade: 2, Enabled: true},
		{ID: "u3", Grade: 3, Enabled: true},
	}}
	sender := &recordingSender{}
	repo := &memoryRepo{}
	d := NewDispatcher(dir, sender, repo, nil)

	report, err := d.Dispatch(context.Background(), TypeScheduleChanged, Audience{Grade: 2}, "Class cancelled", "Math is off.")
	require.NoError(t, err)

	assert.Equal(t, Report{Matched: 2, Sent: 2}, report)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, StatusSent, sender.sent[0].Status)

	require.Len(t, repo.saved, 2)
	assert.NotNil(t, repo.saved[0].SentAt)
}

func TestDispatcher_SkipsDisabledRecipients(t *testing.T) {
	dir := &stubDirectory{recipients: []Recipient{
		{ID: "u1", Enabled: true},
		{ID: "u2", Enabled: false},
	}}
	sender := &recordingSender{}
	d := NewDispatcher(dir, sender, nil, nil)

	report, err := d.Dispatch(context.Background(), TypeWeeklyDigest, Audience{}, "Digest", "Your week.")
	require.NoError(t, err)

	assert.Equal(t, Report{Matched: 2, Sent: 1, Skipped: 1}, report)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "u1", sender.sent[0].RecipientID)
}

func TestDispatcher_OneFailureDoesNotBlockTheRest(t *testing.T) {
	dir := &stubDirectory{recipients: []Recipient{
		{ID: "u1", Enabled: true},
		{ID: "u2", Enabled: true},
		{ID: "u3", Enabled: true},
	}}
	sender := &recordingSender{failFor: map[string]error{"u2": errors.New("mailbox full")}}
	repo := &memoryRepo{}
	d := NewDispatcher(dir, sender, repo, nil)

	report, err := d.Dispatch(context.Background(), TypeNoticePublished, Audience{}, "Notice", "Read me.")
	require.NoError(t, err)

	assert.Equal(t, Report{Matched: 3, Sent: 2, Failed: 1}, report)

	// The failure is still recorded, with its error and attempt count.
	require.Len(t, repo.saved, 3)
	var failed *Notification
	for _, n := range repo.saved {
		if n.RecipientID == "u2" {
			failed = n
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Contains(t, failed.LastError, "mailbox full")
	assert.Equal(t, 1, failed.RetryCount)
}

func TestDispatcher_DirectoryFailure(t *testing.T) {
	dir := &stubDirectory{err: errors.New("directory down")}
	d := NewDispatcher(dir, &recordingSender{}, nil, nil)

	_, err := d.Dispatch(context.Background(), TypeWeeklyDigest, Audience{}, "Digest", "Your week.")
	assert.ErrorIs(t, err, shared.ErrExternalService)
}

func TestAudience_Matches(t *testing.T) {
	track := true
	tests := []struct {
		name     string
		audience Audience
		rec      Recipient
		want     bool
	}{
		{"global matches everyone", Audience{}, Recipient{ID: "u1"}, true},
		{"grade match", Audience{Grade: 2}, Recipient{Grade: 2}, true},
		{"grade mismatch", Audience{Grade: 2}, Recipient{Grade: 3}, false},
		{"grade set but recipient unset", Audience{Grade: 2}, Recipient{}, false},
		{"compound level label", Audience{Level: "N2-N3"}, Recipient{Level: "N2"}, true},
		{"group mismatch", Audience{GroupLevel: "A"}, Recipient{GroupLevel: "B"}, false},
		{"track match", Audience{ForeignerTrack: &track}, Recipient{ForeignerTrack: &track}, true},
		{"track unset on recipient passes", Audience{ForeignerTrack: &track}, Recipient{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.audience.Matches(tt.rec))
		})
	}
}

func TestNotification_StatusTransitions(t *testing.T) {
	n, err := NewNotification(TypeScheduleChanged, "u1", "t", "m")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, n.Status)

	require.NoError(t, n.MarkSending())
	require.NoError(t, n.MarkSent())
	assert.ErrorIs(t, n.MarkSent(), shared.ErrInvalidState)

	// A failed notification may retry.
	n2, _ := NewNotification(TypeScheduleChanged, "u1", "t", "m")
	require.NoError(t, n2.MarkSending())
	require.NoError(t, n2.MarkFailed(errors.New("boom")))
	assert.True(t, n2.Status.CanRetry())
	require.NoError(t, n2.MarkSending())
}

func TestNewNotification_Validation(t *testing.T) {
	_, err := NewNotification("bogus", "u1", "t", "m")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewNotification(TypeWeeklyDigest, "", "t", "m")
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = NewNotification(TypeWeeklyDigest, "u1", "t", "")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}
