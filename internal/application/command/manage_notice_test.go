package command

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notice"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

type memNoticeRepo struct {
	notices map[notice.NoticeID]*notice.Notice
}

func newMemNoticeRepo() *memNoticeRepo {
	return &memNoticeRepo{notices: make(map[notice.NoticeID]*notice.Notice)}
}

func (r *memNoticeRepo) Save(ctx context.Context, n *notice.Notice) error {
	cp := *n
	r.notices[n.ID] = &cp
	return nil
}

func (r *memNoticeRepo) GetByID(ctx context.Context, id notice.NoticeID) (*notice.Notice, error) {
	n, ok := r.notices[id]
	if !ok {
		return nil, shared.ErrNoticeNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *memNoticeRepo) List(ctx context.Context, filter notice.ListFilter) ([]*notice.Notice, error) {
	var out []*notice.Notice
	for _, n := range r.notices {
		if filter.PublishedOnly && !n.IsPublished() {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memNoticeRepo) Delete(ctx context.Context, id notice.NoticeID) error {
	delete(r.notices, id)
	return nil
}

func TestNoticeHandler_CreateAndPublish(t *testing.T) {
	repo := newMemNoticeRepo()
	publisher := &stubPublisher{}
	handler := NewNoticeHandler(repo, publisher, nil)

	created, err := handler.Create(context.Background(), CreateNoticeCommand{
		Title:    "Midterm week",
		Body:     "Regular classes pause during midterms.",
		Audience: notice.Audience{Grade: 2},
		AuthorID: "admin-1",
	})
	require.NoError(t, err)
	assert.False(t, created.IsPublished())
	assert.Empty(t, publisher.events, "drafts must not announce")

	published, err := handler.Publish(context.Background(), PublishNoticeCommand{NoticeID: created.ID.String()})
	require.NoError(t, err)
	assert.True(t, published.IsPublished())

	require.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventNoticePublished, publisher.events[0].EventType())

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPublished())
}

func TestNoticeHandler_PublishTwiceFails(t *testing.T) {
	repo := newMemNoticeRepo()
	publisher := &stubPublisher{}
	handler := NewNoticeHandler(repo, publisher, nil)

	created, err := handler.Create(context.Background(), CreateNoticeCommand{Title: "One-shot"})
	require.NoError(t, err)

	_, err = handler.Publish(context.Background(), PublishNoticeCommand{NoticeID: created.ID.String()})
	require.NoError(t, err)

	_, err = handler.Publish(context.Background(), PublishNoticeCommand{NoticeID: created.ID.String()})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Len(t, publisher.events, 1, "the event fires at most once")
}

func TestNoticeHandler_PublishMissing(t *testing.T) {
	handler := NewNoticeHandler(newMemNoticeRepo(), nil, nil)

	_, err := handler.Publish(context.Background(), PublishNoticeCommand{NoticeID: "no-such"})
	assert.True(t, shared.IsNotFound(err))
}

func TestNoticeHandler_CreateEmptyTitle(t *testing.T) {
	handler := NewNoticeHandler(newMemNoticeRepo(), nil, nil)

	_, err := handler.Create(context.Background(), CreateNoticeCommand{Title: "   "})
	assert.True(t, shared.IsValidation(err))
}

func TestNoticeHandler_PinAndDelete(t *testing.T) {
	repo := newMemNoticeRepo()
	handler := NewNoticeHandler(repo, nil, nil)

	created, err := handler.Create(context.Background(), CreateNoticeCommand{Title: "Pin me"})
	require.NoError(t, err)

	pinned, err := handler.Pin(context.Background(), PinNoticeCommand{NoticeID: created.ID.String(), Pinned: true})
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)

	require.NoError(t, handler.Delete(context.Background(), DeleteNoticeCommand{NoticeID: created.ID.String()}))
	_, err = repo.GetByID(context.Background(), created.ID)
	assert.True(t, shared.IsNotFound(err))
}
