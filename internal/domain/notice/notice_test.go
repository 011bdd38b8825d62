package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

func TestNewNotice(t *testing.T) {
	n, err := NewNotice(NewNoticeParams{
		Title:    "  Midterm schedule change  ",
		Body:     "Periods 3-4 move to Friday.",
		Audience: Audience{Grade: 2},
		AuthorID: "admin-1",
	})
	require.NoError(t, err)

	assert.True(t, n.ID.IsValid())
	assert.Equal(t, "Midterm schedule change", n.Title)
	assert.False(t, n.IsPublished())
	assert.False(t, n.Audience.IsGlobal())
}

func TestNewNotice_EmptyTitle(t *testing.T) {
	_, err := NewNotice(NewNoticeParams{Title: "   "})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestNotice_Publish(t *testing.T) {
	n, err := NewNotice(NewNoticeParams{Title: "Holiday", AuthorID: "admin-1"})
	require.NoError(t, err)

	require.NoError(t, n.Publish())
	assert.True(t, n.IsPublished())
	require.NotNil(t, n.PublishedAt)

	err = n.Publish()
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestAudience_IsGlobal(t *testing.T) {
	assert.True(t, Audience{}.IsGlobal())
	assert.False(t, Audience{Grade: 1}.IsGlobal())
	assert.False(t, Audience{Level: "N2"}.IsGlobal())
	track := false
	assert.False(t, Audience{ForeignerTrack: &track}.IsGlobal())
}
