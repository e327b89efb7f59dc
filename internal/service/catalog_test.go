package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgsq/rgsq-go/internal/model"
)

// recordingRemover fakes the upload store for delete tests.
type recordingRemover struct {
	removed []string
	fail    error
}

func (r *recordingRemover) Remove(ref string) error {
	r.removed = append(r.removed, ref)
	return r.fail
}

func TestCreateAndGet_RoundTrip(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)
	ctx := context.Background()

	created, err := s.Create(ctx, CreateEventParams{
		Title:     "Seminar",
		EventTime: "2025-11-01 18:30",
		Location:  "Brisbane",
		Price:     "10.5",
	})
	require.NoError(t, err)

	fetched, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seminar", fetched.Title)
	assert.Equal(t, "2025-11-01 18:30", fetched.EventTime)
	assert.Equal(t, "Brisbane", fetched.Location)
	require.True(t, fetched.Price.Valid)
	assert.Equal(t, 10.5, fetched.Price.Float64)
	assert.Equal(t, model.VisibilityPublic, fetched.Visibility, "visibility defaults to public")
}

func TestCreate_Validation(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		params  CreateEventParams
		wantErr error
	}{
		{"missing title", CreateEventParams{EventTime: "2025-11-01 18:30", Location: "Brisbane"}, nil},
		{"missing time", CreateEventParams{Title: "X", Location: "Brisbane"}, nil},
		{"missing location", CreateEventParams{Title: "X", EventTime: "2025-11-01 18:30"}, nil},
		{"bad price", CreateEventParams{Title: "X", EventTime: "2025-11-01 18:30", Location: "B", Price: "ten"}, ErrInvalidPrice},
		{"negative price", CreateEventParams{Title: "X", EventTime: "2025-11-01 18:30", Location: "B", Price: "-1"}, ErrInvalidPrice},
		{"nan price", CreateEventParams{Title: "X", EventTime: "2025-11-01 18:30", Location: "B", Price: "NaN"}, ErrInvalidPrice},
		{"infinite price", CreateEventParams{Title: "X", EventTime: "2025-11-01 18:30", Location: "B", Price: "+Inf"}, ErrInvalidPrice},
		{"bad visibility", CreateEventParams{Title: "X", EventTime: "2025-11-01 18:30", Location: "B", Visibility: "secret"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.params)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	// No partial rows committed by any failed create
	count, err := countEvents(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestCreate_UnpricedAndFree(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)
	ctx := context.Background()

	unpriced, err := s.Create(ctx, CreateEventParams{Title: "A", EventTime: "2025-11-01 18:30", Location: "B"})
	require.NoError(t, err)
	assert.False(t, unpriced.Price.Valid, "empty price means not priced")

	free, err := s.Create(ctx, CreateEventParams{Title: "B", EventTime: "2025-11-02 18:30", Location: "B", Price: "0"})
	require.NoError(t, err)
	require.True(t, free.Price.Valid, "zero is an explicit price, not absence")
	assert.Equal(t, 0.0, free.Price.Float64)
}

func TestList_VisibilityFiltering(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, CreateEventParams{Title: "Open day", EventTime: "2025-10-01 10:00", Location: "B"})
	require.NoError(t, err)
	_, err = s.Create(ctx, CreateEventParams{Title: "AGM", EventTime: "2025-10-02 10:00", Location: "B", Visibility: model.VisibilityMember})
	require.NoError(t, err)

	guest, err := s.List(ctx, false, 1, DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, guest.Items, 1)
	assert.Equal(t, "Open day", guest.Items[0].Title)
	assert.Equal(t, 1, guest.TotalPages)
	assert.EqualValues(t, 1, guest.TotalItems, "member-only events excluded from totals too")

	member, err := s.List(ctx, true, 1, DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, member.Items, 2)
	assert.Equal(t, "Open day", member.Items[0].Title, "ascending by event_time")
	assert.Equal(t, "AGM", member.Items[1].Title)
}

func TestList_Pagination(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := s.Create(ctx, CreateEventParams{
			Title:     fmt.Sprintf("E%d", i),
			EventTime: fmt.Sprintf("2025-12-%02d 10:00", i+1),
			Location:  "QLD",
		})
		require.NoError(t, err)
	}

	page1, err := s.List(ctx, false, 1, 6)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 6)
	assert.Equal(t, 2, page1.TotalPages, "ceil(8/6) = 2")

	page2, err := s.List(ctx, false, 2, 6)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 2)

	// Out-of-range page: empty items, correct totals, no error
	page9, err := s.List(ctx, false, 9, 6)
	require.NoError(t, err)
	assert.Empty(t, page9.Items)
	assert.Equal(t, 2, page9.TotalPages)
}

func TestList_EmptyCatalog(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)

	page, err := s.List(context.Background(), false, 1, 6)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListAdmin_Descending(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, CreateEventParams{Title: "Early", EventTime: "2025-10-01 10:00", Location: "B"})
	require.NoError(t, err)
	_, err = s.Create(ctx, CreateEventParams{Title: "Late", EventTime: "2025-12-01 10:00", Location: "B"})
	require.NoError(t, err)

	page, err := s.ListAdmin(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Late", page.Items[0].Title, "management view lists newest first")
}

func TestGetVisible_MemberOnlyDeny(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)
	ctx := context.Background()

	event, err := s.Create(ctx, CreateEventParams{
		Title: "AGM", EventTime: "2025-10-02 10:00", Location: "B",
		Visibility: model.VisibilityMember,
	})
	require.NoError(t, err)

	_, err = s.GetVisible(ctx, event.ID, false)
	assert.ErrorIs(t, err, ErrMemberOnly, "authorization failure, not NotFound")

	got, err := s.GetVisible(ctx, event.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "AGM", got.Title)

	_, err = s.GetVisible(ctx, 9999, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	remover := &recordingRemover{}
	s := NewCatalogService(db, remover)
	ctx := context.Background()

	event, err := s.Create(ctx, CreateEventParams{
		Title: "Doomed", EventTime: "2025-10-02 10:00", Location: "B",
		Image: "events/abc.jpg",
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, event.ID))
	assert.Equal(t, []string{"events/abc.jpg"}, remover.removed, "image released on delete")

	_, err = s.Get(ctx, event.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_NotFoundLeavesTableUnchanged(t *testing.T) {
	db := testDB(t)
	s := NewCatalogService(db, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, CreateEventParams{Title: "Keep", EventTime: "2025-10-02 10:00", Location: "B"})
	require.NoError(t, err)

	err = s.Delete(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := countEvents(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "row count unchanged by failed delete")
}

func TestDelete_ImageRemovalFailureDoesNotFailDelete(t *testing.T) {
	db := testDB(t)
	remover := &recordingRemover{fail: fmt.Errorf("disk on fire")}
	s := NewCatalogService(db, remover)
	ctx := context.Background()

	event, err := s.Create(ctx, CreateEventParams{
		Title: "Doomed", EventTime: "2025-10-02 10:00", Location: "B",
		Image: "events/abc.jpg",
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, event.ID), "asset removal is best-effort")
}
