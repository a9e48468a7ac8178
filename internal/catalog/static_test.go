package catalog

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixture() []Business {
	return []Business{
		{ID: "1", Name: "Alpha Cafe", Category: "Cafes", Location: "Koramangala", Description: "Filter coffee", Rating: 4.0, Reviews: 10},
		{ID: "2", Name: "Beta Biryani", Category: "Restaurants", Location: "Koramangala 5th Block", Description: "Spicy biryani", Rating: 4.8, Reviews: 5},
		{ID: "3", Name: "Gamma Gym", Category: "Fitness", Location: "HSR Layout", Description: "Weights and coffee bar", Rating: 3.5, Reviews: 50},
		{ID: "4", Name: "Delta Diner", Category: "Restaurants", Location: "Indiranagar", Description: "Dosa all day", Rating: 4.2, Reviews: 30},
	}
}

func ids(list []Business) []ID {
	out := make([]ID, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}

func TestStaticServiceFilters(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(fixture())
	ctx := context.Background()

	tests := []struct {
		name  string
		query Query
		want  []ID
	}{
		{name: "default sort is rating desc", query: Query{}, want: []ID{"2", "4", "1", "3"}},
		{name: "category exact", query: Query{Category: "Restaurants"}, want: []ID{"2", "4"}},
		{name: "category all", query: Query{Category: "all"}, want: []ID{"2", "4", "1", "3"}},
		{name: "minimum rating", query: Query{Rating: "4.2"}, want: []ID{"2", "4"}},
		{name: "location substring ignores case", query: Query{Location: "KORAMANGALA"}, want: []ID{"2", "1"}},
		{name: "search spans name description category", query: Query{Search: "coffee"}, want: []ID{"1", "3"}},
		{name: "search category", query: Query{Search: "fitness"}, want: []ID{"3"}},
		{name: "sort by reviews", query: Query{Sort: "reviews"}, want: []ID{"3", "4", "1", "2"}},
		{name: "sort by name", query: Query{Sort: "name"}, want: []ID{"1", "2", "4", "3"}},
		{name: "unknown sort keeps order", query: Query{Sort: "random"}, want: []ID{"1", "2", "3", "4"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := svc.Businesses(ctx, tc.query)
			require.NoError(t, err)
			require.Equal(t, tc.want, ids(got))
		})
	}
}

func TestStaticServiceRejectsBadRating(t *testing.T) {
	t.Parallel()

	_, err := NewStaticService(fixture()).Businesses(context.Background(), Query{Rating: "lots"})
	require.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestStaticServiceDistinctValues(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(fixture())
	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Cafes", "Fitness", "Restaurants"}, categories)
}

func TestStaticServiceContactRequiresFields(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(fixture())
	reply, err := svc.SubmitContact(context.Background(), url.Values{"name": {"A"}, "email": {"a@b.co"}})
	require.NoError(t, err)
	require.False(t, reply.Success)
	require.Equal(t, msgRequiredFields, reply.Message)
	require.Empty(t, svc.Submissions())

	reply, err = svc.SubmitContact(context.Background(), url.Values{"name": {"A"}, "email": {"a@b.co"}, "message": {"hi"}})
	require.NoError(t, err)
	require.True(t, reply.Success)
	require.Equal(t, defaultSubject, svc.Submissions()[0].Subject)
}

func TestBundledSeedParses(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(nil)
	list, err := svc.Businesses(context.Background(), Query{})
	require.NoError(t, err)
	require.Greater(t, len(list), 6, "seed should need more than one page")

	withCoords, without := 0, 0
	for _, b := range list {
		require.NotEmpty(t, b.ID)
		if b.HasCoordinates() {
			withCoords++
		} else {
			without++
		}
	}
	require.Positive(t, withCoords)
	require.Positive(t, without)
}

func TestSimilarAndFind(t *testing.T) {
	t.Parallel()

	list := fixture()
	b, ok := Find(list, "4")
	require.True(t, ok)

	similar := Similar(list, b, 3)
	require.Equal(t, []ID{"2"}, ids(similar))

	_, ok = Find(list, "missing")
	require.False(t, ok)
}

func TestOpenStatus(t *testing.T) {
	t.Parallel()

	open, closes := OpenStatus(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	require.True(t, open)
	require.Equal(t, "9:00 PM", closes)

	open, _ = OpenStatus(time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC))
	require.False(t, open)
}
