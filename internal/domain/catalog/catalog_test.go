package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fantasyrun/runner-market/internal/domain/catalog/mock"
)

const seasonOne = `{
  "season": "s1",
  "runners": [
    {"id": "r1", "name": "Eliud Kipchoge", "country": "KE"},
    {"id": "r2", "name": "Faith Kipyegon", "country": "KE"},
    {"id": "r3", "name": "Mo Farah", "country": "GB"},
    {"id": "", "name": "Missing Id"}
  ]
}`

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestRunnersCachesPerSeason(t *testing.T) {
	store := mock.NewMockObjectGetter(gomock.NewController(t))
	store.EXPECT().GetObject(gomock.Any(), "runners/s1/runners.json").Return(body(seasonOne), nil).Times(1)

	svc := NewService(store, "/runners/")
	for i := 0; i < 3; i++ {
		runners, err := svc.Runners(context.Background(), "s1")
		require.NoError(t, err)
		assert.Len(t, runners, 3)
	}
}

func TestRunnersReloadsAfterExpiry(t *testing.T) {
	store := mock.NewMockObjectGetter(gomock.NewController(t))
	store.EXPECT().GetObject(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) (io.ReadCloser, error) {
		return body(seasonOne), nil
	}).Times(2)

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(store, "runners")
	svc.now = func() time.Time { return now }

	_, err := svc.Runners(context.Background(), "s1")
	require.NoError(t, err)
	now = now.Add(svc.expiry)
	_, err = svc.Runners(context.Background(), "s1")
	require.NoError(t, err)
}

func TestRunnersErrors(t *testing.T) {
	tests := []struct {
		name   string
		season string
		body   string
		err    error
		want   error
	}{
		{name: "unknown season", season: "s9", err: ErrObjectNotFound, want: ErrUnknownSeason},
		{name: "empty", season: "s2", body: `{"season":"s2","runners":[]}`, want: ErrEmptyCatalog},
		{name: "storage down", season: "s3", err: errors.New("timeout")},
		{name: "bad json", season: "s4", body: `{"runners":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewMockObjectGetter(gomock.NewController(t))
			if tt.err != nil {
				store.EXPECT().GetObject(gomock.Any(), gomock.Any()).Return(nil, tt.err)
			} else {
				store.EXPECT().GetObject(gomock.Any(), gomock.Any()).Return(body(tt.body), nil)
			}

			_, err := NewService(store, "runners").Runners(context.Background(), tt.season)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}

	_, err := NewService(mock.NewMockObjectGetter(gomock.NewController(t)), "runners").Runners(context.Background(), "../etc")
	assert.ErrorIs(t, err, ErrUnknownSeason)
}

func TestSearch(t *testing.T) {
	store := mock.NewMockObjectGetter(gomock.NewController(t))
	store.EXPECT().GetObject(gomock.Any(), gomock.Any()).Return(body(seasonOne), nil)
	svc := NewService(store, "runners")

	got, err := svc.Search(context.Background(), "s1", "kip")
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Eliud Kipchoge", "Faith Kipyegon"}, names)

	all, err := svc.Search(context.Background(), "s1", " ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	svc.Invalidate("s1")
	_, ok := svc.cache.Get("s1")
	assert.False(t, ok)
}
