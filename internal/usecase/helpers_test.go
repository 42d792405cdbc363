package usecase_test

import (
	"time"

	"github.com/runoshun/git-issue/internal/issuecache"
	"github.com/runoshun/git-issue/internal/testutil"
)

func newCache(gw *testutil.MockGateway) *issuecache.Cache {
	clock := testutil.NewMockClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	return issuecache.New(gw, issuecache.WithClock(clock))
}

func ptr[T any](v T) *T {
	return &v
}
