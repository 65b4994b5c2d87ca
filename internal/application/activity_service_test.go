package application

import (
	"context"
	"errors"
	"testing"
)

type activityRepoStub struct {
	events []ActivityEvent
	err    error
}

func (a activityRepoStub) ListActivity(ctx context.Context) ([]ActivityEvent, error) {
	return a.events, a.err
}

func TestActivityService_ListActivity(t *testing.T) {
	repo := activityRepoStub{events: []ActivityEvent{
		{ID: "e1", RoomNumber: 101},
		{ID: "e2", RoomNumber: 102},
		{ID: "e3", RoomNumber: 101},
		{ID: "e4", RoomNumber: 101},
	}}
	svc := NewActivityService(repo, nil)

	cases := []struct {
		name  string
		query ActivityQuery
		want  []string
	}{
		{name: "newest first", query: ActivityQuery{}, want: []string{"e4", "e3", "e2", "e1"}},
		{name: "by room", query: ActivityQuery{Room: intPtr(101)}, want: []string{"e4", "e3", "e1"}},
		{name: "limit", query: ActivityQuery{Room: intPtr(101), Limit: 2}, want: []string{"e4", "e3"}},
		{name: "unknown room", query: ActivityQuery{Room: intPtr(999)}, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, err := svc.ListActivity(context.Background(), tc.query)
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if len(events) != len(tc.want) {
				t.Fatalf("expected %v, got %+v", tc.want, events)
			}
			for i := range events {
				if events[i].ID != tc.want[i] {
					t.Fatalf("expected %v, got %+v", tc.want, events)
				}
			}
		})
	}

	failing := NewActivityService(activityRepoStub{err: errors.New("boom")}, nil)
	if _, err := failing.ListActivity(context.Background(), ActivityQuery{}); err == nil {
		t.Fatalf("expected error")
	}
}
