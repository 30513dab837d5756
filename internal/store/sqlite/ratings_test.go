package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alibiapp/alibi-server/internal/domain"
)

func mustCreateRating(t *testing.T, s *Store, id, excuseID string, rating int) {
	t.Helper()
	err := s.CreateRating(context.Background(), &domain.Rating{
		ID:        id,
		ExcuseID:  excuseID,
		Rating:    rating,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateRating: %v", err)
	}
}

func TestGetRatingSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateExcuse(t, s, "exc-1", "Late to work")
	for i, rating := range []int{3, 4, 5} {
		mustCreateRating(t, s, fmt.Sprintf("rat-%d", i), "exc-1", rating)
	}

	summary, err := s.GetRatingSummary(ctx, "exc-1")
	if err != nil {
		t.Fatalf("GetRatingSummary: %v", err)
	}
	if summary.AverageRating != 4 {
		t.Errorf("AverageRating: got %v, want 4", summary.AverageRating)
	}
	if summary.TotalRatings != 3 {
		t.Errorf("TotalRatings: got %d, want 3", summary.TotalRatings)
	}
}

func TestGetRatingSummary_Unrated(t *testing.T) {
	s := newTestStore(t)

	mustCreateExcuse(t, s, "exc-1", "Late to work")

	summary, err := s.GetRatingSummary(context.Background(), "exc-1")
	if err != nil {
		t.Fatalf("GetRatingSummary: %v", err)
	}
	if summary.AverageRating != 0 || summary.TotalRatings != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestListTopRated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A averages 5.0 over two ratings, B averages 1.0, C has none.
	mustCreateExcuse(t, s, "exc-a", "Late to work")
	mustCreateExcuse(t, s, "exc-b", "Missed deadline")
	mustCreateExcuse(t, s, "exc-c", "Forgot birthday")
	mustCreateRating(t, s, "rat-1", "exc-a", 5)
	mustCreateRating(t, s, "rat-2", "exc-a", 5)
	mustCreateRating(t, s, "rat-3", "exc-b", 1)

	if err := s.CreateShare(ctx, &domain.Share{
		ID:          "shr-1",
		ExcuseID:    "exc-a",
		ShareMethod: "clipboard",
		CreatedAt:   time.Now(),
	}); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	top, err := s.ListTopRated(ctx, 10)
	if err != nil {
		t.Fatalf("ListTopRated: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 excuses, got %d", len(top))
	}

	if top[0].ID != "exc-a" {
		t.Errorf("first: got %s, want exc-a", top[0].ID)
	}
	if top[0].AverageRating != 5 {
		t.Errorf("first AverageRating: got %v, want 5", top[0].AverageRating)
	}
	if top[0].TotalRatings != 2 {
		t.Errorf("first TotalRatings: got %d, want 2", top[0].TotalRatings)
	}
	if top[0].ShareCount != 1 {
		t.Errorf("first ShareCount: got %d, want 1", top[0].ShareCount)
	}

	if top[1].ID != "exc-b" {
		t.Errorf("second: got %s, want exc-b", top[1].ID)
	}

	// Unrated excuses sort last.
	if top[2].ID != "exc-c" {
		t.Errorf("last: got %s, want exc-c", top[2].ID)
	}
	if top[2].AverageRating != 0 || top[2].TotalRatings != 0 {
		t.Errorf("unrated aggregate: got avg=%v total=%d, want zeros", top[2].AverageRating, top[2].TotalRatings)
	}
}

func TestListTopRated_Limit(t *testing.T) {
	s := newTestStore(t)

	for i := range 5 {
		mustCreateExcuse(t, s, fmt.Sprintf("exc-%d", i), "Late to work")
	}

	top, err := s.ListTopRated(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListTopRated: %v", err)
	}
	if len(top) != 2 {
		t.Errorf("expected 2 excuses, got %d", len(top))
	}
}
