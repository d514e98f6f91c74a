package booking

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         bool
	}{
		{"candidate starts inside existing", "2024-01-04", "2024-01-10", "2024-01-01", "2024-01-05", true},
		{"candidate after existing", "2024-01-06", "2024-01-10", "2024-01-01", "2024-01-05", false},
		{"candidate before existing", "2024-01-01", "2024-01-03", "2024-01-04", "2024-01-08", false},
		{"shared boundary day", "2024-01-05", "2024-01-08", "2024-01-01", "2024-01-05", true},
		{"candidate swallows existing", "2024-01-01", "2024-01-31", "2024-01-10", "2024-01-12", true},
		{"existing swallows candidate", "2024-01-10", "2024-01-12", "2024-01-01", "2024-01-31", true},
		{"single day exact match", "2024-01-05", "2024-01-05", "2024-01-05", "2024-01-05", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(day(tt.aStart), day(tt.aEnd), day(tt.bStart), day(tt.bEnd))
			if got != tt.want {
				t.Errorf("Overlaps(%s..%s, %s..%s) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}

func TestHoldsCalendar(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusActive, true},
		{StatusOverdue, true},
		{StatusCompleted, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		if got := holdsCalendar(tt.status); got != tt.want {
			t.Errorf("holdsCalendar(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending: {StatusActive, StatusCancelled},
		StatusActive:  {StatusCompleted, StatusCancelled, StatusOverdue},
		StatusOverdue: {StatusCompleted, StatusCancelled},
	}
	all := []Status{StatusPending, StatusActive, StatusCompleted, StatusCancelled, StatusOverdue}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}
