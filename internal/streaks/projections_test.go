package streaks

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gdg-garage/wordstreak-api/internal/models"
	"gorm.io/gorm"
)

func TestCalendarView(t *testing.T) {
	env := newTestEnv(t, "2024-03-02 09:00")
	p := env.participant(t, "Ada")
	env.entries(t, p.ID,
		"2024-02-27 10:00",
		"2024-02-28 10:00",
		"2024-02-28 20:00",
		"2024-02-29 23:50",
		"2024-03-01 07:00",
		"2024-03-02 08:00",
	)

	view, err := env.engine.MonthCalendar(context.Background(), p.ID, "2024-02-01")
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}

	want := []string{"2024-02-27", "2024-02-28", "2024-02-29"}
	if !reflect.DeepEqual(view.Days, want) {
		t.Errorf("expected days %v, got %v", want, view.Days)
	}
	if view.ParticipationDays != 3 {
		t.Errorf("expected 3 participation days, got %d", view.ParticipationDays)
	}
	if view.CurrentStreak != 5 || view.LongestStreak != 5 {
		t.Errorf("expected streak 5/5, got %d/%d", view.CurrentStreak, view.LongestStreak)
	}
	if view.Today != "2024-03-02" {
		t.Errorf("expected today 2024-03-02, got %s", view.Today)
	}

	var count int64
	env.db.Model(&models.ParticipantStreak{}).Count(&count)
	if count != 0 {
		t.Errorf("calendar view must not persist anything, found %d streak rows", count)
	}

	t.Run("EmptyMonth", func(t *testing.T) {
		view, err := env.engine.MonthCalendar(context.Background(), p.ID, "2023-11-01")
		if err != nil {
			t.Fatalf("Calendar: %v", err)
		}
		if len(view.Days) != 0 || view.Days == nil {
			t.Errorf("expected empty non-nil days, got %#v", view.Days)
		}
	})

	t.Run("InvalidMonth", func(t *testing.T) {
		if _, err := env.engine.MonthCalendar(context.Background(), p.ID, "2024-13-01"); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("expected ErrInvalidMonth, got %v", err)
		}
	})

	t.Run("InvalidParticipant", func(t *testing.T) {
		if _, err := env.engine.MonthCalendar(context.Background(), "  ", "2024-02-01"); !errors.Is(err, ErrInvalidParticipant) {
			t.Errorf("expected ErrInvalidParticipant, got %v", err)
		}
	})
}

func TestLeaderboard(t *testing.T) {
	env := newTestEnv(t, "2024-03-10 18:00")
	ctx := context.Background()

	ada := env.participant(t, "Ada")
	grace := env.participant(t, "Grace")
	linus := env.participant(t, "Linus")
	idle := env.participant(t, "Idle")

	// Ada: 5 days, streak broken.
	env.dailyEntries(t, ada.ID, "2024-03-01", "2024-03-05")
	// Grace: 5 days ending today.
	env.dailyEntries(t, grace.ID, "2024-03-06", "2024-03-10")
	// Linus: 2 days.
	env.dailyEntries(t, linus.ID, "2024-03-09", "2024-03-10")
	// Idle only played last month.
	env.dailyEntries(t, idle.ID, "2024-02-01", "2024-02-10")

	if _, err := env.engine.UpdateParticipantStreak(ctx, grace.ID); err != nil {
		t.Fatalf("update: %v", err)
	}

	rows, err := env.engine.Leaderboard(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 ranked participants, got %d: %+v", len(rows), rows)
	}

	order := []string{rows[0].ParticipantID, rows[1].ParticipantID, rows[2].ParticipantID}
	want := []string{grace.ID, ada.ID, linus.ID}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected order %v, got %v", want, order)
	}

	top := rows[0]
	if top.Rank != 1 || top.ParticipationDays != 5 || top.CurrentStreak != 5 {
		t.Errorf("unexpected top row %+v", top)
	}
	if top.BadgeCount != 1 || top.HighestBadge != models.BadgeTierBronze {
		t.Errorf("expected bronze badge on top row, got %d/%s", top.BadgeCount, top.HighestBadge)
	}
	if rows[1].CurrentStreak != 0 || rows[1].LongestStreak != 5 {
		t.Errorf("expected broken streak 0/5 for second row, got %d/%d", rows[1].CurrentStreak, rows[1].LongestStreak)
	}
	if rows[2].Rank != 3 {
		t.Errorf("expected rank 3, got %d", rows[2].Rank)
	}

	t.Run("EmptyMonth", func(t *testing.T) {
		rows, err := env.engine.Leaderboard(ctx, "2023-01-01")
		if err != nil {
			t.Fatalf("Leaderboard: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
	})
}

func TestLeaderboardLoadsOnlyActiveParticipants(t *testing.T) {
	env := newTestEnv(t, "2024-03-10 18:00")
	ctx := context.Background()

	ada := env.participant(t, "Ada")
	idle := env.participant(t, "Idle")
	env.dailyEntries(t, ada.ID, "2024-02-25", "2024-03-02")
	env.dailyEntries(t, idle.ID, "2024-01-01", "2024-01-20")

	var loaded int64
	err := env.db.Callback().Query().After("gorm:query").Register("test:count_entries", func(db *gorm.DB) {
		if db.Statement.Table == "entries" {
			loaded += db.RowsAffected
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	rows, err := env.engine.Leaderboard(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != 1 || rows[0].ParticipantID != ada.ID {
		t.Fatalf("expected only Ada ranked, got %+v", rows)
	}
	// Ada's full history is loaded, including February, for the streak.
	if rows[0].ParticipationDays != 2 || rows[0].LongestStreak != 7 {
		t.Errorf("unexpected row %+v", rows[0])
	}
	if loaded != 7 {
		t.Errorf("expected 7 entry rows loaded, got %d", loaded)
	}
}
