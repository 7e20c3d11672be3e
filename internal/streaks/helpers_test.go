package streaks

import (
	"testing"
	"time"

	"github.com/gdg-garage/wordstreak-api/internal/models"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db     *gorm.DB
	clock  *clockwork.FakeClock
	cal    *Calendar
	engine *Engine
}

// newTestEnv opens an in-memory database and pins "now" to the given local
// time in the reference timezone ("2006-01-02 15:04").
func newTestEnv(t *testing.T, now string) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cal, err := NewCalendar(DefaultTimezone)
	if err != nil {
		t.Fatalf("failed to load calendar: %v", err)
	}

	clock := clockwork.NewFakeClockAt(localTime(t, cal, now))
	return &testEnv{
		db:     db,
		clock:  clock,
		cal:    cal,
		engine: NewEngine(db, clock, cal),
	}
}

func localTime(t *testing.T, cal *Calendar, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, cal.Location())
	if err != nil {
		t.Fatalf("bad time %q: %v", value, err)
	}
	return ts
}

func (env *testEnv) participant(t *testing.T, name string) models.Participant {
	t.Helper()
	p := models.Participant{Name: name}
	if err := env.db.Create(&p).Error; err != nil {
		t.Fatalf("failed to create participant: %v", err)
	}
	return p
}

// entries records one word entry per local timestamp.
func (env *testEnv) entries(t *testing.T, participantID string, local ...string) {
	t.Helper()
	for _, value := range local {
		e := models.Entry{
			ParticipantID: participantID,
			Kind:          models.EntryKindWord,
			Content:       "serendipity",
		}
		e.CreatedAt = localTime(t, env.cal, value)
		if err := env.db.Create(&e).Error; err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
	}
}

// dailyEntries records an entry at noon for each day from first to last.
func (env *testEnv) dailyEntries(t *testing.T, participantID, first, last string) {
	t.Helper()
	for day := first; day <= last; day = ShiftDate(day, 1) {
		env.entries(t, participantID, day+" 12:00")
	}
}

func (env *testEnv) streakRow(t *testing.T, participantID string) models.ParticipantStreak {
	t.Helper()
	var row models.ParticipantStreak
	if err := env.db.Where("participant_id = ?", participantID).First(&row).Error; err != nil {
		t.Fatalf("failed to load streak row: %v", err)
	}
	return row
}

func (env *testEnv) badgeCount(t *testing.T, participantID string, tier models.BadgeTier) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(&models.ParticipantBadge{}).
		Where("participant_id = ? AND tier = ?", participantID, tier).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count badges: %v", err)
	}
	return count
}

func strPtr(s string) *string {
	return &s
}
