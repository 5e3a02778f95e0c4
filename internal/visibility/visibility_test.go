package visibility

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
)

func TestNormalize(t *testing.T) {
	a, r, d, err := Normalize([]domain.MessageStatus{domain.StatusAvailable, domain.StatusDeleted})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !a || r || !d {
		t.Fatalf("flags = %v %v %v, want true false true", a, r, d)
	}

	// Duplicates collapse.
	a, r, d, err = Normalize([]domain.MessageStatus{domain.StatusReserved, domain.StatusReserved})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if a || !r || d {
		t.Fatalf("flags = %v %v %v, want false true false", a, r, d)
	}

	if _, _, _, err := Normalize(nil); !errors.Is(err, ErrEmptyStatusSet) {
		t.Fatalf("empty set error = %v, want ErrEmptyStatusSet", err)
	}
	if _, _, _, err := Normalize([]domain.MessageStatus{domain.MessageStatus(9)}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestPredicate_FullSetIsUnconstrained(t *testing.T) {
	pred, err := Predicate([]domain.MessageStatus{
		domain.StatusAvailable, domain.StatusReserved, domain.StatusDeleted,
	}, time.Now())
	if err != nil {
		t.Fatalf("Predicate: %v", err)
	}
	if pred != nil {
		t.Fatalf("full set predicate = %#v, want nil", pred)
	}
}

func TestPredicate_EmptySet(t *testing.T) {
	if _, err := Predicate(nil, time.Now()); !errors.Is(err, ErrEmptyStatusSet) {
		t.Fatalf("error = %v, want ErrEmptyStatusSet", err)
	}
}

// newVisDB opens a throwaway SQLite database for predicate evaluation.
func newVisDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vis.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// TestPredicate_AgainstStore seeds one row per interesting stored state and
// checks, for every non-empty status subset, that the predicate selects
// exactly the rows whose EffectiveStatus is in the subset.
func TestPredicate_AgainstStore(t *testing.T) {
	db := newVisDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	rows := []domain.Message{
		{QueueID: 1, Status: domain.StatusAvailable, CreatedOn: past},
		{QueueID: 1, Status: domain.StatusReserved, CreatedOn: past, ReservedOn: &past, TimesOutOn: &future},
		{QueueID: 1, Status: domain.StatusReserved, CreatedOn: past, ReservedOn: &past, TimesOutOn: &past},
		{QueueID: 1, Status: domain.StatusDeleted, CreatedOn: past, DeletedOn: &past},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed row %d: %v", i, err)
		}
	}

	subsets := [][]domain.MessageStatus{
		{domain.StatusAvailable},
		{domain.StatusReserved},
		{domain.StatusDeleted},
		{domain.StatusAvailable, domain.StatusReserved},
		{domain.StatusAvailable, domain.StatusDeleted},
		{domain.StatusReserved, domain.StatusDeleted},
		{domain.StatusAvailable, domain.StatusReserved, domain.StatusDeleted},
	}
	for _, subset := range subsets {
		t.Run(fmt.Sprintf("%v", subset), func(t *testing.T) {
			pred, err := Predicate(subset, now)
			if err != nil {
				t.Fatalf("Predicate: %v", err)
			}
			tx := db.Model(&domain.Message{})
			if pred != nil {
				tx = tx.Where(pred)
			}
			var got []domain.Message
			if err := tx.Order("id ASC").Find(&got).Error; err != nil {
				t.Fatalf("query: %v", err)
			}

			want := map[int64]bool{}
			for i := range rows {
				eff := rows[i].EffectiveStatus(now)
				for _, s := range subset {
					if eff == s {
						want[rows[i].ID] = true
					}
				}
			}
			if len(got) != len(want) {
				t.Fatalf("selected %d rows, want %d", len(got), len(want))
			}
			for _, m := range got {
				if !want[m.ID] {
					t.Fatalf("row %d (stored %v) selected but effective status not in %v", m.ID, m.Status, subset)
				}
			}
		})
	}
}

// The predicate must survive being AND'ed with caller filters: the nested OR
// for AVAILABLE has to keep its parentheses.
func TestPredicate_ComposesWithOtherFilters(t *testing.T) {
	db := newVisDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Minute)

	lapsedQ1 := domain.Message{QueueID: 1, Status: domain.StatusReserved, CreatedOn: past, TimesOutOn: &past}
	lapsedQ2 := domain.Message{QueueID: 2, Status: domain.StatusReserved, CreatedOn: past, TimesOutOn: &past}
	deletedQ1 := domain.Message{QueueID: 1, Status: domain.StatusDeleted, CreatedOn: past, DeletedOn: &past}
	for _, m := range []*domain.Message{&lapsedQ1, &lapsedQ2, &deletedQ1} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	pred, err := Predicate([]domain.MessageStatus{domain.StatusAvailable}, now)
	if err != nil {
		t.Fatalf("Predicate: %v", err)
	}
	var got []domain.Message
	err = db.Model(&domain.Message{}).
		Where("queue_id = ?", 1).
		Where(pred).
		Find(&got).Error
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].ID != lapsedQ1.ID {
		t.Fatalf("got %d rows, want only the lapsed queue-1 row", len(got))
	}
}
