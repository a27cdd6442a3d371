package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FamilyExistenceStore is the slice of the family store the cleanup scan
// needs.
type FamilyExistenceStore interface {
	ExistsByID(id string) (bool, error)
}

// CleanupStatus captures the metrics of one cleanup run.
type CleanupStatus struct {
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ns"`
	UsersProcessed  int           `json:"users_processed"`
	OrphansCleaned  int           `json:"orphans_cleaned"`
	ExpensesDeleted int64         `json:"expenses_deleted"`
}

// CleanupService repairs dangling family references. Families can be
// deleted out-of-band; users who still point at one keep a familyId that
// resolves to nothing until this scan clears it and drops the orphaned
// expense rows.
type CleanupService struct {
	users    UserStore
	families FamilyExistenceStore
	expenses ExpenseStore
	log      *logrus.Logger

	now func() time.Time

	mu      sync.Mutex
	lastRun *CleanupStatus
}

func NewCleanupService(users UserStore, families FamilyExistenceStore, expenses ExpenseStore, log *logrus.Logger) *CleanupService {
	return &CleanupService{
		users:    users,
		families: families,
		expenses: expenses,
		log:      log,
		now:      time.Now,
	}
}

// CleanupOrphanedFamilyReferences scans all users, clears references to
// families that no longer exist and deletes the matching expense records.
// Users whose reference resolves are untouched. Running the scan again
// with no new orphans performs zero writes, so it is safe to invoke from
// both the schedule and the admin endpoint.
func (s *CleanupService) CleanupOrphanedFamilyReferences() (CleanupStatus, error) {
	status := CleanupStatus{StartedAt: s.now()}

	users, err := s.users.FindAll()
	if err != nil {
		return status, err
	}

	// Deleted families tend to dangle from several users; cache existence
	// lookups for the duration of the scan.
	exists := make(map[string]bool)

	for i := range users {
		user := &users[i]
		status.UsersProcessed++

		if user.FamilyID == nil {
			continue
		}
		familyID := *user.FamilyID

		ok, cached := exists[familyID]
		if !cached {
			ok, err = s.families.ExistsByID(familyID)
			if err != nil {
				return status, err
			}
			exists[familyID] = ok
		}
		if ok {
			continue
		}

		cleared := *user
		cleared.FamilyID = nil
		if err := s.users.Save(&cleared); err != nil {
			return status, err
		}
		status.OrphansCleaned++

		deleted, err := s.expenses.DeleteByFamilyID(familyID)
		if err != nil {
			return status, err
		}
		status.ExpensesDeleted += deleted

		s.log.WithFields(logrus.Fields{
			"user":     user.ID,
			"family":   familyID,
			"expenses": deleted,
		}).Info("cleared orphaned family reference")
	}

	status.Duration = s.now().Sub(status.StartedAt)
	return status, nil
}

// RunManualCleanup runs the scan on demand and records the run metrics.
func (s *CleanupService) RunManualCleanup() (CleanupStatus, error) {
	status, err := s.CleanupOrphanedFamilyReferences()
	if err != nil {
		return status, err
	}

	s.mu.Lock()
	s.lastRun = &status
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"users_processed": status.UsersProcessed,
		"orphans_cleaned": status.OrphansCleaned,
		"duration":        status.Duration,
	}).Info("manual cleanup finished")
	return status, nil
}

// LastRunStatus returns the metrics of the most recent manual run.
func (s *CleanupService) LastRunStatus() (CleanupStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRun == nil {
		return CleanupStatus{}, false
	}
	return *s.lastRun, true
}
