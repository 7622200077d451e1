package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"massage-board-backend/internal/model"
	"massage-board-backend/internal/parse"
)

// Store defines the interface for all database operations.
type Store interface {
	ListAppointments(ctx context.Context, day *parse.Day) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, appt *model.Appointment) error
	UpdateAppointment(ctx context.Context, appt *model.Appointment) error
	DeleteAppointment(ctx context.Context, id string) error

	ListWorkers(ctx context.Context) ([]model.Worker, error)
	EnsureWorkers(ctx context.Context, defaults []string) error
	ReplaceWorkers(ctx context.Context, names []string) ([]model.Worker, error)
	MoveWorker(ctx context.Context, move Move) ([]model.Worker, error)

	PutSubscription(ctx context.Context, sub model.PushSubscription, workers []string) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForWorker(ctx context.Context, worker string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// ListAppointments returns appointments ordered by start. A nil day lists everything.
func (s *gormStore) ListAppointments(ctx context.Context, day *parse.Day) ([]model.Appointment, error) {
	q := s.db.WithContext(ctx)
	if day != nil {
		q = q.Where("start >= ? AND start < ?", day.From.UTC(), day.To.UTC())
	}

	var appointments []model.Appointment
	if err := q.Order("start ASC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// CreateAppointment inserts a new row. The identifier is assigned by the model hook.
func (s *gormStore) CreateAppointment(ctx context.Context, appt *model.Appointment) error {
	normalizeTimes(appt)
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// UpdateAppointment replaces every mutable field of the row keyed by appt.ID.
func (s *gormStore) UpdateAppointment(ctx context.Context, appt *model.Appointment) error {
	if appt.ID == "" {
		return ErrMissingID
	}
	normalizeTimes(appt)

	res := s.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ?", appt.ID).
		Updates(map[string]any{
			"massage_type":    appt.MassageType,
			"phone":           appt.Phone,
			"customer":        appt.Customer,
			"start":           appt.Start,
			"end":             appt.End,
			"status":          appt.Status,
			"notes":           appt.Notes,
			"preference":      appt.Preference,
			"specific_worker": appt.SpecificWorker,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update appointment %s: %w", appt.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAppointment removes the row keyed by id.
func (s *gormStore) DeleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Appointment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete appointment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// normalizeTimes stores instants in UTC at second precision so that range
// comparisons behave the same on every driver.
func normalizeTimes(appt *model.Appointment) {
	appt.Start = appt.Start.UTC().Truncate(time.Second)
	appt.End = appt.End.UTC().Truncate(time.Second)
}

// --- Worker roster ---

// ListWorkers returns the roster in display order.
func (s *gormStore) ListWorkers(ctx context.Context) ([]model.Worker, error) {
	var workers []model.Worker
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

// EnsureWorkers seeds the roster when it is empty.
func (s *gormStore) EnsureWorkers(ctx context.Context, defaults []string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Worker{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count workers: %w", err)
	}
	if count > 0 || len(defaults) == 0 {
		return nil
	}
	log.Printf("Seeding worker roster with %d workers", len(defaults))
	_, err := s.ReplaceWorkers(ctx, defaults)
	return err
}

// ReplaceWorkers makes the roster exactly names, in order. Existing rows are
// kept by name so their identity survives a reorder.
func (s *gormStore) ReplaceWorkers(ctx context.Context, names []string) ([]model.Worker, error) {
	rows, err := rosterRows(names)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return writeRoster(tx, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace workers: %w", err)
	}
	return s.ListWorkers(ctx)
}

// MoveWorker moves the worker at index From to index To.
func (s *gormStore) MoveWorker(ctx context.Context, move Move) ([]model.Worker, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []model.Worker
		if err := tx.Order("position ASC").Find(&current).Error; err != nil {
			return err
		}
		if move.From < 0 || move.From >= len(current) || move.To < 0 || move.To >= len(current) {
			return fmt.Errorf("%w: cannot move %d to %d in a roster of %d", ErrInvalidRoster, move.From, move.To, len(current))
		}

		names := make([]string, len(current))
		for i, w := range current {
			names[i] = w.Name
		}
		rows, err := rosterRows(Reorder(names, move.From, move.To))
		if err != nil {
			return err
		}
		return writeRoster(tx, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move worker: %w", err)
	}
	return s.ListWorkers(ctx)
}

// Reorder returns a copy of names with the element at from moved to index to.
func Reorder(names []string, from, to int) []string {
	out := append([]string(nil), names...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]string{moved}, out[to:]...)...)
	return out
}

func rosterRows(names []string) ([]model.Worker, error) {
	seen := make(map[string]bool, len(names))
	rows := make([]model.Worker, 0, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: worker name at position %d is empty", ErrInvalidRoster, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate worker name %q", ErrInvalidRoster, name)
		}
		seen[name] = true
		rows = append(rows, model.Worker{Name: name, Position: i})
	}
	return rows, nil
}

func writeRoster(tx *gorm.DB, rows []model.Worker) error {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}

	del := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	if len(names) > 0 {
		del = del.Where("name NOT IN ?", names)
	}
	if err := del.Delete(&model.Worker{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "updated_at"}),
	}).Create(&rows).Error
}

// --- Push subscriptions ---

// PutSubscription creates or replaces a subscription and the workers it follows.
func (s *gormStore) PutSubscription(ctx context.Context, sub model.PushSubscription, workers []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub.Workers = nil
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return err
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.SubscriptionWorker{}).Error; err != nil {
			return err
		}
		if len(workers) == 0 {
			return nil
		}

		mappings := make([]model.SubscriptionWorker, 0, len(workers))
		seen := make(map[string]bool, len(workers))
		for _, w := range workers {
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			mappings = append(mappings, model.SubscriptionWorker{Endpoint: sub.Endpoint, Worker: w})
		}
		if len(mappings) == 0 {
			return nil
		}
		return tx.Create(&mappings).Error
	})
}

// GetSubscription loads a subscription with the workers it follows.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Workers").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sub, ErrNotFound
	}
	return sub, err
}

// DeleteSubscription removes a subscription and its worker mappings.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.SubscriptionWorker{}).Error; err != nil {
			return err
		}
		return tx.Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error
	})
}

// SubscriptionsForWorker returns every subscription following the named worker.
func (s *gormStore) SubscriptionsForWorker(ctx context.Context, worker string) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_workers sw ON sw.endpoint = push_subscriptions.endpoint").
		Where("sw.worker = ?", worker).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for worker %q: %w", worker, err)
	}
	return subscriptions, nil
}
