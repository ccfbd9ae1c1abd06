// Package credittaskrepo is the Postgres-backed queue of courier credit tasks.
package credittaskrepo

import (
	"context"
	"errors"
	"time"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null"`
	IdempotencyKey string    `gorm:"type:varchar(64);not null"`
	Status         string    `gorm:"type:varchar(16);not null"`
	Attempts       int
	NextRunAt      time.Time
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
}

func (TaskDTO) TableName() string {
	return "credit_tasks"
}

func fromDomain(t *credittask.Task) TaskDTO {
	return TaskDTO{
		ID:             t.ID.Bytes(),
		OrderID:        t.OrderID.Bytes(),
		IdempotencyKey: t.IdempotencyKey,
		Status:         string(t.Status),
		Attempts:       t.Attempts,
		NextRunAt:      t.NextRunAt,
		LastError:      t.LastError,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toDomain(dto TaskDTO) (*credittask.Task, error) {
	id, idErr := dbutil.ID(dto.ID)
	orderID, orderErr := dbutil.ID(dto.OrderID)
	if err := errors.Join(idErr, orderErr); err != nil {
		return nil, err
	}
	return &credittask.Task{
		ID:             id,
		OrderID:        orderID,
		IdempotencyKey: dto.IdempotencyKey,
		Status:         credittask.Status(dto.Status),
		Attempts:       dto.Attempts,
		NextRunAt:      dto.NextRunAt.UTC(),
		LastError:      dto.LastError,
		CreatedAt:      dto.CreatedAt.UTC(),
		UpdatedAt:      dto.UpdatedAt.UTC(),
	}, nil
}

// GormCreditTaskRepository implements ports.CreditTaskRepository using GORM.
type GormCreditTaskRepository struct {
	db      *gorm.DB
	tracker dbutil.Tracker
}

func NewGormCreditTaskRepository(db *gorm.DB, tracker dbutil.Tracker) *GormCreditTaskRepository {
	return &GormCreditTaskRepository{
		db:      db,
		tracker: tracker,
	}
}

// Enqueue inserts the task with ON CONFLICT DO NOTHING on the idempotency key, so a
// second enqueue for the same order leaves the first task untouched.
func (r *GormCreditTaskRepository) Enqueue(ctx context.Context, task *credittask.Task) (bool, error) {
	dto := fromDomain(task)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(&dto)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	r.tracker.Track(task)
	return true, nil
}

// ClaimDue locks due rows with FOR UPDATE SKIP LOCKED and leases them. Running tasks
// whose lease has run out are due again.
func (r *GormCreditTaskRepository) ClaimDue(
	ctx context.Context,
	now time.Time,
	lease time.Duration,
	limit int,
) ([]*credittask.Task, error) {
	var dtos []TaskDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked}).
		Where("status IN ? AND next_run_at <= ?", []string{string(credittask.Queued), string(credittask.Running)}, now).
		Order("next_run_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	claimed := make([]*credittask.Task, 0, len(dtos))
	for _, dto := range dtos {
		task, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		if err := task.Claim(now, lease); err != nil {
			return nil, err
		}
		if err := r.Update(ctx, task); err != nil {
			return nil, err
		}
		claimed = append(claimed, task)
	}
	return claimed, nil
}

func (r *GormCreditTaskRepository) Get(ctx context.Context, id kernel.UUID) (*credittask.Task, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormCreditTaskRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*credittask.Task, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormCreditTaskRepository) get(db *gorm.DB, id kernel.UUID) (*credittask.Task, error) {
	var dto TaskDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, dbutil.NotFound(err, "credit task", id)
	}
	return toDomain(dto)
}

func (r *GormCreditTaskRepository) Update(ctx context.Context, task *credittask.Task) error {
	dto := fromDomain(task)
	result := r.db.WithContext(ctx).Model(&TaskDTO{}).
		Where("id = ?", dto.ID).
		Select("status", "attempts", "next_run_at", "last_error", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dbutil.NotFound(gorm.ErrRecordNotFound, "credit task", task.ID)
	}

	r.tracker.Track(task)
	return nil
}

func (r *GormCreditTaskRepository) UpdateLeased(ctx context.Context, task *credittask.Task, leasedUntil time.Time) (bool, error) {
	dto := fromDomain(task)
	result := r.db.WithContext(ctx).Model(&TaskDTO{}).
		Where("id = ? AND status = ? AND next_run_at = ?", dto.ID, string(credittask.Running), leasedUntil).
		Select("status", "attempts", "next_run_at", "last_error", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	r.tracker.Track(task)
	return true, nil
}

// ListFailed returns dead tasks, most recently failed first.
func (r *GormCreditTaskRepository) ListFailed(ctx context.Context, page ports.Page) ([]*credittask.Task, error) {
	page = page.Normalize()

	var dtos []TaskDTO
	err := r.db.WithContext(ctx).
		Where("status = ?", string(credittask.Failed)).
		Order("updated_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]*credittask.Task, 0, len(dtos))
	for _, dto := range dtos {
		t, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
