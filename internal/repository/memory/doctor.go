package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type DoctorRepository struct {
	mu      sync.RWMutex
	doctors []*model.Doctor
}

func NewDoctorRepository() *DoctorRepository {
	return &DoctorRepository{}
}

func (r *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doctor.ID = newID()
	if doctor.CreatedAt.IsZero() {
		doctor.CreatedAt = time.Now()
	}
	d := *doctor
	r.doctors = append(r.doctors, &d)
	return nil
}

func (r *DoctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doctors := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		c := *d
		doctors = append(doctors, &c)
	}
	return doctors, nil
}

func (r *DoctorRepository) Delete(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, d := range r.doctors {
		if d.ID == id {
			r.doctors = append(r.doctors[:i], r.doctors[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}
