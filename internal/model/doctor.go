package model

import "time"

type Doctor struct {
	ID        string    `json:"_id" db:"id" bson:"_id"`
	Name      string    `json:"name" db:"name" bson:"name"`
	Email     string    `json:"email" db:"email" bson:"email"`
	Specialty string    `json:"specialty" db:"specialty" bson:"specialty"`
	Image     string    `json:"img,omitempty" db:"image" bson:"img,omitempty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
}

type CreateDoctorRequest struct {
	Name      string `json:"name" binding:"required,notblank"`
	Email     string `json:"email" binding:"required,email"`
	Specialty string `json:"specialty" binding:"required,notblank"`
	Image     string `json:"img"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
