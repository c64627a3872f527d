package model

import "time"

type Instructor struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Ratings   []string  `json:"ratings,omitempty" bson:"ratings,omitempty" validate:"omitempty,dive,min=2,max=20"`
	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
}

type InstructorUpdate struct {
	Name    string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email   string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string   `json:"phone,omitempty" validate:"omitempty"`
	Ratings *[]string `json:"ratings,omitempty" validate:"omitempty,dive,min=2,max=20"`
}
