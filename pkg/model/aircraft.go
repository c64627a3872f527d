package model

import "time"

type Aircraft struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TailNumber string    `json:"tail_number" bson:"tail_number" validate:"required,min=2,max=10"`
	MakeModel  string    `json:"make_model" bson:"make_model" validate:"required,min=2,max=100"`
	Type       string    `json:"type,omitempty" bson:"type,omitempty" validate:"omitempty,max=50"`
	CreatedAt  time.Time `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
}

type AircraftUpdate struct {
	TailNumber string `json:"tail_number,omitempty" validate:"omitempty,min=2,max=10"`
	MakeModel  string `json:"make_model,omitempty" validate:"omitempty,min=2,max=100"`
	Type       string `json:"type,omitempty" validate:"omitempty,max=50"`
}
