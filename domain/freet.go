package domain

import (
	"time"
)

type Freet struct {
	ID int `json:"id"`
	AuthorID int `json:"author_id" gorm:"notNull;index"`
	Content string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FreetService interface {
	ByID(id int) (*Freet, error)
	All() ([]Freet, error)
	ByUsername(username string) ([]Freet, error)
	CreateFreet(freet *Freet) error
	UpdateFreet(freet *Freet) error
	DeleteFreet(freet *Freet) error
}
