package inmemdb

import (
	"sync"

	"github.com/upskillway/crm/core/content"
	"github.com/upskillway/crm/core/lead"
	"github.com/upskillway/crm/core/trainer"
	"github.com/upskillway/crm/core/user"
)

// DB is a process-local store backing the repositories in dev and tests.
type DB struct {
	user    *userTable
	lead    *leadTable
	trainer *trainerTable
	booking *bookingTable
	content *contentTable
}

func NewDB() *DB {
	return &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		lead:    &leadTable{table: make(map[string]*lead.Lead)},
		trainer: &trainerTable{table: make(map[string]*trainer.Trainer)},
		booking: &bookingTable{table: make(map[string]*trainer.Booking)},
		content: &contentTable{table: make(map[string]*content.Item)},
	}
}

type userTable struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

type leadTable struct {
	mutex sync.RWMutex
	table map[string]*lead.Lead
}

type trainerTable struct {
	mutex sync.RWMutex
	table map[string]*trainer.Trainer
}

type bookingTable struct {
	mutex sync.RWMutex
	table map[string]*trainer.Booking
}

type contentTable struct {
	mutex sync.RWMutex
	table map[string]*content.Item
}
