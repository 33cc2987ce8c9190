package inmemdb

import (
	"sync"

	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
)

type (
	// DB keeps every table in memory. Tables preserve insertion order.
	DB struct {
		entries *entryTable
		roster  *rosterTables
	}

	entryTable struct {
		order []string
		table map[string]*schedule.Entry
		mutex sync.RWMutex
	}

	rosterTables struct {
		subjects []roster.Subject
		teachers []roster.Teacher
		students []roster.Student
		mutex    sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		entries: &entryTable{table: make(map[string]*schedule.Entry)},
		roster:  &rosterTables{},
	}
}
