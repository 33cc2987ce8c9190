// Package storage opens the repositories of the configured database engine.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/storage/database"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	mongodb "github.com/trezcool/ratiba/storage/database/mongo"
	sqlxrepos "github.com/trezcool/ratiba/storage/database/sqlx"
)

type Stores struct {
	Entries schedule.Repository
	Roster  roster.Repository

	// set for the SQL engines only
	SQL *sqlx.DB
	// set for the mongo engine only
	Mongo *mongo.Database
}

type Options struct {
	// Migrate applies pending SQL migrations, or ensures mongo indexes, once connected.
	Migrate bool
}

// Open connects to conf.Database.Engine and builds its repositories.
func Open(ctx context.Context, conf *core.Config, opts Options) (*Stores, error) {
	switch conf.Database.Engine {
	case core.EngineMemory:
		db := inmemdb.Open()
		return &Stores{Entries: inmemdb.NewScheduleRepository(db), Roster: inmemdb.NewRosterRepository(db)}, nil

	case core.EngineMongo:
		db, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if opts.Migrate {
			if err = mongodb.EnsureIndexes(ctx, db); err != nil {
				_ = mongodb.Close(ctx, db)
				return nil, err
			}
		}
		return &Stores{Entries: mongodb.NewScheduleRepository(db), Roster: mongodb.NewRosterRepository(db), Mongo: db}, nil

	case core.EnginePostgres, core.EngineSQLite:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if opts.Migrate {
			if err = database.Migrate(db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Stores{Entries: sqlxrepos.NewScheduleRepository(db), Roster: sqlxrepos.NewRosterRepository(db), SQL: db}, nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

// Close releases the connections, if any.
func (s *Stores) Close(ctx context.Context) error {
	switch {
	case s.SQL != nil:
		return s.SQL.Close()
	case s.Mongo != nil:
		return mongodb.Close(ctx, s.Mongo)
	}
	return nil
}
