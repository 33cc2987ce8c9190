package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		engine  string
		wantSQL bool
		wantErr bool
	}{
		{name: "memory", engine: core.EngineMemory},
		{name: "sqlite", engine: core.EngineSQLite, wantSQL: true},
		{name: "unknown", engine: "cassandra", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &core.Config{Database: core.DatabaseConfig{Engine: tt.engine, Path: ":memory:"}}
			stores, err := Open(ctx, conf, Options{Migrate: true})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, stores.Close(ctx)) }()
			assert.Equal(t, tt.wantSQL, stores.SQL != nil)

			_, err = stores.Entries.CreateEntry(ctx, schedule.NewEntry{
				ClassName:     "Algebra",
				TeacherID:     "t1",
				GradeSections: []schedule.GradeSection{{Grade: "5", Section: "A"}},
				DayOfWeek:     schedule.Monday,
				StartTime:     "09:00",
				EndTime:       "10:00",
			})
			require.NoError(t, err)
			entries, err := stores.Entries.QueryEntries(ctx)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}
