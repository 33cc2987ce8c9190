package dig_container

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/storage/lock"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:  "Ratiba",
		Env:      "TEST",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
		Database: core.DatabaseConfig{Engine: core.EngineMemory},
	}
}

func TestNewWithConfig(t *testing.T) {
	tests := []struct {
		name   string
		engine string
	}{
		{name: "in-memory store", engine: core.EngineMemory},
		{name: "sqlite store", engine: core.EngineSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWithConfig(func() *core.Config {
				conf := testConfig()
				conf.Database.Engine = tt.engine
				conf.Database.Path = ":memory:"
				return conf
			})

			err := c.Invoke(func(server *echoapi.Server, locker schedule.Locker, closeStores StoreCloser) {
				defer func() { assert.NoError(t, closeStores()) }()
				assert.IsType(t, &lock.Local{}, locker)

				body := `{"class_name": "Algebra", "subject_id": "nope", "teacher_id": "t1",
					"grade_sections": [{"grade": "5", "section": "A", "schedules": [
						{"day_of_week": "Monday", "start_time": "09:00", "end_time": "10:00"}]}]}`
				req := httptest.NewRequest(http.MethodPost, "/v1/classes", strings.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				rec := httptest.NewRecorder()
				server.ServeHTTP(rec, req)
				assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
				assert.Contains(t, rec.Body.String(), "subject not found")

				req = httptest.NewRequest(http.MethodGet, "/v1/classes", nil)
				rec = httptest.NewRecorder()
				server.ServeHTTP(rec, req)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.JSONEq(t, "[]", rec.Body.String())
			})
			require.NoError(t, err)
		})
	}
}

func TestNewNotifier(t *testing.T) {
	conf := testConfig()
	assert.Nil(t, newNotifier(conf, nil, nil, nil, nil))

	conf.NotifyTeachers = true
	assert.NotNil(t, newNotifier(conf, nil, nil, nil, nil))
}
