package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/storage/database/inmem"
	"github.com/trezcool/ratiba/storage/lock"
	"github.com/trezcool/ratiba/tests"
)

type env struct {
	app        *Server
	db         *inmemdb.DB
	entryRepo  schedule.Repository
	rosterRepo roster.Repository
}

func setup(t *testing.T) env {
	// set up DB & repos
	db := inmemdb.Open()
	e := env{db: db, entryRepo: inmemdb.NewScheduleRepository(db), rosterRepo: inmemdb.NewRosterRepository(db)}

	// set up services
	validate, translator := testutil.NewValidator()
	logger := testutil.NewLogger()
	rosterSvc := roster.NewService(e.rosterRepo)
	scheduleSvc := schedule.NewService(schedule.ServiceDeps{
		Repo:       e.entryRepo,
		Directory:  rosterSvc,
		Validate:   validate,
		Translator: translator,
		Logger:     logger,
		Locker:     lock.NewLocal(),
	})

	// set up server
	conf := &core.Config{AppName: "Ratiba", TestMode: true, Server: core.ServerConfig{DisableReqLogs: true}}
	e.app = NewServer(Deps{
		Conf:        conf,
		Logger:      logger,
		ScheduleSvc: scheduleSvc,
		RosterSvc:   rosterSvc,
		Validate:    validate,
		Translator:  translator,
	})
	return e
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (e env) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	e.app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshall(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
