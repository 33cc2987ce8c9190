package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/tests"
)

func Test_rosterApi_eligibleTeachers(t *testing.T) {
	e := setup(t)
	math := testutil.CreateSubject(t, e.rosterRepo, "Math")
	art := testutil.CreateSubject(t, e.rosterRepo, "Art")
	zed := testutil.CreateTeacher(t, e.rosterRepo, "Zed", "", math.ID)
	ada := testutil.CreateTeacher(t, e.rosterRepo, "Ada", "ada@ratiba.test", math.ID, art.ID)

	tests := []httpTest{
		{
			name:     "sorted by name",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/subjects/%s/teachers", math.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []roster.Teacher{ada, zed}),
		},
		{
			name:     "unknown subject",
			method:   http.MethodGet,
			path:     "/v1/subjects/nope/teachers",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: roster.ErrSubjectNotFound.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(tt.method, tt.path)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_rosterApi_create(t *testing.T) {
	e := setup(t)

	rec := e.do(http.MethodPost, "/v1/subjects", []byte(`{"name": "  Math "}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var math roster.Subject
	unmarshall(t, rec, &math)
	assert.Equal(t, "Math", math.Name)

	tests := []httpTest{
		{
			name:     "teacher without name",
			method:   http.MethodPost,
			path:     "/v1/teachers",
			body:     []byte(`{"name": ""}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name:     "teacher of unknown subject",
			method:   http.MethodPost,
			path:     "/v1/teachers",
			body:     []byte(`{"name": "Ada", "subject_ids": ["nope"]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subject_ids": roster.ErrSubjectNotFound.Error()}),
		},
		{
			name:     "teacher",
			method:   http.MethodPost,
			path:     "/v1/teachers",
			body:     []byte(fmt.Sprintf(`{"name": "Ada", "email": "ADA@ratiba.test", "subject_ids": [%q]}`, math.ID)),
			wantCode: http.StatusCreated,
		},
		{
			name:     "student with bad grade",
			method:   http.MethodPost,
			path:     "/v1/students",
			body:     []byte(`{"name": "Zoe", "grade": "5-A"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "student",
			method:   http.MethodPost,
			path:     "/v1/students",
			body:     []byte(`{"name": "Zoe", "grade": "5", "section": "A"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(tt.method, tt.path, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}

	rec = e.do(http.MethodGet, "/v1/teachers")
	require.Equal(t, http.StatusOK, rec.Code)
	var teachers []roster.Teacher
	unmarshall(t, rec, &teachers)
	require.Len(t, teachers, 1)
	assert.Equal(t, "ada@ratiba.test", teachers[0].Email)
}
