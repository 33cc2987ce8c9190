package roster

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

type (
	Subject struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	Teacher struct {
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		Email      string   `json:"email,omitempty"`
		SubjectIDs []string `json:"subject_ids"`
	}

	Student struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Grade   string `json:"grade"`
		Section string `json:"section,omitempty"`
	}

	NewSubject struct {
		Name string `json:"name" validate:"required,max=255"`
	}

	NewTeacher struct {
		Name       string   `json:"name" validate:"required,max=255"`
		Email      string   `json:"email" validate:"omitempty,max=255,email"`
		SubjectIDs []string `json:"subject_ids" validate:"dive,required"`
	}

	NewStudent struct {
		Name    string `json:"name" validate:"required,max=255"`
		Grade   string `json:"grade" validate:"required,max=32,alphanum_"`
		Section string `json:"section" validate:"omitempty,max=32,alphanum_"`
	}
)

// Teaches reports whether the teacher is eligible for the subject.
func (t Teacher) Teaches(subjectID string) bool {
	for _, id := range t.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.SubjectIDs = core.UniqueStrings(nt.SubjectIDs...)
	return validate.Struct(nt)
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Section = core.CleanString(ns.Section)
	return validate.Struct(ns)
}
