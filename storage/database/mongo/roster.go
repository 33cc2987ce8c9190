package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
)

type (
	subjectDoc struct {
		ID   string `bson:"id"`
		Name string `bson:"name"`
	}

	teacherDoc struct {
		ID         string   `bson:"id"`
		Name       string   `bson:"name"`
		Email      string   `bson:"email,omitempty"`
		SubjectIDs []string `bson:"subject_ids"`
	}

	studentDoc struct {
		ID      string `bson:"id"`
		Name    string `bson:"name"`
		Grade   string `bson:"grade"`
		Section string `bson:"section"`
	}

	rosterRepository struct {
		subjects *mongo.Collection
		teachers *mongo.Collection
		students *mongo.Collection
	}
)

var _ roster.Repository = (*rosterRepository)(nil)

func (d teacherDoc) teacher() roster.Teacher {
	subjectIDs := d.SubjectIDs
	if subjectIDs == nil {
		subjectIDs = []string{}
	}
	return roster.Teacher{ID: d.ID, Name: d.Name, Email: d.Email, SubjectIDs: subjectIDs}
}

func NewRosterRepository(db *mongo.Database) roster.Repository {
	return &rosterRepository{
		subjects: db.Collection(subjectsCollection),
		teachers: db.Collection(teachersCollection),
		students: db.Collection(studentsCollection),
	}
}

var byName = options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "id", Value: 1}})

// findAll decodes every document matching filter into out, a pointer to a slice.
func findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}) error {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := coll.Find(ctx, filter, byName)
	if err != nil {
		return errors.Wrapf(err, "finding %s", coll.Name())
	}
	return errors.Wrapf(cursor.All(ctx, out), "decoding %s", coll.Name())
}

func (repo *rosterRepository) CreateSubject(ctx context.Context, subj roster.Subject) (roster.Subject, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	subj.ID = uuid.NewString()
	if _, err := repo.subjects.InsertOne(ctx, subjectDoc(subj)); err != nil {
		return roster.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo *rosterRepository) GetSubject(ctx context.Context, id string) (roster.Subject, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var doc subjectDoc
	if err := repo.subjects.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return roster.Subject{}, roster.ErrSubjectNotFound
		}
		return roster.Subject{}, errors.Wrapf(err, "getting subject %s", id)
	}
	return roster.Subject(doc), nil
}

func (repo *rosterRepository) QuerySubjects(ctx context.Context) ([]roster.Subject, error) {
	var docs []subjectDoc
	if err := findAll(ctx, repo.subjects, bson.M{}, &docs); err != nil {
		return nil, err
	}
	subjects := make([]roster.Subject, 0, len(docs))
	for _, doc := range docs {
		subjects = append(subjects, roster.Subject(doc))
	}
	return subjects, nil
}

func (repo *rosterRepository) CreateTeacher(ctx context.Context, teacher roster.Teacher) (roster.Teacher, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	doc := teacherDoc{
		ID:         uuid.NewString(),
		Name:       teacher.Name,
		Email:      teacher.Email,
		SubjectIDs: core.UniqueStrings(teacher.SubjectIDs...),
	}
	if _, err := repo.teachers.InsertOne(ctx, doc); err != nil {
		return roster.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return doc.teacher(), nil
}

func (repo *rosterRepository) GetTeacher(ctx context.Context, id string) (roster.Teacher, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var doc teacherDoc
	if err := repo.teachers.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return roster.Teacher{}, roster.ErrTeacherNotFound
		}
		return roster.Teacher{}, errors.Wrapf(err, "getting teacher %s", id)
	}
	return doc.teacher(), nil
}

func (repo *rosterRepository) filterTeachers(ctx context.Context, filter bson.M) ([]roster.Teacher, error) {
	var docs []teacherDoc
	if err := findAll(ctx, repo.teachers, filter, &docs); err != nil {
		return nil, err
	}
	teachers := make([]roster.Teacher, 0, len(docs))
	for _, doc := range docs {
		teachers = append(teachers, doc.teacher())
	}
	return teachers, nil
}

func (repo *rosterRepository) QueryTeachers(ctx context.Context) ([]roster.Teacher, error) {
	return repo.filterTeachers(ctx, bson.M{})
}

func (repo *rosterRepository) FilterTeachersBySubject(ctx context.Context, subjectID string) ([]roster.Teacher, error) {
	return repo.filterTeachers(ctx, bson.M{"subject_ids": subjectID})
}

func (repo *rosterRepository) CreateStudent(ctx context.Context, student roster.Student) (roster.Student, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	student.ID = uuid.NewString()
	if _, err := repo.students.InsertOne(ctx, studentDoc(student)); err != nil {
		return roster.Student{}, errors.Wrap(err, "inserting student")
	}
	return student, nil
}

func (repo *rosterRepository) filterStudents(ctx context.Context, filter bson.M) ([]roster.Student, error) {
	var docs []studentDoc
	if err := findAll(ctx, repo.students, filter, &docs); err != nil {
		return nil, err
	}
	students := make([]roster.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, roster.Student(doc))
	}
	return students, nil
}

func (repo *rosterRepository) GetStudentsByID(ctx context.Context, ids ...string) ([]roster.Student, error) {
	if len(ids) == 0 {
		return []roster.Student{}, nil
	}
	return repo.filterStudents(ctx, bson.M{"id": bson.M{"$in": ids}})
}

func (repo *rosterRepository) FilterStudentsByCohort(ctx context.Context, grade, section string) ([]roster.Student, error) {
	return repo.filterStudents(ctx, bson.M{"grade": grade, "section": section})
}
