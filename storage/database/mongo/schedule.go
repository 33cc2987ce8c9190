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
	"github.com/trezcool/ratiba/core/schedule"
)

type (
	entryDoc struct {
		ID         string   `bson:"id"`
		Seq        int64    `bson:"seq"`
		ClassName  string   `bson:"class_name"`
		TeacherID  string   `bson:"teacher_id"`
		Grade      string   `bson:"grade"`
		Section    string   `bson:"section"`
		DayOfWeek  string   `bson:"day_of_week"`
		StartTime  string   `bson:"start_time"`
		EndTime    string   `bson:"end_time"`
		StudentIDs []string `bson:"student_ids"`
	}

	scheduleRepository struct {
		coll *mongo.Collection
	}
)

var _ schedule.Repository = (*scheduleRepository)(nil)

func (d entryDoc) entry() schedule.Entry {
	studentIDs := d.StudentIDs
	if studentIDs == nil {
		studentIDs = []string{}
	}
	return schedule.Entry{
		ID:            d.ID,
		ClassName:     d.ClassName,
		TeacherID:     d.TeacherID,
		GradeSections: []schedule.GradeSection{{Grade: d.Grade, Section: d.Section}},
		DayOfWeek:     schedule.Weekday(d.DayOfWeek),
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		StudentIDs:    studentIDs,
	}
}

// NewScheduleRepository stores one document per entry. Entries are returned in creation order.
func NewScheduleRepository(db *mongo.Database) schedule.Repository {
	return &scheduleRepository{coll: db.Collection(entriesCollection)}
}

func (repo *scheduleRepository) QueryEntries(ctx context.Context) ([]schedule.Entry, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding entries")
	}
	defer func() { _ = cursor.Close(ctx) }()

	entries := make([]schedule.Entry, 0)
	for cursor.Next(ctx) {
		var doc entryDoc
		if err = cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding entry")
		}
		entries = append(entries, doc.entry())
	}
	return entries, errors.Wrap(cursor.Err(), "iterating entries")
}

func (repo *scheduleRepository) GetEntry(ctx context.Context, id string) (schedule.Entry, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var doc entryDoc
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return schedule.Entry{}, schedule.ErrNotFound
		}
		return schedule.Entry{}, errors.Wrapf(err, "getting entry %s", id)
	}
	return doc.entry(), nil
}

func (repo *scheduleRepository) CreateEntry(ctx context.Context, ne schedule.NewEntry) (schedule.Entry, error) {
	if len(ne.GradeSections) != 1 {
		return schedule.Entry{}, errors.Errorf("entry must target exactly one grade/section, got %d", len(ne.GradeSections))
	}
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	doc := entryDoc{
		ID:         uuid.NewString(),
		Seq:        time.Now().UnixNano(),
		ClassName:  ne.ClassName,
		TeacherID:  ne.TeacherID,
		Grade:      ne.GradeSections[0].Grade,
		Section:    ne.GradeSections[0].Section,
		DayOfWeek:  string(ne.DayOfWeek),
		StartTime:  ne.StartTime,
		EndTime:    ne.EndTime,
		StudentIDs: []string{},
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return schedule.Entry{}, errors.Wrap(err, "inserting entry")
	}
	return doc.entry(), nil
}

func (repo *scheduleRepository) UpdateEntry(ctx context.Context, id string, patch schedule.EntryPatch) (schedule.Entry, error) {
	set := bson.M{}
	if patch.ClassName != nil {
		set["class_name"] = *patch.ClassName
	}
	if len(set) == 0 {
		return repo.GetEntry(ctx, id)
	}

	uctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc entryDoc
	if err := repo.coll.FindOneAndUpdate(uctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return schedule.Entry{}, schedule.ErrNotFound
		}
		return schedule.Entry{}, errors.Wrapf(err, "updating entry %s", id)
	}
	return doc.entry(), nil
}

func (repo *scheduleRepository) DeleteEntry(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.Wrapf(err, "deleting entry %s", id)
	}
	if res.DeletedCount == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

// SetStudents replaces the students enrolled in an entry. Enrollment is managed outside the scheduler.
func SetStudents(ctx context.Context, db *mongo.Database, entryID string, studentIDs ...string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"student_ids": core.UniqueStrings(studentIDs...)}}
	res, err := db.Collection(entriesCollection).UpdateOne(ctx, bson.M{"id": entryID}, update)
	if err != nil {
		return errors.Wrapf(err, "enrolling students in %s", entryID)
	}
	if res.MatchedCount == 0 {
		return schedule.ErrNotFound
	}
	return nil
}
