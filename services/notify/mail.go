package notifysvc

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/services/export"
)

type (
	TeacherGetter interface {
		GetTeacher(ctx context.Context, id string) (roster.Teacher, error)
	}

	EntryLister interface {
		QueryEntries(ctx context.Context) ([]schedule.Entry, error)
	}

	// MailNotifier emails every teacher of a changed class their updated timetable.
	MailNotifier struct {
		email    core.EmailService
		teachers TeacherGetter
		entries  EntryLister
		logger   core.Logger
	}
)

var _ schedule.Notifier = (*MailNotifier)(nil)

func NewMailNotifier(email core.EmailService, teachers TeacherGetter, entries EntryLister, logger core.Logger) *MailNotifier {
	return &MailNotifier{email: email, teachers: teachers, entries: entries, logger: logger}
}

func (n *MailNotifier) ClassChanged(ctx context.Context, change schedule.ClassChange) {
	all, err := n.entries.QueryEntries(ctx)
	if err != nil {
		n.logger.Error("notifying class change: fetching entries", err)
		return
	}

	messages := make([]*core.EmailMessage, 0, len(change.TeacherIDs))
	for _, id := range change.TeacherIDs {
		t, err := n.teachers.GetTeacher(ctx, id)
		if err != nil {
			n.logger.Warn(fmt.Sprintf("notifying class change: teacher %s", id), err)
			continue
		}
		if t.Email == "" {
			continue
		}

		msg, err := n.message(t, change, all)
		if err != nil {
			n.logger.Error(fmt.Sprintf("notifying class change: message for %s", id), err)
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) > 0 {
		n.email.SendMessages(messages...)
	}
}

func (n *MailNotifier) message(t roster.Teacher, change schedule.ClassChange, all []schedule.Entry) (*core.EmailMessage, error) {
	msg := core.NewEmailMessage(
		fmt.Sprintf("Timetable change: %s", change.ClassName),
		changeText(t, change),
		mail.Address{Name: t.Name, Address: t.Email},
	)

	own := make([]schedule.Entry, 0)
	for _, e := range all {
		if e.TeacherID == t.ID {
			own = append(own, e)
		}
	}
	buf := new(bytes.Buffer)
	if err := exportsvc.NewTimetable(own, map[string]string{t.ID: t.Name}).Write(buf); err != nil {
		return nil, err
	}
	if err := msg.Attach(buf, "timetable.xlsx", exportsvc.ContentType); err != nil {
		return nil, err
	}
	return msg, nil
}

func changeText(t roster.Teacher, change schedule.ClassChange) string {
	b := new(strings.Builder)
	_, _ = fmt.Fprintf(b, "Hello %s,\n\n", t.Name)
	if change.Deleted {
		_, _ = fmt.Fprintf(b, "The class %q was removed from the timetable.\n", change.ClassName)
	} else {
		_, _ = fmt.Fprintf(b, "The class %q was updated: %d slots added, %d renamed, %d removed.\n",
			change.ClassName, len(change.Plan.ToCreate), len(change.Plan.ToUpdate), len(change.Plan.ToDelete))

		entries := append([]schedule.Entry(nil), change.Entries...)
		schedule.SortEntries(entries)
		var lines []string
		for _, e := range entries {
			if e.TeacherID == t.ID {
				lines = append(lines, fmt.Sprintf("- %s %s, %s", e.DayOfWeek, schedule.Window(e.StartTime, e.EndTime), e.GradeSection()))
			}
		}
		if len(lines) > 0 {
			_, _ = fmt.Fprintf(b, "\nYour slots for this class:\n%s\n", strings.Join(lines, "\n"))
		}
	}
	_, _ = fmt.Fprint(b, "\nYour full timetable is attached.\n")
	return b.String()
}
