package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var testConf = &core.Config{AppName: "Ratiba", DefaultFromEmail: "Ratiba <noreply@ratiba.test>", TestMode: true}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	ResetSentMessages()
	svc := NewService(testConf, nopLogger{})

	msg := &core.EmailMessage{
		To:          []mail.Address{{Name: "Ada", Address: "ada@ratiba.test"}},
		Subject:     "Math changed",
		TextContent: "Monday 09:00-10:00",
	}
	require.NoError(t, msg.Attach(strings.NewReader("timetable"), "timetable.txt", "text/plain"))

	svc.SendMessages(
		msg,
		&core.EmailMessage{Subject: "no recipients", TextContent: "dropped"},
		&core.EmailMessage{To: msg.To, Subject: "no content"},
	)

	sent := GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Math changed", sent[0].Subject)
	assert.Equal(t, "dGltZXRhYmxl", sent[0].Attachments[0].Content.String())
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConf, nopLogger{}).(*sendgridService)
	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Address: "ada@ratiba.test"}},
		Cc:          []mail.Address{{Address: "head@ratiba.test"}},
		Subject:     "Math changed",
		TextContent: "text",
		Attachments: []core.Attachment{{Content: bytes.NewBufferString("eA=="), ContentType: "text/plain", Filename: "x.txt"}},
	})

	assert.Equal(t, "noreply@ratiba.test", m.From.Address)
	assert.Equal(t, "Ratiba", m.From.Name)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[Ratiba] Math changed", m.Personalizations[0].Subject)
	assert.Len(t, m.Personalizations[0].To, 1)
	assert.Len(t, m.Personalizations[0].CC, 1)
	assert.Len(t, m.Content, 1)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "x.txt", m.Attachments[0].Filename)
}
