package textrep

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mailsift/internal/models"
)

func strptr(s string) *string { return &s }

func TestMessageText_AllFields(t *testing.T) {
	date := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	msg := &models.Message{
		ID:      "msg-1",
		Subject: "Quarterly report",
		Sender:  "alice@example.com",
		To:      []string{"bob@example.com", "carol@example.com"},
		Snippet: strptr("The numbers are in."),
		Body:    strptr("The numbers are in. See attachment for details."),
		Date:    &date,
	}

	got := MessageText(msg)
	want := "Subject: Quarterly report\n" +
		"From: alice@example.com\n" +
		"To: bob@example.com, carol@example.com\n" +
		"Date: 2024-03-15T10:30:00Z\n" +
		"Preview: The numbers are in.\n" +
		"Body: The numbers are in. See attachment for details.\n"
	assert.Equal(t, want, got)
}

func TestMessageText_OmitsMissingOptionalFields(t *testing.T) {
	msg := &models.Message{
		ID:      "msg-2",
		Subject: "Hello",
		Sender:  "alice@example.com",
	}

	got := MessageText(msg)
	assert.Equal(t, "Subject: Hello\nFrom: alice@example.com\n", got)
	assert.NotContains(t, got, "To:")
	assert.NotContains(t, got, "Date:")
	assert.NotContains(t, got, "Preview:")
	assert.NotContains(t, got, "Body:")
}

func TestMessageText_EmptyOptionalStringsOmitted(t *testing.T) {
	msg := &models.Message{
		Subject: "Hello",
		Sender:  "alice@example.com",
		Snippet: strptr(""),
		Body:    strptr(""),
	}

	got := MessageText(msg)
	assert.NotContains(t, got, "Preview:")
	assert.NotContains(t, got, "Body:")
}

func TestMessageText_Deterministic(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := &models.Message{
		Subject: "Same",
		Sender:  "a@example.com",
		To:      []string{"b@example.com"},
		Body:    strptr("content"),
		Date:    &date,
	}

	first := MessageText(msg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, MessageText(msg))
	}
}

func TestMessageText_DateRenderedAsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	date := time.Date(2024, 3, 15, 15, 30, 0, 0, loc)
	msg := &models.Message{Subject: "tz", Sender: "a@example.com", Date: &date}

	assert.Contains(t, MessageText(msg), "Date: 2024-03-15T10:30:00Z\n")
}

func TestMessageText_TruncatesLongBody(t *testing.T) {
	body := strings.Repeat("x", MaxBodyBytes+500)
	msg := &models.Message{Subject: "big", Sender: "a@example.com", Body: &body}

	got := MessageText(msg)
	assert.Contains(t, got, "... (truncated)")

	bodyLine := got[strings.Index(got, "Body: "):]
	rendered := strings.TrimSuffix(strings.TrimPrefix(bodyLine, "Body: "), "\n")
	assert.Equal(t, MaxBodyBytes+len("... (truncated)"), len(rendered))
}

func TestMessageText_BodyAtLimitNotTruncated(t *testing.T) {
	body := strings.Repeat("x", MaxBodyBytes)
	msg := &models.Message{Subject: "edge", Sender: "a@example.com", Body: &body}

	assert.NotContains(t, MessageText(msg), "(truncated)")
}

func TestCategoryText(t *testing.T) {
	cat := &models.Category{Name: "Work", Description: "Job-related messages"}
	assert.Equal(t, "Category: Work\nDescription: Job-related messages\n", CategoryText(cat))
}
