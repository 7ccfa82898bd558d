package overdue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderAlertEmailEscapesNames(t *testing.T) {
	subject, body := renderAlertEmail("<script>alert(1)</script>", "O'Brien & Sons", 3)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, body, "O&#39;Brien &amp; Sons")
	assert.Contains(t, body, "3 hour(s)")

	// the subject is plain text, so names pass through untouched
	assert.Contains(t, subject, "<script>alert(1)</script>")
}

func TestRenderReminderEmailEscapesNames(t *testing.T) {
	deadline := time.Date(2022, 3, 2, 9, 0, 0, 0, time.UTC)

	_, body := renderReminderEmail("Bobby <b>Tables</b>", deadline)

	assert.NotContains(t, body, "<b>Tables</b>")
	assert.Contains(t, body, "Bobby &lt;b&gt;Tables&lt;/b&gt;")
	assert.Contains(t, body, deadline.Format(time.RFC1123))
}
