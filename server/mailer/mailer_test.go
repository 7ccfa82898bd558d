package mailer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigil-app/vigil/shared"
)

func TestSendEmail(t *testing.T) {
	var receivedPath, receivedAuth string
	receivedPayload := map[string]interface{}{}

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		receivedAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&receivedPayload))

		w.WriteHeader(http.StatusOK)
	}))
	defer testServer.Close()

	client := NewClient(shared.MailerConfig{
		BaseURL: testServer.URL,
		ApiKey:  "fakeApiKey",
		From:    "Vigil <alerts@vigil.dev>",
	}, false)

	err := client.SendEmail("grace@example.com", "Hello", "<p>Hi Grace</p>")
	require.NoError(t, err)

	assert.Equal(t, "/emails", receivedPath)
	assert.Equal(t, "Bearer fakeApiKey", receivedAuth)
	assert.Equal(t, "Vigil <alerts@vigil.dev>", receivedPayload["from"])
	assert.Equal(t, []interface{}{"grace@example.com"}, receivedPayload["to"])
	assert.Equal(t, "Hello", receivedPayload["subject"])
	assert.Equal(t, "<p>Hi Grace</p>", receivedPayload["html"])
}

func TestSendEmailSurfacesAPIErrors(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid to address"}`))
	}))
	defer testServer.Close()

	client := NewClient(shared.MailerConfig{BaseURL: testServer.URL, ApiKey: "fakeApiKey"}, false)

	err := client.SendEmail("not-an-email", "Hello", "<p>Hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "invalid to address")
}

func TestSendEmailInTestMode(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("test mode must never hit the email API")
	}))
	defer testServer.Close()

	client := NewClient(shared.MailerConfig{BaseURL: testServer.URL, ApiKey: "fakeApiKey"}, true)

	assert.NoError(t, client.SendEmail("grace@example.com", "Hello", "<p>Hi</p>"))
}
