package work

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigil-app/vigil/server/models"
)

func TestRegister(t *testing.T) {
	models.InitializeTestDb()
	adapter := NewWorkerAdapter("UTC")

	require.NoError(t, adapter.Register("say_hello", func(args map[string]interface{}) error { return nil }))

	err := adapter.Register("say_hello", func(args map[string]interface{}) error { return nil })
	assert.ErrorIs(t, err, ErrDuplicateHandler)
}

func TestPerform(t *testing.T) {
	models.InitializeTestDb()
	adapter := NewWorkerAdapter("UTC")

	greetings := make(chan string, 2)
	require.NoError(t, adapter.Register("write_greeting", func(args map[string]interface{}) error {
		greetings <- fmt.Sprintf("Hello %v!", args["name"])
		return nil
	}))

	require.NoError(t, adapter.Perform(JobParams{
		Name:    "write_greeting",
		Handler: "write_greeting",
		Args:    map[string]interface{}{"name": "vigil"},
	}))

	require.NoError(t, adapter.Start())
	defer adapter.Stop()

	select {
	case greeting := <-greetings:
		assert.Equal(t, "Hello vigil!", greeting)
	case <-time.After(3 * time.Second):
		t.Fatal("job was never processed")
	}
}

func TestPerformUniqueJobIsEnqueuedOnce(t *testing.T) {
	models.InitializeTestDb()
	adapter := NewWorkerAdapter("UTC")

	runs := make(chan struct{}, 2)
	require.NoError(t, adapter.Register("run_once", func(args map[string]interface{}) error {
		runs <- struct{}{}
		return nil
	}))

	job := JobParams{Name: "run_once", Handler: "run_once", Unique: true, Args: map[string]interface{}{}}
	require.NoError(t, adapter.Perform(job))

	// second enqueue of the same unique job is dropped, not an error
	require.NoError(t, adapter.Perform(job))

	require.NoError(t, adapter.Start())
	defer adapter.Stop()

	select {
	case <-runs:
	case <-time.After(3 * time.Second):
		t.Fatal("job was never processed")
	}

	select {
	case <-runs:
		t.Fatal("duplicate unique job was processed")
	case <-time.After(250 * time.Millisecond):
	}
}
