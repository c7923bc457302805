package selection

import (
	"errors"
	"sync"
	"testing"

	"github.com/Deep145757/teams-ai/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActions() []models.ChatCompletionAction {
	return []models.ChatCompletionAction{
		models.NewChatCompletionAction("get_weather",
			models.WithDescription("Gets current weather for a location"),
			models.WithParameters(map[string]any{"type": "object"}),
		),
		models.NewChatCompletionAction("ping"),
		models.NewChatCompletionAction("get_document", models.WithDescription("Fetch a document")),
	}
}

func names(actions []models.ChatCompletionAction) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Name)
	}
	return out
}

func TestCompile_Empty(t *testing.T) {
	_, err := Compile("")
	require.Error(t, err)

	var actErr *models.ActionError
	require.True(t, errors.As(err, &actErr))
	assert.Equal(t, models.ErrCodeFilter, actErr.Code)
}

func TestCompile_NotBoolean(t *testing.T) {
	_, err := Compile("name")
	require.Error(t, err)

	var actErr *models.ActionError
	require.True(t, errors.As(err, &actErr))
	assert.Equal(t, models.ErrCodeFilter, actErr.Code)
	assert.Equal(t, "name", actErr.Details["expression"])
}

func TestCompile_UndefinedVariable(t *testing.T) {
	_, err := Compile(`handler == "x"`)
	assert.Error(t, err)
}

func TestFilter_String(t *testing.T) {
	f, err := Compile(`name == "ping"`)
	require.NoError(t, err)
	assert.Equal(t, `name == "ping"`, f.String())
}

func TestFilter_Apply_NamePrefix(t *testing.T) {
	f, err := Compile(`name startsWith "get_"`)
	require.NoError(t, err)

	got, err := f.Apply(sampleActions())
	require.NoError(t, err)
	assert.Equal(t, []string{"get_weather", "get_document"}, names(got))
}

func TestFilter_Apply_HasParameters(t *testing.T) {
	f, err := Compile(`has_parameters`)
	require.NoError(t, err)

	got, err := f.Apply(sampleActions())
	require.NoError(t, err)
	assert.Equal(t, []string{"get_weather"}, names(got))
}

func TestFilter_Apply_Description(t *testing.T) {
	f, err := Compile(`description contains "document" || name == "ping"`)
	require.NoError(t, err)

	got, err := f.Apply(sampleActions())
	require.NoError(t, err)
	assert.Equal(t, []string{"ping", "get_document"}, names(got))
}

func TestFilter_Match(t *testing.T) {
	f, err := Compile(`description == ""`)
	require.NoError(t, err)

	ok, err := f.Match(models.NewChatCompletionAction("ping"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Match(models.NewChatCompletionAction("ping", models.WithDescription("x")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilter_ConcurrentMatch(t *testing.T) {
	f, err := Compile(`name startsWith "get_"`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.Apply(sampleActions())
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}
	wg.Wait()
}
