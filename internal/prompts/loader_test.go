package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(PipelineFile, "job-analyzer-system")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "requiredSkills")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(PipelineFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet(PipelineFile, "job-analyzer-system")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(PipelineFile)
	require.NoError(t, err)
	assert.Contains(t, keys, "job-analyzer-system")
	assert.IsIncreasing(t, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	// First call loads from file
	prompt1, err := Get(PipelineFile, "job-analyzer-system")
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get(PipelineFile, "job-analyzer-system")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render(PipelineFile, "job-analyzer-user", map[string]string{"JobDescription": "Go developer"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Go developer")
	assert.NotContains(t, prompt, "{{.JobDescription}}")
}

func TestAllFilesLoad(t *testing.T) {
	ClearCache()

	required := map[string][]string{
		PipelineFile: {
			"job-analyzer-system", "job-analyzer-user",
			"profile-matcher-system", "profile-matcher-user",
			"experience-optimizer-system", "skills-optimizer-system", "projects-optimizer-system",
			"optimizer-user",
		},
		GenerateFile:  {"about-system", "about-user", "bullets-system", "bullets-user", "skills-system", "skills-user"},
		AssistantFile: {"chat-system", "chat-user"},
	}
	for file, keys := range required {
		for _, key := range keys {
			prompt, err := Get(file, key)
			require.NoError(t, err, "%s/%s", file, key)
			assert.NotEmpty(t, prompt)
		}
	}
}
