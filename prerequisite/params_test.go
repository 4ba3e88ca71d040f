package prerequisite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectEnvironment(t *testing.T) {
	item := &Item{Groups: []ParameterGroup{{Parameters: []ParameterValue{
		StringParameterValue{Name: "BRANCH", Value: "main"},
		BooleanParameterValue{Name: "DEPLOY", Value: true},
		BooleanParameterValue{Name: "DRY_RUN", Value: false},
		PasswordParameterValue{Name: "TOKEN", Value: "s3cr3t"},
		FileParameterValue{Name: "ARCHIVE", Location: "archive.tgz"},
	}}}}

	assert.Equal(t, map[string]string{
		"BRANCH":  "main",
		"DEPLOY":  "true",
		"DRY_RUN": "false",
	}, CollectEnvironment(item))
}

func TestCollectEnvironmentLastWriteWins(t *testing.T) {
	item := &Item{Groups: []ParameterGroup{
		{Parameters: []ParameterValue{
			StringParameterValue{Name: "TARGET", Value: "staging"},
			StringParameterValue{Name: "TARGET", Value: "qa"},
		}},
		{Parameters: []ParameterValue{
			&BooleanParameterValue{Name: "TARGET", Value: true},
		}},
	}}

	assert.Equal(t, map[string]string{"TARGET": "true"}, CollectEnvironment(item))
}

func TestCollectEnvironmentEmpty(t *testing.T) {
	assert.Empty(t, CollectEnvironment(&Item{}))
	assert.Empty(t, CollectEnvironment(nil))
}

func TestCollectEnvironmentKeepsValuesVerbatim(t *testing.T) {
	item := &Item{Groups: []ParameterGroup{{Parameters: []ParameterValue{
		&StringParameterValue{Name: "MESSAGE", Value: "  it's \"quoted\" $HOME\n"},
	}}}}

	assert.Equal(t, "  it's \"quoted\" $HOME\n", CollectEnvironment(item)["MESSAGE"])
}
