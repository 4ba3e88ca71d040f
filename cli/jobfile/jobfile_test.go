package jobfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gammadia/prereq/prerequisite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readtests = []struct {
	file     string
	expected string
}{
	{"testdata/valid_minimalist.yaml", ""},
	{"testdata/valid_full_featured.yaml", ""},
	{"testdata/valid_windows.yaml", ""},
	{"testdata/valid_template.yaml", ""},

	{"testdata/invalid_version.yaml", "validate: unsupported version '42'"},
	{"testdata/invalid_missing_name.yaml", "validate: name is required"},
	{"testdata/invalid_missing_script.yaml", "validate: prerequisites: script is required"},
	{"testdata/invalid_interpreter.yaml", "validate: prerequisites: unsupported interpreter 'powershell'"},
	{"testdata/invalid_missing_parameter_name.yaml", "validate: parameters[0].name is required"},
	{"testdata/invalid_parameter_type.yaml", "validate: parameters[COUNT] has unsupported type 'integer'"},
	{"testdata/invalid_parameter_boolean.yaml", "validate: parameters[DEPLOY].default is not a valid boolean"},
	{"testdata/invalid_parameter_duplicate.yaml", "validate: parameters[BRANCH] is declared more than once"},
	{"testdata/invalid_parameters_map.yaml", "unmarshal: yaml: unmarshal errors:\n  line 7: cannot unmarshal !!map into []jobfile.JobfileParameter"},
}

func TestRead(t *testing.T) {
	for _, tt := range readtests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := Read(tt.file, ReadOptions{})
			if tt.expected == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.expected)
			}
		})
	}
}

func TestReadUnmarshalErrorKeepsSource(t *testing.T) {
	_, err := Read("testdata/invalid_version.yaml", ReadOptions{})

	var unmarshalErr UnmarshalError
	require.ErrorAs(t, err, &unmarshalErr)
	assert.Contains(t, unmarshalErr.Source, `version: "42"`)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read("testdata/missing.yaml", ReadOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFullFeatured(t *testing.T) {
	jobfile, err := Read("testdata/valid_full_featured.yaml", ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "deploy", jobfile.Name)
	assert.Equal(t, prerequisite.ShellScript, jobfile.Prerequisites.Interpreter)
	assert.Equal(t, "test \"$BRANCH\" = main\ntest \"$DEPLOY\" = true\n", jobfile.Prerequisites.Script)
	assert.Equal(t, []JobfileParameter{
		{Name: "BRANCH", Type: "string", Default: "main"},
		{Name: "DEPLOY", Type: "boolean", Default: "true"},
		{Name: "TOKEN", Type: "password"},
		{Name: "ARCHIVE", Type: "file"},
	}, jobfile.Parameters)
}

func TestReadTemplate(t *testing.T) {
	jobfile, err := Read("testdata/valid_template.yaml", ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "templated", jobfile.Name)
	assert.Equal(t, "test -d /srv/templated", jobfile.Prerequisites.Script)

	jobfile, err = Read("testdata/valid_template.yaml", ReadOptions{Params: map[string]string{"JOB": "Nightly"}})
	require.NoError(t, err)
	assert.Equal(t, "nightly", jobfile.Name)
	assert.Equal(t, "Nightly", jobfile.Parameters[0].Default)
}

func TestReadTemplateEnv(t *testing.T) {
	t.Setenv("PREREQ_TEST_WORKSPACE", "/opt/builds")

	file := filepath.Join(t.TempDir(), "jobfile.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`version: "1"
name: env
prerequisites:
  interpreter: sh
  script: test -d {{ .Env.PREREQ_TEST_WORKSPACE }} && test -d {{ env "PREREQ_TEST_WORKSPACE" }}
`), 0o644))

	jobfile, err := Read(file, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "test -d /opt/builds && test -d /opt/builds", jobfile.Prerequisites.Script)
}

func TestReadInvalidTemplate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "jobfile.yaml")
	require.NoError(t, os.WriteFile(file, []byte("name: {{ .Params"), 0o644))

	_, err := Read(file, ReadOptions{})
	assert.ErrorContains(t, err, "evaluate template: failed to parse template")
}

func TestItem(t *testing.T) {
	jobfile, err := Read("testdata/valid_full_featured.yaml", ReadOptions{})
	require.NoError(t, err)

	item, err := jobfile.Item(map[string]string{
		"BRANCH": "release",
		"TOKEN":  "s3cr3t",
		"ZONE":   "eu",
		"COLOR":  "blue",
	})
	require.NoError(t, err)

	assert.Equal(t, "deploy", item.Name)
	assert.Equal(t, []prerequisite.ParameterGroup{
		{Parameters: []prerequisite.ParameterValue{
			prerequisite.StringParameterValue{Name: "BRANCH", Value: "release"},
			prerequisite.BooleanParameterValue{Name: "DEPLOY", Value: true},
			prerequisite.PasswordParameterValue{Name: "TOKEN", Value: "s3cr3t"},
			prerequisite.FileParameterValue{Name: "ARCHIVE"},
		}},
		{Parameters: []prerequisite.ParameterValue{
			prerequisite.StringParameterValue{Name: "COLOR", Value: "blue"},
			prerequisite.StringParameterValue{Name: "ZONE", Value: "eu"},
		}},
	}, item.Groups)

	assert.Equal(t, map[string]string{
		"BRANCH": "release",
		"DEPLOY": "true",
		"COLOR":  "blue",
		"ZONE":   "eu",
	}, prerequisite.CollectEnvironment(&item))
}

func TestItemWithoutParameters(t *testing.T) {
	jobfile := Jobfile{Name: "build"}

	item, err := jobfile.Item(nil)
	require.NoError(t, err)
	assert.Empty(t, item.Groups)
	assert.Empty(t, prerequisite.CollectEnvironment(&item))
}

func TestItemInvalidBoolean(t *testing.T) {
	jobfile := Jobfile{Name: "deploy", Parameters: []JobfileParameter{{Name: "DEPLOY", Type: ParameterBoolean}}}

	item, err := jobfile.Item(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, prerequisite.BooleanParameterValue{Name: "DEPLOY", Value: false}, item.Groups[0].Parameters[0])

	_, err = jobfile.Item(map[string]string{"DEPLOY": "yes"})
	assert.EqualError(t, err, "parameters[DEPLOY] is not a valid boolean: 'yes'")
}
