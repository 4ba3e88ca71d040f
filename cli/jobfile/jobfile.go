package jobfile

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/gammadia/prereq/prerequisite"
	"github.com/samber/lo"
)

const JobfileVersion = "1"

const (
	ParameterString   = "string"
	ParameterBoolean  = "boolean"
	ParameterPassword = "password"
	ParameterFile     = "file"
)

var parameterTypes = []string{ParameterString, ParameterBoolean, ParameterPassword, ParameterFile}

type Jobfile struct {
	Version       string
	Name          string
	Prerequisites prerequisite.Spec
	Parameters    []JobfileParameter
}

type JobfileParameter struct {
	Name string
	// Type of the parameter, defaults to string
	Type    string
	Default string
}

func (p JobfileParameter) kind() string {
	return lo.Ternary(p.Type != "", p.Type, ParameterString)
}

func (jobfile Jobfile) Validate() error {
	if jobfile.Version != JobfileVersion {
		return fmt.Errorf("unsupported version '%s'", jobfile.Version)
	}

	if jobfile.Name == "" {
		return fmt.Errorf("name is required")
	}

	if err := jobfile.Prerequisites.Validate(); err != nil {
		return fmt.Errorf("prerequisites: %w", err)
	}

	seen := map[string]bool{}
	for i, parameter := range jobfile.Parameters {
		if parameter.Name == "" {
			return fmt.Errorf("parameters[%d].name is required", i)
		}
		if seen[parameter.Name] {
			return fmt.Errorf("parameters[%s] is declared more than once", parameter.Name)
		}
		seen[parameter.Name] = true

		if !slices.Contains(parameterTypes, parameter.kind()) {
			return fmt.Errorf("parameters[%s] has unsupported type '%s'", parameter.Name, parameter.Type)
		}

		if parameter.kind() == ParameterBoolean && parameter.Default != "" {
			if _, err := strconv.ParseBool(parameter.Default); err != nil {
				return fmt.Errorf("parameters[%s].default is not a valid boolean", parameter.Name)
			}
		}
	}

	return nil
}

// Item builds the work item of the job. Declared parameters take their value
// from params, falling back to their default, and form the first group.
// Params that aren't declared are passed as strings in a second group.
func (jobfile Jobfile) Item(params map[string]string) (prerequisite.Item, error) {
	item := prerequisite.Item{Name: jobfile.Name}

	var declared prerequisite.ParameterGroup
	for _, parameter := range jobfile.Parameters {
		value, ok := params[parameter.Name]
		if !ok {
			value = parameter.Default
		}

		switch parameter.kind() {
		case ParameterString:
			declared.Parameters = append(declared.Parameters, prerequisite.StringParameterValue{Name: parameter.Name, Value: value})
		case ParameterBoolean:
			b := false
			if value != "" {
				var err error
				if b, err = strconv.ParseBool(value); err != nil {
					return item, fmt.Errorf("parameters[%s] is not a valid boolean: '%s'", parameter.Name, value)
				}
			}
			declared.Parameters = append(declared.Parameters, prerequisite.BooleanParameterValue{Name: parameter.Name, Value: b})
		case ParameterPassword:
			declared.Parameters = append(declared.Parameters, prerequisite.PasswordParameterValue{Name: parameter.Name, Value: value})
		case ParameterFile:
			declared.Parameters = append(declared.Parameters, prerequisite.FileParameterValue{Name: parameter.Name, Location: value})
		default:
			return item, fmt.Errorf("parameters[%s] has unsupported type '%s'", parameter.Name, parameter.Type)
		}
	}
	if len(declared.Parameters) > 0 {
		item.Groups = append(item.Groups, declared)
	}

	names := lo.Keys(params)
	sort.Strings(names)

	var extra prerequisite.ParameterGroup
	for _, name := range names {
		if lo.ContainsBy(jobfile.Parameters, func(p JobfileParameter) bool { return p.Name == name }) {
			continue
		}
		extra.Parameters = append(extra.Parameters, prerequisite.StringParameterValue{Name: name, Value: params[name]})
	}
	if len(extra.Parameters) > 0 {
		item.Groups = append(item.Groups, extra)
	}

	return item, nil
}
