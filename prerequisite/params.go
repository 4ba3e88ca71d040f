package prerequisite

import "strconv"

type ParameterValue interface {
	ParameterName() string
}

type StringParameterValue struct {
	Name  string
	Value string
}

type BooleanParameterValue struct {
	Name  string
	Value bool
}

// PasswordParameterValue is never exposed to prerequisite scripts.
type PasswordParameterValue struct {
	Name  string
	Value string
}

// FileParameterValue is never exposed to prerequisite scripts.
type FileParameterValue struct {
	Name     string
	Location string
}

func (p StringParameterValue) ParameterName() string   { return p.Name }
func (p BooleanParameterValue) ParameterName() string  { return p.Name }
func (p PasswordParameterValue) ParameterName() string { return p.Name }
func (p FileParameterValue) ParameterName() string     { return p.Name }

type ParameterGroup struct {
	Parameters []ParameterValue
}

// WorkItem is a pending unit of work awaiting admission on a node.
type WorkItem interface {
	ParameterGroups() []ParameterGroup
}

type Item struct {
	Name   string
	Groups []ParameterGroup
}

// Item implements WorkItem
var _ WorkItem = (*Item)(nil)

func (i *Item) ParameterGroups() []ParameterGroup {
	return i.Groups
}

// CollectEnvironment flattens the string and boolean parameters of an item into
// environment variables. Groups and parameters are traversed in order, so a later
// parameter overrides an earlier one with the same name.
func CollectEnvironment(item WorkItem) map[string]string {
	env := map[string]string{}
	if item == nil {
		return env
	}

	for _, group := range item.ParameterGroups() {
		for _, parameter := range group.Parameters {
			switch p := parameter.(type) {
			case StringParameterValue:
				env[p.Name] = p.Value
			case *StringParameterValue:
				env[p.Name] = p.Value
			case BooleanParameterValue:
				env[p.Name] = strconv.FormatBool(p.Value)
			case *BooleanParameterValue:
				env[p.Name] = strconv.FormatBool(p.Value)
			}
		}
	}

	return env
}
