package models

import "fmt"

// ResponseType selects how the merged ticket list is rendered
type ResponseType int

const (
	// ResponseJira renders a JQL search URL
	ResponseJira ResponseType = iota
	// ResponseList renders space-separated ticket IDs
	ResponseList
	// ResponseJSON renders a JSON report
	ResponseJSON
	// ResponseYAML renders a YAML report
	ResponseYAML
)

// ResponseTypeNames lists the accepted --response-type values
var ResponseTypeNames = []string{"jira", "list", "json", "yaml"}

// ParseResponseType parses a --response-type value
func ParseResponseType(s string) (ResponseType, error) {
	switch s {
	case "jira":
		return ResponseJira, nil
	case "list":
		return ResponseList, nil
	case "json":
		return ResponseJSON, nil
	case "yaml":
		return ResponseYAML, nil
	default:
		return ResponseJira, fmt.Errorf("invalid response type %q (choices: jira, list, json, yaml)", s)
	}
}

// String returns the flag value for this response type
func (r ResponseType) String() string {
	if r >= 0 && int(r) < len(ResponseTypeNames) {
		return ResponseTypeNames[r]
	}
	return "unknown"
}

// Display returns a display string for this response type
func (r ResponseType) Display() string {
	switch r {
	case ResponseJira:
		return "JQL search URL"
	case ResponseList:
		return "ticket list"
	case ResponseJSON:
		return "JSON report"
	case ResponseYAML:
		return "YAML report"
	default:
		return ""
	}
}
