// Package output renders a reconciliation report and delivers it to the user.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wahlandcase/attuned.tickets/internal/apperror"
	"github.com/wahlandcase/attuned.tickets/internal/models"
	"github.com/wahlandcase/attuned.tickets/internal/reconcile"

	"gopkg.in/yaml.v3"
)

// DefaultJiraBaseURL is used when no base URL is configured
const DefaultJiraBaseURL = "https://swipejobs.atlassian.net"

// jqlSeparator is ", " escaped for the query string
const jqlSeparator = "%2C%20"

// JiraURL builds the issue search URL for tickets:
// <base>/issues/?jql=issueKey%20in%20(AFE-1%2C%20AFE-2)
func JiraURL(baseURL string, tickets []string) string {
	if baseURL == "" {
		baseURL = DefaultJiraBaseURL
	}
	return strings.TrimSuffix(baseURL, "/") + "/issues/?jql=issueKey%20in%20(" + strings.Join(tickets, jqlSeparator) + ")"
}

// List joins tickets with single spaces
func List(tickets []string) string {
	return strings.Join(tickets, " ")
}

// Document is the json/yaml rendering of a report
type Document struct {
	TargetBranch string           `json:"target_branch" yaml:"target_branch"`
	Tickets      []string         `json:"tickets" yaml:"tickets"`
	Count        int              `json:"count" yaml:"count"`
	Sources      []SourceDocument `json:"sources" yaml:"sources"`
}

// SourceDocument is one source in a Document. ErrorKind classifies a
// failure (bad_reference, unreachable_source, remote_comparison, ...).
type SourceDocument struct {
	Name         string   `json:"name" yaml:"name"`
	SourceBranch string   `json:"source_branch" yaml:"source_branch"`
	Tickets      []string `json:"tickets" yaml:"tickets"`
	Status       string   `json:"status" yaml:"status"`
	Error        string   `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind    string   `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

// NewDocument converts a report; ticket lists are never null
func NewDocument(report *reconcile.Report) Document {
	doc := Document{
		TargetBranch: report.TargetBranch,
		Tickets:      nonNil(report.Tickets),
		Count:        len(report.Tickets),
		Sources:      make([]SourceDocument, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		doc.Sources = append(doc.Sources, SourceDocument{
			Name:         res.Source.Name,
			SourceBranch: res.SourceBranch,
			Tickets:      nonNil(res.Tickets),
			Status:       models.StatusName(res.Status),
			Error:        models.GetStatusReason(res.Status),
			ErrorKind:    apperror.Kind(res.Err),
		})
	}
	return doc
}

// Format renders the report in the requested response type.
// jira output is the bare search URL, ready to paste.
func Format(rt models.ResponseType, report *reconcile.Report, jiraBaseURL string) (string, error) {
	switch rt {
	case models.ResponseList:
		return List(report.Tickets), nil
	case models.ResponseJira:
		return JiraURL(jiraBaseURL, report.Tickets), nil
	case models.ResponseJSON:
		data, err := json.MarshalIndent(NewDocument(report), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding json report: %w", err)
		}
		return string(data), nil
	case models.ResponseYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(report)); err != nil {
			return "", fmt.Errorf("encoding yaml report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encoding yaml report: %w", err)
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	default:
		return "", fmt.Errorf("unsupported response type %d", rt)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
