// Package intent holds the catalog of declared intents: units of work with
// an owned file scope, loaded once from the orchestration directory and
// shared read-only by every session.
package intent

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Status is the lifecycle status of an intent. The gateway never changes it.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Intent is a declared unit of work
type Intent struct {
	ID                 string   `json:"id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	Status             Status   `json:"status" yaml:"status"`
	OwnedScope         []string `json:"owned_scope" yaml:"owned_scope"`
	Constraints        []string `json:"constraints" yaml:"constraints"`
	AcceptanceCriteria []string `json:"acceptance_criteria" yaml:"acceptance_criteria"`
}

func (i Intent) clone() Intent {
	i.OwnedScope = append([]string(nil), i.OwnedScope...)
	i.Constraints = append([]string(nil), i.Constraints...)
	i.AcceptanceCriteria = append([]string(nil), i.AcceptanceCriteria...)
	return i
}

type intentContext struct {
	XMLName            xml.Name `xml:"intent_context"`
	ID                 string   `xml:"id"`
	Name               string   `xml:"name"`
	Status             Status   `xml:"status"`
	OwnedScope         []string `xml:"owned_scope>scope"`
	Constraints        []string `xml:"constraints>constraint"`
	AcceptanceCriteria []string `xml:"acceptance_criteria>criterion"`
}

// RenderContext returns the <intent_context> block handed to the agent after
// a successful handshake
func RenderContext(i Intent) (string, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	err := enc.Encode(intentContext{
		ID:                 i.ID,
		Name:               i.Name,
		Status:             i.Status,
		OwnedScope:         i.OwnedScope,
		Constraints:        i.Constraints,
		AcceptanceCriteria: i.AcceptanceCriteria,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render intent context: %w", err)
	}
	return buf.String(), nil
}
