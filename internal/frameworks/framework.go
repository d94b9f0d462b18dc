// Package frameworks implements the requirement store for Concord.
// It provides types, data access, and bulk loading for compliance frameworks
// represented as rooted forests of requirements.
package frameworks

import (
	"time"

	"github.com/google/uuid"
)

// Framework types.
const (
	TypeNISTCSF  = "nist_csf"
	TypeISO27001 = "iso_27001"
	TypeSOC2TSC  = "soc2_tsc"
	TypeCustom   = "custom"
)

// Framework is a named, versioned catalog of requirements. HierarchyLevels
// declares how many tree levels the framework uses; HierarchyLabels names them.
type Framework struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Version         string    `json:"version"`
	Description     *string   `json:"description"`
	FrameworkType   string    `json:"framework_type"`
	HierarchyLevels int       `json:"hierarchy_levels"`
	HierarchyLabels []string  `json:"hierarchy_labels"`
	IsActive        bool      `json:"is_active"`
	IsBuiltin       bool      `json:"is_builtin"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Requirement is one node in a framework's forest. Level 0 nodes are roots
// (ParentID is nil only at level 0). IsAssessable marks the nodes that carry
// evidence directly; scoring only reads assessable nodes.
type Requirement struct {
	ID           uuid.UUID  `json:"id"`
	FrameworkID  uuid.UUID  `json:"framework_id"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Description  *string    `json:"description"`
	Guidance     *string    `json:"guidance"`
	Level        int        `json:"level"`
	IsAssessable bool       `json:"is_assessable"`
	DisplayOrder int        `json:"display_order"`
	Embedding    []float64  `json:"embedding,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RootCode returns the code of the requirement's root function prefix, the
// portion of the code before the first '.' (e.g. "GV" for "GV.OC-01").
// Falls back to the full code when there is no separator.
func (r Requirement) RootCode() string {
	for i := 0; i < len(r.Code); i++ {
		if r.Code[i] == '.' || r.Code[i] == '-' {
			return r.Code[:i]
		}
	}
	return r.Code
}

// Definition is the bulk-load input for a framework: the framework metadata
// plus its complete requirement forest keyed by code.
type Definition struct {
	Code            string                  `json:"code"`
	Name            string                  `json:"name"`
	Version         string                  `json:"version"`
	Description     *string                 `json:"description"`
	FrameworkType   string                  `json:"framework_type"`
	HierarchyLabels []string                `json:"hierarchy_labels"`
	IsBuiltin       bool                    `json:"is_builtin"`
	Requirements    []RequirementDefinition `json:"requirements"`
}

// RequirementDefinition is one node in a Definition. ParentCode references
// another node in the same definition; empty for roots.
type RequirementDefinition struct {
	Code         string  `json:"code"`
	ParentCode   string  `json:"parent_code"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Guidance     *string `json:"guidance"`
	IsAssessable bool    `json:"is_assessable"`
	DisplayOrder int     `json:"display_order"`
}
