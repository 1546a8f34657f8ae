package tracker

import "github.com/ogulcanaydogan/cost-manager/pkg/model"

// Re-export types from model package for convenience.
type (
	CostRecord = model.CostRecord
	CostInput  = model.CostInput
)
