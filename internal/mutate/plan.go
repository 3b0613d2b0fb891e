package mutate

import (
	"time"

	"github.com/google/uuid"
)

// Plan is the serializable artifact describing one mutation run: what was
// asked for, what the guards decided, and whether anything was committed.
// Dry runs produce plans too, so a reviewed plan can be re-run with apply.
type Plan struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Operation Operation  `json:"operation"`
	File      string     `json:"file"`
	Selector  string     `json:"selector"`
	Target    TargetInfo `json:"target"`
	Guard     *Guard     `json:"guard"`
	Changed   bool       `json:"changed"`
	Applied   bool       `json:"applied"`
	Forced    bool       `json:"forced"`
}

// NewPlan builds the plan artifact for a completed (or rejected) run.
func NewPlan(req Request, result *Result) *Plan {
	return &Plan{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Operation: req.Operation,
		File:      req.Path,
		Selector:  req.Selector,
		Target:    result.Target,
		Guard:     result.Guard,
		Changed:   result.Changed,
		Applied:   result.Applied,
		Forced:    req.Force,
	}
}
