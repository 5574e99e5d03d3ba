package model

import "fmt"

// Stage is the lifecycle position of one webhook delivery.
type Stage string

const (
	StageReceived   Stage = "received"
	StageVerified   Stage = "verified"
	StageAnalyzing  Stage = "analyzing"
	StagePublishing Stage = "publishing"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// stageTransitions is the closed set of legal stage edges. Failed is terminal
// and reachable from every stage past signature verification.
var stageTransitions = map[Stage][]Stage{
	StageReceived:   {StageVerified},
	StageVerified:   {StageAnalyzing, StageDone, StageFailed},
	StageAnalyzing:  {StagePublishing, StageDone, StageFailed},
	StagePublishing: {StageDone, StageFailed},
}

// Delivery tracks one webhook delivery through its stages.
type Delivery struct {
	ID    string // X-GitHub-Delivery header, opaque
	Stage Stage
}

// NewDelivery starts a delivery at StageReceived.
func NewDelivery(id string) *Delivery {
	return &Delivery{ID: id, Stage: StageReceived}
}

// Advance moves the delivery to the next stage, rejecting edges outside the
// lifecycle graph.
func (d *Delivery) Advance(to Stage) error {
	for _, allowed := range stageTransitions[d.Stage] {
		if allowed == to {
			d.Stage = to
			return nil
		}
	}
	return fmt.Errorf("illegal stage transition %s -> %s", d.Stage, to)
}
