package prerequisite

import "fmt"

// CauseOfBlockage explains why a work item may not start on a node.
type CauseOfBlockage interface {
	NodeName() string
	ShortDescription() string
}

type BecauseNodeIsOffline struct {
	Node string
}

type BecausePrerequisitesArentMet struct {
	Node string
}

func (c BecauseNodeIsOffline) NodeName() string { return c.Node }

func (c BecauseNodeIsOffline) ShortDescription() string {
	return fmt.Sprintf("%s is offline", c.Node)
}

func (c BecausePrerequisitesArentMet) NodeName() string { return c.Node }

func (c BecausePrerequisitesArentMet) ShortDescription() string {
	return fmt.Sprintf("Prerequisites are not met on %s", c.Node)
}

type Outcome string

const (
	Admitted       Outcome = "admitted"
	BlockedOffline Outcome = "blocked-offline"
	BlockedFailed  Outcome = "blocked-failed"
)

func OutcomeOf(cause CauseOfBlockage) Outcome {
	switch cause.(type) {
	case nil:
		return Admitted
	case BecauseNodeIsOffline, *BecauseNodeIsOffline:
		return BlockedOffline
	default:
		return BlockedFailed
	}
}
