package workflow

import (
	"fmt"

	"travelagent/models"
)

// transitions is the full edge set of the booking state machine. A node
// may only move to one of its listed successors; the done → parse edge
// is the explicit restart transition and the only backward edge.
var transitions = map[models.Node][]models.Node{
	models.NodeParse:         {models.NodeGather},
	models.NodeGather:        {models.NodeSearchFlights, models.NodeSearchHotels},
	models.NodeSearchFlights: {models.NodeSearchHotels, models.NodeSummary},
	models.NodeSearchHotels:  {models.NodeSelectRoom},
	models.NodeSelectRoom:    {models.NodeSummary},
	models.NodeSummary:       {models.NodeConfirm},
	models.NodeConfirm:       {models.NodeBook},
	models.NodeBook:          {models.NodeDone},
	models.NodeDone:          {models.NodeParse},
}

// advance moves the state to the target node, failing loudly on any
// edge not in the table. A table violation is a programming error, not
// a user error.
func advance(st *models.WorkflowState, to models.Node) error {
	for _, allowed := range transitions[st.Node] {
		if allowed == to {
			st.Node = to
			return nil
		}
	}
	return fmt.Errorf("illegal workflow transition %s -> %s", st.Node, to)
}
