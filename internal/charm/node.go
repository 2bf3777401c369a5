package charm

// NodeCharm layers relation-driven sync wiring over ServiceCharm: each
// subordinate relation becomes a required sync key that relation
// joined/changed/departed events flip.
type NodeCharm struct {
	*ServiceCharm

	relations []string
}

// NewNode wraps an existing charm as a node principal.
func NewNode(svc *ServiceCharm) *NodeCharm {
	return &NodeCharm{ServiceCharm: svc}
}

// SetupRelationSyncs registers relnames as required syncs, each
// initialized unsatisfied. Call once at construction; the dispatcher
// binds the matching relation events.
func (n *NodeCharm) SetupRelationSyncs(relnames []string) {
	required := make([]string, 0, len(relnames))
	for _, rel := range relnames {
		n.InitSync(rel, false, nil)
		required = append(required, rel)
	}
	n.SetRequiredSyncs(required)
	n.relations = required
}

// Relations returns a copy of the registered relation names.
func (n *NodeCharm) Relations() []string {
	out := make([]string, len(n.relations))
	copy(out, n.relations)
	return out
}

// RelationJoined marks the relation's sync satisfied.
func (n *NodeCharm) RelationJoined(rel string) Outcome {
	return n.SetSync(rel, true)
}

// RelationChanged keeps the relation's sync satisfied on data changes.
func (n *NodeCharm) RelationChanged(rel string) Outcome {
	return n.SetSync(rel, true)
}

// RelationDeparted marks the relation's sync unsatisfied.
func (n *NodeCharm) RelationDeparted(rel string) Outcome {
	return n.SetSync(rel, false)
}
