package action

// Walk calls fn for a and then, depth-first, for every action nested within
// it: the then branch of a when_then and the reaction lists of every
// player-choice option.
func (a *Action) Walk(fn func(*Action)) {
	fn(a)
	if a.Then != nil {
		a.Then.Walk(fn)
	}
	for i := range a.Options {
		for j := range a.Options[i].Reactions {
			a.Options[i].Reactions[j].Walk(fn)
		}
	}
}

// IDs returns every non-empty id declared by a, including ids declared by
// nested actions, in traversal order.
func (a *Action) IDs() []string {
	var ids []string
	a.Walk(func(n *Action) {
		if n.ID != "" {
			ids = append(ids, n.ID)
		}
	})
	return ids
}

// References returns the ids of other actions that a itself refers to. It
// does not descend into nested actions; callers that need the transitive
// set combine this with Walk.
func (a *Action) References() []string {
	var refs []string
	switch a.Type {
	case TypeAssetCutscene:
		for _, s := range a.Shots {
			refs = append(refs, s.ImageID, s.SubtitleID)
		}
	case TypePlayCutscene:
		refs = append(refs, a.CutsceneID)
	case TypeShowModal:
		if a.ImageID != "" {
			refs = append(refs, a.ImageID)
		}
		if a.SubtitleID != "" {
			refs = append(refs, a.SubtitleID)
		}
	}
	return refs
}

// AllReferences returns the references made by a and by every action nested
// within it, in traversal order.
func (a *Action) AllReferences() []string {
	var refs []string
	a.Walk(func(n *Action) {
		refs = append(refs, n.References()...)
	})
	return refs
}
