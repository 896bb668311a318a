package casework

import "github.com/mesh-intelligence/docket/pkg/types"

// Representation is the outcome of AssignRepresentatives.
type Representation struct {
	Actors     []*types.Party
	Defendants []*types.Party
	// By maps a principal's party ID to the representatives acting for it.
	By         map[string][]*types.Party
	Unassigned []*types.Party
}

// For returns the representatives of one principal.
func (r *Representation) For(principalID string) []*types.Party {
	return r.By[principalID]
}

// AssignRepresentatives decides which representatives act for which
// actor or defendant:
//
//  1. a representative naming a principal of the case in RepresentsID acts
//     for it;
//  2. otherwise a representative with a Side acts for every principal of
//     that side (jointly when the side has several);
//  3. otherwise, if exactly one principal is still unrepresented, the
//     representatives without a side act for it;
//  4. anything left, including representatives whose side has no
//     principals, is reported as unassigned.
//
// Input order is preserved in every list.
func AssignRepresentatives(parties []*types.Party) *Representation {
	r := &Representation{By: make(map[string][]*types.Party)}
	principals := make(map[string]*types.Party)
	var ordered, reps []*types.Party
	for _, p := range parties {
		switch p.Role {
		case types.RoleActor:
			r.Actors = append(r.Actors, p)
		case types.RoleDefendant:
			r.Defendants = append(r.Defendants, p)
		case types.RoleRepresentative:
			reps = append(reps, p)
			continue
		default:
			continue
		}
		principals[p.PartyID] = p
		ordered = append(ordered, p)
	}

	var pending []*types.Party
	left := make(map[*types.Party]bool)
	for _, rep := range reps {
		if _, ok := principals[rep.RepresentsID]; ok && rep.RepresentsID != "" {
			r.By[rep.RepresentsID] = append(r.By[rep.RepresentsID], rep)
			continue
		}
		var side []*types.Party
		switch rep.Side {
		case types.RoleActor:
			side = r.Actors
		case types.RoleDefendant:
			side = r.Defendants
		default:
			pending = append(pending, rep)
			continue
		}
		// A side with nobody on it strands the representative.
		if len(side) == 0 {
			left[rep] = true
			continue
		}
		for _, p := range side {
			r.By[p.PartyID] = append(r.By[p.PartyID], rep)
		}
	}

	if len(pending) > 0 {
		var bare []*types.Party
		for _, p := range ordered {
			if len(r.By[p.PartyID]) == 0 {
				bare = append(bare, p)
			}
		}
		if len(bare) == 1 {
			r.By[bare[0].PartyID] = append(r.By[bare[0].PartyID], pending...)
			pending = nil
		}
	}
	for _, p := range pending {
		left[p] = true
	}
	for _, rep := range reps {
		if left[rep] {
			r.Unassigned = append(r.Unassigned, rep)
		}
	}
	return r
}
