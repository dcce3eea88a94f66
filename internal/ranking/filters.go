package ranking

// applyFilters runs the four hard filters in their fixed order:
// suppression, state allow-list, score thresholds, grant eligibility.
// All filters are conjunctive, so the order only matters for the trace
// counts.
func applyFilters(candidates []*Candidate, suppressed map[string]bool, filters *LeadFilters, criteria GrantCriteria, trace *Trace) []*Candidate {
	kept := candidates[:0:0]
	for _, c := range candidates {
		if !suppressed[c.District.ID] {
			kept = append(kept, c)
		}
	}
	trace.Addf("Suppressed %d recently engaged or excluded districts; %d candidates remain.", len(candidates)-len(kept), len(kept))
	candidates = kept

	if filters != nil && len(filters.States) > 0 {
		allowed := make(map[string]bool, len(filters.States))
		for _, s := range filters.States {
			allowed[s] = true
		}
		kept = candidates[:0:0]
		for _, c := range candidates {
			if allowed[c.District.State] {
				kept = append(kept, c)
			}
		}
		trace.Addf("State filter %v kept %d candidates.", filters.States, len(kept))
		candidates = kept
	}

	if filters != nil && (filters.MinTotalScore > 0 || filters.MinReadinessScore > 0 || filters.MinActivationScore > 0) {
		kept = candidates[:0:0]
		for _, c := range candidates {
			if c.Scores.Total < filters.MinTotalScore {
				continue
			}
			if c.Scores.Readiness < filters.MinReadinessScore {
				continue
			}
			if c.Scores.Activation < filters.MinActivationScore {
				continue
			}
			kept = append(kept, c)
		}
		trace.Addf("Score thresholds kept %d candidates.", len(kept))
		candidates = kept
	}

	if criteriaActive(criteria) {
		kept = candidates[:0:0]
		for _, c := range candidates {
			if meetsGrantCriteria(c, criteria) {
				kept = append(kept, c)
			}
		}
		trace.Addf("Grant eligibility kept %d candidates.", len(kept))
		candidates = kept
	}

	return candidates
}

func criteriaActive(c GrantCriteria) bool {
	return c.FRPLMin != nil || c.MinorityMin != nil || c.EnrollmentMin != nil || len(c.States) > 0
}

// meetsGrantCriteria checks every supplied threshold. A district with an
// unknown measure is treated as zero, so it fails any positive minimum.
func meetsGrantCriteria(c *Candidate, criteria GrantCriteria) bool {
	if criteria.FRPLMin != nil && frplOf(c) < *criteria.FRPLMin {
		return false
	}
	if criteria.MinorityMin != nil && minorityOf(c) < *criteria.MinorityMin {
		return false
	}
	if criteria.EnrollmentMin != nil && enrollmentOf(c) < *criteria.EnrollmentMin {
		return false
	}
	if len(criteria.States) > 0 {
		found := false
		for _, s := range criteria.States {
			if c.District.State == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func frplOf(c *Candidate) float64 {
	if c.District.FRPLPercent == nil {
		return 0
	}
	return *c.District.FRPLPercent
}

func minorityOf(c *Candidate) float64 {
	if c.District.MinorityPercent == nil {
		return 0
	}
	return *c.District.MinorityPercent
}

func enrollmentOf(c *Candidate) int {
	if c.District.Enrollment == nil {
		return 0
	}
	return *c.District.Enrollment
}
