package resolver

// sampleAttempts bounds how many expansions Samples tries.
const sampleAttempts = 50

// Samples returns up to n distinct non-empty expansions of expr that differ
// from expr itself, in first-seen order.
func (r *Resolver) Samples(expr string, n int) []string {
	seen := make(map[string]struct{}, n)
	var out []string
	for attempt := 0; len(out) < n && attempt < sampleAttempts; attempt++ {
		res := r.Process(expr)
		if res == "" || res == expr {
			continue
		}
		if _, dup := seen[res]; dup {
			continue
		}
		seen[res] = struct{}{}
		out = append(out, res)
	}
	return out
}
