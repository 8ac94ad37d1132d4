package explain

// Prune drops the steps a minimal explanation can do without: prunable steps
// that touch nothing interesting. The end-of-path step is always kept.
func Prune(steps []Step) []Step {
	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		if s.Prunable && !s.EndOfPath {
			continue
		}
		out = append(out, s)
	}
	return out
}
