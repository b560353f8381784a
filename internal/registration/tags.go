package registration

import "strings"

// MergeTags returns current plus any required tag it lacks, keeping the
// existing order and spelling. Tags compare case-insensitively, as the
// store treats them. changed is false when nothing had to be added.
func MergeTags(current []string, required ...string) (merged []string, changed bool) {
	seen := make(map[string]struct{}, len(current)+len(required))
	merged = make([]string, 0, len(current)+len(required))
	for _, t := range current {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, t)
	}
	for _, t := range required {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, t)
		changed = true
	}
	return merged, changed
}
