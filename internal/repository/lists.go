package repository

import "strings"

// Slice-valued attributes (project images, tags, request features) are stored
// as comma-separated text columns, mirroring how the schema keeps these
// fields denormalized rather than in join tables.

func joinList(items []string) *string {
	out := []string{}
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	s := strings.Join(out, ",")
	return &s
}

func splitList(s *string) []string {
	if s == nil || *s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(*s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
