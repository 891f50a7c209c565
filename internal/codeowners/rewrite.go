package codeowners

import "bytes"

// Rewrite removes every literal "@<handle>" occurrence of the given user handles from content.
// Team handles are left in place. The substitution is textual: rule lines left without owners
// and surrounding whitespace are kept as they are.
func Rewrite(content []byte, stale []Handle) []byte {
	out := bytes.Clone(content)
	for _, h := range stale {
		if h.IsTeam() || h == "" {
			continue
		}
		out = bytes.ReplaceAll(out, []byte("@"+string(h)), nil)
	}
	return out
}
