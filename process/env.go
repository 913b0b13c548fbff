package process

import (
	"sort"
	"strings"
)

// MergeEnv applies overrides on top of base, a list of KEY=VALUE entries
// as returned by os.Environ. Inherited entries keep their order; new keys
// are appended sorted, so the result is deterministic.
func MergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return append([]string(nil), base...)
	}

	merged := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if v, ok := overrides[key]; ok {
			if !seen[key] {
				merged = append(merged, key+"="+v)
				seen[key] = true
			}
			continue
		}
		merged = append(merged, kv)
	}

	added := make([]string, 0, len(overrides))
	for k := range overrides {
		if !seen[k] {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	for _, k := range added {
		merged = append(merged, k+"="+overrides[k])
	}
	return merged
}
