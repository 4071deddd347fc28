package engine

import "fmt"

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

// predIndexPath names an unmatched prediction-side list item. It is kept
// distinct from indexPath so an unmatched gt[j] and an unmatched
// pred[j] sharing the same numeric index never collide on path.
func predIndexPath(parent string, j int) string {
	return fmt.Sprintf("%s[pred:%d]", parent, j)
}

func prefixNonMatches(prefix string, matches []NonMatch) []NonMatch {
	if len(matches) == 0 {
		return nil
	}
	out := make([]NonMatch, len(matches))
	for i, m := range matches {
		if m.Path == "" {
			m.Path = prefix
		} else {
			m.Path = prefix + "." + m.Path
		}
		out[i] = m
	}
	return out
}
