package content

import "strings"

const sectionMarker = "-section"

// SectionBase strips trailing qualifier segments after the last "-section"
// marker: "footer-section-us" becomes "footer-section". Keys without the
// marker are returned unchanged.
func SectionBase(key string) string {
	i := strings.LastIndex(key, sectionMarker)
	if i < 0 {
		return key
	}
	return key[:i+len(sectionMarker)]
}

// SameSection reports whether two section keys share a base key.
func SameSection(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return SectionBase(a) == SectionBase(b)
}

// SimilarQuery is the input of similarity retrieval.
type SimilarQuery struct {
	Text              string
	Role              string // hard role filter; empty means none
	Limit             int
	Tags              []string
	Keywords          []string
	Tenant            string  // hard tenant filter; empty means none
	DistanceThreshold float64 // 0 means none
	SectionHint       string  // rows sharing its base key are moved ahead
}
