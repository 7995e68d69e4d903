package workout

import (
	"slices"
	"strconv"
	"strings"
)

const (
	TypeRun      = "Run"
	TypeStrength = "Strength"

	// NoBodyPart is the only tag a Run session carries.
	NoBodyPart = "無し"
	// CardioExercise titles the single aggregate set of a Run session.
	CardioExercise = "有酸素運動"
)

// bodyPartSynonyms maps lowercase English and Japanese names to the six
// canonical categories. Every canonical name maps to itself.
var bodyPartSynonyms = map[string]string{
	"胸": "胸", "肩": "肩", "腕": "腕", "背中": "背中", "脚": "脚", "足": "脚", "腹": "腹", "体幹": "腹",

	"chest": "胸", "pec": "胸", "pecs": "胸",
	"shoulder": "肩", "shoulders": "肩", "delts": "肩",
	"arm": "腕", "arms": "腕", "biceps": "腕", "triceps": "腕", "forearm": "腕", "forearms": "腕",
	"back": "背中", "lats": "背中",
	"legs": "脚", "leg": "脚", "quads": "脚", "hamstrings": "脚", "calves": "脚", "glutes": "脚",
	"core": "腹", "abs": "腹", "abdominals": "腹",
}

// BodyPartVocabulary returns each canonical category with the sorted names
// that map to it.
func BodyPartVocabulary() map[string][]string {
	vocab := make(map[string][]string)
	for name, canon := range bodyPartSynonyms {
		vocab[canon] = append(vocab[canon], name)
	}
	for _, names := range vocab {
		slices.Sort(names)
	}
	return vocab
}

// NormalizeType folds free text into TypeRun or TypeStrength by substring.
// Anything unrecognized is returned unchanged.
func NormalizeType(t string) string {
	lower := strings.ToLower(t)
	switch {
	case strings.Contains(lower, "run"):
		return TypeRun
	case strings.Contains(lower, "strength"),
		strings.Contains(lower, "gym"),
		strings.Contains(lower, "lift"),
		strings.Contains(lower, "筋"):
		return TypeStrength
	}
	return t
}

// NormalizeBodyParts maps tokens to canonical categories, dropping unknown
// ones and duplicates while keeping first-seen order. Run sessions always
// get exactly NoBodyPart.
func NormalizeBodyParts(sessionType string, parts BodyParts) []string {
	if sessionType == TypeRun {
		return []string{NoBodyPart}
	}

	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		key := strings.TrimSpace(strings.ToLower(p))
		if key == "" {
			continue
		}
		canon, ok := bodyPartSynonyms[key]
		if !ok || seen[canon] {
			continue
		}
		seen[canon] = true
		out = append(out, canon)
	}
	return out
}

// setLabeler numbers repeated exercise names so each set page gets a
// distinct title: "Squat1", "Squat2", ...
type setLabeler map[string]int

func (l setLabeler) next(base string) string {
	l[base]++
	return base + strconv.Itoa(l[base])
}
