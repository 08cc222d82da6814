package infer

import (
	"regexp"

	"github.com/shyptr/typegraph/typekind"
)

// defaultScale is the power-law scale constant for MapThreshold: the
// threshold is 0.0025 for one property and climbs to a probability of
// 1 at about 38 properties, matching spec.md's example shape for
// MapThreshold.
const defaultScale = 1e8

var allDigits = regexp.MustCompile(`^\d+$`)

// MapDecision is ShouldInferMap's verdict for one class.
type MapDecision struct {
	// Convert reports whether the class should become a map.
	Convert bool
	// Reason documents which branch of spec.md's decision rule fired,
	// for debug logging.
	Reason string
}

// ClassView is the minimal surface ShouldInferMap needs from a class
// type, decoupled from model.Object so callers (the rewrite package)
// can supply it without this package depending on tgraph for
// resolution.
type ClassView struct {
	PropertyNames []string
	// PropertyIsNullOrPrimitiveString reports, per property (same
	// index as PropertyNames), whether every sample-observed case for
	// it was null or a plain string.
	PropertyIsNullOrPrimitiveString []bool
	// StructurallyCompatible reports whether every pair of non-null
	// property value types is structurally compatible, used by the
	// geometric-mean branch.
	StructurallyCompatible bool
}

// MapInferenceThresholds configures ShouldInferMap's spec.md section
// 4.8 heuristic constants, per spec.md section 9's Open Question about
// tunable inference constants: how many properties still count as
// "few" for the all-null-or-string shortcut, and the power-law scale
// MapThreshold uses to turn property count into a probability cutoff.
type MapInferenceThresholds struct {
	FewPropertiesCutoff int
	Scale               float64
}

// DefaultMapInferenceThresholds returns spec.md's literal constants.
func DefaultMapInferenceThresholds() MapInferenceThresholds {
	return MapInferenceThresholds{FewPropertiesCutoff: 4, Scale: defaultScale}
}

// ShouldInferMap implements spec.md section 4.8's InferMaps decision
// rule for one class with >= 2 properties, using spec.md's default
// thresholds. See ShouldInferMapWithThresholds to override them.
func ShouldInferMap(cv ClassView, trigrams *TrigramModel) MapDecision {
	return ShouldInferMapWithThresholds(cv, trigrams, DefaultMapInferenceThresholds())
}

// ShouldInferMapWithThresholds is ShouldInferMap with caller-supplied
// thresholds, per spec.md section 9's inference-constant Open Question.
func ShouldInferMapWithThresholds(cv ClassView, trigrams *TrigramModel, th MapInferenceThresholds) MapDecision {
	if len(cv.PropertyNames) < 2 {
		return MapDecision{Convert: false, Reason: "fewer than 2 properties"}
	}

	allNumeric := true
	for _, name := range cv.PropertyNames {
		if !allDigits.MatchString(name) {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		return MapDecision{Convert: true, Reason: "all property names are digit strings"}
	}

	if len(cv.PropertyNames) <= th.FewPropertiesCutoff {
		allSimple := true
		for _, simple := range cv.PropertyIsNullOrPrimitiveString {
			if !simple {
				allSimple = false
				break
			}
		}
		if allSimple {
			return MapDecision{Convert: false, Reason: "few properties, all null-or-string"}
		}
	}

	prob := trigrams.GeometricMeanProbability(cv.PropertyNames)
	threshold := MapThreshold(len(cv.PropertyNames), th.Scale)
	if prob >= threshold {
		return MapDecision{Convert: false, Reason: "geometric mean above threshold"}
	}
	if !cv.StructurallyCompatible {
		return MapDecision{Convert: false, Reason: "non-null property types incompatible"}
	}
	return MapDecision{Convert: true, Reason: "below threshold and structurally compatible"}
}

// ExpandMode is the ExpandStrings pass's configured aggressiveness.
type ExpandMode int

const (
	ExpandNone ExpandMode = iota
	ExpandInfer
	ExpandAll
)

// StringDecision is the per-restricted-string-type verdict
// ExpandStrings needs to rebuild that type.
type StringDecision struct {
	// AsEnum is non-nil when the type should become (or merge into) an
	// enum with these cases.
	AsEnum []string
	// Transformations is the set of transformed-string kinds to union
	// in alongside the enum (or alone, if AsEnum is empty).
	Transformations []typekind.Kind
}

// StringExpansionThresholds configures DecideStringExpansion's "infer"
// mode constants, per spec.md section 9's Open Question about tunable
// inference constants (MinLengthForEnum / MinLengthForOverlap /
// RequiredOverlap).
type StringExpansionThresholds struct {
	// MinValuesForOwnEnum is the minimum total observed values before a
	// string may become its own enum (spec.md's ">=10").
	MinValuesForOwnEnum int
	// MinValuesForOverlapMerge is the minimum total observed values
	// before a string's cases may merge into an existing enum set
	// (spec.md's ">=5").
	MinValuesForOverlapMerge int
	// RequiredOverlap is the minimum overlap ratio, against the newer
	// set's size, required for a merge (spec.md's "3/4").
	RequiredOverlap float64
}

// DefaultStringExpansionThresholds returns spec.md's literal constants.
func DefaultStringExpansionThresholds() StringExpansionThresholds {
	return StringExpansionThresholds{MinValuesForOwnEnum: 10, MinValuesForOverlapMerge: 5, RequiredOverlap: 0.75}
}

// DecideStringExpansion implements spec.md section 4.8's ExpandStrings
// heuristic for one restricted string's observed cases, given
// existingEnumSets already built by earlier strings in the same pass
// (for infer mode's merge-by-overlap rule), using spec.md's default
// thresholds. See DecideStringExpansionWithThresholds to override them.
func DecideStringExpansion(mode ExpandMode, cases map[string]int, transformations []typekind.Kind, existingEnumSets [][]string) StringDecision {
	return DecideStringExpansionWithThresholds(mode, cases, transformations, existingEnumSets, DefaultStringExpansionThresholds())
}

// DecideStringExpansionWithThresholds is DecideStringExpansion with
// caller-supplied thresholds, per spec.md section 9's inference-
// constant Open Question.
func DecideStringExpansionWithThresholds(mode ExpandMode, cases map[string]int, transformations []typekind.Kind, existingEnumSets [][]string, th StringExpansionThresholds) StringDecision {
	if len(cases) == 0 {
		return StringDecision{Transformations: transformations}
	}

	caseList := sortedKeys(cases)
	switch mode {
	case ExpandAll:
		return StringDecision{AsEnum: caseList, Transformations: transformations}
	case ExpandNone:
		return StringDecision{Transformations: transformations}
	default: // ExpandInfer
		totalValues := 0
		for _, n := range cases {
			totalValues += n
		}
		if totalValues >= th.MinValuesForOwnEnum && len(cases) < isqrt(totalValues) {
			return StringDecision{AsEnum: caseList, Transformations: transformations}
		}
		if totalValues >= th.MinValuesForOverlapMerge {
			for _, existing := range existingEnumSets {
				if overlapRatio(existing, caseList) >= th.RequiredOverlap {
					return StringDecision{AsEnum: mergeCases(caseList, existing), Transformations: transformations}
				}
			}
		}
		return StringDecision{Transformations: transformations}
	}
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func isqrt(n int) int {
	if n < 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

func overlapRatio(a, b []string) float64 {
	set := map[string]bool{}
	for _, s := range a {
		set[s] = true
	}
	overlap := 0
	for _, s := range b {
		if set[s] {
			overlap++
		}
	}
	if len(b) == 0 {
		return 0
	}
	return float64(overlap) / float64(len(b))
}

func mergeCases(a, b []string) []string {
	set := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !set[s] {
			set[s] = true
			out = append(out, s)
		}
	}
	sortStrings(out)
	return out
}
