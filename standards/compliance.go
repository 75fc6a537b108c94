package standards

import (
	"fmt"
	"strings"
)

// ComplianceParams are the measured or specified properties checked against
// the Saudi Building Code. Zero values mean "not supplied" and skip the rule.
type ComplianceParams struct {
	CompressiveStrength float64 `json:"compressiveStrength,omitempty"` // MPa
	WaterCementRatio    float64 `json:"waterCementRatio,omitempty"`
	SteelGrade          float64 `json:"steelGrade,omitempty"`
	CoverThickness      float64 `json:"coverThickness,omitempty"` // mm
	ElementType         string  `json:"elementType,omitempty"`
	Thickness           float64 `json:"thickness,omitempty"` // mm, plaster coat
}

// ComplianceResult lists every rule the parameters broke.
type ComplianceResult struct {
	Compliant       bool     `json:"compliant"`
	CodeReference   string   `json:"codeReference"`
	Violations      []string `json:"violations"`
	Recommendations []string `json:"recommendations"`
}

const (
	minConcreteStrength = 25.0
	maxWaterCementRatio = 0.50
	minSteelGrade       = 60.0
	minBlockStrength    = 7.0
	minPlasterThickness = 15.0
	maxPlasterThickness = 25.0
)

// minCover is the minimum concrete cover in millimetres per structural element.
var minCover = map[string]float64{
	"slab":    20,
	"wall":    25,
	"beam":    40,
	"column":  40,
	"footing": 75,
}

var codeReferences = map[Activity]string{
	ActivityConcrete:   "SBC 304 - Concrete Structures",
	ActivitySteel:      "SBC 304 Chapter 20 - Steel Reinforcement",
	ActivityFormwork:   "SBC 304 Section 26.11 - Formwork",
	ActivityBlockwork:  "SBC 305 - Masonry Structures",
	ActivityPlastering: "SBC 201 Section 2512 - Exterior Plaster",
}

// CodeReference returns the code chapter governing an activity.
func CodeReference(activity Activity) string {
	return codeReferences[activity]
}

// materialSafetyFactors are the partial safety factors on material strength.
var materialSafetyFactors = map[Activity]float64{
	ActivityConcrete:  1.5,
	ActivitySteel:     1.15,
	ActivityBlockwork: 2.5,
}

// SafetyFactor returns the material partial safety factor for an activity,
// 1.0 for finishing trades with no structural design check.
func SafetyFactor(activity Activity) float64 {
	if f, ok := materialSafetyFactors[activity]; ok {
		return f
	}
	return 1.0
}

// CheckSBCCompliance runs the rule set for material against params.
func CheckSBCCompliance(material string, params ComplianceParams) ComplianceResult {
	activity := Activity(strings.ToLower(strings.TrimSpace(material)))
	result := ComplianceResult{
		CodeReference:   CodeReference(activity),
		Violations:      []string{},
		Recommendations: []string{},
	}
	violate := func(violation, recommendation string) {
		result.Violations = append(result.Violations, violation)
		result.Recommendations = append(result.Recommendations, recommendation)
	}

	switch activity {
	case ActivityConcrete:
		if params.CompressiveStrength > 0 && params.CompressiveStrength < minConcreteStrength {
			violate(
				fmt.Sprintf("concrete compressive strength %.1f MPa is below the %.0f MPa minimum for structural concrete", params.CompressiveStrength, minConcreteStrength),
				fmt.Sprintf("specify a mix of at least C%.0f", minConcreteStrength),
			)
		}
		if params.WaterCementRatio > maxWaterCementRatio {
			violate(
				fmt.Sprintf("water-cement ratio %.2f exceeds the %.2f maximum", params.WaterCementRatio, maxWaterCementRatio),
				"reduce mixing water or add a water-reducing admixture",
			)
		}
		if params.CoverThickness > 0 && params.ElementType != "" {
			element := strings.ToLower(params.ElementType)
			if required, ok := minCover[element]; ok && params.CoverThickness < required {
				violate(
					fmt.Sprintf("concrete cover %.0f mm for %s is below the %.0f mm minimum", params.CoverThickness, element, required),
					fmt.Sprintf("increase cover spacers to at least %.0f mm", required),
				)
			}
		}
	case ActivitySteel:
		if params.SteelGrade > 0 && params.SteelGrade < minSteelGrade {
			violate(
				fmt.Sprintf("reinforcement grade %.0f is below grade %.0f", params.SteelGrade, minSteelGrade),
				fmt.Sprintf("use grade %.0f deformed bars", minSteelGrade),
			)
		}
	case ActivityBlockwork:
		if params.CompressiveStrength > 0 && params.CompressiveStrength < minBlockStrength {
			violate(
				fmt.Sprintf("block compressive strength %.1f MPa is below the %.0f MPa minimum", params.CompressiveStrength, minBlockStrength),
				"source load-bearing blocks with a mill test certificate",
			)
		}
	case ActivityPlastering:
		if params.Thickness > 0 && params.Thickness < minPlasterThickness {
			violate(
				fmt.Sprintf("plaster thickness %.0f mm is below %.0f mm", params.Thickness, minPlasterThickness),
				"apply an additional coat after the main coat has cured",
			)
		}
		if params.Thickness > maxPlasterThickness {
			violate(
				fmt.Sprintf("plaster thickness %.0f mm exceeds %.0f mm in a single system", params.Thickness, maxPlasterThickness),
				"fix metal lath and build up the plaster in separate coats",
			)
		}
	}

	result.Compliant = len(result.Violations) == 0
	return result
}
