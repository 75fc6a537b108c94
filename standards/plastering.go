package standards

import (
	"fmt"
	"math"
)

// Criticality tags how a plastering stage affects the schedule.
type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityMajor    Criticality = "major"
	CriticalityMinor    Criticality = "minor"
)

type plasteringStageDef struct {
	key         string
	name        string
	rate        float64 // m²/day per crew
	crew        CrewRatio
	curingDays  int
	criticality Criticality
	// materials consumed per m² of wall, keyed by material price key
	consumption map[string]float64
}

// plasteringStages are applied strictly in this order.
var plasteringStages = []plasteringStageDef{
	{
		key:         "spatter_dash",
		name:        "Spatter dash",
		rate:        60,
		crew:        CrewRatio{Skilled: 1, Unskilled: 1},
		curingDays:  1,
		criticality: CriticalityCritical,
		consumption: map[string]float64{"cement": 0.05, "sand": 0.005},
	},
	{
		key:         "beacons",
		name:        "Beacons and guides",
		rate:        40,
		crew:        CrewRatio{Skilled: 1, Unskilled: 1},
		criticality: CriticalityCritical,
		consumption: map[string]float64{"cement": 0.02, "sand": 0.002, "beads": 0.4},
	},
	{
		key:         "main_coat",
		name:        "Main coat",
		rate:        20,
		crew:        CrewRatio{Skilled: 2, Unskilled: 2, Supervisor: 0.25},
		curingDays:  2,
		criticality: CriticalityCritical,
		consumption: map[string]float64{"cement": 0.18, "sand": 0.02},
	},
	{
		key:         "smoothing",
		name:        "Smoothing and finishing",
		rate:        30,
		crew:        CrewRatio{Skilled: 1, Unskilled: 1},
		criticality: CriticalityMajor,
		consumption: map[string]float64{"cement": 0.03, "sand": 0.003},
	},
	{
		key:         "inspection",
		name:        "Inspection and snagging",
		rate:        200,
		crew:        CrewRatio{Supervisor: 1},
		criticality: CriticalityMinor,
	},
}

// PlasteringStage is one scheduled stage of a plastering job.
type PlasteringStage struct {
	Sequence         int         `json:"sequence"`
	Key              string      `json:"key"`
	Name             string      `json:"name"`
	ProductivityRate float64     `json:"productivityRate"`
	Crew             CrewRatio   `json:"crew"`
	Days             int         `json:"days"`
	CuringDays       int         `json:"curingDays"`
	StartDay         int         `json:"startDay"`
	Criticality      Criticality `json:"criticality"`
}

// PlasteringSchedule is the staged breakdown of a plastering quantity.
type PlasteringSchedule struct {
	Quantity      float64           `json:"quantity"`
	Stages        []PlasteringStage `json:"stages"`
	TotalDuration int               `json:"totalDuration"`
}

// CalculatePlasteringDurationByStages splits a plastering quantity (m²) into
// its five sequential stages. Each stage starts after the previous stage and
// its curing time have finished.
func CalculatePlasteringDurationByStages(quantity float64) (PlasteringSchedule, error) {
	if !(quantity > 0) || math.IsInf(quantity, 0) {
		return PlasteringSchedule{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}

	schedule := PlasteringSchedule{
		Quantity: quantity,
		Stages:   make([]PlasteringStage, 0, len(plasteringStages)),
	}
	day := 0
	for i, def := range plasteringStages {
		days := int(math.Ceil(quantity / def.rate))
		schedule.Stages = append(schedule.Stages, PlasteringStage{
			Sequence:         i + 1,
			Key:              def.key,
			Name:             def.name,
			ProductivityRate: def.rate,
			Crew:             def.crew,
			Days:             days,
			CuringDays:       def.curingDays,
			StartDay:         day,
			Criticality:      def.criticality,
		})
		day += days + def.curingDays
	}
	schedule.TotalDuration = day
	return schedule, nil
}

// PlasteringStageCost is the labor and material cost of one stage.
type PlasteringStageCost struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	LaborCost    float64 `json:"laborCost"`
	MaterialCost float64 `json:"materialCost"`
	Total        float64 `json:"total"`
}

// PlasteringCost is the stage-level cost breakdown of a plastering job.
type PlasteringCost struct {
	Area         float64               `json:"area"`
	Stages       []PlasteringStageCost `json:"stages"`
	LaborCost    float64               `json:"laborCost"`
	MaterialCost float64               `json:"materialCost"`
	Total        float64               `json:"total"`
}

// CalculatePlasteringCost prices every stage of a plastering job. Material
// prices are keyed by "cement" (per bag), "sand" (per m³) and "beads" (per
// metre); a missing price contributes nothing.
func CalculatePlasteringCost(area float64, laborRates LaborRates, materialPrices map[string]float64) (PlasteringCost, error) {
	schedule, err := CalculatePlasteringDurationByStages(area)
	if err != nil {
		return PlasteringCost{}, err
	}

	cost := PlasteringCost{
		Area:   area,
		Stages: make([]PlasteringStageCost, 0, len(schedule.Stages)),
	}
	for i, stage := range schedule.Stages {
		labor := laborRates.DailyCost(stage.Crew) * float64(stage.Days)

		var material float64
		for key, perSquareMetre := range plasteringStages[i].consumption {
			material += perSquareMetre * area * materialPrices[key]
		}

		cost.Stages = append(cost.Stages, PlasteringStageCost{
			Key:          stage.Key,
			Name:         stage.Name,
			LaborCost:    labor,
			MaterialCost: material,
			Total:        labor + material,
		})
		cost.LaborCost += labor
		cost.MaterialCost += material
	}
	cost.Total = cost.LaborCost + cost.MaterialCost
	return cost, nil
}
