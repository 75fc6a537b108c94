package standards

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateDuration(t *testing.T) {
	tests := []struct {
		name       string
		quantity   float64
		activity   Activity
		conditions Conditions
		expect     int
	}{
		{"concrete standard", 150, ActivityConcrete, ConditionsStandard, 6},
		{"concrete partial day rounds up", 151, ActivityConcrete, ConditionsStandard, 7},
		{"concrete optimal", 150, ActivityConcrete, ConditionsOptimal, 5},
		{"concrete minimum", 150, ActivityConcrete, ConditionsMinimum, 8},
		{"empty conditions means standard", 150, ActivityConcrete, "", 6},
		{"steel", 5, ActivitySteel, ConditionsStandard, 3},
		{"formwork", 300, ActivityFormwork, ConditionsStandard, 10},
		{"blockwork", 120, ActivityBlockwork, ConditionsStandard, 10},
		{"plastering", 41, ActivityPlastering, ConditionsStandard, 3},
		{"tiny quantity is one day", 0.1, ActivityConcrete, ConditionsStandard, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateDuration(tt.quantity, tt.activity, tt.conditions)
			if err != nil {
				t.Fatalf("CalculateDuration() error: %v", err)
			}
			if got != tt.expect {
				t.Errorf("CalculateDuration(%v, %q, %q) = %d, want %d",
					tt.quantity, tt.activity, tt.conditions, got, tt.expect)
			}
		})
	}
}

func TestCalculateDuration_Errors(t *testing.T) {
	tests := []struct {
		name       string
		quantity   float64
		activity   Activity
		conditions Conditions
		expect     error
	}{
		{"unknown activity", 10, Activity("painting"), ConditionsStandard, ErrUnknownActivity},
		{"unknown conditions", 10, ActivityConcrete, Conditions("stormy"), ErrUnknownConditions},
		{"zero quantity", 0, ActivityConcrete, ConditionsStandard, ErrInvalidQuantity},
		{"negative quantity", -5, ActivityConcrete, ConditionsStandard, ErrInvalidQuantity},
		{"NaN quantity", math.NaN(), ActivityConcrete, ConditionsStandard, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateDuration(tt.quantity, tt.activity, tt.conditions)
			if !errors.Is(err, tt.expect) {
				t.Errorf("error = %v, want %v", err, tt.expect)
			}
		})
	}
}

func TestCalculateDuration_Monotonic(t *testing.T) {
	for _, activity := range Activities() {
		for _, conditions := range []Conditions{ConditionsOptimal, ConditionsStandard, ConditionsMinimum} {
			prev := 0
			for q := 0.5; q <= 500; q += 3.7 {
				got, err := CalculateDuration(q, activity, conditions)
				if err != nil {
					t.Fatalf("CalculateDuration(%v, %q, %q) error: %v", q, activity, conditions, err)
				}
				if got < prev {
					t.Fatalf("%s/%s: duration decreased from %d to %d at quantity %v",
						activity, conditions, prev, got, q)
				}
				prev = got
			}
		}
	}
}

func TestCalculateResources(t *testing.T) {
	res, err := CalculateResources(150, ActivityConcrete)
	if err != nil {
		t.Fatalf("CalculateResources() error: %v", err)
	}
	if res.Duration != 6 {
		t.Errorf("Duration = %d, want 6", res.Duration)
	}
	if res.Labor.Crew != (CrewRatio{Skilled: 2, Unskilled: 4, Supervisor: 0.5}) {
		t.Errorf("Crew = %+v", res.Labor.Crew)
	}
	if res.Labor.ManDays.Skilled != 12 || res.Labor.ManDays.Unskilled != 24 || res.Labor.ManDays.Supervisor != 3 {
		t.Errorf("ManDays = %+v, want 12/24/3", res.Labor.ManDays)
	}
	if len(res.Equipment) == 0 {
		t.Error("expected equipment types for concrete")
	}

	// The returned slice must not alias the reference table.
	res.Equipment[0] = "changed"
	again, _ := CalculateResources(150, ActivityConcrete)
	if again.Equipment[0] == "changed" {
		t.Error("CalculateResources leaked the reference equipment table")
	}

	if _, err := CalculateResources(10, Activity("roofing")); !errors.Is(err, ErrUnknownActivity) {
		t.Errorf("unknown activity error = %v", err)
	}
}

func TestLaborRatesDailyCost(t *testing.T) {
	got := DefaultLaborRates.DailyCost(CrewRatio{Skilled: 2, Unskilled: 4, Supervisor: 0.5})
	if math.Abs(got-1600) > 0.001 {
		t.Errorf("DailyCost = %v, want 1600", got)
	}
}

func TestGetWasteFactor(t *testing.T) {
	tests := []struct {
		material string
		level    WasteLevel
		expect   float64
	}{
		{"concrete", WasteStandard, 5},
		{"Concrete", WasteMinimum, 3},
		{"steel", WasteMaximum, 5},
		{" sand ", "", 10},
	}

	for _, tt := range tests {
		t.Run(tt.material+"/"+string(tt.level), func(t *testing.T) {
			got, err := GetWasteFactor(tt.material, tt.level)
			if err != nil {
				t.Fatalf("GetWasteFactor() error: %v", err)
			}
			if got != tt.expect {
				t.Errorf("GetWasteFactor(%q, %q) = %v, want %v", tt.material, tt.level, got, tt.expect)
			}
		})
	}

	if _, err := GetWasteFactor("unobtainium", WasteStandard); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("unknown material error = %v", err)
	}
	if _, err := GetWasteFactor("concrete", WasteLevel("extreme")); !errors.Is(err, ErrUnknownWasteLevel) {
		t.Errorf("unknown level error = %v", err)
	}
}

func TestCalculateQuantityWithWaste(t *testing.T) {
	got, err := CalculateQuantityWithWaste(100, "concrete", WasteStandard)
	if err != nil {
		t.Fatalf("CalculateQuantityWithWaste() error: %v", err)
	}
	if math.Abs(got-105) > 0.001 {
		t.Errorf("CalculateQuantityWithWaste(100, concrete, standard) = %v, want 105", got)
	}
}

func TestCheckSBCCompliance(t *testing.T) {
	tests := []struct {
		name           string
		material       string
		params         ComplianceParams
		wantCompliant  bool
		wantViolations int
	}{
		{"compliant concrete", "concrete", ComplianceParams{CompressiveStrength: 30, WaterCementRatio: 0.45, CoverThickness: 40, ElementType: "beam"}, true, 0},
		{"weak concrete", "concrete", ComplianceParams{CompressiveStrength: 20}, false, 1},
		{"wet mix", "concrete", ComplianceParams{CompressiveStrength: 30, WaterCementRatio: 0.6}, false, 1},
		{"thin footing cover", "concrete", ComplianceParams{CoverThickness: 50, ElementType: "Footing"}, false, 1},
		{"everything wrong", "concrete", ComplianceParams{CompressiveStrength: 20, WaterCementRatio: 0.55, CoverThickness: 15, ElementType: "slab"}, false, 3},
		{"unknown element ignored", "concrete", ComplianceParams{CoverThickness: 5, ElementType: "stair"}, true, 0},
		{"low steel grade", "steel", ComplianceParams{SteelGrade: 40}, false, 1},
		{"grade 60 steel", "steel", ComplianceParams{SteelGrade: 60}, true, 0},
		{"weak blocks", "blockwork", ComplianceParams{CompressiveStrength: 5}, false, 1},
		{"thin plaster", "plastering", ComplianceParams{Thickness: 10}, false, 1},
		{"thick plaster", "plastering", ComplianceParams{Thickness: 30}, false, 1},
		{"no parameters", "concrete", ComplianceParams{}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckSBCCompliance(tt.material, tt.params)
			if got.Compliant != tt.wantCompliant {
				t.Errorf("Compliant = %v, want %v (violations: %v)", got.Compliant, tt.wantCompliant, got.Violations)
			}
			if len(got.Violations) != tt.wantViolations {
				t.Errorf("violations = %d, want %d: %v", len(got.Violations), tt.wantViolations, got.Violations)
			}
			if len(got.Recommendations) != len(got.Violations) {
				t.Errorf("expected one recommendation per violation, got %d/%d",
					len(got.Recommendations), len(got.Violations))
			}
		})
	}
}

func TestSafetyFactor(t *testing.T) {
	if got := SafetyFactor(ActivityConcrete); got != 1.5 {
		t.Errorf("SafetyFactor(concrete) = %v, want 1.5", got)
	}
	if got := SafetyFactor(ActivityPlastering); got != 1.0 {
		t.Errorf("SafetyFactor(plastering) = %v, want 1.0", got)
	}
}

func TestCalculatePlasteringDurationByStages(t *testing.T) {
	schedule, err := CalculatePlasteringDurationByStages(120)
	if err != nil {
		t.Fatalf("CalculatePlasteringDurationByStages() error: %v", err)
	}
	if len(schedule.Stages) != 5 {
		t.Fatalf("expected 5 stages, got %d", len(schedule.Stages))
	}

	wantKeys := []string{"spatter_dash", "beacons", "main_coat", "smoothing", "inspection"}
	wantDays := []int{2, 3, 6, 4, 1}
	for i, stage := range schedule.Stages {
		if stage.Key != wantKeys[i] {
			t.Errorf("stage %d key = %q, want %q", i, stage.Key, wantKeys[i])
		}
		if stage.Sequence != i+1 {
			t.Errorf("stage %d sequence = %d", i, stage.Sequence)
		}
		if stage.Days != wantDays[i] {
			t.Errorf("stage %s days = %d, want %d", stage.Key, stage.Days, wantDays[i])
		}
	}

	// 2+1 curing, 3, 6+2 curing, 4, 1
	if schedule.TotalDuration != 19 {
		t.Errorf("TotalDuration = %d, want 19", schedule.TotalDuration)
	}
	if schedule.Stages[2].StartDay != 6 {
		t.Errorf("main coat StartDay = %d, want 6", schedule.Stages[2].StartDay)
	}

	if _, err := CalculatePlasteringDurationByStages(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero area error = %v", err)
	}
}

func TestCalculatePlasteringCost(t *testing.T) {
	prices := map[string]float64{"cement": 20, "sand": 100, "beads": 5}
	cost, err := CalculatePlasteringCost(120, DefaultLaborRates, prices)
	if err != nil {
		t.Fatalf("CalculatePlasteringCost() error: %v", err)
	}
	if len(cost.Stages) != 5 {
		t.Fatalf("expected 5 stage costs, got %d", len(cost.Stages))
	}

	var sum float64
	for _, stage := range cost.Stages {
		if math.Abs(stage.Total-(stage.LaborCost+stage.MaterialCost)) > 0.001 {
			t.Errorf("stage %s total %v != labor %v + material %v", stage.Key, stage.Total, stage.LaborCost, stage.MaterialCost)
		}
		sum += stage.Total
	}
	if math.Abs(cost.Total-sum) > 0.001 {
		t.Errorf("Total = %v, want sum of stages %v", cost.Total, sum)
	}

	// Spatter dash: 2 days x (300 + 200) labor; 120 m² x (0.05x20 + 0.005x100) material.
	spatter := cost.Stages[0]
	if math.Abs(spatter.LaborCost-1000) > 0.001 {
		t.Errorf("spatter dash labor = %v, want 1000", spatter.LaborCost)
	}
	if math.Abs(spatter.MaterialCost-180) > 0.001 {
		t.Errorf("spatter dash material = %v, want 180", spatter.MaterialCost)
	}

	// Inspection uses no materials.
	if cost.Stages[4].MaterialCost != 0 {
		t.Errorf("inspection material = %v, want 0", cost.Stages[4].MaterialCost)
	}
}
