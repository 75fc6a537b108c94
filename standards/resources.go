package standards

// CrewRatio is the head-count of one crew for a single working day.
// Supervisor is fractional when one supervisor covers several crews.
type CrewRatio struct {
	Skilled    float64 `json:"skilled" yaml:"skilled"`
	Unskilled  float64 `json:"unskilled" yaml:"unskilled"`
	Supervisor float64 `json:"supervisor" yaml:"supervisor"`
}

// Total returns the combined head-count of the crew.
func (c CrewRatio) Total() float64 {
	return c.Skilled + c.Unskilled + c.Supervisor
}

// LaborRates are the per-person day rates for each trade level.
type LaborRates struct {
	Skilled    float64 `json:"skilled" yaml:"skilled"`
	Unskilled  float64 `json:"unskilled" yaml:"unskilled"`
	Supervisor float64 `json:"supervisor" yaml:"supervisor"`
}

// DailyCost returns what the crew costs for one working day.
func (r LaborRates) DailyCost(crew CrewRatio) float64 {
	return crew.Skilled*r.Skilled + crew.Unskilled*r.Unskilled + crew.Supervisor*r.Supervisor
}

// DefaultLaborRates are the day rates used unless configuration overrides them.
var DefaultLaborRates = LaborRates{Skilled: 300, Unskilled: 200, Supervisor: 400}

var crewRatios = map[Activity]CrewRatio{
	ActivityConcrete:   {Skilled: 2, Unskilled: 4, Supervisor: 0.5},
	ActivitySteel:      {Skilled: 3, Unskilled: 2, Supervisor: 0.5},
	ActivityFormwork:   {Skilled: 2, Unskilled: 3, Supervisor: 0.5},
	ActivityBlockwork:  {Skilled: 2, Unskilled: 2, Supervisor: 0.25},
	ActivityPlastering: {Skilled: 2, Unskilled: 2, Supervisor: 0.25},
}

var equipmentTypes = map[Activity][]string{
	ActivityConcrete:   {"concrete pump", "transit mixer", "poker vibrator"},
	ActivitySteel:      {"bar bending machine", "bar cutting machine"},
	ActivityFormwork:   {"scaffolding", "circular saw"},
	ActivityBlockwork:  {"mortar mixer", "scaffolding"},
	ActivityPlastering: {"mortar mixer", "scaffolding"},
}

// LaborDemand is the crew composition of an activity together with the
// man-days it consumes over the whole duration.
type LaborDemand struct {
	Crew    CrewRatio
	ManDays CrewRatio
}

// Resources is the resource bill for a quantity of work. Equipment carries
// type names only; counts and costs are assigned by the caller.
type Resources struct {
	Labor     LaborDemand
	Equipment []string
	Duration  int
}

// CalculateResources returns the crew, the man-days scaled to the standard
// duration, and the equipment types the activity needs.
func CalculateResources(quantity float64, activity Activity) (Resources, error) {
	duration, err := CalculateDuration(quantity, activity, ConditionsStandard)
	if err != nil {
		return Resources{}, err
	}
	crew := crewRatios[activity]
	days := float64(duration)

	equipment := make([]string, len(equipmentTypes[activity]))
	copy(equipment, equipmentTypes[activity])

	return Resources{
		Labor: LaborDemand{
			Crew: crew,
			ManDays: CrewRatio{
				Skilled:    crew.Skilled * days,
				Unskilled:  crew.Unskilled * days,
				Supervisor: crew.Supervisor * days,
			},
		},
		Equipment: equipment,
		Duration:  duration,
	}, nil
}
