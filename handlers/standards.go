package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/config"
	"projectsync/standards"
)

// queryFloat parses a numeric query parameter. A missing parameter returns
// ok=false with no error.
func queryFloat(q url.Values, key string) (value float64, ok bool, err error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

type durationResponse struct {
	Activity     standards.Activity   `json:"activity"`
	Conditions   standards.Conditions `json:"conditions"`
	Quantity     float64              `json:"quantity"`
	Unit         string               `json:"unit"`
	Productivity float64              `json:"productivity"`
	Duration     int                  `json:"duration"`
	Resources    standards.Resources  `json:"resources"`
}

// HandleStandardsDuration answers GET /api/standards/duration with the
// working days and crew one activity needs for a quantity.
func HandleStandardsDuration() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q := e.Request.URL.Query()
		quantity, ok, err := queryFloat(q, "quantity")
		if err != nil || !ok {
			return respondError(e, http.StatusBadRequest, "quantity must be a number")
		}
		activity := standards.Activity(strings.ToLower(strings.TrimSpace(q.Get("activity"))))
		conditions := standards.Conditions(strings.ToLower(strings.TrimSpace(q.Get("conditions"))))

		days, err := standards.CalculateDuration(quantity, activity, conditions)
		if err != nil {
			return respondStoreError(e, "standards: duration", err)
		}
		row, _ := standards.Productivity(activity)
		rate, _ := row.Rate(conditions)
		resources, err := standards.CalculateResources(quantity, activity)
		if err != nil {
			return respondStoreError(e, "standards: duration", err)
		}
		if conditions == "" {
			conditions = standards.ConditionsStandard
		}

		return e.JSON(http.StatusOK, durationResponse{
			Activity:     activity,
			Conditions:   conditions,
			Quantity:     quantity,
			Unit:         row.Unit,
			Productivity: rate,
			Duration:     days,
			Resources:    resources,
		})
	}
}

type complianceRequest struct {
	Material   string                     `json:"material"`
	Parameters standards.ComplianceParams `json:"parameters"`
}

// HandleStandardsCompliance checks material parameters against the building
// code.
func HandleStandardsCompliance() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req complianceRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(req.Material) == "" {
			return e.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Validation failed",
				Fields:  map[string]string{"material": "cannot be blank"},
			})
		}
		return e.JSON(http.StatusOK, standards.CheckSBCCompliance(req.Material, req.Parameters))
	}
}

// HandleStandardsWaste returns a material quantity grossed up by its waste
// factor.
func HandleStandardsWaste() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q := e.Request.URL.Query()
		quantity, ok, err := queryFloat(q, "quantity")
		if err != nil || !ok {
			return respondError(e, http.StatusBadRequest, "quantity must be a number")
		}
		material := strings.TrimSpace(q.Get("material"))
		level := standards.WasteLevel(strings.TrimSpace(q.Get("level")))

		factor, err := standards.GetWasteFactor(material, level)
		if err != nil {
			return respondStoreError(e, "standards: waste", err)
		}
		total, err := standards.CalculateQuantityWithWaste(quantity, material, level)
		if err != nil {
			return respondStoreError(e, "standards: waste", err)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"material":    material,
			"quantity":    quantity,
			"wasteFactor": factor,
			"total":       total,
		})
	}
}

// HandleStandardsPlastering returns the staged schedule and cost of a
// plastering job. Material prices are optional query parameters.
func HandleStandardsPlastering(cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q := e.Request.URL.Query()
		area, ok, err := queryFloat(q, "area")
		if err != nil || !ok {
			return respondError(e, http.StatusBadRequest, "area must be a number")
		}

		prices := make(map[string]float64)
		for _, key := range []string{"cement", "sand", "beads"} {
			price, ok, err := queryFloat(q, key)
			if err != nil {
				return respondError(e, http.StatusBadRequest, key+" must be a number")
			}
			if ok {
				prices[key] = price
			}
		}

		schedule, err := standards.CalculatePlasteringDurationByStages(area)
		if err != nil {
			return respondStoreError(e, "standards: plastering", err)
		}
		cost, err := standards.CalculatePlasteringCost(area, cfg.LaborRates, prices)
		if err != nil {
			return respondStoreError(e, "standards: plastering", err)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"currency": cfg.Currency,
			"schedule": schedule,
			"cost":     cost,
		})
	}
}
