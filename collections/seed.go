package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"

	"projectsync/models"
	"projectsync/standards"
	"projectsync/store"
)

// ── Definition structs ───────────────────────────────────────────────────

type boqItemDef struct {
	code        string
	description string
	category    string
	quantity    float64
	unit        string
	unitPrice   float64
	params      standards.ComplianceParams
	dependsOn   []string // codes of predecessor items
}

type taskDef struct {
	name      string
	duration  int
	dependsOn []string
}

var seedItems = []boqItemDef{
	{
		code:        "FW-01",
		description: "Formwork for ground floor slab and beams",
		category:    "أعمال الشدات",
		quantity:    420,
		unit:        "m²",
		unitPrice:   65,
	},
	{
		code:        "ST-01",
		description: "Reinforcement steel Grade 60 for slab",
		category:    "حديد التسليح",
		quantity:    18,
		unit:        "ton",
		unitPrice:   3200,
		params:      standards.ComplianceParams{SteelGrade: 60},
		dependsOn:   []string{"FW-01"},
	},
	{
		code:        "C-01",
		description: "Ready-mix concrete C30 for ground floor slab",
		category:    "أعمال خرسانية",
		quantity:    150,
		unit:        "m³",
		unitPrice:   320,
		params:      standards.ComplianceParams{CompressiveStrength: 30, WaterCementRatio: 0.45, CoverThickness: 25, ElementType: "slab"},
		dependsOn:   []string{"ST-01"},
	},
	{
		code:        "BW-01",
		description: "200mm hollow block external walls",
		category:    "أعمال البلوك",
		quantity:    600,
		unit:        "m²",
		unitPrice:   48,
		dependsOn:   []string{"C-01"},
	},
	{
		code:        "PL-01",
		description: "Cement plaster 20mm to external walls",
		category:    "أعمال اللياسة",
		quantity:    1200,
		unit:        "m²",
		unitPrice:   28,
		params:      standards.ComplianceParams{Thickness: 20},
		dependsOn:   []string{"BW-01"},
	},
}

var seedTasks = []taskDef{
	{name: "Site mobilization and survey", duration: 3},
	{name: "Handover inspection", duration: 2, dependsOn: []string{"PL-01"}},
}

// Seed creates a demo villa project and fills it through the project store,
// so every item is synced and every task materialized exactly as at runtime.
// It is safe to call on every startup because it returns early if any
// project records already exist.
func Seed(app core.App, registry *store.Registry) error {
	// ── idempotency: skip if projects already exist ──────────────────
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: projects collection is empty – inserting seed data …")

	project := core.NewRecord(projectsCol)
	project.Set("name", "Al Narjis Villa – Structure and Finishes")
	project.Set("client_name", "Riyadh Housing Development Co.")
	project.Set("reference_number", "RHD-2026-014")
	project.Set("status", "active")
	project.Set("currency", "SAR")
	if err := app.Save(project); err != nil {
		return fmt.Errorf("seed: failed to create project: %w", err)
	}

	s, err := registry.Get(project.Id)
	if err != nil {
		return fmt.Errorf("seed: open project store: %w", err)
	}

	taskByCode := make(map[string]string, len(seedItems))
	for _, def := range seedItems {
		item, result, err := s.AddBOQItem(models.BOQItem{
			Code:        def.code,
			Description: def.description,
			Category:    def.category,
			Quantity:    def.quantity,
			Unit:        def.unit,
			FinancialIntegration: models.FinancialIntegration{
				UnitPrice: def.unitPrice,
			},
			EngineeringStandards: models.EngineeringStandards{Parameters: def.params},
		})
		if err != nil {
			return fmt.Errorf("seed: add boq item %s: %w", def.code, err)
		}
		if !result.OK() {
			log.Printf("seed: boq item %s synced with errors: %v", def.code, result.Errors)
			continue
		}
		taskByCode[def.code] = item.ScheduleIntegration.LinkedTaskID

		if deps := resolveDeps(taskByCode, def.dependsOn); len(deps) > 0 {
			if _, err := s.WithTask(item.ScheduleIntegration.LinkedTaskID, func(t *models.ScheduleTask) error {
				t.Dependencies = deps
				return nil
			}); err != nil {
				return fmt.Errorf("seed: link dependencies of %s: %w", def.code, err)
			}
		}
	}

	for _, def := range seedTasks {
		if _, err := s.AddScheduleTask(models.ScheduleTask{
			Name:         def.name,
			StartDate:    s.Now(),
			Duration:     def.duration,
			Dependencies: resolveDeps(taskByCode, def.dependsOn),
		}); err != nil {
			return fmt.Errorf("seed: add task %q: %w", def.name, err)
		}
	}

	log.Printf("seed: created project %q (%s) with %d BOQ items and %d tasks",
		project.GetString("name"), project.Id, len(s.BOQItems()), len(s.Tasks()))
	return nil
}

func resolveDeps(taskByCode map[string]string, codes []string) []string {
	deps := make([]string, 0, len(codes))
	for _, code := range codes {
		if id, ok := taskByCode[code]; ok {
			deps = append(deps, id)
		}
	}
	return deps
}
