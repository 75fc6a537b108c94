package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// LaborResources holds crew head-counts and what they cost.
type LaborResources struct {
	Skilled    float64 `json:"skilled"`
	Unskilled  float64 `json:"unskilled"`
	Supervisor float64 `json:"supervisor"`
	TotalCost  float64 `json:"totalCost"`
	DailyCost  float64 `json:"dailyCost"`
}

// EquipmentItem is a costed equipment line.
type EquipmentItem struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Quantity      float64 `json:"quantity"`
	DailyRate     float64 `json:"dailyRate"`
	Days          int     `json:"days"`
	TotalCost     float64 `json:"totalCost"`
	BookingStatus string  `json:"bookingStatus,omitempty"`
}

// MaterialItem is a costed material line.
type MaterialItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	UnitCost          float64 `json:"unitCost"`
	TotalCost         float64 `json:"totalCost"`
	ProcurementStatus string  `json:"procurementStatus,omitempty"`
}

// MaterialList is always an ordered array once decoded. Upstream data may
// supply materials either as an array of lines or as an object keyed by
// material name; the keyed form is sorted by key.
type MaterialList []MaterialItem

// UnmarshalJSON accepts both the array and the keyed object shapes.
func (m *MaterialList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []MaterialItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("materials array: %w", err)
		}
		*m = items
		return nil
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return fmt.Errorf("materials object: %w", err)
		}
		names := make([]string, 0, len(keyed))
		for name := range keyed {
			names = append(names, name)
		}
		slices.Sort(names)

		items := make([]MaterialItem, 0, len(keyed))
		for _, name := range names {
			item, err := decodeKeyedMaterial(name, keyed[name])
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		*m = items
		return nil
	default:
		return fmt.Errorf("materials: expected array or object, got %q", string(trimmed[:1]))
	}
}

// decodeKeyedMaterial reads one value of the keyed form: either a full line
// object or a bare quantity.
func decodeKeyedMaterial(name string, raw json.RawMessage) (MaterialItem, error) {
	var quantity float64
	if err := json.Unmarshal(raw, &quantity); err == nil {
		return MaterialItem{Name: name, Quantity: quantity}, nil
	}

	var item MaterialItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return MaterialItem{}, fmt.Errorf("material %q: %w", name, err)
	}
	if item.Name == "" {
		item.Name = name
	}
	return item, nil
}

// BOQResources is the resource bill derived for a BOQ item.
type BOQResources struct {
	Labor     LaborResources  `json:"labor"`
	Equipment []EquipmentItem `json:"equipment"`
	Materials MaterialList    `json:"materials"`
}

// TotalEquipmentCost sums the equipment lines.
func (r BOQResources) TotalEquipmentCost() float64 {
	var sum float64
	for _, e := range r.Equipment {
		sum += e.TotalCost
	}
	return sum
}

// TotalMaterialCost sums the material lines.
func (r BOQResources) TotalMaterialCost() float64 {
	var sum float64
	for _, m := range r.Materials {
		sum += m.TotalCost
	}
	return sum
}

func (r BOQResources) clone() BOQResources {
	r.Equipment = slices.Clone(r.Equipment)
	r.Materials = slices.Clone(r.Materials)
	return r
}
