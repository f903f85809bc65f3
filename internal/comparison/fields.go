package comparison

import (
	"fmt"
	"strings"
)

// FieldSpec binds one canonical field to its type, category, weight, criticality,
// and the key it is extracted under on each document type.
type FieldSpec struct {
	Name         string    `yaml:"name" json:"name"`
	Type         FieldType `yaml:"type" json:"type"`
	Category     Category  `yaml:"category" json:"category"`
	Weight       float64   `yaml:"weight" json:"weight"`
	Critical     bool      `yaml:"critical" json:"critical"`
	InvoiceField string    `yaml:"invoice_field" json:"invoiceField"`
	BLField      string    `yaml:"bl_field" json:"blField"`
	// Threshold overrides the type's default PARTIAL boundary when set.
	Threshold *float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	// KeepChars lists punctuation that identifier normalization must not strip.
	KeepChars string `yaml:"keep_chars,omitempty" json:"keepChars,omitempty"`
}

// EffectiveThreshold returns the field's own threshold or its type default.
func (f FieldSpec) EffectiveThreshold() float64 {
	if f.Threshold != nil {
		return *f.Threshold
	}
	return DefaultThreshold(f.Type)
}

// EffectiveWeight treats an unset weight as 1.
func (f FieldSpec) EffectiveWeight() float64 {
	if f.Weight == 0 {
		return 1
	}
	return f.Weight
}

// FieldTable is the ordered canonical field list. Comparison output follows its order.
type FieldTable []FieldSpec

// Lookup returns the spec for a canonical field name.
func (t FieldTable) Lookup(name string) (FieldSpec, bool) {
	for _, f := range t {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks every entry and returns the first problem wrapped in ErrInvalidFieldTable.
func (t FieldTable) Validate() error {
	seen := make(map[string]bool, len(t))
	for i, f := range t {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrInvalidFieldTable, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidFieldTable, f.Name)
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidFieldTable, f.Name, f.Type)
		}
		if !f.Category.Valid() {
			return fmt.Errorf("%w: field %q has unknown category %q", ErrInvalidFieldTable, f.Name, f.Category)
		}
		if f.Weight < 0 {
			return fmt.Errorf("%w: field %q has negative weight", ErrInvalidFieldTable, f.Name)
		}
		if f.InvoiceField == "" || f.BLField == "" {
			return fmt.Errorf("%w: field %q must name both its invoice and bill of lading keys", ErrInvalidFieldTable, f.Name)
		}
		if f.Threshold != nil && (*f.Threshold < 0 || *f.Threshold > 1) {
			return fmt.Errorf("%w: field %q threshold %v outside [0,1]", ErrInvalidFieldTable, f.Name, *f.Threshold)
		}
	}
	return nil
}

// WithThresholds returns a copy of t with per-field threshold overrides applied.
// Overrides naming a field absent from the table are rejected.
func (t FieldTable) WithThresholds(overrides map[string]float64) (FieldTable, error) {
	out := t.clone()
	for name, threshold := range overrides {
		idx := -1
		for i := range out {
			if out[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: threshold override for %q", ErrUnknownField, name)
		}
		v := threshold
		out[idx].Threshold = &v
	}
	return out, nil
}

// Names returns canonical field names in table order.
func (t FieldTable) Names() []string {
	out := make([]string, len(t))
	for i, f := range t {
		out[i] = f.Name
	}
	return out
}

// SourceFields returns the extraction keys expected on one side, in table order.
func (t FieldTable) SourceFields(invoice bool) []string {
	out := make([]string, len(t))
	for i, f := range t {
		if invoice {
			out[i] = f.InvoiceField
		} else {
			out[i] = f.BLField
		}
	}
	return out
}

func (t FieldTable) clone() FieldTable {
	out := make(FieldTable, len(t))
	copy(out, t)
	for i := range out {
		if out[i].Threshold != nil {
			v := *out[i].Threshold
			out[i].Threshold = &v
		}
	}
	return out
}

func threshold(v float64) *float64 { return &v }

// DefaultFieldTable returns the built-in canonical fields. Critical fields carry weight 3.
func DefaultFieldTable() FieldTable {
	return FieldTable{
		{Name: "shipper_name", Type: FieldTypeFreeText, Category: CategoryParties, Weight: 1,
			InvoiceField: "seller_name", BLField: "shipper_name"},
		{Name: "shipper_address", Type: FieldTypeFreeText, Category: CategoryParties, Weight: 1,
			InvoiceField: "seller_address", BLField: "shipper_address"},
		{Name: "consignee_name", Type: FieldTypeFreeText, Category: CategoryParties, Weight: 3, Critical: true,
			InvoiceField: "buyer_name", BLField: "consignee_name"},
		{Name: "consignee_address", Type: FieldTypeFreeText, Category: CategoryParties, Weight: 1,
			InvoiceField: "buyer_address", BLField: "consignee_address"},
		{Name: "notify_party", Type: FieldTypeFreeText, Category: CategoryParties, Weight: 1,
			InvoiceField: "notify_party", BLField: "notify_party"},

		{Name: "port_of_loading", Type: FieldTypeFreeText, Category: CategoryLogistics, Weight: 1,
			InvoiceField: "port_of_loading", BLField: "port_of_loading"},
		{Name: "port_of_discharge", Type: FieldTypeFreeText, Category: CategoryLogistics, Weight: 3, Critical: true,
			InvoiceField: "port_of_discharge", BLField: "port_of_discharge"},
		{Name: "vessel_name", Type: FieldTypeFreeText, Category: CategoryLogistics, Weight: 1,
			InvoiceField: "vessel_name", BLField: "vessel_name"},
		{Name: "container_number", Type: FieldTypeIdentifier, Category: CategoryLogistics, Weight: 1,
			InvoiceField: "container_number", BLField: "container_number"},
		{Name: "shipment_date", Type: FieldTypeDate, Category: CategoryLogistics, Weight: 1,
			InvoiceField: "invoice_date", BLField: "shipment_date"},
		{Name: "package_count", Type: FieldTypeAmount, Category: CategoryLogistics, Weight: 1,
			InvoiceField: "package_count", BLField: "package_count", Threshold: threshold(1)},

		{Name: "invoice_number", Type: FieldTypeIdentifier, Category: CategoryCommercial, Weight: 1,
			InvoiceField: "invoice_number", BLField: "invoice_reference"},
		{Name: "purchase_order", Type: FieldTypeIdentifier, Category: CategoryCommercial, Weight: 1,
			InvoiceField: "po_number", BLField: "po_number"},
		{Name: "total_amount", Type: FieldTypeAmount, Category: CategoryCommercial, Weight: 3, Critical: true,
			InvoiceField: "total_amount", BLField: "freight_total"},
		{Name: "currency", Type: FieldTypeIdentifier, Category: CategoryCommercial, Weight: 1,
			InvoiceField: "currency", BLField: "currency"},
		{Name: "goods_description", Type: FieldTypeFreeText, Category: CategoryCommercial, Weight: 1,
			InvoiceField: "goods_description", BLField: "goods_description"},
	}
}
