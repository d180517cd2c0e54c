package model

// Field names a semantic column of a bank export.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldBalance     Field = "balance"
	FieldReference   Field = "reference"
)

// Fields lists every mappable field in detection precedence order.
var Fields = []Field{FieldDate, FieldDescription, FieldAmount, FieldBalance, FieldReference}

// Required reports whether an import cannot proceed without the field.
func (f Field) Required() bool {
	return f == FieldDate || f == FieldDescription || f == FieldAmount
}

// ColumnMapping associates fields with header names of the source file.
// An empty string means the field is unmapped.
type ColumnMapping struct {
	Date        string `yaml:"date" json:"date"`
	Description string `yaml:"description" json:"description"`
	Amount      string `yaml:"amount" json:"amount"`
	Balance     string `yaml:"balance,omitempty" json:"balance,omitempty"`
	Reference   string `yaml:"reference,omitempty" json:"reference,omitempty"`
}

// Get returns the header mapped to f.
func (m ColumnMapping) Get(f Field) string {
	switch f {
	case FieldDate:
		return m.Date
	case FieldDescription:
		return m.Description
	case FieldAmount:
		return m.Amount
	case FieldBalance:
		return m.Balance
	case FieldReference:
		return m.Reference
	}
	return ""
}

// Set maps f to header. Unknown fields are ignored.
func (m *ColumnMapping) Set(f Field, header string) {
	switch f {
	case FieldDate:
		m.Date = header
	case FieldDescription:
		m.Description = header
	case FieldAmount:
		m.Amount = header
	case FieldBalance:
		m.Balance = header
	case FieldReference:
		m.Reference = header
	}
}

// Complete reports whether all required fields are mapped.
func (m ColumnMapping) Complete() bool {
	return m.Date != "" && m.Description != "" && m.Amount != ""
}

// Missing returns the required fields that are still unmapped.
func (m ColumnMapping) Missing() []Field {
	var missing []Field
	for _, f := range Fields {
		if f.Required() && m.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
