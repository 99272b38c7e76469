package workflow

import "slices"

// Extraction schema field names.
const (
	FieldFirstName       = "vorname"
	FieldLastName        = "nachname"
	FieldAddress         = "adresse"
	FieldEmail           = "email"
	FieldPhone           = "telefon"
	FieldIBAN            = "iban"
	FieldContractAccount = "vertragskontonummer"
	FieldMeterNumber     = "zaehlernummer"
	FieldMeterReading    = "zaehlerstand"
	FieldReadingDate     = "ablesedatum"
	FieldDeliveryPoint   = "abnahmestelle"
)

var schema = []string{
	FieldFirstName,
	FieldLastName,
	FieldAddress,
	FieldEmail,
	FieldPhone,
	FieldIBAN,
	FieldContractAccount,
	FieldMeterNumber,
	FieldMeterReading,
	FieldReadingDate,
	FieldDeliveryPoint,
}

// Schema returns the extraction field names in schema order.
func Schema() []string {
	return slices.Clone(schema)
}

// FieldKind selects the post-processing rule applied to a field.
type FieldKind int

const (
	KindPlain FieldKind = iota
	KindName
	KindAddress
	KindNumeric
)

// KindOf returns the post-processing kind of field.
func KindOf(field string) FieldKind {
	switch field {
	case FieldFirstName, FieldLastName:
		return KindName
	case FieldAddress, FieldDeliveryPoint:
		return KindAddress
	case FieldMeterReading:
		return KindNumeric
	default:
		return KindPlain
	}
}
