package ingest

import (
	"time"
)

// Field names of the smartphone sales schema. Source headers are free-form;
// only this subset is validated, everything else passes through untouched.
const (
	FieldOrderID        = "order_id"
	FieldDate           = "date"
	FieldModel          = "model"
	FieldBrand          = "brand"
	FieldPrice          = "price"
	FieldRegion         = "region"
	FieldRAM            = "ram"
	FieldStorage        = "storage"
	FieldColor          = "color"
	FieldCustomerReview = "customer_review"
)

// Record is one data row. Known schema fields are named; unknown columns are
// kept in Extra so output artifacts preserve the full source header union.
type Record struct {
	OrderID        string
	Date           string
	Model          string
	Brand          string
	Price          string
	Region         string
	RAM            string
	Storage        string
	Color          string
	CustomerReview string

	Extra map[string]string
}

// Field returns the value of a column by its source header name.
func (r Record) Field(name string) string {
	switch name {
	case FieldOrderID:
		return r.OrderID
	case FieldDate:
		return r.Date
	case FieldModel:
		return r.Model
	case FieldBrand:
		return r.Brand
	case FieldPrice:
		return r.Price
	case FieldRegion:
		return r.Region
	case FieldRAM:
		return r.RAM
	case FieldStorage:
		return r.Storage
	case FieldColor:
		return r.Color
	case FieldCustomerReview:
		return r.CustomerReview
	default:
		return r.Extra[name]
	}
}

func (r *Record) setField(name, value string) {
	switch name {
	case FieldOrderID:
		r.OrderID = value
	case FieldDate:
		r.Date = value
	case FieldModel:
		r.Model = value
	case FieldBrand:
		r.Brand = value
	case FieldPrice:
		r.Price = value
	case FieldRegion:
		r.Region = value
	case FieldRAM:
		r.RAM = value
	case FieldStorage:
		r.Storage = value
	case FieldColor:
		r.Color = value
	case FieldCustomerReview:
		r.CustomerReview = value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[name] = value
	}
}

// ValidRecord is a record on the valid path with its processing annotations.
type ValidRecord struct {
	Record

	ProcessedAt   time.Time
	CorrelationID string
	SourceFile    string
}

// InvalidRecord is a record on the rejected path with its rejection
// metadata. RowNumber is 1-based counting the header as row 1, so the first
// data row is row 2.
type InvalidRecord struct {
	Record

	RejectionReasons string
	RejectedAt       time.Time
	CorrelationID    string
	RowNumber        int
	SourceFile       string
}
