package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Verdict is the validator's output for one record. IsValid holds exactly
// when Errors is empty.
type Verdict struct {
	IsValid bool
	Errors  []string
}

var requiredFields = []string{FieldOrderID, FieldDate, FieldBrand, FieldPrice, FieldRegion}

var validRegions = []string{"North America", "South America", "Europe", "Asia", "Africa", "Oceania"}

const (
	maxPrice = 10000
	maxRAM   = 32
)

// notApplicable reports whether an optional numeric field carries a sentinel
// spelling that exempts it from numeric validation.
func notApplicable(v string) bool {
	return v == "" || v == "N/A"
}

// Validate applies every rule independently and collects all reasons; a
// single record can carry multiple. Pure function: no I/O, no hidden state.
// The row number is carried for downstream reporting only.
func Validate(rec Record, rowNumber int) Verdict {
	var errs []string

	for _, field := range requiredFields {
		if strings.TrimSpace(rec.Field(field)) == "" {
			errs = append(errs, fmt.Sprintf("Missing required field: %s", field))
		}
	}

	price := strings.TrimSpace(rec.Price)
	if p, err := strconv.ParseFloat(price, 64); err != nil {
		errs = append(errs, "Invalid price format - must be a number")
	} else {
		if p <= 0 {
			errs = append(errs, "Price must be greater than 0")
		}
		if p > maxPrice {
			errs = append(errs, "Price exceeds maximum limit (10000)")
		}
	}

	ram := strings.TrimSpace(rec.RAM)
	if !notApplicable(ram) {
		if v, err := strconv.Atoi(ram); err != nil {
			errs = append(errs, "Invalid RAM format - must be a number")
		} else {
			if v <= 0 {
				errs = append(errs, "RAM must be greater than 0")
			}
			if v > maxRAM {
				errs = append(errs, "RAM exceeds maximum limit (32GB)")
			}
		}
	}

	storage := strings.TrimSpace(rec.Storage)
	if !notApplicable(storage) {
		if v, err := strconv.Atoi(storage); err != nil {
			errs = append(errs, "Invalid storage format - must be a number")
		} else if v <= 0 {
			errs = append(errs, "Storage must be greater than 0")
		}
	}

	// An absent date is not flagged here; required-field presence is governed
	// solely by the required list above.
	if date := strings.TrimSpace(rec.Date); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			errs = append(errs, "Invalid date format - must be YYYY-MM-DD")
		}
	}

	if region := strings.TrimSpace(rec.Region); region != "" && !contains(validRegions, region) {
		errs = append(errs, fmt.Sprintf("Invalid region - must be one of: %s", strings.Join(validRegions, ", ")))
	}

	brand := strings.TrimSpace(rec.Brand)
	model := strings.TrimSpace(rec.Model)
	if brand != "" && model == "" {
		errs = append(errs, "Model is required when brand is provided")
	}

	return Verdict{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
