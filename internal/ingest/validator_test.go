package ingest

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validRecord() Record {
	return Record{
		OrderID: "ORD-1001",
		Date:    "2024-03-26",
		Model:   "Galaxy S24",
		Brand:   "Samsung",
		Price:   "999",
		Region:  "Europe",
		RAM:     "8",
		Storage: "256",
	}
}

var _ = Describe("Record Validator", func() {
	Context("valid records", func() {
		It("accepts a fully populated record", func() {
			verdict := Validate(validRecord(), 2)
			Expect(verdict.IsValid).To(BeTrue())
			Expect(verdict.Errors).To(BeEmpty())
		})

		It("accepts sentinel values for ram and storage", func() {
			rec := validRecord()
			rec.RAM = "N/A"
			rec.Storage = ""
			verdict := Validate(rec, 2)
			Expect(verdict.IsValid).To(BeTrue())
		})

		It("accepts whitespace-padded field values", func() {
			rec := validRecord()
			rec.Region = " Europe "
			rec.Date = " 2024-03-26 "
			verdict := Validate(rec, 2)
			Expect(verdict.IsValid).To(BeTrue())
		})
	})

	Context("required fields", func() {
		It("reports one error per missing required field", func() {
			rec := validRecord()
			rec.OrderID = ""
			rec.Price = "   "
			rec.Region = ""
			verdict := Validate(rec, 2)

			Expect(verdict.IsValid).To(BeFalse())
			Expect(verdict.Errors).To(ContainElement("Missing required field: order_id"))
			Expect(verdict.Errors).To(ContainElement("Missing required field: price"))
			Expect(verdict.Errors).To(ContainElement("Missing required field: region"))
			Expect(verdict.Errors).NotTo(ContainElement("Missing required field: brand"))
		})

		It("collects all reasons instead of short-circuiting", func() {
			verdict := Validate(Record{}, 2)
			Expect(verdict.IsValid).To(BeFalse())
			// five required fields plus the unparseable empty price
			Expect(len(verdict.Errors)).To(BeNumerically(">=", 6))
		})
	})

	Context("price", func() {
		It("rejects non-numeric prices", func() {
			rec := validRecord()
			rec.Price = "not_a_number"
			verdict := Validate(rec, 2)
			Expect(verdict.Errors).To(ContainElement("Invalid price format - must be a number"))
		})

		It("rejects zero and negative prices", func() {
			rec := validRecord()
			rec.Price = "0"
			Expect(Validate(rec, 2).Errors).To(ContainElement("Price must be greater than 0"))

			rec.Price = "-100"
			Expect(Validate(rec, 2).Errors).To(ContainElement("Price must be greater than 0"))
		})

		It("rejects prices above the maximum", func() {
			rec := validRecord()
			rec.Price = "15000"
			Expect(Validate(rec, 2).Errors).To(ContainElement("Price exceeds maximum limit (10000)"))
		})

		It("contributes no error for prices within range", func() {
			rec := validRecord()
			rec.Price = "10000"
			Expect(Validate(rec, 2).IsValid).To(BeTrue())
		})

		It("does not run range checks when parsing failed", func() {
			rec := validRecord()
			rec.Price = "abc"
			errs := Validate(rec, 2).Errors
			Expect(errs).NotTo(ContainElement("Price must be greater than 0"))
			Expect(errs).NotTo(ContainElement("Price exceeds maximum limit (10000)"))
		})
	})

	Context("ram and storage", func() {
		It("rejects non-integer ram", func() {
			rec := validRecord()
			rec.RAM = "eight"
			Expect(Validate(rec, 2).Errors).To(ContainElement("Invalid RAM format - must be a number"))
		})

		It("rejects non-positive ram", func() {
			rec := validRecord()
			rec.RAM = "0"
			Expect(Validate(rec, 2).Errors).To(ContainElement("RAM must be greater than 0"))
		})

		It("rejects ram above the maximum", func() {
			rec := validRecord()
			rec.RAM = "64"
			Expect(Validate(rec, 2).Errors).To(ContainElement("RAM exceeds maximum limit (32GB)"))
		})

		It("rejects non-positive storage", func() {
			rec := validRecord()
			rec.Storage = "-1"
			Expect(Validate(rec, 2).Errors).To(ContainElement("Storage must be greater than 0"))
		})

		It("has no upper bound on storage", func() {
			rec := validRecord()
			rec.Storage = "4096"
			Expect(Validate(rec, 2).IsValid).To(BeTrue())
		})
	})

	Context("date", func() {
		It("rejects malformed dates", func() {
			rec := validRecord()
			rec.Date = "26-03-2024"
			Expect(Validate(rec, 2).Errors).To(ContainElement("Invalid date format - must be YYYY-MM-DD"))
		})

		It("does not flag an empty date as a format error", func() {
			rec := validRecord()
			rec.Date = ""
			errs := Validate(rec, 2).Errors
			Expect(errs).NotTo(ContainElement("Invalid date format - must be YYYY-MM-DD"))
			// presence is still governed by the required list
			Expect(errs).To(ContainElement("Missing required field: date"))
		})
	})

	Context("region", func() {
		It("rejects regions outside the allowed set", func() {
			rec := validRecord()
			rec.Region = "Mars"
			verdict := Validate(rec, 2)
			Expect(verdict.IsValid).To(BeFalse())
			Expect(verdict.Errors).To(ContainElement(
				"Invalid region - must be one of: North America, South America, Europe, Asia, Africa, Oceania"))
		})
	})

	Context("brand and model", func() {
		It("requires model when brand is provided", func() {
			rec := validRecord()
			rec.Model = ""
			verdict := Validate(rec, 2)
			Expect(verdict.Errors).To(ContainElement("Model is required when brand is provided"))
		})

		It("fires independently of other fields' validity", func() {
			rec := validRecord()
			rec.Model = ""
			rec.Price = "bogus"
			verdict := Validate(rec, 2)
			Expect(verdict.Errors).To(ContainElement("Model is required when brand is provided"))
			Expect(verdict.Errors).To(ContainElement("Invalid price format - must be a number"))
		})
	})

	Context("quality score", func() {
		It("is 0 when both counts are 0", func() {
			Expect(QualityScore(0, 0)).To(Equal(0.0))
		})

		It("rounds to two decimals", func() {
			Expect(QualityScore(7, 3)).To(Equal(70.0))
			Expect(QualityScore(1, 2)).To(Equal(33.33))
			Expect(QualityScore(3, 0)).To(Equal(100.0))
		})
	})
})
