package ingest

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CSV codec", func() {
	Context("ParseSource", func() {
		It("maps known columns to named fields and keeps the rest", func() {
			src := "order_id,brand,warehouse\nORD-1,Apple,Berlin\n"
			header, records, err := ParseSource(strings.NewReader(src))

			Expect(err).To(BeNil())
			Expect(header).To(Equal([]string{"order_id", "brand", "warehouse"}))
			Expect(records).To(HaveLen(1))
			Expect(records[0].OrderID).To(Equal("ORD-1"))
			Expect(records[0].Brand).To(Equal("Apple"))
			Expect(records[0].Extra).To(HaveKeyWithValue("warehouse", "Berlin"))
		})

		It("tolerates short rows", func() {
			src := "order_id,brand,price\nORD-1,Apple\n"
			_, records, err := ParseSource(strings.NewReader(src))

			Expect(err).To(BeNil())
			Expect(records[0].Price).To(Equal(""))
		})

		It("fails on a source without a header row", func() {
			_, _, err := ParseSource(strings.NewReader(""))
			Expect(err).NotTo(BeNil())
		})
	})

	Context("MarshalValid", func() {
		It("writes source columns in order plus the processing annotations", func() {
			header := []string{"order_id", "brand", "warehouse"}
			rec := ValidRecord{
				ProcessedAt:   time.Date(2024, 3, 26, 10, 0, 0, 0, time.UTC),
				CorrelationID: "corr-1",
				SourceFile:    "input/sales.csv",
			}
			rec.OrderID = "ORD-1"
			rec.Brand = "Apple"
			rec.Extra = map[string]string{"warehouse": "Berlin"}

			body, err := MarshalValid(header, []ValidRecord{rec})
			Expect(err).To(BeNil())

			lines := strings.Split(strings.TrimSpace(string(body)), "\n")
			Expect(lines[0]).To(Equal("order_id,brand,warehouse,processed_at,correlation_id,source_file"))
			Expect(lines[1]).To(Equal("ORD-1,Apple,Berlin,2024-03-26T10:00:00Z,corr-1,input/sales.csv"))
		})
	})

	Context("MarshalRejected", func() {
		It("writes rejection metadata including the 1-based row number", func() {
			header := []string{"order_id", "brand"}
			rec := InvalidRecord{
				RejectionReasons: "Missing required field: price, Invalid region - bad",
				RejectedAt:       time.Date(2024, 3, 26, 10, 0, 0, 0, time.UTC),
				CorrelationID:    "corr-1",
				RowNumber:        2,
				SourceFile:       "input/sales.csv",
			}
			rec.OrderID = "ORD-1"

			body, err := MarshalRejected(header, []InvalidRecord{rec})
			Expect(err).To(BeNil())

			lines := strings.Split(strings.TrimSpace(string(body)), "\n")
			Expect(lines[0]).To(Equal("order_id,brand,rejection_reasons,rejected_at,correlation_id,row_number,source_file"))
			Expect(lines[1]).To(ContainSubstring(`"Missing required field: price, Invalid region - bad"`))
			Expect(lines[1]).To(ContainSubstring(",2,input/sales.csv"))
		})
	})
})
