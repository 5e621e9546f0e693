package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// ImportService drives a whole batch: parse each row, match it against
// existing customers, upsert, and report progress as it goes. Rows are
// processed sequentially on purpose: matching is read-then-write, and two
// concurrent rows carrying the same new phone number would both decide "no
// existing record" and create a duplicate. Concurrent imports into the same
// shop have the same race; callers are expected to serialize imports per
// shop.
type ImportService struct {
	engine *UpsertEngine
	region string
}

// NewImportService builds an orchestrator over store. region is the shop's
// home country, used when rows carry phone numbers without a country code.
func NewImportService(store CustomerStore, region string) *ImportService {
	return &ImportService{engine: NewUpsertEngine(store), region: region}
}

// ImportSummary is the terminal, authoritative result of a batch. Its counts
// hold even if intermediate progress frames were dropped by the transport.
type ImportSummary struct {
	Total        int          `json:"total"`
	SuccessCount int          `json:"successCount"`
	Created      int          `json:"created"`
	Updated      int          `json:"updated"`
	Errors       []RowFailure `json:"errors"`
}

// Run processes the sheet row by row and emits frames to sink. Row-level
// failures are recorded and the batch continues; only an unusable header is
// batch-fatal (ErrorFrame + error return). A cancelled context stops work at
// the next row boundary without emitting further frames: rows already
// committed stay committed, this is an at-least-once import.
func (s *ImportService) Run(ctx context.Context, shopID, userID uuid.UUID, sheet *Sheet, sink FrameWriter) (*ImportSummary, error) {
	idx := HeaderIndex(sheet.Header)
	if _, ok := idx[colPhone]; !ok {
		err := fmt.Errorf("%w: header has no %q column", ErrMalformedFile, "Phone")
		if werr := sink.WriteFrame(newErrorFrame(err.Error())); werr != nil {
			log.Printf("import: write error frame: %v", werr)
		}
		return nil, err
	}

	total := len(sheet.Rows)
	summary := &ImportSummary{Total: total, Errors: []RowFailure{}}

	if err := sink.WriteFrame(newInitFrame(total)); err != nil {
		return summary, err
	}

	interval := progressInterval(total)

	for i, record := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			// Caller went away. Stop issuing row work; nothing to report.
			return summary, err
		}

		rowNum := i + 2 // header is spreadsheet row 1

		if rerr := s.processRow(ctx, shopID, userID, record, idx, rowNum, summary); rerr != nil {
			summary.Errors = append(summary.Errors, RowFailure{Row: rerr.Row, Error: rerr.Message})
		} else {
			summary.SuccessCount++
		}

		if (i+1)%interval == 0 || i == total-1 {
			frame := newProgressFrame(i+1, total, summary.SuccessCount, len(summary.Errors))
			if err := sink.WriteFrame(frame); err != nil {
				// Broken pipe means a gone caller; stop at this row boundary.
				return summary, err
			}
		}
	}

	if err := sink.WriteFrame(newCompleteFrame(summary.SuccessCount, summary.Errors)); err != nil {
		return summary, err
	}

	log.Printf("import: %d rows, %d imported, %d errors", total, summary.SuccessCount, len(summary.Errors))
	return summary, nil
}

func (s *ImportService) processRow(ctx context.Context, shopID, userID uuid.UUID, record []string, idx map[string]int, rowNum int, summary *ImportSummary) *RowError {
	row, rerr := ParseRow(record, idx, rowNum, s.region)
	if rerr != nil {
		return rerr
	}

	res, err := s.engine.Apply(ctx, shopID, userID, row)
	if err != nil {
		log.Printf("import: row %d upsert failed: %v", rowNum, err)
		return persistenceErr(rowNum, err)
	}

	if res.Created {
		summary.Created++
	} else {
		summary.Updated++
	}
	return nil
}

// progressInterval bounds network chatter: one frame per row for small
// files, roughly 200 frames total for large ones.
func progressInterval(total int) int {
	if total <= 200 {
		return 1
	}
	return (total + 199) / 200
}
