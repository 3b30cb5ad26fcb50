package referralservice

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	"github.com/escrowhub/api/pkg/results"
)

const (
	referralsSheet = "Referrals"
	summarySheet   = "Summary"
	reportTimeFmt  = "2006-01-02 15:04"
)

var referralsHeader = []any{"Referral ID", "Referrer", "Code", "Referred User", "Status", "Signed Up", "Converted"}

// ExportReport renders every referral created since the given time as an
// XLSX workbook with a Referrals sheet and a per-referrer Summary sheet.
func (s *ReferralService) ExportReport(ctx context.Context, since time.Time) ([]byte, error) {
	return execute(s, ctx, "ExportReport", since.Format(time.RFC3339), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]byte, error], error) {
		rows, err := s.repo.ListReferralsSince(ctx, db, since)
		if err != nil {
			return infraError[[]byte]("failed to list referrals", err)
		}
		body, err := buildReport(rows, since, s.now())
		if err != nil {
			return infraError[[]byte]("failed to build report", err)
		}
		return success(body)
	})
}

type referrerTotals struct {
	username string
	signups  int
	active   int
}

func buildReport(rows []referraldomain.ReportRow, since, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), referralsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := setRow(f, referralsSheet, 1, referralsHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(referralsSheet, "A1", "G1", bold); err != nil {
		return nil, err
	}

	totals := map[string]*referrerTotals{}
	active := 0
	for i, r := range rows {
		converted := ""
		if r.ConvertedAt != nil {
			converted = r.ConvertedAt.UTC().Format(reportTimeFmt)
		}
		line := []any{
			r.ReferralID.String(),
			r.ReferrerUsername,
			r.Code,
			r.ReferredUsername,
			string(r.Status),
			r.CreatedAt.UTC().Format(reportTimeFmt),
			converted,
		}
		if err := setRow(f, referralsSheet, i+2, line); err != nil {
			return nil, err
		}

		key := r.ReferrerID.String()
		t, ok := totals[key]
		if !ok {
			t = &referrerTotals{username: r.ReferrerUsername}
			totals[key] = t
		}
		t.signups++
		if r.Status == referraldomain.StatusActive {
			t.active++
			active++
		}
	}
	if err := f.SetColWidth(referralsSheet, "A", "A", 38); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(referralsSheet, "B", "G", 18); err != nil {
		return nil, err
	}

	rate := 0.0
	if len(rows) > 0 {
		rate = math.Round(float64(active)/float64(len(rows))*1000) / 10
	}
	summary := [][]any{
		{"Generated", generatedAt.UTC().Format(reportTimeFmt)},
		{"Since", since.UTC().Format(reportTimeFmt)},
		{"Signups", len(rows)},
		{"Converted", active},
		{"Conversion rate (%)", rate},
		{},
		{"Referrer", "Signups", "Active"},
	}
	for i, line := range summary {
		if err := setRow(f, summarySheet, i+1, line); err != nil {
			return nil, err
		}
	}
	headerRow := len(summary)
	if err := f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("C%d", headerRow), bold); err != nil {
		return nil, err
	}

	ranked := make([]*referrerTotals, 0, len(totals))
	for _, t := range totals {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].active != ranked[j].active {
			return ranked[i].active > ranked[j].active
		}
		return ranked[i].username < ranked[j].username
	})
	for i, t := range ranked {
		if err := setRow(f, summarySheet, headerRow+i+1, []any{t.username, t.signups, t.active}); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
