package repository

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"stockscreener/internal/domain"
	"stockscreener/internal/util"
	"time"

	"github.com/gocarina/gocsv"
)

type ExportRepository interface {
	FileName(runDate time.Time) string
	Write(w io.Writer, rows []domain.ScoredRecord) error
	WriteFile(dir string, runDate time.Time, rows []domain.ScoredRecord) (string, error)
}

type exportRepositoryHandler struct{}

func NewExportRepository() ExportRepository {
	return exportRepositoryHandler{}
}

// csvRow column names are the rule field names, followed by the scoring
// columns.
type csvRow struct {
	Ticker         string   `csv:"Ticker"`
	Price          float64  `csv:"Price"`
	Open           float64  `csv:"Open"`
	High           float64  `csv:"High"`
	Low            float64  `csv:"Low"`
	Volume         float64  `csv:"Volume"`
	VolAvg         float64  `csv:"Vol_Avg"`
	PrevClose      float64  `csv:"Prev_Close"`
	Prev2Close     float64  `csv:"Prev_2_Close"`
	OpenCloseRatio *float64 `csv:"Open_Close_Ratio"`
	PctChangeN     *float64 `csv:"Pct_Change_N"`
	SMA3           *float64 `csv:"SMA_3"`
	SMA5           *float64 `csv:"SMA_5"`
	SMA10          *float64 `csv:"SMA_10"`
	SMA20          *float64 `csv:"SMA_20"`
	SMA50          *float64 `csv:"SMA_50"`
	RSI            *float64 `csv:"RSI"`
	GapUpCount     int      `csv:"Gap_Up_Count"`
	GapDownCount   int      `csv:"Gap_Down_Count"`
	AvgGapUpPct    float64  `csv:"Avg_Gap_Up_Pct"`
	IHSGPrevClose  float64  `csv:"IHSG_Prev_Close"`
	IHSGChangePct  float64  `csv:"IHSG_Change_Pct"`
	Score          int      `csv:"Score"`
	Rationale      string   `csv:"Rationale"`
	Recommendation string   `csv:"Recommendation"`
}

func newCsvRow(r domain.ScoredRecord) csvRow {
	return csvRow{
		Ticker:         r.Ticker.String(),
		Price:          r.Price,
		Open:           r.Open,
		High:           r.High,
		Low:            r.Low,
		Volume:         r.Volume,
		VolAvg:         r.VolAvg,
		PrevClose:      r.PrevClose,
		Prev2Close:     r.Prev2Close,
		OpenCloseRatio: r.OpenCloseRatio,
		PctChangeN:     r.PctChangeN,
		SMA3:           r.SMA3,
		SMA5:           r.SMA5,
		SMA10:          r.SMA10,
		SMA20:          r.SMA20,
		SMA50:          r.SMA50,
		RSI:            r.RSI,
		GapUpCount:     r.GapUpCount,
		GapDownCount:   r.GapDownCount,
		AvgGapUpPct:    r.AvgGapUpPct,
		IHSGPrevClose:  r.IHSGPrevClose,
		IHSGChangePct:  r.IHSGChangePct,
		Score:          r.Score,
		Rationale:      r.RationaleText,
		Recommendation: string(r.Recommendation),
	}
}

func (h exportRepositoryHandler) FileName(runDate time.Time) string {
	return fmt.Sprintf("screener_results_%s.csv", util.CompactDate(runDate))
}

func (h exportRepositoryHandler) Write(w io.Writer, rows []domain.ScoredRecord) error {
	out := make([]csvRow, len(rows))
	for i, r := range rows {
		out[i] = newCsvRow(r)
	}
	if err := gocsv.Marshal(&out, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func (h exportRepositoryHandler) WriteFile(dir string, runDate time.Time, rows []domain.ScoredRecord) (string, error) {
	path := filepath.Join(dir, h.FileName(runDate))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := h.Write(f, rows); err != nil {
		return "", err
	}
	return path, nil
}
