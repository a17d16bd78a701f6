package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"stockscreener/internal/app"
	"stockscreener/internal/domain"
	"time"

	"github.com/gin-gonic/gin"
)

type screenRequest struct {
	Tickers         string `json:"tickers"`
	Rules           string `json:"rules"`
	RsiPeriod       *int   `json:"rsiPeriod"`
	VolAvgPeriod    *int   `json:"volAvgPeriod"`
	PctChangePeriod *int   `json:"pctChangePeriod"`
	BuyThreshold    *int   `json:"buyThreshold"`
	SellThreshold   *int   `json:"sellThreshold"`
	LookbackDays    *int   `json:"lookbackDays"`
}

type screenResponse struct {
	*app.ScreenResult
	Display []domain.DisplayRow `json:"display"`
}

func (m ApiHandler) toScreenRequest(in screenRequest) (*app.ScreenRequest, error) {
	params := m.DefaultParams
	if params == (domain.IndicatorParams{}) {
		params = domain.DefaultIndicatorParams()
	}
	if in.RsiPeriod != nil {
		params.RsiPeriod = *in.RsiPeriod
	}
	if in.VolAvgPeriod != nil {
		params.VolAvgPeriod = *in.VolAvgPeriod
	}
	if in.PctChangePeriod != nil {
		params.PctChangePeriod = *in.PctChangePeriod
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	thresholds := m.DefaultThresholds
	if in.BuyThreshold != nil {
		thresholds.Buy = *in.BuyThreshold
	}
	if in.SellThreshold != nil {
		thresholds.Sell = *in.SellThreshold
	}

	var lookback time.Duration
	if in.LookbackDays != nil {
		if *in.LookbackDays <= 0 {
			return nil, fmt.Errorf("lookbackDays must be positive, got %d", *in.LookbackDays)
		}
		lookback = time.Duration(*in.LookbackDays) * 24 * time.Hour
	}

	return &app.ScreenRequest{
		Tickers:    in.Tickers,
		Rules:      in.Rules,
		Params:     params,
		Thresholds: thresholds,
		Lookback:   lookback,
	}, nil
}

// runScreen binds the request and runs it. It writes the error response
// itself and returns nil on failure.
func (m ApiHandler) runScreen(c *gin.Context) *app.ScreenResult {
	var requestBody screenRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, http.StatusBadRequest)
		return nil
	}

	req, err := m.toScreenRequest(requestBody)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid request: %w", err), c, http.StatusBadRequest)
		return nil
	}

	profile, endProfile := domain.NewProfile()
	defer endProfile()
	ctx := domain.WithProfile(c.Request.Context(), profile)
	if m.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.RunTimeout)
		defer cancel()
	}

	result, err := m.ScreenerApp.Run(ctx, *req)
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to run screen: %w", err), c)
		return nil
	}
	return result
}

func (m ApiHandler) screen(c *gin.Context) {
	result := m.runScreen(c)
	if result == nil {
		return
	}
	result.Profile.End()

	c.JSON(200, screenResponse{
		ScreenResult: result,
		Display:      domain.NewDisplayRows(result.Records),
	})
}

func (m ApiHandler) screenCsv(c *gin.Context) {
	result := m.runScreen(c)
	if result == nil {
		return
	}

	buf := &bytes.Buffer{}
	if err := m.ExportRepository.Write(buf, result.Records); err != nil {
		returnErrorJson(fmt.Errorf("failed to write csv: %w", err), c)
		return
	}

	fileName := m.ExportRepository.FileName(result.RunDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Data(200, "text/csv; charset=utf-8", buf.Bytes())
}
