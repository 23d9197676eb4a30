package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// ChartSource reads the static financial series shown on the confirmation
// page from a JSON file of the form {"financial_data": [...]}.
type ChartSource struct {
	Path string
}

type chartFile struct {
	FinancialData []domain.FinancialData `json:"financial_data"`
}

// Load returns the series. The chart is decoration: a missing or broken
// file yields an empty series, never an error.
func (s *ChartSource) Load(ctx context.Context) []domain.FinancialData {
	l := slogx.FromContext(ctx)

	b, err := os.ReadFile(s.Path) // #nosec G304 - operator supplied path
	if err != nil {
		l.Warn("chart data unavailable", slog.String("path", s.Path), slog.Any("error", err))
		return []domain.FinancialData{}
	}

	var f chartFile
	if err := json.Unmarshal(b, &f); err != nil {
		l.Warn("chart data is not valid json", slog.String("path", s.Path), slog.Any("error", err))
		return []domain.FinancialData{}
	}
	if f.FinancialData == nil {
		return []domain.FinancialData{}
	}
	return f.FinancialData
}
