package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pix-storefront/internal/client"
	"pix-storefront/internal/model"
)

type DashboardQuery struct {
	PeriodDays int // 7, 30 or 90
	Limit      int
	Month      string
	Year       string
}

// Bar is one column of a dashboard chart, scaled against the largest value.
type Bar struct {
	Label   string
	Value   decimal.Decimal
	Count   int
	Percent float64
}

type Dashboard struct {
	Stats       model.DashboardStats
	DailySales  []Bar
	TopProducts []Bar
	Recent      []model.RecentTransaction
	Period      []Bar
	Ranking     []model.ProductRank
	TopUsers    []model.TopUser
	Financial   *model.FinancialReportResponse
	// Warnings lists panels that could not be loaded.
	Warnings []string
}

type DashboardService interface {
	Load(ctx context.Context, token string, query DashboardQuery) (*Dashboard, error)
}

type dashboardServiceImpl struct {
	enterprise client.EnterpriseClient
	log        *zap.Logger
}

func NewDashboardService(
	enterprise client.EnterpriseClient,
	log *zap.Logger,
) DashboardService {
	return &dashboardServiceImpl{
		enterprise: enterprise,
		log:        log,
	}
}

// Load fetches every panel in parallel. The stats panel is required; the
// others degrade to a warning unless the token was rejected.
func (s *dashboardServiceImpl) Load(ctx context.Context, token string, query DashboardQuery) (*Dashboard, error) {
	var (
		mu   sync.Mutex
		dash = &Dashboard{}
	)
	optional := func(panel string, err error) error {
		if client.IsUnauthorized(err) {
			return err
		}
		s.log.Warn("dashboard panel failed", zap.String("panel", panel), zap.Error(err))
		mu.Lock()
		dash.Warnings = append(dash.Warnings, panel)
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.enterprise.DashboardStats(gctx, token)
		if err != nil {
			return fmt.Errorf("dashboard stats: %w", err)
		}
		daily := res.Charts.DailySales
		labels, values, counts := make([]string, len(daily)), make([]decimal.Decimal, len(daily)), make([]int, len(daily))
		for i, d := range daily {
			labels[i], values[i], counts[i] = d.Date, d.Revenue, d.Sales
		}
		top := res.Charts.TopProducts
		tLabels, tValues, tCounts := make([]string, len(top)), make([]decimal.Decimal, len(top)), make([]int, len(top))
		for i, p := range top {
			tLabels[i], tValues[i], tCounts[i] = p.Name, p.Revenue, p.Sales
		}

		mu.Lock()
		defer mu.Unlock()
		dash.Stats = res.Stats
		dash.Recent = res.RecentTransactions
		dash.DailySales = ScaleBars(labels, values, counts)
		dash.TopProducts = ScaleBars(tLabels, tValues, tCounts)
		return nil
	})

	g.Go(func() error {
		res, err := s.enterprise.SalesByPeriod(gctx, token, query.PeriodDays)
		if err != nil {
			return optional("vendas", err)
		}
		labels, values, counts := make([]string, len(res.Sales)), make([]decimal.Decimal, len(res.Sales)), make([]int, len(res.Sales))
		for i, v := range res.Sales {
			labels[i], values[i], counts[i] = v.Date, v.Total, v.Quantity
		}

		mu.Lock()
		defer mu.Unlock()
		dash.Period = ScaleBars(labels, values, counts)
		return nil
	})

	g.Go(func() error {
		res, err := s.enterprise.ProductRanking(gctx, token, query.Limit)
		if err != nil {
			return optional("ranking_produtos", err)
		}
		mu.Lock()
		defer mu.Unlock()
		dash.Ranking = res.Ranking
		return nil
	})

	g.Go(func() error {
		res, err := s.enterprise.TopUsers(gctx, token, query.Limit)
		if err != nil {
			return optional("top_usuarios", err)
		}
		mu.Lock()
		defer mu.Unlock()
		dash.TopUsers = res.TopUsers
		return nil
	})

	g.Go(func() error {
		res, err := s.enterprise.FinancialReport(gctx, token, query.Month, query.Year)
		if err != nil {
			return optional("relatorio_financeiro", err)
		}
		mu.Lock()
		defer mu.Unlock()
		dash.Financial = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

var hundred = decimal.NewFromInt(100)

// ScaleBars sizes each value as a percentage of the largest one. Negative
// values are drawn as empty bars.
func ScaleBars(labels []string, values []decimal.Decimal, counts []int) []Bar {
	max := decimal.Zero
	for _, v := range values {
		if v.GreaterThan(max) {
			max = v
		}
	}

	bars := make([]Bar, len(values))
	for i, v := range values {
		bars[i] = Bar{Label: labels[i], Value: v}
		if i < len(counts) {
			bars[i].Count = counts[i]
		}
		if max.IsPositive() && v.IsPositive() {
			bars[i].Percent = v.Div(max).Mul(hundred).Round(1).InexactFloat64()
		}
	}
	return bars
}
