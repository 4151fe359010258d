package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
	"tradejournal/internal/repository"
)

// MetricsService is the read side: every operation is a stateless
// aggregation over closed trades (returns not null) scoped to the caller's
// accounts. Volumes are personal-journal scale, so aggregation happens in
// Go over one scoped query, keeping decimal arithmetic exact and the SQL
// portable across both supported drivers.
type MetricsService struct {
	Repo repository.Repository
}

const allAccountsName = "All Accounts"

type DashboardMetrics struct {
	TotalPnL            decimal.Decimal  `json:"total_pnl"`
	TotalTrades         int              `json:"total_trades"`
	WinningTrades       int              `json:"winning_trades"`
	LosingTrades        int              `json:"losing_trades"`
	BreakevenTrades     int              `json:"breakeven_trades"`
	WinRate             decimal.Decimal  `json:"win_rate"`
	AveragePnLPerTrade  decimal.Decimal  `json:"average_pnl_per_trade"`
	AverageWinningTrade *decimal.Decimal `json:"average_winning_trade"`
	AverageLosingTrade  *decimal.Decimal `json:"average_losing_trade"`
	ProfitFactor        *decimal.Decimal `json:"profit_factor"`
	LargestWinningTrade *decimal.Decimal `json:"largest_winning_trade"`
	LargestLosingTrade  *decimal.Decimal `json:"largest_losing_trade"`
	AccountName         string           `json:"account_name"`
	AccountID           *uint64          `json:"account_id"`
}

type EquityPoint struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

type PnLPoint struct {
	Period string          `json:"period"`
	PnL    decimal.Decimal `json:"pnl"`
}

type CalendarDay struct {
	Date           string          `json:"date"`
	TotalPnL       decimal.Decimal `json:"total_pnl"`
	TradeCount     int             `json:"trade_count"`
	StrategiesUsed []string        `json:"strategies_used"`
	DayStatus      string          `json:"day_status"`
}

type MonthlyCalendar struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	AccountName    string          `json:"account_name"`
	TotalPnL       decimal.Decimal `json:"total_pnl"`
	TotalTrades    int             `json:"total_trades"`
	WinningDays    int             `json:"winning_days"`
	LosingDays     int             `json:"losing_days"`
	BreakevenDays  int             `json:"breakeven_days"`
	DaysWithTrades []CalendarDay   `json:"days_with_trades"`
}

const (
	dayWinning   = "WINNING_DAY"
	dayLosing    = "LOSING_DAY"
	dayBreakeven = "BREAKEVEN_DAY"
)

// scopeAccount resolves an optional account filter against the caller's own
// accounts. A filter naming an account outside the caller's scope is
// indistinguishable from a missing one.
func (s *MetricsService) scopeAccount(ctx context.Context, userID uint64, accountID *uint64) (*models.Account, error) {
	if accountID == nil {
		return nil, nil
	}
	account, err := s.Repo.GetAccount(ctx, userID, *accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.ErrNotFound
	}
	return account, nil
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func round2Ptr(d decimal.Decimal) *decimal.Decimal {
	r := d.Round(2)
	return &r
}

func (s *MetricsService) Dashboard(ctx context.Context, userID uint64, accountID *uint64) (DashboardMetrics, error) {
	account, err := s.scopeAccount(ctx, userID, accountID)
	if err != nil {
		return DashboardMetrics{}, err
	}

	metrics := DashboardMetrics{
		TotalPnL:           decimal.Zero,
		WinRate:            decimal.Zero,
		AveragePnLPerTrade: decimal.Zero,
		AccountName:        allAccountsName,
		AccountID:          accountID,
	}
	if account != nil {
		metrics.AccountName = account.Name
	}

	trades, err := s.Repo.ListClosedTrades(ctx, repository.ClosedTradesParams{
		UserID:    userID,
		AccountID: accountID,
	})
	if err != nil {
		return DashboardMetrics{}, err
	}
	if len(trades) == 0 {
		return metrics, nil
	}

	var (
		totalPnL    decimal.Decimal
		grossProfit decimal.Decimal
		grossLoss   decimal.Decimal
		wins        int
		losses      int
		largest     *decimal.Decimal
		smallest    *decimal.Decimal
	)
	for _, t := range trades {
		r := *t.Returns
		totalPnL = totalPnL.Add(r)
		switch r.Sign() {
		case 1:
			wins++
			grossProfit = grossProfit.Add(r)
		case -1:
			losses++
			grossLoss = grossLoss.Add(r)
		}
		if largest == nil || r.GreaterThan(*largest) {
			v := r
			largest = &v
		}
		if smallest == nil || r.LessThan(*smallest) {
			v := r
			smallest = &v
		}
	}

	total := len(trades)
	metrics.TotalPnL = round2(totalPnL)
	metrics.TotalTrades = total
	metrics.WinningTrades = wins
	metrics.LosingTrades = losses
	metrics.BreakevenTrades = total - wins - losses
	metrics.WinRate = round2(decimal.NewFromInt(int64(wins)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))))
	metrics.AveragePnLPerTrade = round2(totalPnL.Div(decimal.NewFromInt(int64(total))))
	if wins > 0 {
		metrics.AverageWinningTrade = round2Ptr(grossProfit.Div(decimal.NewFromInt(int64(wins))))
	}
	if losses > 0 {
		metrics.AverageLosingTrade = round2Ptr(grossLoss.Div(decimal.NewFromInt(int64(losses))))
		metrics.ProfitFactor = round2Ptr(grossProfit.Div(grossLoss.Abs()))
	}
	metrics.LargestWinningTrade = largest
	metrics.LargestLosingTrade = smallest
	return metrics, nil
}

// EquityCurve returns the balance history for one account: the seed point
// at account creation, then one point per trade carrying the balance
// snapshot recorded when the trade was written.
func (s *MetricsService) EquityCurve(ctx context.Context, userID uint64, accountID *uint64) ([]EquityPoint, error) {
	if accountID == nil {
		return []EquityPoint{}, nil
	}
	account, err := s.scopeAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	points := []EquityPoint{{Date: account.CreatedAt, Balance: account.InitialBalance}}
	trades, err := s.Repo.ListEquityTrades(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	for _, t := range trades {
		points = append(points, EquityPoint{Date: t.EntryDate, Balance: *t.CurrentBalanceAfterTrade})
	}
	return points, nil
}

func truncatePeriod(t time.Time, period string) time.Time {
	t = t.UTC()
	switch period {
	case "daily":
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case "weekly":
		// Weeks start on Monday.
		shift := (int(t.Weekday()) + 6) % 7
		d := t.AddDate(0, 0, -shift)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	case "yearly":
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func normalizePeriod(raw string) string {
	switch raw {
	case "daily", "weekly", "yearly":
		return raw
	default:
		return "monthly"
	}
}

// PnLOverTime buckets closed trades by entry date truncated to the period.
// Buckets with no trades are omitted.
func (s *MetricsService) PnLOverTime(ctx context.Context, userID uint64, accountID *uint64, period string) ([]PnLPoint, error) {
	if _, err := s.scopeAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	period = normalizePeriod(period)

	trades, err := s.Repo.ListClosedTrades(ctx, repository.ClosedTradesParams{
		UserID:    userID,
		AccountID: accountID,
	})
	if err != nil {
		return nil, err
	}

	// Trades arrive ordered by entry_date, so truncated keys are
	// non-decreasing and buckets can be accumulated in a single pass.
	points := []PnLPoint{}
	var current time.Time
	for _, t := range trades {
		bucket := truncatePeriod(t.EntryDate, period)
		if len(points) == 0 || !bucket.Equal(current) {
			points = append(points, PnLPoint{Period: bucket.Format("2006-01-02"), PnL: decimal.Zero})
			current = bucket
		}
		points[len(points)-1].PnL = points[len(points)-1].PnL.Add(*t.Returns)
	}
	for i := range points {
		points[i].PnL = round2(points[i].PnL)
	}
	return points, nil
}

func dayStatus(pnl decimal.Decimal) string {
	switch pnl.Sign() {
	case 1:
		return dayWinning
	case -1:
		return dayLosing
	default:
		return dayBreakeven
	}
}

// Calendar aggregates one month of closed trades per day. Days without
// trades are omitted from the list and count toward none of the day
// totals.
func (s *MetricsService) Calendar(ctx context.Context, userID uint64, year, month int, accountID *uint64) (MonthlyCalendar, error) {
	if year < 1 || month < 1 || month > 12 {
		return MonthlyCalendar{}, fmt.Errorf("%w: year and month are required integers", apperr.ErrValidation)
	}
	account, err := s.scopeAccount(ctx, userID, accountID)
	if err != nil {
		return MonthlyCalendar{}, err
	}

	since := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 1, 0)
	trades, err := s.Repo.ListClosedTrades(ctx, repository.ClosedTradesParams{
		UserID:    userID,
		AccountID: accountID,
		Since:     &since,
		Until:     &until,
	})
	if err != nil {
		return MonthlyCalendar{}, err
	}

	result := MonthlyCalendar{
		Year:           year,
		Month:          month,
		AccountName:    allAccountsName,
		TotalPnL:       decimal.Zero,
		DaysWithTrades: []CalendarDay{},
	}
	if account != nil {
		result.AccountName = account.Name
	}

	type dayAgg struct {
		pnl        decimal.Decimal
		count      int
		strategies []string
		seen       map[string]bool
	}
	days := map[string]*dayAgg{}
	order := []string{}
	for _, t := range trades {
		key := t.EntryDate.UTC().Format("2006-01-02")
		agg, ok := days[key]
		if !ok {
			agg = &dayAgg{seen: map[string]bool{}}
			days[key] = agg
			order = append(order, key)
		}
		agg.pnl = agg.pnl.Add(*t.Returns)
		agg.count++
		if t.SetupStrategy != nil && !agg.seen[t.SetupStrategy.Name] {
			agg.seen[t.SetupStrategy.Name] = true
			agg.strategies = append(agg.strategies, t.SetupStrategy.Name)
		}
	}

	for _, key := range order {
		agg := days[key]
		status := dayStatus(agg.pnl)
		strategies := agg.strategies
		if strategies == nil {
			strategies = []string{}
		}
		result.DaysWithTrades = append(result.DaysWithTrades, CalendarDay{
			Date:           key,
			TotalPnL:       round2(agg.pnl),
			TradeCount:     agg.count,
			StrategiesUsed: strategies,
			DayStatus:      status,
		})
		result.TotalPnL = result.TotalPnL.Add(agg.pnl)
		result.TotalTrades += agg.count
		switch status {
		case dayWinning:
			result.WinningDays++
		case dayLosing:
			result.LosingDays++
		case dayBreakeven:
			result.BreakevenDays++
		}
	}
	result.TotalPnL = round2(result.TotalPnL)
	return result, nil
}
