// Package binance adapts the Binance USDT-M futures REST API to the broker
// gateway contract. Stops are modeled as close-position STOP_MARKET /
// TAKE_PROFIT_MARKET orders, so a modify is a cancel-and-replace.
package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stoppilot/internal/gateway/broker"
	"stoppilot/internal/market"
	symbolpkg "stoppilot/internal/pkg/symbol"
	"stoppilot/internal/scheduler"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const maxHistoryLimit = 1500

// Gateway implements broker.Gateway over the futures REST client.
type Gateway struct {
	cfg    Config
	client *futures.Client
}

var _ broker.Gateway = (*Gateway)(nil)

func New(cfg Config) (*Gateway, error) {
	final := cfg.withDefaults()
	if final.APIKey == "" || final.APISecret == "" {
		return nil, fmt.Errorf("binance gateway requires api credentials")
	}
	client := futures.NewClient(final.APIKey, final.APISecret)
	client.BaseURL = final.RESTBaseURL
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	return &Gateway{cfg: final, client: client}, nil
}

func (g *Gateway) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	sym := toExchange(symbol)
	if sym == "" {
		return market.Quote{}, fmt.Errorf("invalid symbol: %s", symbol)
	}
	tickers, err := g.client.NewListBookTickersService().Symbol(sym).Do(ctx)
	if err != nil {
		return market.Quote{}, wrapAPIError(err)
	}
	for _, t := range tickers {
		if t == nil || !strings.EqualFold(t.Symbol, sym) {
			continue
		}
		bid := parseFloat(t.BidPrice)
		ask := parseFloat(t.AskPrice)
		if bid <= 0 && ask <= 0 {
			break
		}
		return market.Quote{
			Symbol:    symbolpkg.Normalize(symbol),
			Bid:       bid,
			Ask:       ask,
			UpdatedAt: time.Now(),
		}, nil
	}
	return market.Quote{}, &broker.NoDataError{Symbol: symbolpkg.Normalize(symbol)}
}

func (g *Gateway) GetBars(ctx context.Context, symbol, timeframe string, count int) ([]market.Bar, error) {
	sym := toExchange(symbol)
	if sym == "" {
		return nil, fmt.Errorf("invalid symbol: %s", symbol)
	}
	timeframe = strings.ToLower(strings.TrimSpace(timeframe))
	if timeframe == "" {
		return nil, fmt.Errorf("timeframe is required")
	}
	if count <= 0 {
		count = 100
	}
	if count > maxHistoryLimit {
		count = maxHistoryLimit
	}
	kls, err := g.client.NewKlinesService().Symbol(sym).Interval(timeframe).Limit(count).Do(ctx)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	out := make([]market.Bar, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Bar{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
		})
	}
	if dur, ok := scheduler.ParseIntervalDuration(timeframe); ok {
		out = market.DropUnclosedBar(out, dur)
	}
	if len(out) == 0 {
		return nil, &broker.NoDataError{Symbol: symbolpkg.Normalize(symbol)}
	}
	return out, nil
}

func (g *Gateway) GetOpenPositions(ctx context.Context) ([]broker.Position, error) {
	risks, err := g.client.NewGetPositionRiskService().Do(ctx)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	out := make([]broker.Position, 0, len(risks))
	for _, r := range risks {
		if r == nil {
			continue
		}
		amt := parseFloat(r.PositionAmt)
		if amt == 0 {
			continue
		}
		dir := broker.Long
		if amt < 0 {
			dir = broker.Short
			amt = -amt
		}
		pos := broker.Position{
			Ticket:       ticketFor(r.Symbol, r.PositionSide),
			Symbol:       strings.ToUpper(strings.TrimSpace(r.Symbol)),
			Direction:    dir,
			Volume:       amt,
			OpenPrice:    parseFloat(r.EntryPrice),
			CurrentPrice: parseFloat(r.MarkPrice),
			Profit:       parseFloat(r.UnRealizedProfit),
		}
		sl, tp, err := g.protectiveLevels(ctx, pos.Symbol)
		if err != nil {
			return nil, err
		}
		pos.StopLoss = sl
		pos.TakeProfit = tp
		out = append(out, pos)
	}
	return out, nil
}

func (g *Gateway) ModifyStopLevels(ctx context.Context, ticket string, stopLoss, takeProfit float64) error {
	sym, _ := splitTicket(ticket)
	if sym == "" {
		return fmt.Errorf("invalid ticket: %s", ticket)
	}
	risks, err := g.client.NewGetPositionRiskService().Symbol(sym).Do(ctx)
	if err != nil {
		return wrapAPIError(err)
	}
	var amt float64
	for _, r := range risks {
		if r == nil {
			continue
		}
		if v := parseFloat(r.PositionAmt); v != 0 {
			amt = v
			break
		}
	}
	if amt == 0 {
		return &broker.RejectError{Message: fmt.Sprintf("no open position for %s", sym)}
	}
	// Protective close orders sit opposite the position.
	side := futures.SideTypeSell
	if amt < 0 {
		side = futures.SideTypeBuy
	}
	if err := g.cancelProtectiveOrders(ctx, sym); err != nil {
		return err
	}
	if stopLoss > 0 {
		_, err := g.client.NewCreateOrderService().
			Symbol(sym).
			Side(side).
			Type(futures.OrderTypeStopMarket).
			StopPrice(formatPrice(stopLoss)).
			ClosePosition(true).
			WorkingType(futures.WorkingTypeMarkPrice).
			Do(ctx)
		if err != nil {
			return wrapAPIError(err)
		}
	}
	if takeProfit > 0 {
		_, err := g.client.NewCreateOrderService().
			Symbol(sym).
			Side(side).
			Type(futures.OrderTypeTakeProfitMarket).
			StopPrice(formatPrice(takeProfit)).
			ClosePosition(true).
			WorkingType(futures.WorkingTypeMarkPrice).
			Do(ctx)
		if err != nil {
			return wrapAPIError(err)
		}
	}
	return nil
}

// protectiveLevels reads the stop/take-profit off the open close-position
// orders, which is where the exchange keeps them.
func (g *Gateway) protectiveLevels(ctx context.Context, sym string) (stopLoss, takeProfit float64, err error) {
	orders, err := g.client.NewListOpenOrdersService().Symbol(sym).Do(ctx)
	if err != nil {
		return 0, 0, wrapAPIError(err)
	}
	for _, o := range orders {
		if o == nil || !o.ClosePosition {
			continue
		}
		switch o.Type {
		case futures.OrderTypeStopMarket:
			stopLoss = parseFloat(o.StopPrice)
		case futures.OrderTypeTakeProfitMarket:
			takeProfit = parseFloat(o.StopPrice)
		}
	}
	return stopLoss, takeProfit, nil
}

func (g *Gateway) cancelProtectiveOrders(ctx context.Context, sym string) error {
	orders, err := g.client.NewListOpenOrdersService().Symbol(sym).Do(ctx)
	if err != nil {
		return wrapAPIError(err)
	}
	for _, o := range orders {
		if o == nil || !o.ClosePosition {
			continue
		}
		if o.Type != futures.OrderTypeStopMarket && o.Type != futures.OrderTypeTakeProfitMarket {
			continue
		}
		if _, err := g.client.NewCancelOrderService().Symbol(sym).OrderID(o.OrderID).Do(ctx); err != nil {
			// Already-gone orders are fine; the replace proceeds.
			var apiErr *common.APIError
			if errors.As(err, &apiErr) && apiErr.Code == -2011 {
				continue
			}
			return wrapAPIError(err)
		}
	}
	return nil
}

func ticketFor(symbol, positionSide string) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "#" + strings.ToUpper(strings.TrimSpace(positionSide))
}

func splitTicket(ticket string) (symbol, positionSide string) {
	parts := strings.SplitN(strings.TrimSpace(ticket), "#", 2)
	symbol = strings.ToUpper(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		positionSide = strings.ToUpper(strings.TrimSpace(parts[1]))
	}
	return symbol, positionSide
}

// toExchange produces the compact upper-case form the exchange expects
// (ETH/USDT -> ETHUSDT).
func toExchange(symbol string) string {
	return symbolpkg.Normalize(symbol)
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func wrapAPIError(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return &broker.RejectError{Code: int(apiErr.Code), Message: apiErr.Message}
	}
	return err
}
