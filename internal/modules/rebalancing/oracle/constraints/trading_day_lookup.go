package constraints

import (
	"embed"
	"encoding/json"
	"time"
)

//go:embed data/holidays.json
var tradingDayData embed.FS

// TradingDayLookup answers "what is the nearest trading day on or before
// this calendar date", the single operation HoldingTimeValidator needs from
// original_source/oracle/src/service/constraints/holding_time/trading_day_lookup.py's
// richer date/nearest/forward/backward table. Grounded on pkg/embedded/embedded.go's
// go:embed pattern for bundling a static data file into the binary.
type TradingDayLookup interface {
	NearestPriorTradingDay(d time.Time) time.Time
}

// usMarketHolidays implements TradingDayLookup against an embedded list of
// NYSE holiday dates; every other weekday is treated as a trading day. This
// expresses the same weekday-plus-holiday-exclusion calendar the original's
// pandas bdate_range-derived table encodes, without requiring a
// pre-computed multi-year row per calendar date.
type usMarketHolidays struct {
	holidays map[string]bool
}

// NewTradingDayLookup loads the embedded holiday table and returns a ready
// TradingDayLookup.
func NewTradingDayLookup() (TradingDayLookup, error) {
	raw, err := tradingDayData.ReadFile("data/holidays.json")
	if err != nil {
		return nil, err
	}
	var dates []string
	if err := json.Unmarshal(raw, &dates); err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return &usMarketHolidays{holidays: set}, nil
}

func (u *usMarketHolidays) isTradingDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !u.holidays[d.Format("2006-01-02")]
}

// NearestPriorTradingDay returns d itself if it is a trading day, otherwise
// walks backward until it finds one — the same "date if a trading day,
// else backward_trading_day" rule the original's _calculate_before_date
// applies.
func (u *usMarketHolidays) NearestPriorTradingDay(d time.Time) time.Time {
	cur := d
	for i := 0; i < 14; i++ { // a two-week walk-back comfortably clears any holiday cluster
		if u.isTradingDay(cur) {
			return cur
		}
		cur = cur.AddDate(0, 0, -1)
	}
	return cur
}
