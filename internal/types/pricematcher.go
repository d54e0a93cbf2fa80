package types

import "time"

// DiscountStrategy selects which guardrails gate promotion of a staged match
type DiscountStrategy string

const (
	StrategyMargin   DiscountStrategy = "margin"
	StrategyDiscount DiscountStrategy = "discount"
	StrategyBoth     DiscountStrategy = "both"
)

// Valid reports whether s is a known strategy
func (s DiscountStrategy) Valid() bool {
	switch s {
	case StrategyMargin, StrategyDiscount, StrategyBoth:
		return true
	}
	return false
}

// MaxDiscountBehavior decides what happens when a candidate exceeds the discount cap
type MaxDiscountBehavior string

const (
	BehaviorSkip    MaxDiscountBehavior = "skip"
	BehaviorPartial MaxDiscountBehavior = "partial"
)

// OperationType identifies a statistics row
type OperationType string

const (
	OperationDownload OperationType = "download"
	OperationCompare  OperationType = "compare"
	OperationUpdate   OperationType = "update"
	OperationClean    OperationType = "clean"
)

// Initiator records who triggered a run
type Initiator string

const (
	InitiatorManual Initiator = "manual"
	InitiatorCron   Initiator = "cron"
)

// Competitor is a tracked price source. Override values are nil when unset.
type Competitor struct {
	ID                       int64     `json:"id"`
	Name                     string    `json:"name"`
	URL                      string    `json:"url"`
	Active                   bool      `json:"active"`
	CronDownload             bool      `json:"cronDownload"`
	CronCompare              bool      `json:"cronCompare"`
	CronUpdate               bool      `json:"cronUpdate"`
	OverrideDiscountSettings bool      `json:"overrideDiscountSettings"`
	DiscountStrategy         *string   `json:"discountStrategy,omitempty"`
	MinMarginPercent         *float64  `json:"minMarginPercent,omitempty"`
	MaxDiscountPercent       *float64  `json:"maxDiscountPercent,omitempty"`
	PriceUnderbid            *float64  `json:"priceUnderbid,omitempty"`
	MinPriceThreshold        *float64  `json:"minPriceThreshold,omitempty"`
	DiscountDaysValid        *int      `json:"discountDaysValid,omitempty"`
	DateAdd                  time.Time `json:"dateAdd"`
	DateUpd                  time.Time `json:"dateUpd"`
}

// Product is the catalog view the matcher needs
type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Reference      string  `json:"reference"`
	EAN13          string  `json:"ean13"`
	Price          float64 `json:"price"`
	WholesalePrice float64 `json:"wholesalePrice"`
	ManufacturerID int64   `json:"manufacturerId"`
	CategoryIDs    []int64 `json:"categoryIds"`
	Active         bool    `json:"active"`
}

// PriceMatch is a staged candidate discount keyed by (ProductID, CompetitorID)
type PriceMatch struct {
	ProductID       int64     `json:"productId"`
	CompetitorID    int64     `json:"competitorId"`
	ManufacturerID  int64     `json:"manufacturerId"`
	Reference       string    `json:"reference"`
	EAN13           string    `json:"ean13"`
	WholesalePrice  float64   `json:"wholesalePrice"`
	CurrentPrice    float64   `json:"currentPrice"`
	CurrentMargin   float64   `json:"currentMargin"`
	CompetitorPrice float64   `json:"competitorPrice"`
	NewPrice        float64   `json:"newPrice"`
	NewMargin       float64   `json:"newMargin"`
	DiscountPercent float64   `json:"discountPercent"`
	LastUpdate      time.Time `json:"lastUpdate"`
	PriceFile       string    `json:"priceFile"`
	URL             string    `json:"url"`
}

// ActiveDiscount tracks a live specific price created for a competitor
type ActiveDiscount struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"productId"`
	CompetitorID    int64     `json:"competitorId"`
	SpecificPriceID int64     `json:"specificPriceId"`
	RegularPrice    float64   `json:"regularPrice"`
	DiscountPrice   float64   `json:"discountPrice"`
	CompetitorPrice float64   `json:"competitorPrice"`
	DiscountPercent float64   `json:"discountPercent"`
	MarginPercent   float64   `json:"marginPercent"`
	DateAdd         time.Time `json:"dateAdd"`
	DateExpiration  time.Time `json:"dateExpiration"`
}

// SpecificPrice is a fixed-price override in the shop's discount table
type SpecificPrice struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	ShopID    int64     `json:"shopId"`
	GroupID   int64     `json:"groupId"`
	Price     float64   `json:"price"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
}

// OperationRecord is one append-only statistics row
type OperationRecord struct {
	ID            int64         `json:"id"`
	RunID         string        `json:"runId"`
	CompetitorID  *int64        `json:"competitorId,omitempty"`
	Competitor    string        `json:"competitor,omitempty"`
	Operation     OperationType `json:"operation"`
	TotalProducts int           `json:"totalProducts"`
	SuccessCount  int           `json:"successCount"`
	ErrorCount    int           `json:"errorCount"`
	SkippedCount  int           `json:"skippedCount"`
	ExecutionTime time.Duration `json:"executionTime"`
	ExecutionDate time.Time     `json:"executionDate"`
	InitiatedBy   Initiator     `json:"initiatedBy"`
}

// FeedRow is one parsed competitor feed line
type FeedRow struct {
	SKU             string  `json:"sku"`
	EAN             string  `json:"ean"`
	CompetitorPrice float64 `json:"competitorPrice"`
	URL             string  `json:"url"`
	RowNumber       int     `json:"rowNumber"`
	// PriceErr is set when the price column could not be parsed
	PriceErr error `json:"-"`
}

// ActiveDiscountView is an active discount enriched for listing
type ActiveDiscountView struct {
	ActiveDiscount
	ProductName    string `json:"productName"`
	Reference      string `json:"reference"`
	CompetitorName string `json:"competitorName"`
	DaysLeft       int    `json:"daysLeft"`
}

// OperationSummary aggregates statistics rows per operation and competitor
type OperationSummary struct {
	CompetitorID   *int64        `json:"competitorId,omitempty"`
	CompetitorName string        `json:"competitorName,omitempty"`
	Operation      OperationType `json:"operation"`
	Runs           int           `json:"runs"`
	TotalProducts  int           `json:"totalProducts"`
	SuccessCount   int           `json:"successCount"`
	ErrorCount     int           `json:"errorCount"`
	SkippedCount   int           `json:"skippedCount"`
	TotalTime      time.Duration `json:"totalTime"`
	LastRun        time.Time     `json:"lastRun"`
}
