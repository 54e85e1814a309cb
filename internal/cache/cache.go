// Package cache writes computed risk results into Redis and serves the
// non-blocking scans the query API needs over the cached keyspace.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/DimaJoyti/riskpulse/internal/models"
)

// scanRateLimit bounds how many SCAN round trips per second all keyspace
// walks through one Cache may issue together, so a large keyspace scan (at-risk, advisor
// filter, metrics summary) can't monopolize the Redis connection the
// pipeline's cache writes also depend on.
const scanRateLimit = 50

// ErrNotFound is returned when a portfolio has no cached risk result,
// either because it has never been processed or its TTL expired.
var ErrNotFound = errors.New("portfolio risk result not found")

const (
	portfolioKeyPrefix = "portfolio:"
	statsKeyPrefix     = "stats:"
	globalMetricsKey   = "global:metrics"
	scanBatchSize      = 200
	methodology        = "advanced_behavioral"
)

// Cache wraps a Redis client with the riskpulse key schema: one hash per
// portfolio (TTL'd), a per-portfolio calculation counter, and a global
// metrics hash.
type Cache struct {
	client      *redis.Client
	ttl         time.Duration
	scanLimiter *rate.Limiter
}

// New constructs a Cache from connection settings. addr is host:port.
func New(addr, password string, db int, ttlSeconds int) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{
		client:      client,
		ttl:         time.Duration(ttlSeconds) * time.Second,
		scanLimiter: rate.NewLimiter(rate.Limit(scanRateLimit), scanRateLimit),
	}
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health reports whether Redis is reachable.
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func portfolioKey(id string) string {
	return portfolioKeyPrefix + id
}

// WriteResult atomically writes a risk result's hash fields, resets its
// TTL, increments the per-portfolio and global calculation counters, and
// bumps global cumulative processing time and last_calculation, all in a
// single pipelined round trip so readers never observe a hash without its
// TTL applied.
func (c *Cache) WriteResult(ctx context.Context, result models.RiskResult) error {
	key := portfolioKey(result.PortfolioID)

	fields := map[string]interface{}{
		"portfolio_id":        result.PortfolioID,
		"advisor_id":          result.AdvisorID,
		"risk_number":         strconv.Itoa(result.RiskNumber),
		"var_95":              formatFloat(result.VaR95),
		"expected_return":     formatFloat(result.ExpectedReturn),
		"volatility":          formatFloat(result.Volatility),
		"sharpe_ratio":        formatFloat(result.SharpeRatio),
		"downside_percentage": formatFloat(result.DownsidePercentage),
		"portfolio_beta":      formatFloat(result.PortfolioBeta),
		"downside_capture":    formatFloat(result.DownsideCapture),
		"calculation_time_ms": formatFloat(result.CalculationTimeMs),
		"timestamp":           formatFloat(result.Timestamp),
		"methodology":         methodology,
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, c.ttl)
	pipe.Incr(ctx, statsKeyPrefix+result.PortfolioID)
	pipe.HIncrBy(ctx, globalMetricsKey, "total_calculations", 1)
	pipe.HIncrByFloat(ctx, globalMetricsKey, "total_processing_time_ms", result.CalculationTimeMs)
	pipe.HSet(ctx, globalMetricsKey, "last_calculation", formatFloat(result.Timestamp))

	_, err := pipe.Exec(ctx)
	return err
}

// GetResult fetches the cached risk result for a portfolio. Returns
// ErrNotFound if the key is absent (never calculated, or TTL expired).
func (c *Cache) GetResult(ctx context.Context, portfolioID string) (models.RiskResult, error) {
	fields, err := c.client.HGetAll(ctx, portfolioKey(portfolioID)).Result()
	if err != nil {
		return models.RiskResult{}, fmt.Errorf("reading portfolio %s: %w", portfolioID, err)
	}
	if len(fields) == 0 {
		return models.RiskResult{}, ErrNotFound
	}
	return parseResult(fields)
}

// CalculationCount returns the number of times a portfolio has been
// recalculated, backing the advisor endpoint's total_calculations field.
func (c *Cache) CalculationCount(ctx context.Context, portfolioID string) (int64, error) {
	n, err := c.client.Get(ctx, statsKeyPrefix+portfolioID).Int64()
	if errors.Is(err, redis.Nil) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// GlobalStats is the aggregate counters kept under global:metrics.
type GlobalStats struct {
	TotalCalculations     int64
	TotalProcessingTimeMs float64
	LastCalculation       float64
}

// GlobalMetrics reads the global:metrics hash.
func (c *Cache) GlobalMetrics(ctx context.Context) (GlobalStats, error) {
	fields, err := c.client.HGetAll(ctx, globalMetricsKey).Result()
	if err != nil {
		return GlobalStats{}, err
	}

	var stats GlobalStats
	if v, ok := fields["total_calculations"]; ok {
		stats.TotalCalculations, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields["total_processing_time_ms"]; ok {
		stats.TotalProcessingTimeMs, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := fields["last_calculation"]; ok {
		stats.LastCalculation, _ = strconv.ParseFloat(v, 64)
	}
	return stats, nil
}

// ScanAll iterates the full portfolio:* keyspace using a non-blocking SCAN
// cursor (never a blocking KEYS call) and passes every cached result to
// visit, once per result; keys that cannot be read or parsed are skipped.
// Returning an error from visit aborts the scan with that error.
func (c *Cache) ScanAll(ctx context.Context, visit func(models.RiskResult) error) error {
	var cursor uint64
	for {
		if err := c.scanLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiting scan: %w", err)
		}

		keys, next, err := c.client.Scan(ctx, cursor, portfolioKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("scanning portfolio keyspace: %w", err)
		}

		for _, key := range keys {
			fields, err := c.client.HGetAll(ctx, key).Result()
			if err != nil || len(fields) == 0 {
				continue
			}
			result, err := parseResult(fields)
			if err != nil {
				continue
			}
			if err := visit(result); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseResult(fields map[string]string) (models.RiskResult, error) {
	var r models.RiskResult
	var err error

	r.PortfolioID = fields["portfolio_id"]
	r.AdvisorID = fields["advisor_id"]

	if r.RiskNumber, err = strconv.Atoi(fields["risk_number"]); err != nil {
		return r, fmt.Errorf("parsing risk_number: %w", err)
	}
	r.VaR95, _ = strconv.ParseFloat(fields["var_95"], 64)
	r.ExpectedReturn, _ = strconv.ParseFloat(fields["expected_return"], 64)
	r.Volatility, _ = strconv.ParseFloat(fields["volatility"], 64)
	r.SharpeRatio, _ = strconv.ParseFloat(fields["sharpe_ratio"], 64)
	r.DownsidePercentage, _ = strconv.ParseFloat(fields["downside_percentage"], 64)
	r.PortfolioBeta, _ = strconv.ParseFloat(fields["portfolio_beta"], 64)
	r.DownsideCapture, _ = strconv.ParseFloat(fields["downside_capture"], 64)
	r.CalculationTimeMs, _ = strconv.ParseFloat(fields["calculation_time_ms"], 64)
	r.Timestamp, _ = strconv.ParseFloat(fields["timestamp"], 64)

	return r, nil
}
