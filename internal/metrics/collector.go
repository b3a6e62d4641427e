// Package metrics exposes database-derived gauges and request metrics on an
// injected Prometheus registry.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/pkg/logger"
)

const (
	namespace    = "styleswipe"
	unknownLabel = "unknown"
	queryTimeout = 5 * time.Second
)

// genders are always exported so dashboards see zero series
var genders = []string{"male", "female", "non-binary", "other", unknownLabel}

var (
	usersTotal      = desc("users_total", "Total number of registered users")
	usersByGender   = desc("users_by_gender", "Number of users by gender preference", "gender")
	usersBySize     = desc("users_by_size", "Number of users by clothing size", "size")
	productsTotal   = desc("products_total", "Total number of products in the database")
	productsByType  = desc("products_by_type", "Number of products by clothing type", "clothing_type")
	swipesTotal     = desc("swipes_total", "Total swipes by action", "action")
	likesTotal      = desc("likes_total", "Total number of likes")
	dislikesTotal   = desc("dislikes_total", "Total number of dislikes")
	clicksTotal     = desc("clicks_total", "Total product link clicks")
	clicksByType    = desc("clicks_by_product_type", "Product link clicks by clothing type", "clothing_type")
	ctrByType       = desc("ctr_by_product_type", "Click-through rate (clicks / likes * 100) by clothing type", "clothing_type")
	stylePopularity = desc("style_popularity", "Number of users who selected each style", "style")
)

var allDescriptors = []*prometheus.Desc{
	usersTotal, usersByGender, usersBySize, productsTotal, productsByType, swipesTotal,
	likesTotal, dislikesTotal, clicksTotal, clicksByType, ctrByType, stylePopularity,
}

func desc(name, help string, labels ...string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
}

// Collector queries the database on every scrape. A failing query is
// logged and its metrics are left out of that scrape.
type Collector struct {
	stats   domain.StatsRepository
	timeout time.Duration
}

func NewCollector(stats domain.StatsRepository) *Collector {
	return &Collector{stats: stats, timeout: queryTimeout}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range allDescriptors {
		ch <- d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	if n, err := c.stats.CountUsers(ctx); c.ok(ctx, "users", err) {
		gauge(usersTotal, float64(n))
	}

	if rows, err := c.stats.CountUsersByGender(ctx); c.ok(ctx, "users_by_gender", err) {
		counts := byLabel(rows)
		for _, g := range genders {
			gauge(usersByGender, float64(counts[g]), g)
			delete(counts, g)
		}
		for label, n := range counts {
			gauge(usersByGender, float64(n), label)
		}
	}

	if rows, err := c.stats.CountUsersBySize(ctx); c.ok(ctx, "users_by_size", err) {
		for label, n := range byLabel(rows) {
			gauge(usersBySize, float64(n), label)
		}
	}

	if n, err := c.stats.CountProducts(ctx); c.ok(ctx, "products", err) {
		gauge(productsTotal, float64(n))
	}

	if rows, err := c.stats.CountProductsByType(ctx); c.ok(ctx, "products_by_type", err) {
		for label, n := range byLabel(rows) {
			gauge(productsByType, float64(n), label)
		}
	}

	likes, errLikes := c.stats.CountSwipes(ctx, true)
	dislikes, errDislikes := c.stats.CountSwipes(ctx, false)
	if c.ok(ctx, "swipes_liked", errLikes) && c.ok(ctx, "swipes_disliked", errDislikes) {
		gauge(swipesTotal, float64(likes), "liked")
		gauge(swipesTotal, float64(dislikes), "disliked")
		gauge(likesTotal, float64(likes))
		gauge(dislikesTotal, float64(dislikes))
	}

	if n, err := c.stats.CountClicks(ctx); c.ok(ctx, "clicks", err) {
		gauge(clicksTotal, float64(n))
	}

	clickRows, errClicks := c.stats.CountClicksByType(ctx)
	clicks := byLabel(clickRows)
	if c.ok(ctx, "clicks_by_type", errClicks) {
		for label, n := range clicks {
			gauge(clicksByType, float64(n), label)
		}
	}

	if likedRows, err := c.stats.CountLikedByType(ctx); c.ok(ctx, "liked_by_type", err) && errClicks == nil {
		liked := byLabel(likedRows)
		for label, rate := range clickThroughRates(clicks, liked) {
			gauge(ctrByType, rate, label)
		}
	}

	if styles, err := c.stats.ListStyles(ctx); c.ok(ctx, "styles", err) {
		for style, n := range styleCounts(styles) {
			gauge(stylePopularity, float64(n), style)
		}
	}
}

func (c *Collector) ok(ctx context.Context, query string, err error) bool {
	if err != nil {
		logger.Error(ctx).Err(err).Str("query", query).Msg("Metrics query failed")
		return false
	}
	return true
}

// byLabel folds NULL and empty labels into "unknown"
func byLabel(rows []domain.LabelCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		label := unknownLabel
		if r.Label != nil && *r.Label != "" {
			label = *r.Label
		}
		out[label] += r.Count
	}
	return out
}

func clickThroughRates(clicks, likes map[string]int64) map[string]float64 {
	out := make(map[string]float64)
	for label := range likes {
		out[label] = 0
	}
	for label := range clicks {
		out[label] = 0
	}
	for label := range out {
		if l := likes[label]; l > 0 {
			out[label] = float64(clicks[label]) / float64(l) * 100
		}
	}
	return out
}

func styleCounts(prefs [][]string) map[string]int64 {
	out := make(map[string]int64)
	for _, styles := range prefs {
		for _, s := range styles {
			if s != "" {
				out[s]++
			}
		}
	}
	return out
}

// NewRegistry returns a registry with the runtime collectors and the
// database collector.
func NewRegistry(stats domain.StatsRepository) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewCollector(stats),
	)
	return reg
}
