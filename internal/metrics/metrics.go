// Package metrics 提供Prometheus监控指标
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 指标名称
const (
	HTTPRequestsTotal    = "shiftsat_http_requests_total"
	HTTPRequestDuration  = "shiftsat_http_request_duration_seconds"
	RunsTotal            = "shiftsat_runs_total"
	RunDuration          = "shiftsat_run_duration_seconds"
	SolverCallsTotal     = "shiftsat_solver_calls_total"
	ConstraintViolations = "shiftsat_constraint_violations_total"
	ActiveRuns           = "shiftsat_active_runs"
	UnwantedAssigned     = "shiftsat_unwanted_assigned"
	LoadGini             = "shiftsat_load_gini"
	ArchivedReportsGauge = "shiftsat_archived_reports"
)

// Registry 指标注册表
type Registry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

var (
	registry *Registry
	once     sync.Once
)

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

// GetRegistry 获取全局注册表
func GetRegistry() *Registry {
	once.Do(func() {
		registry = NewRegistry()
		registerDefaults(registry)
	})
	return registry
}

// registerDefaults 注册默认指标
func registerDefaults(r *Registry) {
	r.NewCounter(HTTPRequestsTotal, "HTTP请求总数", []string{"method", "path", "status"})
	r.NewHistogram(HTTPRequestDuration, "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0})

	// 排班运行，status 为求解状态或错误码
	r.NewCounter(RunsTotal, "排班运行次数", []string{"status"})
	r.NewHistogram(RunDuration, "排班运行耗时",
		[]string{"status"},
		[]float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0})
	r.NewCounter(SolverCallsTotal, "SAT 求解调用次数", []string{"solver"})
	r.NewCounter(ConstraintViolations, "复核发现的约束违反次数", []string{"constraint_type"})

	r.NewGauge(ActiveRuns, "当前进行中的排班运行数", []string{})
	r.NewGauge(UnwantedAssigned, "最近一次排班的不希望分配数", []string{})
	r.NewGauge(LoadGini, "最近一次排班的负荷基尼系数", []string{})
	r.NewGauge(ArchivedReportsGauge, "已归档报告数", []string{"store"})
}

// NewCounter 创建计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counter := &Counter{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.counters[name] = counter
	return counter
}

// NewGauge 创建仪表盘
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge := &Gauge{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.gauges[name] = gauge
	return gauge
}

// NewHistogram 创建直方图
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	histogram := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = histogram
	return histogram
}

// GetCounter 获取计数器
func (r *Registry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *Registry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *Registry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 返回当前值
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Inc 增加
func (g *Gauge) Inc(labelValues ...string) {
	g.Add(1, labelValues...)
}

// Dec 减少
func (g *Gauge) Dec(labelValues ...string) {
	g.Add(-1, labelValues...)
}

// Add 增加指定值
func (g *Gauge) Add(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] += value
}

// Value 返回当前值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}

	// 只记入第一个满足的桶，输出时累加
	idx := sort.SearchFloat64s(h.Buckets, value)
	h.counts[key][idx]++
	h.sums[key] += value
}

// Count 返回观测次数
func (h *Histogram) Count(labelValues ...string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, c := range h.counts[labelKey(labelValues)] {
		total += c
	}
	return total
}

// labelKey 生成标签键
func labelKey(labels []string) string {
	return strings.Join(labels, ",")
}

// sortedKeys 返回排序后的键，保证输出稳定
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteTo 以 Prometheus 文本格式输出全部指标
func (r *Registry) WriteTo(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.counters) {
		counter := r.counters[name]
		fmt.Fprintf(w, "# HELP %s %s\n", counter.Name, counter.Help)
		fmt.Fprintf(w, "# TYPE %s counter\n", counter.Name)

		counter.mu.RLock()
		for _, key := range sortedKeys(counter.values) {
			fmt.Fprintf(w, "%s%s %g\n", counter.Name, braces(counter.Labels, key, ""), counter.values[key])
		}
		counter.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.gauges) {
		gauge := r.gauges[name]
		fmt.Fprintf(w, "# HELP %s %s\n", gauge.Name, gauge.Help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", gauge.Name)

		gauge.mu.RLock()
		for _, key := range sortedKeys(gauge.values) {
			fmt.Fprintf(w, "%s%s %g\n", gauge.Name, braces(gauge.Labels, key, ""), gauge.values[key])
		}
		gauge.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.histograms) {
		histogram := r.histograms[name]
		fmt.Fprintf(w, "# HELP %s %s\n", histogram.Name, histogram.Help)
		fmt.Fprintf(w, "# TYPE %s histogram\n", histogram.Name)

		histogram.mu.RLock()
		for _, key := range sortedKeys(histogram.counts) {
			counts := histogram.counts[key]
			cumulative := 0
			for i, bucket := range histogram.Buckets {
				cumulative += counts[i]
				le := fmt.Sprintf("le=\"%g\"", bucket)
				fmt.Fprintf(w, "%s_bucket%s %d\n", histogram.Name, braces(histogram.Labels, key, le), cumulative)
			}
			cumulative += counts[len(histogram.Buckets)]
			fmt.Fprintf(w, "%s_bucket%s %d\n", histogram.Name, braces(histogram.Labels, key, "le=\"+Inf\""), cumulative)
			fmt.Fprintf(w, "%s_sum%s %g\n", histogram.Name, braces(histogram.Labels, key, ""), histogram.sums[key])
			fmt.Fprintf(w, "%s_count%s %d\n", histogram.Name, braces(histogram.Labels, key, ""), cumulative)
		}
		histogram.mu.RUnlock()
	}
}

// braces 拼接标签，无标签时返回空串
func braces(names []string, key, extra string) string {
	parts := formatLabels(names, key)
	if extra != "" {
		parts = append(parts, extra)
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// formatLabels 格式化标签
func formatLabels(names []string, key string) []string {
	if len(names) == 0 {
		return nil
	}
	vals := strings.Split(key, ",")
	out := make([]string, len(names))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		out[i] = fmt.Sprintf("%s=%q", name, val)
	}
	return out
}

// Handler 返回Prometheus格式的指标HTTP处理器
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		GetRegistry().WriteTo(w)
	})
}

// RecordRequestMetrics 记录请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	registry := GetRegistry()
	registry.GetCounter(HTTPRequestsTotal).Inc(method, path, strconv.Itoa(status))
	registry.GetHistogram(HTTPRequestDuration).Observe(duration.Seconds(), method, path)
}

// RecordRun 记录一次排班运行
func RecordRun(status string, duration time.Duration) {
	registry := GetRegistry()
	registry.GetCounter(RunsTotal).Inc(status)
	registry.GetHistogram(RunDuration).Observe(duration.Seconds(), status)
}

// RecordSolverCalls 记录求解调用次数
func RecordSolverCalls(solver string, calls int) {
	GetRegistry().GetCounter(SolverCallsTotal).Add(float64(calls), solver)
}

// RecordConstraintViolation 记录约束违反
func RecordConstraintViolation(constraintType string) {
	GetRegistry().GetCounter(ConstraintViolations).Inc(constraintType)
}

// TrackActiveRun 活动运行数加一，返回的函数减一
func TrackActiveRun() func() {
	gauge := GetRegistry().GetGauge(ActiveRuns)
	gauge.Inc()
	return func() { gauge.Dec() }
}

// SetScheduleQuality 记录最近一次排班的质量
func SetScheduleQuality(unwanted int, gini float64) {
	registry := GetRegistry()
	registry.GetGauge(UnwantedAssigned).Set(float64(unwanted))
	registry.GetGauge(LoadGini).Set(gini)
}

// SetArchivedReports 设置已归档报告数
func SetArchivedReports(store string, n int) {
	GetRegistry().GetGauge(ArchivedReportsGauge).Set(float64(n), store)
}
