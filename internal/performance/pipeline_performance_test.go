package performance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepulse/internal/analysis"
	"ridepulse/internal/app"
	"ridepulse/internal/config"
	"ridepulse/internal/dataprocessing"
	"ridepulse/internal/exporter"
	"ridepulse/internal/shared/testutil"
)

const (
	LoadTestDuration = 3 * time.Second
	MaxP95Latency    = 500 * time.Millisecond
	DatasetRows      = 20000
)

var ConcurrencyLevels = []int{1, 10, 50}

var vehicles = []string{"Auto", "Go Mini", "Go Sedan", "Bike", "Premier Sedan", "eBike", "Uber XL"}

// generateRides builds n bookings with a realistic status mix and some
// missing cells so imputation has work to do.
func generateRides(n int) []testutil.Ride {
	rides := make([]testutil.Ride, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("CNR%07d", i)
		date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i%90).Format(dataprocessing.DateLayout)
		clock := fmt.Sprintf("%02d:%02d:00", i%24, i%60)
		vehicle := vehicles[i%len(vehicles)]

		switch i % 10 {
		case 0, 1:
			rides = append(rides, testutil.Ride{
				Date: date, Time: clock, BookingID: id, Status: "Cancelled by Driver",
				CustomerID: "CID" + id, VehicleType: vehicle, Pickup: "Saket", Drop: "Jhilmil",
				AvgVTAT: "9.0", CancelledByDriver: "1", DriverCancelReason: "Personal & Car related issues",
			})
		case 2:
			rides = append(rides, testutil.Ride{
				Date: date, Time: clock, BookingID: id, Status: "No Driver Found",
				CustomerID: "CID" + id, VehicleType: vehicle, Pickup: "Dwarka Mor", Drop: "Saket",
			})
		default:
			ride := testutil.CompletedRide(id, date, clock, vehicle,
				fmt.Sprintf("%d", 100+i%900), fmt.Sprintf("%.1f", 1+float64(i%400)/10))
			if i%17 == 0 {
				ride.DriverRating = ""
			}
			rides = append(rides, ride)
		}
	}
	return rides
}

func writeDataset(tb testing.TB, n int) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "rides.csv")
	require.NoError(tb, os.WriteFile(path, []byte(testutil.RideCSV(generateRides(n)...)), 0o644))
	return path
}

func reportOptions() analysis.ReportOptions {
	cfg := config.Default().Analysis
	return analysis.ReportOptions{
		Alpha:         cfg.Alpha,
		HistogramBins: cfg.HistogramBins,
		SampleRows:    cfg.SampleRows,
		TopN:          cfg.TopN,
	}
}

// BenchmarkPrepare measures reading, normalizing and imputing the file.
func BenchmarkPrepare(b *testing.B) {
	path := writeDataset(b, DatasetRows)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snapshot, err := dataprocessing.Prepare(ctx, path)
		if err != nil {
			b.Fatal(err)
		}
		if snapshot.Clean.Len() != DatasetRows {
			b.Fatalf("got %d rows", snapshot.Clean.Len())
		}
	}
}

// BenchmarkClean measures the cleaning stage alone on an already parsed table.
func BenchmarkClean(b *testing.B) {
	raw, err := dataprocessing.Read(context.Background(),
		strings.NewReader(testutil.RideCSV(generateRides(DatasetRows)...)))
	require.NoError(b, err)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dataprocessing.Clean(raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildReport(b *testing.B) {
	snapshot, err := dataprocessing.Prepare(context.Background(), writeDataset(b, DatasetRows))
	require.NoError(b, err)
	opts := reportOptions()

	all := analysis.DefaultPredicate(snapshot.Clean)
	vehicle := all
	vehicle.Vehicles = []string{"Auto", "Bike"}
	date := all
	date.From, date.To = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	nothing := all
	nothing.Vehicles = []string{}

	predicates := map[string]analysis.Predicate{
		"all":     all,
		"vehicle": vehicle,
		"date":    date,
		"nothing": nothing,
	}
	for name, p := range predicates {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				analysis.BuildReport(snapshot.Clean, p, opts)
			}
		})
	}
}

func BenchmarkExport(b *testing.B) {
	snapshot, err := dataprocessing.Prepare(context.Background(), writeDataset(b, DatasetRows))
	require.NoError(b, err)

	for _, format := range []exporter.Format{exporter.FormatCSV, exporter.FormatXLSX} {
		b.Run(string(format), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := exporter.Export(io.Discard, format, snapshot.Clean, exporter.Options{BOMPrefix: true}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// LoadTestResults summarizes one load test run.
type LoadTestResults struct {
	TotalRequests      int64
	SuccessfulRequests int64
	ErrorCount         int64
	Throughput         float64
	AverageLatency     time.Duration
	P95Latency         time.Duration
	MaxLatency         time.Duration
}

// runLoadTest hits url from concurrency workers until duration elapses.
func runLoadTest(t *testing.T, url string, concurrency int, duration time.Duration) LoadTestResults {
	t.Helper()
	var (
		wg                sync.WaitGroup
		total, ok, failed int64
		mu                sync.Mutex
	)
	latencies := make([]time.Duration, 0, 10000)

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()
	client := &http.Client{Timeout: 30 * time.Second}
	start := time.Now()

	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				requestStart := time.Now()
				resp, err := client.Get(url)
				latency := time.Since(requestStart)

				mu.Lock()
				if len(latencies) < cap(latencies) {
					latencies = append(latencies, latency)
				}
				mu.Unlock()
				atomic.AddInt64(&total, 1)

				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode < 400 {
					atomic.AddInt64(&ok, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	results := LoadTestResults{
		TotalRequests:      total,
		SuccessfulRequests: ok,
		ErrorCount:         failed,
		Throughput:         float64(total) / elapsed.Seconds(),
	}
	if len(latencies) == 0 {
		return results
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	results.AverageLatency = sum / time.Duration(len(latencies))
	p95 := int(float64(len(latencies)) * 0.95)
	if p95 >= len(latencies) {
		p95 = len(latencies) - 1
	}
	results.P95Latency = latencies[p95]
	results.MaxLatency = latencies[len(latencies)-1]
	return results
}

func newLoadServer(t *testing.T, rows int) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Dataset.Path = writeDataset(t, rows)
	cfg.Dataset.WatchInterval = 0
	cfg.Security.RateLimit.Enabled = false

	logger, _ := testutil.NewTestLogger(t)
	application, err := app.NewApplicationWithConfig(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(application.WebSocketHub.Stop)

	_, err = application.Dashboard.Snapshot(context.Background())
	require.NoError(t, err)

	server := httptest.NewServer(application.Router)
	t.Cleanup(server.Close)
	return server
}

func TestLoadReportEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	server := newLoadServer(t, 5000)

	for _, concurrency := range ConcurrencyLevels {
		t.Run(fmt.Sprintf("concurrency_%d", concurrency), func(t *testing.T) {
			results := runLoadTest(t, server.URL+"/api/analysis/report?vehicle=Auto", concurrency, LoadTestDuration)

			t.Logf("requests=%d ok=%d errors=%d throughput=%.1f/s avg=%v p95=%v max=%v",
				results.TotalRequests, results.SuccessfulRequests, results.ErrorCount,
				results.Throughput, results.AverageLatency, results.P95Latency, results.MaxLatency)

			assert.Positive(t, results.TotalRequests)
			assert.Zero(t, results.ErrorCount)
			assert.Less(t, results.P95Latency, MaxP95Latency*time.Duration(concurrency))
		})
	}
}

// TestConcurrentReloadsUnderLoad reloads the dataset while readers query it.
// Every read must see a complete snapshot.
func TestConcurrentReloadsUnderLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	server := newLoadServer(t, 2000)

	var wg sync.WaitGroup
	var failures int64
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				resp, err := http.Get(server.URL + "/api/analysis/kpis")
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&failures, 1)
				}
			}
		}()
	}

	for i := 0; i < 5; i++ {
		resp, err := http.Post(server.URL+"/api/dataset/reload", "application/json",
			strings.NewReader(`{"trigger":"load-test"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	close(stop)
	wg.Wait()

	assert.Zero(t, atomic.LoadInt64(&failures))
}

// TestMemoryUsageUnderLoad bounds the heap growth of repeated reports.
func TestMemoryUsageUnderLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping memory test in short mode")
	}
	snapshot, err := dataprocessing.Prepare(context.Background(), writeDataset(t, DatasetRows))
	require.NoError(t, err)
	opts := reportOptions()
	p := analysis.DefaultPredicate(snapshot.Clean)
	p.Vehicles = vehicles[:2]
	require.NotZero(t, analysis.Apply(snapshot.Clean, p).Len())

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	for i := 0; i < 50; i++ {
		analysis.BuildReport(snapshot.Clean, p, opts)
	}

	runtime.GC()
	runtime.ReadMemStats(&after)
	growth := int64(after.HeapAlloc) - int64(before.HeapAlloc)
	t.Logf("heap growth after 50 reports: %d bytes", growth)
	assert.Less(t, growth, int64(50<<20))
}
