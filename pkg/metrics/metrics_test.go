package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "hoopmatch")
				So(manager.subsystem, ShouldEqual, "career")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.refreshInterval, ShouldEqual, time.Second)
			})

			Convey("And metrics should be registered under the namespace", func() {
				manager.datasetLoads.WithLabelValues(OutcomeSuccess).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_dataset_loads_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsOptionsValidation(t *testing.T) {
	Convey("Given invalid option values", t, func() {
		manager := NewManager(
			WithNamespace(""),
			WithSubsystem(""),
			WithHistogramBuckets(nil),
			WithRefreshInterval(-time.Second),
			WithPrometheusRegistry(prometheus.NewRegistry()),
		)

		Convey("Then defaults should be kept", func() {
			So(manager.namespace, ShouldEqual, "hoopmatch")
			So(manager.subsystem, ShouldEqual, "career")
			So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording dataset loads", func() {
			before := testutil.ToFloat64(globalManager.datasetLoads.WithLabelValues(OutcomeFailure))
			RecordDatasetLoad(OutcomeFailure, 12.5)
			UpdateDatasetShape(450, 19, 2)

			Convey("Then counters and gauges should reflect them", func() {
				So(testutil.ToFloat64(globalManager.datasetLoads.WithLabelValues(OutcomeFailure)), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.datasetRows), ShouldEqual, 450)
				So(testutil.ToFloat64(globalManager.datasetColumns), ShouldEqual, 19)
				So(testutil.ToFloat64(globalManager.datasetSkippedRows), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.datasetLoadedUnix), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When recording similarity queries", func() {
			same := testutil.ToFloat64(globalManager.similarityQueries.WithLabelValues("true"))
			empty := testutil.ToFloat64(globalManager.similarityEmpty)
			RecordSimilarityQuery(true, true, 0.3)
			RecordSimilarityQuery(false, false, 0.2)

			Convey("Then the position label and empty counter should be updated", func() {
				So(testutil.ToFloat64(globalManager.similarityQueries.WithLabelValues("true")), ShouldEqual, same+1)
				So(testutil.ToFloat64(globalManager.similarityEmpty), ShouldEqual, empty+1)
			})
		})

		Convey("When recording HTTP, error and MCP metrics", func() {
			So(func() {
				RecordHTTPRequest("/similar", "GET", "200")
				RecordHTTPRequestDuration("/similar", "GET", "200", 1.5)
				RecordErrorByComponent("service", "load")
				RecordErrorByEndpoint("/similar", "GET", "validation")
				RecordMCPToolCall("find_similar_players", OutcomeSuccess)
				RecordRepositoryQueryLatency(0.01)
			}, ShouldNotPanic)

			So(testutil.ToFloat64(globalManager.mcpToolCalls.WithLabelValues("find_similar_players", OutcomeSuccess)), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("When sampling runtime figures", func() {
			CollectRuntime()

			Convey("Then memory and goroutine gauges should be set", func() {
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the runtime collector is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				RunRuntimeCollector(ctx)
				close(done)
			}()
			cancel()

			Convey("Then it should return", func() {
				select {
				case <-done:
					So(true, ShouldBeTrue)
				case <-time.After(time.Second):
					So("collector did not stop", ShouldBeEmpty)
				}
			})
		})

		Convey("Then the registry should be the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordSimilarityQuery(j%2 == 0, false, 0.1)
					RecordHTTPRequest("/summary", "GET", "200")
				}
			}()
		}
		wg.Wait()

		Convey("Then no recording should panic", func() {
			So(true, ShouldBeTrue)
		})
	})
}
