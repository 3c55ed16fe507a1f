package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/example/ride-service/internal/models"
)

// auditlog consumes ride status-transition events from Kafka and
// materializes a per-ride activity trail in Redis. The API process only
// writes the topic; this binary is the audit collaborator.

var (
	msgsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auditlog_messages_consumed_total",
		Help: "Total transition events consumed",
	})
	msgsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auditlog_messages_invalid_total",
		Help: "Total invalid messages received",
	})
	trailWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auditlog_trail_writes_total",
		Help: "Total successful trail writes",
	})
	trailErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auditlog_trail_errors_total",
		Help: "Total redis errors",
	})
)

func init() {
	prometheus.MustRegister(msgsConsumed, msgsInvalid, trailWrites, trailErrors)
}

// trailLimit bounds the per-ride history kept in Redis.
const trailLimit = 200

func main() {
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	brokers := []string{"localhost:9092"}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = brokers[:0]
		for _, b := range strings.Split(v, ",") {
			if s := strings.TrimSpace(b); s != "" {
				brokers = append(brokers, s)
			}
		}
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "ride-status-events"
	}
	group := os.Getenv("KAFKA_GROUP")
	if group == "" {
		group = "ride-service-auditlog"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rc := redis.NewClient(&redis.Options{Addr: redisAddr, Password: os.Getenv("REDIS_PASSWORD")})
	sink := &redisSink{c: rc}

	// metrics and health server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := rc.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis not ready", 503)
				return
			}
			w.WriteHeader(200)
			w.Write([]byte("ready"))
		})
		log.Printf("metrics/health listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, GroupID: group, MinBytes: 10e3, MaxBytes: 10e6})
	defer func() {
		_ = r.Close()
		_ = rc.Close()
	}()

	log.Printf("auditlog listening topic=%s brokers=%v group=%s", topic, brokers, group)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("shutting down auditlog")
				return
			}
			log.Printf("kafka read error: %v; backing off %s", err, backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		msgsConsumed.Inc()

		var ev models.TransitionEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.RideID == 0 {
			msgsInvalid.Inc()
			log.Printf("invalid message: %v", err)
			continue
		}

		if err := appendTrailWithRetry(ctx, sink, &ev, 3, 200*time.Millisecond); err != nil {
			trailErrors.Inc()
			log.Printf("trail write failed for ride=%d: %v", ev.RideID, err)
			continue
		}
		trailWrites.Inc()
	}
}

// TrailSink defines the small subset of redis operations we need for
// tests and production.
type TrailSink interface {
	Append(ctx context.Context, key string, entry []byte, limit int64) error
}

type redisSink struct{ c *redis.Client }

func (r *redisSink) Append(ctx context.Context, key string, entry []byte, limit int64) error {
	if err := r.c.LPush(ctx, key, entry).Err(); err != nil {
		return err
	}
	return r.c.LTrim(ctx, key, 0, limit-1).Err()
}

func trailKey(rideID int64) string { return fmt.Sprintf("audit:ride:%d", rideID) }

// appendTrailWithRetry writes one trail entry with retry/backoff.
func appendTrailWithRetry(ctx context.Context, sink TrailSink, ev *models.TransitionEvent, attempts int, delay time.Duration) error {
	entry, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	key := trailKey(ev.RideID)
	for i := 0; i < attempts; i++ {
		if err = sink.Append(ctx, key, entry, trailLimit); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
