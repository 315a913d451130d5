// cmd/compliance-service/main.go
package main

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"label-compliance/internal/common/aws"
	"label-compliance/internal/common/cache"
	"label-compliance/internal/common/camunda"
	"label-compliance/internal/common/config"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/common/observability"
	"label-compliance/internal/httpserver"

	bvq "label-compliance/internal/workers/compliance/build-validation-query"
	elt "label-compliance/internal/workers/compliance/extract-label-text"
	gcr "label-compliance/internal/workers/compliance/generate-report"
	plf "label-compliance/internal/workers/compliance/parse-label-facts"
	qr "label-compliance/internal/workers/compliance/query-regulations"
	rp "label-compliance/internal/workers/compliance/run-pipeline"
	vc "label-compliance/internal/workers/compliance/validate-compliance"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting compliance service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	traceOpts, err := observability.TraceOptions(cfg.Tracing.Exporter, log)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	obs, err := observability.New(cfg.App.Name, traceOpts...)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := map[string]httpserver.ReadinessCheck{}

	// --- Redis answer cache (optional) ---
	var answerCache qr.AnswerCache
	if cfg.Redis.Enabled {
		redis := cache.NewRedis(cfg.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		answerCache = redis
		readiness["redis"] = redis.Ping
		zapLog.Info("Redis connected successfully")
	}

	// --- Verdict notifications (optional) ---
	var notifier rp.VerdictNotifier
	if sns := cfg.Notifications.SNS; sns.Enabled {
		n, err := aws.NewVerdictNotifierFromRegion(ctx, sns.Region, sns.TopicARN)
		if err != nil {
			zapLog.Fatal("sns notifier init failed", zap.Error(err))
		}
		notifier = n
		zapLog.Info("SNS verdict notifications enabled", zap.String("topicArn", sns.TopicARN))
	}

	// --- Stage handlers ---
	factsCfg := plf.LoadConfig(cfg)
	facts, err := plf.NewHandler(factsCfg, log)
	if err != nil {
		zapLog.Fatal("failed to create parse-label-facts handler", zap.Error(err))
	}

	extract := elt.NewHandler(elt.LoadConfig(cfg), log)
	regulations := qr.NewHandler(qr.LoadConfig(cfg), answerCache, log)
	builder := bvq.NewHandler(log)
	validator := vc.NewHandler(vc.LoadConfig(cfg), log)
	report := gcr.NewHandler(gcr.LoadConfig(cfg), log)

	pipelineCfg := rp.LoadConfig(cfg)
	orchestrator := rp.NewOrchestrator(rp.Stages{
		Extractor:    extract,
		Facts:        facts.Normalizer(),
		Questions:    facts.Formatter(),
		Regulations:  regulations,
		QueryBuilder: builder.Formatter(),
		Validator:    validator,
		Report:       report.Assembler(),
		Notifier:     notifier,
	}, pipelineCfg.ReportEnabled, obs, log)
	pipeline := rp.NewHandler(pipelineCfg, orchestrator, log)

	g, gctx := errgroup.WithContext(ctx)

	if factsCfg.Watch && factsCfg.RulesPath != "" {
		watcher, err := plf.NewTableWatcher(factsCfg.RulesPath, facts.Normalizer(), log)
		if err != nil {
			zapLog.Fatal("rules watcher init failed", zap.Error(err))
		}
		defer watcher.Close()
		g.Go(func() error {
			watcher.Run(gctx)
			return nil
		})
		zapLog.Info("Watching match table", zap.String("path", factsCfg.RulesPath))
	}

	// --- Camunda job workers (optional) ---
	var workers []*camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: cfg.Camunda.UsePlaintext,
				ConnectionTimeout:      config.GetDuration(cfg.Camunda.Timeout),
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		readiness["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")

		register := func(taskType string, newHandler func(timeout time.Duration) camunda.JobHandler) {
			wcfg := config.GetWorkerConfig(cfg, taskType)
			if !wcfg.Enabled {
				zapLog.Info("worker disabled", zap.String("taskType", taskType))
				return
			}
			timeout := config.GetDuration(wcfg.Timeout)
			w := camunda.NewWorker(zeebe.GetClient(), taskType, wcfg.MaxJobsActive, timeout, newHandler(timeout), log)
			w.Start()
			workers = append(workers, w)
		}

		register(elt.TaskType, func(t time.Duration) camunda.JobHandler {
			return camunda.NewTaskHandler(elt.TaskType, t, extract.Execute, log)
		})
		register(plf.TaskType, func(t time.Duration) camunda.JobHandler {
			return camunda.NewTaskHandler(plf.TaskType, t, facts.Execute, log)
		})
		register(qr.TaskType, func(t time.Duration) camunda.JobHandler {
			return camunda.NewTaskHandler(qr.TaskType, t, regulations.Execute, log)
		})
		register(bvq.TaskType, func(t time.Duration) camunda.JobHandler {
			return camunda.NewTaskHandler(bvq.TaskType, t, builder.Execute, log)
		})
		register(vc.TaskType, func(t time.Duration) camunda.JobHandler {
			return camunda.NewTaskHandler(vc.TaskType, t, validator.Execute, log)
		})
		register(gcr.TaskType, func(t time.Duration) camunda.JobHandler {
			return camunda.NewTaskHandler(gcr.TaskType, t, report.Execute, log)
		})
		register(rp.TaskType, func(t time.Duration) camunda.JobHandler {
			return camunda.NewTaskHandler(rp.TaskType, t, pipeline.Execute, log)
		})
		zapLog.Info("Job workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP API ---
	router := httpserver.NewRouter(httpserver.Dependencies{
		Pipeline:        orchestrator,
		Extraction:      extract,
		Facts:           facts.Normalizer(),
		Questions:       facts.Formatter(),
		Regulations:     regulations,
		QueryBuilder:    builder.Formatter(),
		Compliance:      validator,
		ReadinessChecks: readiness,
	}, httpserver.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		PipelineTimeout: pipelineCfg.Timeout,
		MaxBodyBytes:    cfg.Image.MaxSizeBytes*2 + 1<<20,
		Version:         cfg.App.Version,
	}, log)

	srv := &stdhttp.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       config.GetDuration(cfg.Server.ReadTimeout),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.GetDuration(cfg.Server.WriteTimeout),
	}

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// --- Graceful Shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, stopping...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for _, w := range workers {
			w.Stop()
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("Compliance service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	zapLog.Info("Compliance service stopped gracefully")
}
