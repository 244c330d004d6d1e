package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/config"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/database"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/gateway"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/repository"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/present/rest"
	banibsmiddleware "github.com/banibsnetworks-source/banibs-production-sub001/internal/present/rest/middleware"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/service"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/usecase"
	"github.com/banibsnetworks-source/banibs-production-sub001/policy"
)

func main() {
	configPath := flag.String("config", "/etc/banibs/config.yaml", "path to config file")
	listenAddr := flag.String("listen", ":8000", "listen address")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint, conf.NodeInfo.FQDN)
		if err != nil {
			panic("failed to setup trace provider: " + err.Error())
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	domainConf := conf.Domain()

	relationshipRepo := repository.NewRelationshipRepository(db)
	edgeRepo := repository.NewEdgeRepository(db, mc)
	envelopeRepo := repository.NewEnvelopeRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	contentRepo := repository.NewContentRepository(db)

	deliveryGateway := gateway.NewDeliveryGateway(conf.Server.DeliveryEndpoint)

	signalService := service.NewSignalService(rdb)
	anomalyService := service.NewAnomalyService(
		policy.AnomalyPolicy{Threshold: domainConf.AnomalyThreshold},
		signalService,
	)

	graphUsecase := usecase.NewGraphUsecase(
		relationshipRepo,
		edgeRepo,
		banibs.DefaultReachWeights,
		anomalyService,
		domainConf,
	)
	schedulerUsecase := usecase.NewSchedulerUsecase(
		envelopeRepo,
		deliveryGateway,
		signalService,
		domainConf,
	)
	accessUsecase := usecase.NewAccessUsecase(
		graphUsecase,
		roomRepo,
		policy.NewResolver(),
		schedulerUsecase,
	)
	feedRanker := usecase.NewFeedRanker(banibs.DefaultFeedWeights)

	handler := rest.NewHandler(
		domainConf,
		graphUsecase,
		accessUsecase,
		schedulerUsecase,
		feedRanker,
		contentRepo,
		signalService,
	)

	identity := banibsmiddleware.NewIdentityMiddleware(domainConf)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(otelecho.Middleware(conf.NodeInfo.FQDN))
	e.Use(identity.IdentifyRequester)

	handler.RegisterRoutes(e)

	slog.Info("starting server", slog.String("addr", *listenAddr))
	e.Logger.Fatal(e.Start(*listenAddr))
}

func setupTraceProvider(endpoint string, serviceName string) (func(), error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	cleanup := func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown tracer provider", slog.String("error", err.Error()))
		}
	}
	return cleanup, nil
}
