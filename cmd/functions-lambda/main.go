package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/careflow-portal/cmd/mainconfig"
	"github.com/wolfman30/careflow-portal/internal/app/bootstrap"
	appconfig "github.com/wolfman30/careflow-portal/internal/config"
	"github.com/wolfman30/careflow-portal/internal/lambdahttp"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.NewWithWriter(cfg.LogLevel, os.Stdout)

	ctx := context.Background()
	st, _, err := bootstrap.Connect(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect data store", "error", err)
		os.Exit(1)
	}
	ses, err := mainconfig.BuildSESClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	deps := bootstrap.Deps{
		Store: st,
		Redis: bootstrap.BuildRedisClient(ctx, cfg, logger, true),
		SES:   ses,
	}
	portal, err := bootstrap.BuildPortal(cfg, logger, deps)
	if err != nil {
		logger.Error("failed to build portal", "error", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, portal.Handler, evt)
	})
}

func handle(ctx context.Context, h http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return lambdahttp.Serve(ctx, h, evt)
}
