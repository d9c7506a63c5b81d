// Command paymentd serves the payment gateway HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	gateway "github.com/merakinexus/payment-gateway"
	"github.com/merakinexus/payment-gateway/clients"
	"github.com/merakinexus/payment-gateway/config"
	"github.com/merakinexus/payment-gateway/logger"
	"github.com/merakinexus/payment-gateway/metrics"
	"github.com/merakinexus/payment-gateway/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.LogLevel, !cfg.Production())
	recorder := metrics.NewPrometheusRecorder()

	log.Info("payment gateway starting", map[string]any{
		"rpc":      cfg.RPCURL,
		"contract": cfg.ContractAddress,
		"mode":     string(cfg.Mode()),
		"env":      cfg.Environment,
		"port":     cfg.Port,
	})

	client, err := clients.NewEthereumClient(cfg.RPCURL, cfg.ContractAddress)
	if err != nil {
		log.Error("chain client init failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	opts := []gateway.Option{
		gateway.WithLogger(log),
		gateway.WithMetrics(recorder),
		gateway.WithTimeout(cfg.ReceiptTimeout),
		gateway.WithSubmitMode(cfg.Mode()),
		gateway.WithGasStrategy(cfg.GasStrategy),
	}
	if cfg.SigningKey != "" {
		opts = append(opts, gateway.WithDefaultSigningKey(cfg.SigningKey))
	}
	if cfg.RejectSelfPayment {
		opts = append(opts, gateway.WithSelfPaymentRejection())
	}

	gw, err := gateway.New(client, opts...)
	if err != nil {
		log.Error("gateway init failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer gw.Close()

	srv := server.New(gw,
		server.HealthInfo{
			RPCURL:          cfg.RPCURL,
			ContractAddress: cfg.ContractAddress,
			Environment:     cfg.Environment,
			SigningKeySet:   cfg.SigningKey != "",
		},
		server.WithLogger(log),
		server.WithMetrics(recorder),
		server.WithProduction(cfg.Production()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Port); err != nil {
		log.Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	log.Info("payment gateway stopped", nil)
}
