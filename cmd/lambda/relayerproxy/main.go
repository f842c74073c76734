package main

import (
	"net/http"
	"time"

	"github.com/storacha/sandbox/cmd/lambda"
	"github.com/storacha/sandbox/pkg/aws"
	"github.com/storacha/sandbox/pkg/relayer"
	"github.com/storacha/sandbox/pkg/server"
)

func main() {
	lambda.StartHTTPHandler(makeHandler)
}

func makeHandler(cfg aws.Config) (http.Handler, error) {
	client := relayer.New(&http.Client{Timeout: 30 * time.Second}, cfg.RelayerURL, cfg.RelayerAPIKey)
	return server.NewServer(&server.API{Relayer: client}).Handler(), nil
}
