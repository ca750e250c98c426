package mocks

//go:generate mockgen -destination=./mock_exchange.go -package=mocks github.com/arcadia-lab/sentinel-trading/internal/exchange Exchange
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/arcadia-lab/sentinel-trading/internal/marketdata Provider
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/arcadia-lab/sentinel-trading/internal/notify Notifier
