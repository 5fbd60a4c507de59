package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-signal/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/rxtech-lab/argo-signal/internal/notification Notifier
//go:generate mockgen -destination=./mock_history_store.go -package=mocks github.com/rxtech-lab/argo-signal/internal/history Store
//go:generate mockgen -destination=./mock_marker.go -package=mocks github.com/rxtech-lab/argo-signal/internal/marker Marker
