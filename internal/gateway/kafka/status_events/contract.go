//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=status_events_test
package status_events

import "context"

type publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}
