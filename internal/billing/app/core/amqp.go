package core

import "context"

type Publisher interface {
	Publish(ctx context.Context, topic, key string, body []byte) error
}
