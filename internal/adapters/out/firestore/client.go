// internal/adapters/out/firestore/client.go
package firestore

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// NewClient は Receipt 保存用の Firestore クライアントを作ります。
// opts を省略すると ADC（Cloud Run のサービスアカウント等）を使います。
// FIRESTORE_EMULATOR_HOST が設定されていればエミュレータに接続します（SDK 側の挙動）。
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore: project id is required")
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		log.Printf("[firestore] connected to emulator %s (project: %s)", host, projectID)
	} else {
		log.Printf("[firestore] connected (project: %s, collection: %s)", projectID, receiptsCollection)
	}
	return client, nil
}
