package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"

	"taskhub/config"
)

// FBConnection initializes the Firebase app the Firestore and Storage
// clients are derived from.
func FBConnection(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	var fbConfig *firebase.Config
	if cfg.StorageBucket != "" {
		fbConfig = &firebase.Config{StorageBucket: cfg.StorageBucket}
	}

	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}
	return app, nil
}

func FirestoreClient(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}
	return client, nil
}

func StorageBucket(ctx context.Context, app *firebase.App) (*storage.BucketHandle, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error getting default bucket: %w", err)
	}
	return bucket, nil
}
